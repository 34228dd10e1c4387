package cards

import (
	"fmt"

	"spreadgen/internal/placement"
)

// Metadata is the immutable identity of a card.
type Metadata struct {
	Token    string  `toml:"token" json:"token"`
	ID       string  `toml:"id" json:"id"`
	Rarity   int     `toml:"rarity" json:"rarity"`
	Faction  Faction `toml:"faction" json:"faction"`
	Alt      bool    `toml:"alt" json:"alt"`
	Name     string  `toml:"name" json:"name"`
	Unminted bool    `toml:"unminted" json:"unminted,omitempty"`
}

// ClipPath returns the static asset path of the card's clip.
func (m Metadata) ClipPath() string {
	return "/cards/" + m.ID + ".mp4"
}

// IconPath returns the rarity icon for the card.
func (m Metadata) IconPath() string {
	rarity := fmt.Sprintf("r%d", m.Rarity)
	if m.Alt {
		rarity = "alt"
	}
	return "/icons/rarity/" + rarity + "_" + m.Faction.Code() + ".png"
}

// RarityLabel returns a short human label for the card's rarity tier.
func (m Metadata) RarityLabel() string {
	if m.Alt {
		return "alt"
	}
	return fmt.Sprintf("r%d", m.Rarity)
}

// CardAsset is one owned card unit plus its presentation state.
type CardAsset struct {
	Metadata
	Favorite bool               `json:"favorite"`
	Volume   float64            `json:"volume"`
	Position placement.Position `json:"position"`
}

// NewCardAsset constructs an unfavorited asset at the given position.
func NewCardAsset(meta Metadata, position placement.Position) CardAsset {
	return CardAsset{Metadata: meta, Volume: 1, Position: position}
}
