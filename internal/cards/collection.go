package cards

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrStaleSnapshot reports a Replace based on an outdated version.
var ErrStaleSnapshot = errors.New("stale collection snapshot")

// ErrIndexOutOfRange reports an edit addressed to a card that does not exist.
var ErrIndexOutOfRange = errors.New("card index out of range")

// Snapshot is an immutable view of the collection at one version.
type Snapshot struct {
	Version int
	cards   []CardAsset
}

// Len returns the number of cards.
func (s Snapshot) Len() int {
	return len(s.cards)
}

// Cards returns a copy of the cards in display order.
func (s Snapshot) Cards() []CardAsset {
	return slices.Clone(s.cards)
}

// At returns the card at index i.
func (s Snapshot) At(i int) (CardAsset, bool) {
	if i < 0 || i >= len(s.cards) {
		return CardAsset{}, false
	}
	return s.cards[i], true
}

// Favorite returns the index of the favorited card.
func (s Snapshot) Favorite() (int, bool) {
	for i, card := range s.cards {
		if card.Favorite {
			return i, true
		}
	}
	return -1, false
}

// Collection owns the current card snapshot. Edits build a new snapshot and
// swap it in under a lock.
type Collection struct {
	mu        sync.RWMutex
	current   Snapshot
	positions PositionSource
}

// NewCollection takes ownership of assets as version 1. At most one asset
// may be marked favorite.
func NewCollection(assets []CardAsset, positions PositionSource) (*Collection, error) {
	favorites := 0
	for _, card := range assets {
		if card.Favorite {
			favorites++
		}
	}
	if favorites > 1 {
		return nil, fmt.Errorf("collection has %d favorites, at most one allowed", favorites)
	}
	return &Collection{
		current:   Snapshot{Version: 1, cards: slices.Clone(assets)},
		positions: positions,
	}, nil
}

// Snapshot returns the current snapshot.
func (c *Collection) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Replace installs cards as the next snapshot if base is still current.
func (c *Collection) Replace(base int, cards []CardAsset) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if base != c.current.Version {
		return c.current, fmt.Errorf("%w: based on %d, current is %d", ErrStaleSnapshot, base, c.current.Version)
	}
	c.current = Snapshot{Version: base + 1, cards: slices.Clone(cards)}
	return c.current, nil
}

func (c *Collection) update(fn func(cards []CardAsset) error) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := slices.Clone(c.current.cards)
	if err := fn(next); err != nil {
		return c.current, err
	}
	c.current = Snapshot{Version: c.current.Version + 1, cards: next}
	return c.current, nil
}

// ToggleFavorite unsets card i if it is the favorite. Otherwise it clears
// every favorite and marks card i.
func (c *Collection) ToggleFavorite(i int) (Snapshot, error) {
	return c.update(func(cards []CardAsset) error {
		if i < 0 || i >= len(cards) {
			return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
		}
		if cards[i].Favorite {
			cards[i].Favorite = false
			return nil
		}
		for j := range cards {
			cards[j].Favorite = false
		}
		cards[i].Favorite = true
		return nil
	})
}

// Reroll gives card i a freshly sampled position.
func (c *Collection) Reroll(i int) (Snapshot, error) {
	return c.update(func(cards []CardAsset) error {
		if i < 0 || i >= len(cards) {
			return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
		}
		cards[i].Position = c.positions.Sample()
		return nil
	})
}

// RerollAll gives every card, favorites included, a freshly sampled position.
func (c *Collection) RerollAll() Snapshot {
	snapshot, _ := c.update(func(cards []CardAsset) error {
		for i := range cards {
			cards[i].Position = c.positions.Sample()
		}
		return nil
	})
	return snapshot
}
