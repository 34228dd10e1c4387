package cards

import (
	"spreadgen/internal/placement"
)

// Holding is one owned token with its quantity.
type Holding struct {
	TokenID  string
	Contract string
	Balance  int
}

// PositionSource produces initial card positions.
type PositionSource interface {
	Sample() placement.Position
}

// Expansion reports how holdings were turned into assets.
type Expansion struct {
	Assets  []CardAsset
	Unknown []string
}

// Expand maps holdings through the catalog, repeating each card once per
// owned unit and sorting the result by rarity. Tokens missing from the
// catalog are skipped and listed in Unknown.
func Expand(catalog *Catalog, holdings []Holding, positions PositionSource) Expansion {
	var result Expansion
	for _, holding := range holdings {
		meta, ok := catalog.Lookup(holding.TokenID)
		if !ok {
			result.Unknown = append(result.Unknown, holding.TokenID)
			continue
		}
		for range holding.Balance {
			result.Assets = append(result.Assets, NewCardAsset(meta, placement.Position{}))
		}
	}
	SortByRarity(result.Assets)
	for i := range result.Assets {
		result.Assets[i].Position = positions.Sample()
	}
	return result
}
