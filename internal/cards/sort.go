package cards

import (
	"cmp"
	"slices"
)

// score ranks non-alt cards; higher sorts first.
func score(m Metadata) int {
	return FactionCount*m.Rarity - int(m.Faction)
}

// CompareRarity orders alt cards first, then by descending rarity score.
func CompareRarity(a, b Metadata) int {
	if a.Alt != b.Alt {
		if a.Alt {
			return -1
		}
		return 1
	}
	return cmp.Compare(score(b), score(a))
}

// SortByRarity sorts assets in place, keeping equal cards in their original order.
func SortByRarity(assets []CardAsset) {
	slices.SortStableFunc(assets, func(a, b CardAsset) int {
		return CompareRarity(a.Metadata, b.Metadata)
	})
}
