package cards_test

import (
	"errors"
	"testing"

	"spreadgen/internal/cards"
	"spreadgen/internal/placement"
)

type stepPositions struct {
	next float64
}

func (s *stepPositions) Sample() placement.Position {
	s.next += 0.01
	return placement.At(s.next, s.next, 0)
}

func mustCatalog(t *testing.T) *cards.Catalog {
	t.Helper()
	catalog, err := cards.DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}
	return catalog
}

func TestDefaultCatalogCoversAllTokens(t *testing.T) {
	catalog := mustCatalog(t)
	if catalog.Len() != 251 {
		t.Fatalf("expected 251 catalog entries, got %d", catalog.Len())
	}
	meta, ok := catalog.Lookup("1")
	if !ok || meta.ID != "0001" || meta.Faction != cards.FakeTech || meta.Rarity != 4 {
		t.Fatalf("unexpected token 1 metadata: %+v", meta)
	}
	alt, ok := catalog.Lookup("102")
	if !ok || !alt.Alt || alt.ID != "0008a" {
		t.Fatalf("unexpected token 102 metadata: %+v", alt)
	}
	last, ok := catalog.Lookup("251")
	if !ok || last.Faction != cards.Femacube || last.ID != "0221" {
		t.Fatalf("unexpected token 251 metadata: %+v", last)
	}
	if _, ok := catalog.Lookup("9999"); ok {
		t.Fatal("expected unknown token to be absent")
	}
}

func TestParseCatalogRejectsInvalidEntries(t *testing.T) {
	data := []byte(`
[[card]]
token = "1"
id = "0001"
rarity = 9
faction = 1
name = "Too Rare"

[[card]]
token = "1"
id = "0002"
rarity = 1
faction = 7
name = "Dup"
`)
	if _, err := cards.ParseCatalog(data); err == nil {
		t.Fatal("expected invalid catalog to be rejected")
	}
}

func TestMetadataPaths(t *testing.T) {
	meta := cards.Metadata{ID: "0129", Rarity: 2, Faction: cards.Femacube}
	if got := meta.ClipPath(); got != "/cards/0129.mp4" {
		t.Fatalf("unexpected clip path %q", got)
	}
	if got := meta.IconPath(); got != "/icons/rarity/r2_fc.png" {
		t.Fatalf("unexpected icon path %q", got)
	}
	meta.Alt = true
	meta.Faction = cards.BumLegion2099
	if got := meta.IconPath(); got != "/icons/rarity/alt_bl.png" {
		t.Fatalf("unexpected alt icon path %q", got)
	}
}

func TestCompareRarityOrdersAltThenScore(t *testing.T) {
	assets := []cards.CardAsset{
		{Metadata: cards.Metadata{ID: "low", Rarity: 1, Faction: cards.FakeTech}},
		{Metadata: cards.Metadata{ID: "femacube6", Rarity: 6, Faction: cards.Femacube}},
		{Metadata: cards.Metadata{ID: "alt", Rarity: 1, Faction: cards.FakeTech, Alt: true}},
		{Metadata: cards.Metadata{ID: "faketech6", Rarity: 6, Faction: cards.FakeTech}},
	}
	cards.SortByRarity(assets)
	want := []string{"alt", "faketech6", "femacube6", "low"}
	for i, id := range want {
		if assets[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, assets[i].ID)
		}
	}
}

func TestExpandRepeatsBalanceAndSkipsUnknown(t *testing.T) {
	catalog := mustCatalog(t)
	holdings := []cards.Holding{
		{TokenID: "5", Balance: 3},
		{TokenID: "98", Balance: 1},
		{TokenID: "not-a-card", Balance: 2},
	}
	result := cards.Expand(catalog, holdings, &stepPositions{})
	if len(result.Assets) != 4 {
		t.Fatalf("expected 4 assets, got %d", len(result.Assets))
	}
	if result.Assets[0].ID != "0098" {
		t.Fatalf("expected rarity 6 card first, got %s", result.Assets[0].ID)
	}
	if len(result.Unknown) != 1 || result.Unknown[0] != "not-a-card" {
		t.Fatalf("unexpected unknown tokens: %v", result.Unknown)
	}
	for i, asset := range result.Assets {
		if asset.Favorite {
			t.Fatalf("asset %d should not start favorited", i)
		}
		if asset.Volume != 1 {
			t.Fatalf("asset %d expected default volume 1, got %v", i, asset.Volume)
		}
		if asset.Position.X == 0 {
			t.Fatalf("asset %d expected sampled position", i)
		}
	}
}

func newCollection(t *testing.T, n int) *cards.Collection {
	t.Helper()
	assets := make([]cards.CardAsset, n)
	for i := range assets {
		assets[i] = cards.NewCardAsset(cards.Metadata{ID: string(rune('a' + i))}, placement.At(0, 0, 0))
	}
	collection, err := cards.NewCollection(assets, &stepPositions{})
	if err != nil {
		t.Fatalf("NewCollection: %v", err)
	}
	return collection
}

func TestToggleFavoriteKeepsAtMostOne(t *testing.T) {
	collection := newCollection(t, 3)
	before := collection.Snapshot()

	snap, err := collection.ToggleFavorite(1)
	if err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}
	if idx, ok := snap.Favorite(); !ok || idx != 1 {
		t.Fatalf("expected favorite 1, got %d %v", idx, ok)
	}
	if _, ok := before.Favorite(); ok {
		t.Fatal("earlier snapshot must not observe the edit")
	}

	snap, _ = collection.ToggleFavorite(2)
	count := 0
	for _, card := range snap.Cards() {
		if card.Favorite {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one favorite, got %d", count)
	}
	if idx, _ := snap.Favorite(); idx != 2 {
		t.Fatalf("expected favorite 2, got %d", idx)
	}

	snap, _ = collection.ToggleFavorite(2)
	if _, ok := snap.Favorite(); ok {
		t.Fatal("expected toggling the favorite to clear it")
	}
	if snap.Version != before.Version+3 {
		t.Fatalf("expected version %d, got %d", before.Version+3, snap.Version)
	}
}

func TestToggleFavoriteOutOfRange(t *testing.T) {
	collection := newCollection(t, 1)
	version := collection.Snapshot().Version
	if _, err := collection.ToggleFavorite(5); !errors.Is(err, cards.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if collection.Snapshot().Version != version {
		t.Fatal("failed edit must not bump the version")
	}
}

func TestRerollReplacesPositions(t *testing.T) {
	collection := newCollection(t, 3)
	snap, err := collection.Reroll(0)
	if err != nil {
		t.Fatalf("Reroll: %v", err)
	}
	first, _ := snap.At(0)
	second, _ := snap.At(1)
	if first.Position.X == 0 || second.Position.X != 0 {
		t.Fatalf("expected only card 0 rerolled, got %+v %+v", first.Position, second.Position)
	}

	_, _ = collection.ToggleFavorite(2)
	snap = collection.RerollAll()
	for i, card := range snap.Cards() {
		if card.Position.X == 0 {
			t.Fatalf("card %d not rerolled", i)
		}
	}
}

func TestReplaceRejectsStaleVersion(t *testing.T) {
	collection := newCollection(t, 2)
	base := collection.Snapshot()
	if _, err := collection.Reroll(0); err != nil {
		t.Fatalf("Reroll: %v", err)
	}
	if _, err := collection.Replace(base.Version, base.Cards()); !errors.Is(err, cards.ErrStaleSnapshot) {
		t.Fatalf("expected ErrStaleSnapshot, got %v", err)
	}
}

func TestNewCollectionRejectsMultipleFavorites(t *testing.T) {
	assets := []cards.CardAsset{{Favorite: true}, {Favorite: true}}
	if _, err := cards.NewCollection(assets, &stepPositions{}); err == nil {
		t.Fatal("expected error for two favorites")
	}
}

func TestQueryMatchesCaseFolded(t *testing.T) {
	catalog := mustCatalog(t)
	found := cards.Filter(catalog.All(), cards.Query{Name: "adderall"})
	if len(found) != 1 || found[0].ID != "0003" {
		t.Fatalf("expected ADDERALL card, got %+v", found)
	}
	alts := cards.Filter(catalog.All(), cards.Query{AltOnly: true, Faction: cards.FakeTech})
	for _, meta := range alts {
		if !meta.Alt || meta.Faction != cards.FakeTech {
			t.Fatalf("unexpected match %+v", meta)
		}
	}
	if len(alts) == 0 {
		t.Fatal("expected Fake Tech alt cards")
	}
}

func TestParseFaction(t *testing.T) {
	cases := map[string]cards.Faction{
		"ft":               cards.FakeTech,
		"Bum Legion 2099":  cards.BumLegion2099,
		"f.e.m.a.c.u.b.e.": cards.Femacube,
		"3":                cards.Femacube,
	}
	for input, want := range cases {
		got, ok := cards.ParseFaction(input)
		if !ok || got != want {
			t.Fatalf("ParseFaction(%q) = %v, %v; want %v", input, got, ok, want)
		}
	}
	if _, ok := cards.ParseFaction("unknown"); ok {
		t.Fatal("expected unknown faction to fail")
	}
}
