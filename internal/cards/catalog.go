package cards

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

//go:embed catalog.toml
var catalogData []byte

// Catalog maps token ids to card metadata.
type Catalog struct {
	byToken map[string]Metadata
	order   []string
}

type catalogFile struct {
	Cards []Metadata `toml:"card"`
}

var (
	defaultCatalogOnce sync.Once
	defaultCatalog     *Catalog
	defaultCatalogErr  error
)

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	defaultCatalogOnce.Do(func() {
		defaultCatalog, defaultCatalogErr = ParseCatalog(catalogData)
	})
	return defaultCatalog, defaultCatalogErr
}

// ParseCatalog decodes a TOML catalog made of [[card]] tables.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	catalog := &Catalog{byToken: make(map[string]Metadata, len(file.Cards))}
	var errs []error
	for i, card := range file.Cards {
		if card.Token == "" || card.ID == "" {
			errs = append(errs, fmt.Errorf("card %d: token and id are required", i))
			continue
		}
		if card.Rarity < 1 || card.Rarity > 6 {
			errs = append(errs, fmt.Errorf("card %s: rarity %d out of range", card.Token, card.Rarity))
		}
		if !card.Faction.Valid() {
			errs = append(errs, fmt.Errorf("card %s: unknown faction %d", card.Token, card.Faction))
		}
		if _, dup := catalog.byToken[card.Token]; dup {
			errs = append(errs, fmt.Errorf("card %s: duplicate token", card.Token))
			continue
		}
		catalog.byToken[card.Token] = card
		catalog.order = append(catalog.order, card.Token)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return catalog, nil
}

// Lookup returns the metadata for a token id.
func (c *Catalog) Lookup(token string) (Metadata, bool) {
	meta, ok := c.byToken[token]
	return meta, ok
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.order)
}

// All returns every entry in catalog order.
func (c *Catalog) All() []Metadata {
	out := make([]Metadata, 0, len(c.order))
	for _, token := range c.order {
		out = append(out, c.byToken[token])
	}
	return out
}
