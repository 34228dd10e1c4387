package ownership

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"spreadgen/internal/cards"
	"spreadgen/internal/services"
)

// Static serves a fixed holdings list regardless of owner. It backs offline
// runs where the token list is given on the command line.
type Static struct {
	holdings []cards.Holding
}

var _ Source = (*Static)(nil)

// NewStatic wraps holdings as a Source.
func NewStatic(holdings []cards.Holding) *Static {
	return &Static{holdings: append([]cards.Holding(nil), holdings...)}
}

// Holdings returns the fixed list, or ErrNoHoldings when it is empty.
func (s *Static) Holdings(ctx context.Context, _ string) ([]cards.Holding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(s.holdings) == 0 {
		return nil, services.Wrap(services.ErrMetadataFetch, "ownership", "static", "", ErrNoHoldings)
	}
	return append([]cards.Holding(nil), s.holdings...), nil
}

// ParseTokenList parses "token[:count]" entries separated by commas, such as
// "5:3,98,131". Repeated tokens accumulate.
func ParseTokenList(value string) ([]cards.Holding, error) {
	var holdings []cards.Holding
	index := make(map[string]int)
	for _, raw := range strings.Split(value, ",") {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}
		token, countText, hasCount := strings.Cut(entry, ":")
		token = strings.TrimSpace(token)
		count := 1
		if hasCount {
			parsed, err := strconv.Atoi(strings.TrimSpace(countText))
			if err != nil || parsed < 1 {
				return nil, services.Wrap(services.ErrValidation, "ownership", "parse tokens", fmt.Sprintf("invalid count in %q", entry), nil)
			}
			count = parsed
		}
		if _, err := strconv.ParseUint(token, 10, 64); err != nil {
			return nil, services.Wrap(services.ErrValidation, "ownership", "parse tokens", fmt.Sprintf("invalid token id %q", token), nil)
		}
		if i, ok := index[token]; ok {
			holdings[i].Balance += count
			continue
		}
		index[token] = len(holdings)
		holdings = append(holdings, cards.Holding{TokenID: token, Balance: count})
	}
	return holdings, nil
}
