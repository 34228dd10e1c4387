package ownership

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"spreadgen/internal/cards"
	"spreadgen/internal/config"
	"spreadgen/internal/logging"
	"spreadgen/internal/services"
)

// ErrNoHoldings reports an address that owns none of the tracked contracts.
var ErrNoHoldings = errors.New("that address has 0 (zero) cards")

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// ValidateOwner checks that owner is a 0x-prefixed 20-byte hex address.
func ValidateOwner(owner string) error {
	if !addressPattern.MatchString(strings.TrimSpace(owner)) {
		return services.Wrap(services.ErrValidation, "ownership", "validate", fmt.Sprintf("invalid owner address %q", owner), nil)
	}
	return nil
}

// Source returns the holdings of an owner.
type Source interface {
	Holdings(ctx context.Context, owner string) ([]cards.Holding, error)
}

// Client queries the indexer over HTTP.
type Client struct {
	apiKey     string
	baseURL    string
	contracts  []string
	pageLimit  int
	httpClient *http.Client
	logger     *slog.Logger
}

var _ Source = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "ownership")
	}
}

// New creates an indexer client from the ownership configuration.
func New(cfg config.Ownership, opts ...Option) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "ownership", "new", "api key required (set ownership.api_key or ALCHEMY_API_KEY)", nil)
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "ownership", "new", "base url required", nil)
	}
	if len(cfg.Contracts) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "ownership", "new", "at least one contract required", nil)
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	pageLimit := cfg.PageLimit
	if pageLimit <= 0 {
		pageLimit = 100
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		contracts:  append([]string(nil), cfg.Contracts...),
		pageLimit:  pageLimit,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NewComponentLogger(nil, "ownership"),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type ownedNFT struct {
	TokenID  string       `json:"tokenId"`
	Balance  flexibleInt  `json:"balance"`
	Contract contractInfo `json:"contract"`
}

type contractInfo struct {
	Address string `json:"address"`
}

type page struct {
	OwnedNFTs  []ownedNFT `json:"ownedNfts"`
	PageKey    string     `json:"pageKey"`
	TotalCount int        `json:"totalCount"`
}

// Holdings returns every tracked token owned by owner, following pagination
// until no page key is returned. An owner with no tokens yields ErrNoHoldings.
func (c *Client) Holdings(ctx context.Context, owner string) ([]cards.Holding, error) {
	if err := ValidateOwner(owner); err != nil {
		return nil, err
	}
	owner = strings.TrimSpace(owner)

	var holdings []cards.Holding
	pageKey := ""
	for pages := 0; ; pages++ {
		if pages >= c.pageLimit {
			return nil, services.Wrap(services.ErrMetadataFetch, "ownership", "holdings", fmt.Sprintf("exceeded %d pages", c.pageLimit), nil)
		}
		resp, err := c.fetchPage(ctx, owner, pageKey)
		if err != nil {
			return nil, services.Wrap(services.ErrMetadataFetch, "ownership", "holdings", fmt.Sprintf("page %d", pages+1), err)
		}
		for _, nft := range resp.OwnedNFTs {
			holdings = append(holdings, cards.Holding{
				TokenID:  normalizeTokenID(nft.TokenID),
				Contract: nft.Contract.Address,
				Balance:  int(nft.Balance),
			})
		}
		if resp.PageKey == "" {
			c.logger.Debug("holdings fetched",
				logging.String("owner", owner),
				logging.Int("pages", pages+1),
				logging.Int("tokens", len(holdings)),
			)
			break
		}
		pageKey = resp.PageKey
	}

	if len(holdings) == 0 {
		return nil, services.Wrap(services.ErrMetadataFetch, "ownership", "holdings", owner, ErrNoHoldings)
	}
	return holdings, nil
}

func (c *Client) fetchPage(ctx context.Context, owner, pageKey string) (*page, error) {
	endpoint, err := url.Parse(c.baseURL + "/" + url.PathEscape(c.apiKey) + "/getNFTsForOwner")
	if err != nil {
		return nil, fmt.Errorf("build endpoint: %w", err)
	}
	params := url.Values{}
	params.Set("owner", owner)
	for _, contract := range c.contracts {
		params.Add("contractAddresses[]", contract)
	}
	params.Set("withMetadata", "false")
	if pageKey != "" {
		params.Set("pageKey", pageKey)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("indexer request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<10))
		return nil, fmt.Errorf("indexer returned %d (latency=%v): %s", resp.StatusCode, latency, strings.TrimSpace(string(body)))
	}

	var payload page
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode indexer response: %w", err)
	}
	return &payload, nil
}

// normalizeTokenID converts hex token ids to the decimal form the catalog uses.
func normalizeTokenID(id string) string {
	id = strings.TrimSpace(id)
	if strings.HasPrefix(id, "0x") || strings.HasPrefix(id, "0X") {
		if v, err := strconv.ParseUint(id[2:], 16, 64); err == nil {
			return strconv.FormatUint(v, 10)
		}
	}
	return id
}

// flexibleInt accepts a JSON number or a numeric string.
type flexibleInt int

func (f *flexibleInt) UnmarshalJSON(data []byte) error {
	text := strings.Trim(string(data), `"`)
	if text == "" || text == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.Atoi(text)
	if err != nil {
		return fmt.Errorf("invalid balance %s: %w", data, err)
	}
	*f = flexibleInt(v)
	return nil
}

// ErrUnauthorized reports an API key the indexer rejected.
var ErrUnauthorized = errors.New("indexer rejected the api key")

// Ping requests metadata for the first tracked contract to verify the
// endpoint is reachable and the key is accepted.
func (c *Client) Ping(ctx context.Context) error {
	endpoint, err := url.Parse(c.baseURL + "/" + url.PathEscape(c.apiKey) + "/getContractMetadata")
	if err != nil {
		return fmt.Errorf("build endpoint: %w", err)
	}
	endpoint.RawQuery = url.Values{"contractAddress": {c.contracts[0]}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("indexer request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	default:
		return fmt.Errorf("indexer returned %d", resp.StatusCode)
	}
}
