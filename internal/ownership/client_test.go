package ownership_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"spreadgen/internal/config"
	"spreadgen/internal/ownership"
	"spreadgen/internal/services"
)

const owner = "0x00000000000000000000000000000000000000aB"

func newClient(t *testing.T, url string, mutate ...func(*config.Ownership)) *ownership.Client {
	t.Helper()
	cfg := config.Default().Ownership
	cfg.BaseURL = url
	cfg.APIKey = "key"
	for _, fn := range mutate {
		fn(&cfg)
	}
	client, err := ownership.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestHoldingsFollowsPagination(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Path != "/key/getNFTsForOwner" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		query := r.URL.Query()
		if query.Get("owner") != owner {
			t.Errorf("unexpected owner %q", query.Get("owner"))
		}
		if got := query["contractAddresses[]"]; len(got) != 2 {
			t.Errorf("expected two contracts, got %v", got)
		}
		w.Header().Set("Content-Type", "application/json")
		switch query.Get("pageKey") {
		case "":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"ownedNfts": []map[string]any{
					{"tokenId": "5", "balance": "3", "contract": map[string]string{"address": "0xA3A5"}},
				},
				"pageKey": "next",
			})
		case "next":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"ownedNfts": []map[string]any{
					{"tokenId": "0x62", "balance": 1, "contract": map[string]string{"address": "0x750e"}},
				},
			})
		default:
			t.Errorf("unexpected page key %q", query.Get("pageKey"))
		}
	}))
	t.Cleanup(server.Close)

	holdings, err := newClient(t, server.URL).Holdings(context.Background(), owner)
	if err != nil {
		t.Fatalf("Holdings: %v", err)
	}
	if requests.Load() != 2 {
		t.Fatalf("expected 2 requests, got %d", requests.Load())
	}
	if len(holdings) != 2 {
		t.Fatalf("expected 2 holdings, got %+v", holdings)
	}
	if holdings[0].TokenID != "5" || holdings[0].Balance != 3 {
		t.Fatalf("unexpected first holding %+v", holdings[0])
	}
	if holdings[1].TokenID != "98" || holdings[1].Balance != 1 {
		t.Fatalf("expected hex token converted, got %+v", holdings[1])
	}
}

func TestHoldingsEmptyOwner(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ownedNfts":[],"totalCount":0}`))
	}))
	t.Cleanup(server.Close)

	_, err := newClient(t, server.URL).Holdings(context.Background(), owner)
	if !errors.Is(err, ownership.ErrNoHoldings) {
		t.Fatalf("expected ErrNoHoldings, got %v", err)
	}
	if !services.Recoverable(err) {
		t.Fatal("metadata fetch errors should be recoverable")
	}
}

func TestHoldingsSurfacesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)

	_, err := newClient(t, server.URL).Holdings(context.Background(), owner)
	if !errors.Is(err, services.ErrMetadataFetch) {
		t.Fatalf("expected metadata fetch error, got %v", err)
	}
	if !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestHoldingsStopsAtPageLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ownedNfts":[{"tokenId":"1","balance":"1"}],"pageKey":"again"}`))
	}))
	t.Cleanup(server.Close)

	client := newClient(t, server.URL, func(cfg *config.Ownership) { cfg.PageLimit = 3 })
	if _, err := client.Holdings(context.Background(), owner); !errors.Is(err, services.ErrMetadataFetch) {
		t.Fatalf("expected page limit error, got %v", err)
	}
}

func TestValidateOwner(t *testing.T) {
	if err := ownership.ValidateOwner(owner); err != nil {
		t.Fatalf("expected valid owner: %v", err)
	}
	for _, bad := range []string{"", "0x123", "00000000000000000000000000000000000000000a", "0xZZ00000000000000000000000000000000000000"} {
		if err := ownership.ValidateOwner(bad); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("expected validation error for %q, got %v", bad, err)
		}
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	cfg := config.Default().Ownership
	cfg.APIKey = ""
	if _, err := ownership.New(cfg); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/good/getContractMetadata") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("contractAddress") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"name":"cards"}`))
	}))
	defer srv.Close()

	good, err := ownership.New(config.Ownership{BaseURL: srv.URL, APIKey: "good", Contracts: []string{"0x1"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := good.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	bad, err := ownership.New(config.Ownership{BaseURL: srv.URL, APIKey: "bad", Contracts: []string{"0x1"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := bad.Ping(context.Background()); !errors.Is(err, ownership.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
