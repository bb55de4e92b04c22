package price

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoingeckoBulkLookup(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		gotQuery = r.URL.Query().Get("ids")
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"bitcoin":{"usd":70123.45},"ethereum":{"usd":3512.1},"dogecoin":{}}`))
	}))
	defer server.Close()

	source := NewCoingeckoSource(server.URL, time.Second)
	prices, err := source.BulkLookup(context.Background(), []string{"ethereum", "bitcoin", "bitcoin", "dogecoin", "unknown"})
	require.NoError(t, err)

	assert.Equal(t, "bitcoin,dogecoin,ethereum,unknown", gotQuery)
	assert.Equal(t, map[string]float64{"bitcoin": 70123.45, "ethereum": 3512.1}, prices)
}

func TestCoingeckoBulkLookupEmpty(t *testing.T) {
	source := NewCoingeckoSource("http://127.0.0.1:1", time.Second)

	prices, err := source.BulkLookup(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, prices)
}

func TestCoingeckoBulkLookupFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<html>rate limited</html>`))
			},
		},
		{
			name: "invalid price",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"bitcoin":{"usd":"n/a"}}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			source := NewCoingeckoSource(server.URL, time.Second)
			prices, err := source.BulkLookup(context.Background(), []string{"bitcoin"})
			assert.Error(t, err)
			assert.Nil(t, prices)
		})
	}
}

func TestCoingeckoBulkLookupTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	source := NewCoingeckoSource(server.URL, time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := source.BulkLookup(ctx, []string{"bitcoin"})
	assert.Error(t, err)
}

func TestCoingeckoResolve(t *testing.T) {
	source := NewCoingeckoSource("", time.Second)

	asset, err := source.Resolve(context.Background(), "btc")
	require.NoError(t, err)
	assert.Equal(t, "bitcoin", asset.ID)
	assert.Equal(t, "BTC", asset.Symbol)

	_, err = source.Resolve(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ErrUnknownSymbol)
}
