package commands

import (
	"context"
	"crypto-alert-bot/internal/alert"
	"crypto-alert-bot/internal/metrics"
	"crypto-alert-bot/internal/price"
	"crypto-alert-bot/internal/types"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver map[string]types.Asset

func (f fakeResolver) Resolve(_ context.Context, symbol string) (types.Asset, error) {
	asset, ok := f[strings.ToLower(symbol)]
	if !ok {
		return types.Asset{}, errors.Wrapf(price.ErrUnknownSymbol, "%s", symbol)
	}
	return asset, nil
}

type fakeSource struct {
	prices map[string]float64
	err    error
}

func (f fakeSource) BulkLookup(context.Context, []string) (map[string]float64, error) {
	return f.prices, f.err
}

var testAssets = fakeResolver{
	"btc": {ID: "bitcoin", Symbol: "BTC", Name: "Bitcoin"},
	"eth": {ID: "ethereum", Symbol: "ETH", Name: "Ethereum"},
}

func newTestHandler(store *alert.Store, source alert.PriceSource) *Handler {
	return NewHandler(store, testAssets, source, time.Second)
}

func TestParseArguments(t *testing.T) {
	ticker, target := ParseArguments("btc 70000")
	assert.Equal(t, "btc", ticker)
	assert.Equal(t, "70000", target)

	ticker, target = ParseArguments("eth")
	assert.Equal(t, "eth", ticker)
	assert.Equal(t, "", target)

	ticker, target = ParseArguments("")
	assert.Equal(t, "", ticker)
	assert.Equal(t, "", target)
}

func TestCommandAlert(t *testing.T) {
	store := alert.NewStore(10)
	h := newTestHandler(store, fakeSource{})

	reply := h.CommandAlert(context.Background(), 7, "btc 70000")
	assert.Contains(t, reply, "Alert set")
	assert.Contains(t, reply, "BTC")

	alerts := store.List(7)
	require.Len(t, alerts, 1)
	assert.Equal(t, "bitcoin", alerts[0].AssetID)
	assert.Equal(t, "BTC", alerts[0].Symbol)
	assert.Equal(t, 70000.0, alerts[0].Target)
	assert.NotEqual(t, alerts[0].ID.String(), "00000000-0000-0000-0000-000000000000")

	t.Run("duplicate", func(t *testing.T) {
		reply := h.CommandAlert(context.Background(), 7, "BTC 70,000")
		assert.Contains(t, reply, "already have an alert")
		assert.Len(t, store.List(7), 1)
	})
}

func TestCommandAlertUpdatesActiveGauge(t *testing.T) {
	store := alert.NewStore(10)
	require.NoError(t, store.Add(9, types.NewAlert("ethereum", "ETH", 4000)))
	h := newTestHandler(store, fakeSource{})

	h.CommandAlert(context.Background(), 7, "btc 70000")
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Alerts.Active))

	h.CommandAlert(context.Background(), 7, "btc 70000")
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Alerts.Active))
}

func TestCommandAlertLimit(t *testing.T) {
	store := alert.NewStore(2)
	h := newTestHandler(store, fakeSource{})

	h.CommandAlert(context.Background(), 7, "btc 1")
	h.CommandAlert(context.Background(), 7, "btc 2")
	reply := h.CommandAlert(context.Background(), 7, "btc 3")

	assert.Contains(t, reply, "maximum limit of 2 alerts")
	assert.Len(t, store.List(7), 2)
}

func TestCommandAlertRejectsInput(t *testing.T) {
	tests := []struct {
		name     string
		argument string
		expected string
	}{
		{"missing target", "btc", "Usage"},
		{"empty", "", "Usage"},
		{"too many arguments", "btc 1 2", "Usage"},
		{"not a number", "btc lots", "Invalid target price"},
		{"zero", "btc 0", "Invalid target price"},
		{"negative", "btc -5", "Invalid target price"},
		{"unknown symbol", "xyz 10", "don't recognize the symbol"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := alert.NewStore(10)
			h := newTestHandler(store, fakeSource{})

			reply := h.CommandAlert(context.Background(), 7, tt.argument)
			assert.Contains(t, reply, tt.expected)
			assert.Empty(t, store.AllUsers())
		})
	}
}

func TestCommandAlertList(t *testing.T) {
	store := alert.NewStore(10)
	h := newTestHandler(store, fakeSource{})

	assert.Contains(t, h.CommandAlertList(7), "no active alerts")

	require.NoError(t, store.Add(7, types.NewAlert("bitcoin", "BTC", 70000)))
	require.NoError(t, store.Add(7, types.NewAlert("ethereum", "ETH", 0.5)))

	reply := h.CommandAlertList(7)
	assert.Contains(t, reply, "Your active alerts:")
	assert.Contains(t, reply, "1\\. BTC at $70,000\\.00")
	assert.Contains(t, reply, "2\\. ETH at $0\\.500000")
	assert.Less(t, strings.Index(reply, "BTC"), strings.Index(reply, "ETH"))
}

func TestCommandPrice(t *testing.T) {
	h := newTestHandler(alert.NewStore(10), fakeSource{prices: map[string]float64{"bitcoin": 70123.45}})

	reply, err := h.CommandPrice(context.Background(), "btc")
	require.NoError(t, err)
	assert.Contains(t, reply, "BTC")
	assert.Contains(t, reply, "70,123\\.45")

	t.Run("unknown symbol", func(t *testing.T) {
		_, err := h.CommandPrice(context.Background(), "xyz")
		assert.True(t, IsUnknownSymbol(err))
	})

	t.Run("missing quote", func(t *testing.T) {
		reply, err := h.CommandPrice(context.Background(), "eth")
		require.NoError(t, err)
		assert.Contains(t, reply, "couldn't fetch the price")
	})

	t.Run("lookup failure", func(t *testing.T) {
		h := newTestHandler(alert.NewStore(10), fakeSource{err: errors.New("timeout")})
		reply, err := h.CommandPrice(context.Background(), "btc")
		require.NoError(t, err)
		assert.Contains(t, reply, "couldn't fetch the price")
	})

	t.Run("no argument", func(t *testing.T) {
		reply, err := h.CommandPrice(context.Background(), " ")
		require.NoError(t, err)
		assert.Contains(t, reply, "Please provide a coin symbol")
	})
}
