package price

import (
	"context"
	"crypto-alert-bot/internal/types"
	"github.com/coinpaprika/coinpaprika-api-go-client/v2/coinpaprika"
	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"net/http"
	"strings"
	"time"
)

type (
	listTickersFunc func(options *coinpaprika.TickersOptions) ([]*coinpaprika.Ticker, error)
	searchFunc      func(options *coinpaprika.SearchOptions) (*coinpaprika.SearchResult, error)
)

// CoinpaprikaSource looks up prices and coins through the CoinPaprika API.
// Asset identifiers are CoinPaprika coin ids such as "btc-bitcoin".
type CoinpaprikaSource struct {
	listTickers listTickersFunc
	search      searchFunc
}

// NewCoinpaprikaSource creates a source using apiProKey when set. Every request
// is bounded by timeout.
func NewCoinpaprikaSource(apiProKey string, timeout time.Duration) *CoinpaprikaSource {
	httpClient := &http.Client{Timeout: timeout}

	var client *coinpaprika.Client
	if apiProKey != "" {
		client = coinpaprika.NewClient(httpClient, coinpaprika.WithAPIKey(apiProKey))
	} else {
		client = coinpaprika.NewClient(httpClient)
	}

	return &CoinpaprikaSource{
		listTickers: client.Tickers.List,
		search:      client.Search.Search,
	}
}

// BulkLookup fetches every ticker in one request and keeps the requested ones
func (s *CoinpaprikaSource) BulkLookup(ctx context.Context, assetIDs []string) (map[string]float64, error) {
	want := requested(assetIDs)
	if len(want) == 0 {
		return map[string]float64{}, nil
	}

	type result struct {
		tickers []*coinpaprika.Ticker
		err     error
	}
	done := make(chan result, 1)
	go func() {
		tickers, err := s.listTickers(&coinpaprika.TickersOptions{Quotes: "USD"})
		done <- result{tickers: tickers, err: err}
	}()

	var r result
	select {
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "coinpaprika tickers")
	case r = <-done:
	}
	if r.err != nil {
		return nil, errors.Wrap(r.err, "coinpaprika tickers")
	}

	prices := make(map[string]float64, len(want))
	for _, t := range r.tickers {
		if t == nil || t.ID == nil {
			continue
		}
		if _, ok := want[*t.ID]; !ok {
			continue
		}
		quote, ok := t.Quotes["USD"]
		if !ok || quote.Price == nil {
			log.Warnf("No USD price found for %s in coinpaprika tickers", *t.ID)
			continue
		}
		prices[*t.ID] = *quote.Price
	}

	if log.IsLevelEnabled(log.DebugLevel) {
		log.Debugf("coinpaprika quotes: %s", spew.Sdump(prices))
	}
	return prices, nil
}

// Resolve finds the coin for a user supplied symbol or name. Symbol search is
// tried first, then a plain name search.
func (s *CoinpaprikaSource) Resolve(_ context.Context, query string) (types.Asset, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return types.Asset{}, ErrUnknownSymbol
	}

	searchOpts := &coinpaprika.SearchOptions{
		Query:      query,
		Categories: "currencies",
		Modifier:   "symbol_search",
	}
	result, err := s.search(searchOpts)
	if err != nil || result == nil || len(result.Currencies) == 0 {
		log.Debugf("No results for symbol search, trying name search for '%s'", query)
		searchOpts = &coinpaprika.SearchOptions{Query: query, Categories: "currencies"}
		result, err = s.search(searchOpts)
		if err != nil {
			return types.Asset{}, errors.Wrapf(err, "coinpaprika search %q", query)
		}
		if result == nil || len(result.Currencies) == 0 {
			return types.Asset{}, errors.Wrapf(ErrUnknownSymbol, "%s", query)
		}
	}

	c := result.Currencies[0]
	if c == nil || c.ID == nil {
		return types.Asset{}, errors.Wrapf(ErrUnknownSymbol, "%s", query)
	}

	symbol, name := query, *c.ID
	if c.Symbol != nil {
		symbol = *c.Symbol
	}
	if c.Name != nil {
		name = *c.Name
	}
	log.Debugf("Best match for query '%s' is: %s", query, *c.ID)
	return assetFromSymbol(*c.ID, symbol, name), nil
}

func (s *CoinpaprikaSource) String() string {
	return "coinpaprika"
}
