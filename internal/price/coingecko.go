package price

import (
	"context"
	"crypto-alert-bot/internal/types"
	"encoding/json"
	"fmt"
	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

const DefaultCoingeckoURL = "https://api.coingecko.com/api/v3"

// coingeckoIDs maps common symbols to CoinGecko ids
var coingeckoIDs = map[string]string{
	"btc":  "bitcoin",
	"eth":  "ethereum",
	"sol":  "solana",
	"xrp":  "ripple",
	"doge": "dogecoin",
	"shib": "shiba-inu",
	"ada":  "cardano",
	"dot":  "polkadot",
	"ltc":  "litecoin",
	"bch":  "bitcoin-cash",
}

// CoingeckoSource looks up prices with the CoinGecko simple price endpoint.
// Asset identifiers are CoinGecko ids such as "bitcoin".
type CoingeckoSource struct {
	baseURL    string
	httpClient *http.Client
}

func NewCoingeckoSource(baseURL string, timeout time.Duration) *CoingeckoSource {
	if baseURL == "" {
		baseURL = DefaultCoingeckoURL
	}
	return &CoingeckoSource{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BulkLookup requests all ids in a single call. Ids the response leaves out,
// or returns without a usd field, are omitted from the result.
func (s *CoingeckoSource) BulkLookup(ctx context.Context, assetIDs []string) (map[string]float64, error) {
	want := requested(assetIDs)
	if len(want) == 0 {
		return map[string]float64{}, nil
	}

	ids := make([]string, 0, len(want))
	for id := range want {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	params := url.Values{}
	params.Set("ids", strings.Join(ids, ","))
	params.Set("vs_currencies", "usd")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/simple/price?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "could not build coingecko request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "could not fetch coingecko prices")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Errorf("coingecko responded with status %d", resp.StatusCode)
	}

	var body map[string]map[string]json.Number
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(err, "could not parse coingecko prices")
	}

	prices := make(map[string]float64, len(body))
	for id, quotes := range body {
		if _, ok := want[id]; !ok {
			continue
		}
		usd, ok := quotes["usd"]
		if !ok {
			log.Warnf("No USD price found for %s in coingecko response", id)
			continue
		}
		p, err := usd.Float64()
		if err != nil {
			return nil, errors.Wrapf(err, "could not parse coingecko price for %s", id)
		}
		prices[id] = p
	}

	if log.IsLevelEnabled(log.DebugLevel) {
		log.Debugf("coingecko quotes: %s", spew.Sdump(prices))
	}
	return prices, nil
}

// Resolve maps a symbol such as BTC to its CoinGecko id
func (s *CoingeckoSource) Resolve(_ context.Context, symbol string) (types.Asset, error) {
	key := strings.ToLower(strings.TrimSpace(symbol))
	id, ok := coingeckoIDs[key]
	if !ok {
		return types.Asset{}, errors.Wrapf(ErrUnknownSymbol, "%s", symbol)
	}
	return assetFromSymbol(id, key, id), nil
}

func (s *CoingeckoSource) String() string {
	return fmt.Sprintf("coingecko(%s)", s.baseURL)
}
