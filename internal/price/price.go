package price

import (
	"crypto-alert-bot/internal/types"
	"github.com/pkg/errors"
	"strings"
)

var ErrUnknownSymbol = errors.New("unknown symbol")

// requested turns the asset id slice into a lookup set, dropping duplicates and blanks
func requested(assetIDs []string) map[string]struct{} {
	set := make(map[string]struct{}, len(assetIDs))
	for _, id := range assetIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		set[id] = struct{}{}
	}
	return set
}

func assetFromSymbol(id, symbol, name string) types.Asset {
	return types.Asset{
		ID:     id,
		Symbol: strings.ToUpper(symbol),
		Name:   name,
	}
}
