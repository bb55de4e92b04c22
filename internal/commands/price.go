package commands

import (
	"context"
	"crypto-alert-bot/internal/price"
	"crypto-alert-bot/lib/helpers"
	"crypto-alert-bot/lib/translation"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"strings"
)

// CommandPrice handles "/p SYMBOL". An error means the symbol could not be resolved.
func (h *Handler) CommandPrice(ctx context.Context, argument string) (string, error) {
	log.Debugf("processing command /p with argument :%s", argument)

	symbol, _ := ParseArguments(strings.TrimSpace(argument))
	if symbol == "" {
		return helpers.EscapeMarkdownV2(translation.Translate("Please provide a coin symbol. Usage: /p <SYMBOL> (e.g., /p BTC)")), nil
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	asset, err := h.resolver.Resolve(ctx, symbol)
	if err != nil {
		return "", errors.Wrap(err, "command /p")
	}

	prices, err := h.source.BulkLookup(ctx, []string{asset.ID})
	if err != nil {
		log.Error(errors.Wrap(err, "command /p"))
	}
	current, ok := prices[asset.ID]
	if err != nil || !ok {
		return helpers.EscapeMarkdownV2(translation.Translate("Sorry, I couldn't fetch the price for %s (%s) right now. Please try again later.", asset.Symbol, asset.ID)), nil
	}

	return helpers.EscapeMarkdownV2(translation.Translate("The current price of %s (%s) is $%s", asset.Symbol, asset.ID, helpers.FormatPriceUS(current, false))), nil
}

// IsUnknownSymbol reports whether err comes from an unresolvable symbol
func IsUnknownSymbol(err error) bool {
	return errors.Is(err, price.ErrUnknownSymbol)
}
