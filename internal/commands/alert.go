package commands

import (
	"context"
	"crypto-alert-bot/internal/alert"
	"crypto-alert-bot/internal/metrics"
	"crypto-alert-bot/internal/price"
	"crypto-alert-bot/internal/types"
	"crypto-alert-bot/lib/helpers"
	"crypto-alert-bot/lib/translation"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"math"
	"strconv"
	"strings"
)

// CommandAlert handles "/alert SYMBOL TARGET" and returns the reply text
func (h *Handler) CommandAlert(ctx context.Context, user int64, argument string) string {
	log.Debugf("processing command /alert with argument :%s", argument)

	symbol, rawTarget := ParseArguments(strings.TrimSpace(argument))
	if symbol == "" || rawTarget == "" || len(strings.Fields(rawTarget)) != 1 {
		return helpers.EscapeMarkdownV2(translation.Translate("Usage: /alert <SYMBOL> <TARGET_PRICE>\nExample: /alert BTC 70000"))
	}

	target, err := parseTarget(rawTarget)
	if err != nil {
		return helpers.EscapeMarkdownV2(translation.Translate("Invalid target price '%s'. Please enter a positive number.", rawTarget))
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	asset, err := h.resolver.Resolve(ctx, symbol)
	if err != nil {
		if !errors.Is(err, price.ErrUnknownSymbol) {
			log.Error(errors.Wrap(err, "command /alert"))
		}
		return helpers.EscapeMarkdownV2(translation.Translate("Sorry, I don't recognize the symbol '%s'.", strings.ToUpper(symbol)))
	}

	display := asset.Symbol
	if display == "" {
		display = strings.ToUpper(symbol)
	}

	formattedTarget := helpers.FormatPriceUS(target, false)
	err = h.store.Add(user, types.NewAlert(asset.ID, display, target))
	switch {
	case errors.Is(err, alert.ErrDuplicateAlert):
		return helpers.EscapeMarkdownV2(translation.Translate("You already have an alert set for %s at $%s.", display, formattedTarget))
	case errors.Is(err, alert.ErrLimitExceeded):
		return helpers.EscapeMarkdownV2(translation.Translate("You have reached the maximum limit of %d alerts. Please wait for some of them to trigger.", h.store.MaxPerUser()))
	case err != nil:
		log.Errorf("Failed to save alert for user %d: %v", user, err)
		return helpers.EscapeMarkdownV2(translation.Translate("Failed to save alert. Please try again later."))
	}

	metrics.Alerts.Active.Set(float64(h.store.Count()))
	log.Infof("User %d set alert: %s (%s) at %s", user, display, asset.ID, formattedTarget)
	return helpers.EscapeMarkdownV2(translation.Translate("✅ Alert set! I will notify you when %s reaches $%s.", display, formattedTarget))
}

// CommandAlertList lists the user's active alerts in creation order
func (h *Handler) CommandAlertList(user int64) string {
	alerts := h.store.List(user)
	if len(alerts) == 0 {
		return helpers.EscapeMarkdownV2(translation.Translate("You have no active alerts set."))
	}

	var alertList strings.Builder
	alertList.WriteString(translation.Translate("Your active alerts:\n"))
	for i, a := range alerts {
		alertList.WriteString(translation.Translate("%d. %s at $%s (set %s)\n",
			i+1, a.Symbol, helpers.FormatPriceUS(a.Target, false), helpers.FormatAge(a.CreatedAt, false)))
	}

	return helpers.EscapeMarkdownV2(alertList.String())
}

func parseTarget(raw string) (float64, error) {
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(raw))
	target, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid target %q", raw)
	}
	if target <= 0 || math.IsInf(target, 0) || math.IsNaN(target) {
		return 0, errors.Errorf("target must be positive, got %q", raw)
	}
	return target, nil
}
