package commands

import (
	"context"
	"crypto-alert-bot/internal/alert"
	"crypto-alert-bot/internal/types"
	"regexp"
	"time"
)

// Resolver maps a user supplied symbol to the asset known by the price source
type Resolver interface {
	Resolve(ctx context.Context, symbol string) (types.Asset, error)
}

// Handler implements the chat commands on top of the alert store and price source
type Handler struct {
	store    *alert.Store
	resolver Resolver
	source   alert.PriceSource
	timeout  time.Duration
}

func NewHandler(store *alert.Store, resolver Resolver, source alert.PriceSource, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Handler{
		store:    store,
		resolver: resolver,
		source:   source,
		timeout:  timeout,
	}
}

var argumentsRe = regexp.MustCompile(`^(\S+)\s*(.+)?$`)

// ParseArguments splits "btc 70000" into the first word and the rest
func ParseArguments(args string) (string, string) {
	matches := argumentsRe.FindStringSubmatch(args)

	if len(matches) >= 2 {
		ticker := matches[1]
		target := ""
		if len(matches) == 3 {
			target = matches[2]
		}
		return ticker, target
	}
	return "", ""
}
