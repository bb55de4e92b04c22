package types

import (
	"time"

	"github.com/google/uuid"
)

// Alert is a single price target registered by a user. It is never modified
// after creation.
type Alert struct {
	ID        uuid.UUID `json:"id"`
	AssetID   string    `json:"asset_id"`
	Symbol    string    `json:"symbol"`
	Target    float64   `json:"target"`
	CreatedAt time.Time `json:"created_at"`
}

// NewAlert creates an alert with a fresh identifier
func NewAlert(assetID, symbol string, target float64) Alert {
	return Alert{
		ID:        uuid.New(),
		AssetID:   assetID,
		Symbol:    symbol,
		Target:    target,
		CreatedAt: time.Now(),
	}
}

// SameTarget reports whether both alerts watch the same asset at the same price
func (a Alert) SameTarget(o Alert) bool {
	return a.AssetID == o.AssetID && a.Target == o.Target
}

// Asset is a tradable asset as known by the price source
type Asset struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}
