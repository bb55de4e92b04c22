package alert

import (
	"bytes"
	"context"
	"crypto-alert-bot/internal/metrics"
	"crypto-alert-bot/internal/types"
	"crypto-alert-bot/lib/helpers"
	"crypto-alert-bot/lib/translation"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"runtime"
	"sort"
	"sync"
	"time"
)

var ErrLookupFailed = errors.New("price lookup failed")

// PriceSource returns current USD prices for a set of asset identifiers.
// Identifiers missing from the result are not an error.
type PriceSource interface {
	BulkLookup(ctx context.Context, assetIDs []string) (map[string]float64, error)
}

// Notifier delivers a text message to a user
type Notifier interface {
	Notify(ctx context.Context, user int64, text string) error
}

// CheckerConfig timing of the alert check cycle
type CheckerConfig struct {
	Interval      time.Duration
	FirstDelay    time.Duration
	LookupTimeout time.Duration
	NotifyTimeout time.Duration
}

// Report summarises one check cycle
type Report struct {
	Users                int
	Assets               int
	Triggered            int
	Notified             int
	NotificationFailures int
	Skipped              int
	Removed              int
}

// Checker compares stored alerts with live prices and notifies users
type Checker struct {
	store    *Store
	source   PriceSource
	notifier Notifier
	config   CheckerConfig

	// alertProcessingMutex ensures only one cycle runs at a time
	alertProcessingMutex sync.Mutex
}

func NewChecker(store *Store, source PriceSource, notifier Notifier, c CheckerConfig) *Checker {
	if c.Interval <= 0 {
		c.Interval = time.Minute
	}
	if c.FirstDelay < 0 {
		c.FirstDelay = 0
	}
	if c.LookupTimeout <= 0 {
		c.LookupTimeout = 15 * time.Second
	}
	if c.NotifyTimeout <= 0 {
		c.NotifyTimeout = 10 * time.Second
	}

	return &Checker{
		store:    store,
		source:   source,
		notifier: notifier,
		config:   c,
	}
}

type triggeredAlert struct {
	alert types.Alert
	price float64
}

// CheckAlerts runs a single cycle. A failed lookup aborts the cycle before
// anything is notified or removed.
func (c *Checker) CheckAlerts(ctx context.Context) (Report, error) {
	c.alertProcessingMutex.Lock()
	defer c.alertProcessingMutex.Unlock()

	var report Report

	users := c.store.AllUsers()
	if len(users) == 0 {
		log.Debug("No active alerts, skipping check")
		return report, nil
	}

	start := time.Now()
	metrics.Alerts.Cycles.Inc()
	defer func() {
		metrics.Alerts.CycleDuration.Observe(time.Since(start).Seconds())
		metrics.Alerts.Active.Set(float64(c.store.Count()))
	}()

	snapshot := make(map[int64][]types.Alert, len(users))
	assetSet := make(map[string]struct{})
	for _, user := range users {
		alerts := c.store.List(user)
		if len(alerts) == 0 {
			continue
		}
		snapshot[user] = alerts
		for _, a := range alerts {
			assetSet[a.AssetID] = struct{}{}
		}
	}
	report.Users = len(snapshot)
	if len(assetSet) == 0 {
		return report, nil
	}

	assetIDs := make([]string, 0, len(assetSet))
	for id := range assetSet {
		assetIDs = append(assetIDs, id)
	}
	sort.Strings(assetIDs)
	report.Assets = len(assetIDs)

	log.Infof("Checking %d alerts of %d users across %d assets", countAlerts(snapshot), report.Users, report.Assets)

	lookupCtx, cancel := context.WithTimeout(ctx, c.config.LookupTimeout)
	prices, err := c.source.BulkLookup(lookupCtx, assetIDs)
	cancel()
	if err != nil {
		metrics.Alerts.LookupFailures.Inc()
		err = errors.Wrapf(ErrLookupFailed, "%d assets: %v", len(assetIDs), err)
		log.Errorf("Alert check aborted: %v", err)
		return report, err
	}

	triggered := make(map[int64][]triggeredAlert)
	for _, user := range users {
		for _, a := range snapshot[user] {
			current, ok := prices[a.AssetID]
			if !ok {
				log.Warnf("No price for %s in this cycle, alert %s of user %d left for the next one", a.AssetID, a.ID, user)
				report.Skipped++
				continue
			}

			log.Debugf("Checking alert %s | User: %d | Asset: %s | Target: %.8f | Current: %.8f",
				a.ID, user, a.AssetID, a.Target, current)

			if current >= a.Target {
				triggered[user] = append(triggered[user], triggeredAlert{alert: a, price: current})
			}
		}
	}
	metrics.Alerts.Skipped.Add(float64(report.Skipped))

	for _, user := range users {
		for _, t := range triggered[user] {
			report.Triggered++
			metrics.Alerts.Triggered.Inc()

			if err := c.notify(ctx, user, t); err != nil {
				// the alert is removed anyway, a recipient that blocked the bot would fail forever
				report.NotificationFailures++
				metrics.Alerts.NotificationFailures.Inc()
				log.Errorf("Failed to send price alert notification to user %d for %s: %v", user, t.alert.Symbol, err)
				continue
			}
			report.Notified++
			log.Infof("Price alert notification sent to user %d for %s at %.8f", user, t.alert.Symbol, t.alert.Target)
		}
	}

	for user, alerts := range triggered {
		ids := make(map[uuid.UUID]struct{}, len(alerts))
		for _, t := range alerts {
			ids[t.alert.ID] = struct{}{}
		}
		removed := c.store.RemoveMatching(user, func(a types.Alert) bool {
			_, ok := ids[a.ID]
			return ok
		})
		report.Removed += removed
		log.Infof("Removed %d triggered alerts for user %d", removed, user)
	}

	log.Infof("Alert check completed: %d triggered, %d notified, %d skipped", report.Triggered, report.Notified, report.Skipped)
	return report, nil
}

func (c *Checker) notify(ctx context.Context, user int64, t triggeredAlert) (err error) {
	notifyCtx, cancel := context.WithTimeout(ctx, c.config.NotifyTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("notifier panicked: %v", r)
		}
	}()

	return c.notifier.Notify(notifyCtx, user, NotificationText(t.alert, t.price))
}

// NotificationText is the MarkdownV2 message sent when an alert triggers
func NotificationText(a types.Alert, current float64) string {
	return translation.Translate(
		"🚨 *Price Alert Triggered*\n\n*%s* has reached your target of *$%s*\nCurrent Price: *$%s*",
		helpers.EscapeMarkdownV2(a.Symbol),
		helpers.FormatPriceUS(a.Target, true),
		helpers.FormatPriceUS(current, true),
	)
}

// Start runs CheckAlerts after the configured first delay and then on every
// interval tick until ctx is cancelled. Cycles never overlap.
func (c *Checker) Start(ctx context.Context) {
	go func() {
		timer := time.NewTimer(c.config.FirstDelay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		ticker := time.NewTicker(c.config.Interval)
		defer ticker.Stop()

		for {
			c.runCycle(ctx)

			select {
			case <-ctx.Done():
				log.Info("Alert service stopped.")
				return
			case <-ticker.C:
			}
		}
	}()
	log.Infof("Alert service started, checking every %s", c.config.Interval)
}

func (c *Checker) runCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			stackBuf := make([]byte, 1024)
			stackSize := runtime.Stack(stackBuf, false)
			stackTrace := bytes.TrimRight(stackBuf[:stackSize], "\x00")
			log.Errorf("Recovered from panic in alert checker: %v\nStack trace: %s", r, stackTrace)
		}
	}()

	// the error is already logged and the next tick retries
	_, _ = c.CheckAlerts(ctx)
}

func countAlerts(snapshot map[int64][]types.Alert) int {
	var n int
	for _, alerts := range snapshot {
		n += len(alerts)
	}
	return n
}
