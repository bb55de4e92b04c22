package alert

import (
	"crypto-alert-bot/internal/types"
	"github.com/pkg/errors"
	"sort"
	"sync"
)

// DefaultMaxAlertsPerUser is used when the store is created without a positive limit
const DefaultMaxAlertsPerUser = 10

var (
	ErrDuplicateAlert = errors.New("alert already exists")
	ErrLimitExceeded  = errors.New("alert limit reached")
)

// Store keeps every user's alerts in memory. A user without alerts has no entry.
type Store struct {
	mu         sync.Mutex
	alerts     map[int64][]types.Alert
	maxPerUser int
}

func NewStore(maxPerUser int) *Store {
	if maxPerUser <= 0 {
		maxPerUser = DefaultMaxAlertsPerUser
	}
	return &Store{
		alerts:     make(map[int64][]types.Alert),
		maxPerUser: maxPerUser,
	}
}

// MaxPerUser returns the configured per-user cap
func (s *Store) MaxPerUser() int {
	return s.maxPerUser
}

// Add appends an alert to the user's set
func (s *Store) Add(user int64, a types.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.alerts[user]
	for _, e := range existing {
		if e.SameTarget(a) {
			return ErrDuplicateAlert
		}
	}
	if len(existing) >= s.maxPerUser {
		return ErrLimitExceeded
	}

	s.alerts[user] = append(existing, a)
	return nil
}

// List returns a copy of the user's alerts in insertion order
func (s *Store) List(user int64) []types.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.alerts[user]
	out := make([]types.Alert, len(existing))
	copy(out, existing)
	return out
}

// RemoveMatching drops every alert of the user for which match returns true
// and reports how many were removed.
func (s *Store) RemoveMatching(user int64, match func(types.Alert) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.alerts[user]
	if !ok {
		return 0
	}

	kept := make([]types.Alert, 0, len(existing))
	for _, a := range existing {
		if !match(a) {
			kept = append(kept, a)
		}
	}

	removed := len(existing) - len(kept)
	if len(kept) == 0 {
		delete(s.alerts, user)
	} else {
		s.alerts[user] = kept
	}
	return removed
}

// AllUsers returns the users that currently hold at least one alert, sorted
func (s *Store) AllUsers() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]int64, 0, len(s.alerts))
	for user := range s.alerts {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })
	return users
}

// Count returns the number of alerts across all users
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	for _, a := range s.alerts {
		n += len(a)
	}
	return n
}
