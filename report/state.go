package report

import (
	"time"

	"github.com/GameboyEsc95/VMAS/cache"
)

// StateKey is the cache key holding the last trigger firing.
const StateKey = "trigger"

// State is the persisted record of the last firing. Date disambiguates Day
// across months.
type State struct {
	Day     int       `json:"day"`
	Date    string    `json:"date"`
	Outcome string    `json:"outcome"`
	FiredAt time.Time `json:"fired_at"`
}

// StateStore persists trigger State between process runs.
type StateStore interface {
	Load() (*State, error)
	Save(State) error
}

// CacheState keeps trigger state in a cache.Store.
type CacheState struct {
	store *cache.Store
}

// NewCacheState returns a StateStore backed by store.
func NewCacheState(store *cache.Store) *CacheState {
	return &CacheState{store: store}
}

// Load returns the saved state, or nil when none exists.
func (c *CacheState) Load() (*State, error) {
	return cache.GetTyped[State](c.store, StateKey)
}

// Save replaces the saved state.
func (c *CacheState) Save(s State) error {
	return cache.SetTyped(c.store, StateKey, &s)
}
