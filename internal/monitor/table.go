package monitor

import (
	"sort"
	"sync"
	"time"

	"aircheck/internal/catalog"
)

// Status is the observed health of one endpoint.
type Status string

const (
	StatusOnline   Status = "online"
	StatusOffline  Status = "offline"
	StatusUntested Status = "untested"
)

// Entry is one station's latest probe outcome.
type Entry struct {
	Station   catalog.Station
	Status    Status
	Latency   time.Duration
	CheckedAt time.Time
}

// StatusTable is the shared endpoint health map. The monitor loop is the only
// writer during normal operation; readers take a snapshot under RLock.
type StatusTable struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewStatusTable returns an empty table.
func NewStatusTable() *StatusTable {
	return &StatusTable{entries: make(map[string]Entry)}
}

// Get returns the entry for a station name. Stations never probed report
// StatusUntested, not StatusOffline.
func (t *StatusTable) Get(name string) Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if entry, ok := t.entries[name]; ok {
		return entry
	}
	return Entry{Status: StatusUntested}
}

// Set stores a station's latest probe outcome.
func (t *StatusTable) Set(entry Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[entry.Station.Name] = entry
}

// All returns every entry sorted by station name.
func (t *StatusTable) All() []Entry {
	t.mu.RLock()
	entries := make([]Entry, 0, len(t.entries))
	for _, entry := range t.entries {
		entries = append(entries, entry)
	}
	t.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Station.Name < entries[j].Station.Name
	})
	return entries
}

// Len returns the number of stations with a recorded probe outcome.
func (t *StatusTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
