package reconcile

import (
	"time"

	"point-record/core/point"
)

// NoUnits is the units string of an identifier that never had units set.
const NoUnits = ""

// lastRequest memoizes the most recent backing-store query: inside its range the
// store is known to hold nothing beyond what was merged into the buffer.
// A request with set == false is the empty marker and contains nothing.
type lastRequest struct {
	id  string
	rng point.TimeRange
	set bool
}

func memoRequest(id string, r point.TimeRange) lastRequest {
	return lastRequest{id: id, rng: r, set: true}
}

func emptyRequest(id string) lastRequest {
	return lastRequest{id: id}
}

func (q lastRequest) contains(id string, t int64) bool {
	return q.set && q.id == id && q.rng.Contains(t)
}

func (q lastRequest) containsRange(id string, r point.TimeRange) bool {
	return q.set && q.id == id && q.rng.ContainsRange(r)
}

func (q *lastRequest) clear() {
	*q = lastRequest{}
}

// identifierCache holds the adapter's identifier/units listing for a short TTL
// to bound repeated metadata queries.
type identifierCache struct {
	ttl       time.Duration
	entries   map[string]string
	refreshed time.Time
	loaded    bool
}

func newIdentifierCache(ttl time.Duration) *identifierCache {
	return &identifierCache{ttl: ttl, entries: make(map[string]string)}
}

// IsExpired returns true if the listing must be fetched again.
func (c *identifierCache) IsExpired(now time.Time) bool {
	return !c.loaded || now.Sub(c.refreshed) >= c.ttl
}

func (c *identifierCache) store(entries map[string]string, now time.Time) {
	c.entries = entries
	if c.entries == nil {
		c.entries = make(map[string]string)
	}
	c.refreshed = now
	c.loaded = true
}

func (c *identifierCache) set(id, units string) {
	c.entries[id] = units
}

func (c *identifierCache) forget(id string) {
	delete(c.entries, id)
}

func (c *identifierCache) invalidate() {
	c.loaded = false
}

// match reports whether name is listed, whether its units equal units, and the
// units currently recorded for it. Without a units column any listed name matches.
func (c *identifierCache) match(name, units string, unitsColumn bool) (exists, unitsMatch bool, existing string) {
	existing, exists = c.entries[name]
	if !exists {
		return false, false, NoUnits
	}
	if !unitsColumn {
		return true, true, existing
	}
	return true, existing == units, existing
}
