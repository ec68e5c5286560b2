// Package cache is the keyed response cache for upstream API data. Entries
// are immutable snapshots tagged with a fetch timestamp and a TTL class;
// logical expiry is checked against the snapshot itself so an expired entry
// can still be served as a stale fallback when the upstream is down.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// TTL classes, one per entity type. Anything else falls back to ClassDefault.
const (
	ClassCommittee = "committee"
	ClassHearing   = "hearing"
	ClassBill      = "bill"
	ClassMember    = "member"
	ClassDefault   = "default"

	// ClassHealth holds the health monitor's own short-lived report.
	ClassHealth = "health"
)

// staleRetentionFactor keeps physically retained entries around past their
// logical TTL so they can back a degraded-result fallback.
const staleRetentionFactor = 3

// Backend is a raw byte store. Implementations must be safe for concurrent
// use; retention is a physical upper bound after which the backend may drop
// the entry.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, retention time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Ping(ctx context.Context) error
}

// Entry is the stored snapshot wrapper.
type Entry struct {
	Payload   json.RawMessage `json:"payload"`
	FetchedAt time.Time       `json:"fetched_at"`
	Class     string          `json:"class"`
	TTL       time.Duration   `json:"ttl"`
}

// Expired reports whether the entry's logical TTL has elapsed at now.
func (e *Entry) Expired(now time.Time) bool {
	return now.After(e.FetchedAt.Add(e.TTL))
}

// Store maps TTL classes onto a Backend.
type Store struct {
	backend Backend
	ttls    map[string]time.Duration
	now     func() time.Time
}

// StoreOption customizes a Store.
type StoreOption func(*Store)

// WithClock injects a time source for tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// DefaultTTLs returns the standard per-class durations.
func DefaultTTLs() map[string]time.Duration {
	return map[string]time.Duration{
		ClassCommittee: 24 * time.Hour,
		ClassHearing:   6 * time.Hour,
		ClassBill:      2 * time.Hour,
		ClassMember:    7 * 24 * time.Hour,
		ClassDefault:   time.Hour,
		ClassHealth:    30 * time.Second,
	}
}

// NewStore builds a Store. A nil ttls map gets the defaults; a map missing
// ClassDefault gets one hour.
func NewStore(backend Backend, ttls map[string]time.Duration, opts ...StoreOption) *Store {
	if ttls == nil {
		ttls = DefaultTTLs()
	}
	if _, ok := ttls[ClassDefault]; !ok {
		ttls[ClassDefault] = time.Hour
	}
	s := &Store{
		backend: backend,
		ttls:    ttls,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTLFor returns the duration for a class, defaulting unknown classes.
func (s *Store) TTLFor(class string) time.Duration {
	if ttl, ok := s.ttls[class]; ok {
		return ttl
	}
	return s.ttls[ClassDefault]
}

// Key derives the canonical request signature: endpoint plus sorted query
// parameters, hashed so identical logical requests collide regardless of
// parameter order. Credential parameters must never be part of the key.
func Key(endpoint string, params map[string]string) string {
	parts := make([]string, 0, len(params)+1)
	parts = append(parts, endpoint)

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		parts = append(parts, name+"="+params[name])
	}

	sum := md5.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached payload for key, treating logically expired
// entries as misses. Expired entries are left in place for GetStale.
func (s *Store) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	entry, ok, err := s.load(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	if entry.Expired(s.now()) {
		return nil, false, nil
	}
	return entry.Payload, true, nil
}

// GetStale returns the cached payload even when its logical TTL has
// elapsed, together with the fetch timestamp so callers can report how old
// the fallback is.
func (s *Store) GetStale(ctx context.Context, key string) (json.RawMessage, time.Time, bool, error) {
	entry, ok, err := s.load(ctx, key)
	if err != nil || !ok {
		return nil, time.Time{}, false, err
	}
	return entry.Payload, entry.FetchedAt, true, nil
}

func (s *Store) load(ctx context.Context, key string) (*Entry, bool, error) {
	data, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		// A corrupt entry is treated as a miss, not a failure.
		return nil, false, nil
	}
	return &entry, true, nil
}

// Set stores an immutable snapshot under the class TTL. The physical
// retention exceeds the logical TTL so the entry can serve as a stale
// fallback.
func (s *Store) Set(ctx context.Context, key string, payload json.RawMessage, class string) error {
	ttl := s.TTLFor(class)
	entry := Entry{
		Payload:   payload,
		FetchedAt: s.now(),
		Class:     class,
		TTL:       ttl,
	}
	data, err := json.Marshal(&entry)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := s.backend.Set(ctx, key, data, ttl*staleRetentionFactor); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Invalidate removes an entry.
func (s *Store) Invalidate(ctx context.Context, key string) error {
	if err := s.backend.Delete(ctx, key); err != nil {
		return fmt.Errorf("cache delete %s: %w", key, err)
	}
	return nil
}

// Clear removes everything.
func (s *Store) Clear(ctx context.Context) error {
	return s.backend.Clear(ctx)
}

// Ping verifies the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}
