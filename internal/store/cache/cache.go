// Package cache keeps a time-boxed, observable copy of every entity kind's
// status view. Reads go through to the repository on a miss; the transition
// executor pushes committed entities in so readers never see a stale status
// written by this process.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/plano/internal/domain"
	"github.com/gosuda/plano/internal/lifecycle"
)

const (
	DefaultTTL  = 30 * time.Second
	DefaultSize = 16
)

// Listener is called with every entity pushed into the store.
type Listener func(t *domain.Tracked)

type Store struct {
	repos map[domain.Kind]domain.TrackedRepository
	lists *expirable.LRU[domain.Kind, []*domain.Tracked]

	// listMu serializes writers of lists. gen counts writes per kind so a
	// repository load that raced a Put or Invalidate is not cached.
	listMu sync.Mutex
	gen    map[domain.Kind]uint64

	mu        sync.Mutex
	listeners map[int]Listener
	nextID    int
}

// New creates a store over one repository per kind. Non-positive size or ttl
// fall back to the defaults.
func New(repos map[domain.Kind]domain.TrackedRepository, size int, ttl time.Duration) *Store {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Store{
		repos:     repos,
		lists:     expirable.NewLRU[domain.Kind, []*domain.Tracked](size, nil, ttl),
		gen:       make(map[domain.Kind]uint64),
		listeners: make(map[int]Listener),
	}
}

// List returns every entity of kind, loading it from the repository when the
// cached copy is missing or expired. The returned slice is the caller's.
func (s *Store) List(ctx context.Context, kind domain.Kind) ([]*domain.Tracked, error) {
	if cached, ok := s.lists.Get(kind); ok {
		return slices.Clone(cached), nil
	}

	repo, ok := s.repos[kind]
	if !ok {
		return nil, fmt.Errorf("cache.List: kind %q: %w", kind, domain.ErrUnknownKind)
	}

	s.listMu.Lock()
	loadedAt := s.gen[kind]
	s.listMu.Unlock()

	fresh, err := repo.ListTracked(ctx)
	if err != nil {
		return nil, fmt.Errorf("cache.List: %w", err)
	}

	s.listMu.Lock()
	if s.gen[kind] == loadedAt {
		s.lists.Add(kind, fresh)
	}
	s.listMu.Unlock()

	return slices.Clone(fresh), nil
}

// Get returns one entity, from the cached list when present.
func (s *Store) Get(ctx context.Context, kind domain.Kind, id uuid.UUID) (*domain.Tracked, error) {
	if cached, ok := s.lists.Get(kind); ok {
		if i := slices.IndexFunc(cached, func(t *domain.Tracked) bool { return t.ID == id }); i >= 0 {
			return cached[i], nil
		}
	}

	repo, ok := s.repos[kind]
	if !ok {
		return nil, fmt.Errorf("cache.Get: kind %q: %w", kind, domain.ErrUnknownKind)
	}

	t, err := repo.GetTracked(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("cache.Get: %w", err)
	}
	return t, nil
}

// Put replaces t in its kind's cached list and notifies listeners. The
// cached slice is copied, never modified in place, so lists already handed
// out stay consistent.
func (s *Store) Put(t *domain.Tracked) {
	s.listMu.Lock()
	s.gen[t.Kind]++
	if cached, ok := s.lists.Get(t.Kind); ok {
		next := slices.Clone(cached)
		if i := slices.IndexFunc(next, func(c *domain.Tracked) bool { return c.ID == t.ID }); i >= 0 {
			next[i] = t
		} else {
			next = append(next, t)
		}
		s.lists.Add(t.Kind, next)
	}
	s.listMu.Unlock()

	s.mu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(t)
	}
}

// Invalidate drops the cached list of kind, typically after another replica
// announced a change.
func (s *Store) Invalidate(kind domain.Kind) {
	s.listMu.Lock()
	defer s.listMu.Unlock()

	s.gen[kind]++
	s.lists.Remove(kind)
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Follow invalidates cached lists as status_changed events arrive on
// messages, so replicas sharing the bus converge within one event. It
// returns when messages is closed or ctx is done.
func (s *Store) Follow(ctx context.Context, messages <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			var ev lifecycle.StatusChanged
			if err := json.Unmarshal(msg, &ev); err != nil {
				log.Warn().Err(err).Msg("cache: undecodable status event")
				continue
			}
			if _, known := s.repos[ev.Kind]; !known {
				continue
			}
			s.Invalidate(ev.Kind)
		}
	}
}
