// Package state holds the client-side slices: observable containers whose async
// operations move through pending, fulfilled and rejected.
package state

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"storefront/internal/httpclient"
)

var ErrNotFound = errors.New("not found in local state")

// keyList is used by every operation that replaces a whole collection.
const keyList = "list"

// Lifecycle is the loading/error pair every slice carries.
type Lifecycle struct {
	IsLoading bool   `json:"isLoading"`
	Error     string `json:"error"`
}

// Snapshot is an immutable view of a slice. Version increases with every transition.
type Snapshot[S any] struct {
	Lifecycle
	Data    S      `json:"data"`
	Version uint64 `json:"version"`
}

// token identifies one dispatched operation. An empty key never goes stale except
// across a reset.
type token struct {
	key   string
	epoch uint64
	seq   uint64
}

type slice[S any] struct {
	name    string
	initial S

	mu        sync.Mutex
	lifecycle Lifecycle
	data      S
	version   uint64
	epoch     uint64
	latest    map[string]uint64
	subs      map[int]func(Snapshot[S])
	nextSub   int
}

func newSlice[S any](name string, initial S) *slice[S] {
	return &slice[S]{
		name:    name,
		initial: initial,
		data:    initial,
		latest:  map[string]uint64{},
		subs:    map[int]func(Snapshot[S]){},
	}
}

func (s *slice[S]) Snapshot() Snapshot[S] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *slice[S]) snapshotLocked() Snapshot[S] {
	return Snapshot[S]{Lifecycle: s.lifecycle, Data: s.data, Version: s.version}
}

// Subscribe calls fn after every transition until unsubscribe is called. fn runs
// outside the slice lock.
func (s *slice[S]) Subscribe(fn func(Snapshot[S])) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// transition applies fn atomically and notifies subscribers.
func (s *slice[S]) transition(fn func(lc *Lifecycle, data *S)) {
	s.mu.Lock()
	fn(&s.lifecycle, &s.data)
	s.version++
	snap := s.snapshotLocked()
	subs := make([]func(Snapshot[S]), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub(snap)
	}
}

// begin issues a token for key and applies the pending phase.
func (s *slice[S]) begin(key string) token {
	var t token
	s.transition(func(lc *Lifecycle, _ *S) {
		t = token{key: key, epoch: s.epoch}
		if key != "" {
			s.latest[key]++
			t.seq = s.latest[key]
		}
		lc.IsLoading = true
		lc.Error = ""
	})
	return t
}

func (s *slice[S]) currentLocked(t token) bool {
	if t.epoch != s.epoch {
		return false
	}
	return t.key == "" || s.latest[t.key] == t.seq
}

// settle applies the fulfilled or rejected phase when t is still the latest token
// for its key. It reports whether the result was applied.
func (s *slice[S]) settle(t token, err error, reduce func(data *S)) bool {
	applied := false
	s.transition(func(lc *Lifecycle, data *S) {
		if !s.currentLocked(t) {
			return
		}
		applied = true
		lc.IsLoading = false
		if err != nil {
			lc.Error = httpclient.Message(err)
			return
		}
		lc.Error = ""
		if reduce != nil {
			reduce(data)
		}
	})
	if !applied {
		slog.Debug("stale result ignored", "slice", s.name, "op", t.key)
	}
	return applied
}

// reset restores the initial data and makes every in-flight result stale.
func (s *slice[S]) reset() {
	s.transition(func(lc *Lifecycle, data *S) {
		s.epoch++
		*lc = Lifecycle{}
		*data = s.initial
	})
}

// run dispatches one async operation: pending, the call, then fulfilled or rejected.
// reduce runs only on a current, successful result and must copy rather than mutate
// shared backing arrays.
func run[S, T any](ctx context.Context, s *slice[S], key string, call func(context.Context) (T, error), reduce func(data *S, result T)) (T, error) {
	t := s.begin(key)
	result, err := call(ctx)
	s.settle(t, err, func(data *S) {
		if reduce != nil {
			reduce(data, result)
		}
	})
	return result, err
}
