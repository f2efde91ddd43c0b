// Package store implements the contact entity store: the single writer of a
// types.State that caches a filtered view of the remote collection, the
// contact under inspection, and one shared loading/error status.
//
// Actions may run concurrently on different goroutines. Every state
// assignment happens under one mutex; network calls happen outside it.
// Request generations decide which in-flight results are still allowed to
// land:
//
//   - a collection fetch applies only if no newer fetch started after it;
//   - a detail fetch applies only if no newer detail fetch, ClearDetail or
//     ClearStore happened after it;
//   - the status is loading while any action of the session is in flight and
//     returns to idle when the last one succeeds;
//   - a failure sets the error status unless a newer action of the same kind
//     already replaced its result;
//   - nothing started before ClearStore applies after it.
//
// Create, update and delete results are merged locally instead of
// refetching, so the cache is eventually consistent with the server.
package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// Fallback messages used when the server gives no message of its own.
const (
	MsgFetchCollection = "Failed to fetch contacts"
	MsgFetchDetail     = "Failed to fetch contact"
	MsgCreate          = "Failed to create contact"
	MsgUpdate          = "Failed to update contact"
	MsgDelete          = "Failed to delete contact"
)

// Store owns the contact state. The zero value is not usable; call New.
type Store struct {
	remote types.ContactCollection
	logger *slog.Logger

	initialFilter types.FilterCriteria

	mu       sync.Mutex
	state    types.State
	gen      generations
	inflight int

	subsMu  sync.Mutex
	subs    map[uint64]func(types.State)
	nextSub uint64
}

// generations are the request-generation counters. An action keeps a copy
// taken when it started and compares it with the live counters when its
// response arrives.
type generations struct {
	session    uint64
	collection uint64
	detail     uint64
}

// kind groups actions whose results replace each other.
type kind int

const (
	kindCollection kind = iota
	kindDetail
	kindMutation
)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for action diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// WithInitialFilter replaces types.DefaultFilter as the filter the store
// starts with and returns to on ClearStore.
func WithInitialFilter(f types.FilterCriteria) Option {
	return func(s *Store) {
		s.initialFilter = f
	}
}

// New creates a Store backed by remote.
func New(remote types.ContactCollection, opts ...Option) *Store {
	s := &Store{
		remote:        remote,
		logger:        slog.Default(),
		initialFilter: types.DefaultFilter(),
		subs:          make(map[uint64]func(types.State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state = s.initialState()
	return s
}

func (s *Store) initialState() types.State {
	return types.State{
		Collection: []types.Contact{},
		Filter:     s.initialFilter,
		Status:     types.StatusIdle,
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() types.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subscribe registers fn to be called after every state transition with the
// resulting snapshot. fn runs on the goroutine that caused the transition,
// outside the store lock, so it may call Snapshot or start new actions.
// Concurrent transitions can deliver snapshots out of order; compare
// Revision to discard stale ones. The returned function unsubscribes and is
// safe to call more than once.
func (s *Store) Subscribe(fn func(types.State)) (unsubscribe func()) {
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
		})
	}
}

// update runs mutate under the lock, bumps the revision and notifies
// subscribers. mutate returns false to signal that nothing changed.
func (s *Store) update(mutate func(st *types.State) bool) {
	s.mu.Lock()
	if !mutate(&s.state) {
		s.mu.Unlock()
		return
	}
	s.state.Revision++
	snap := s.state.Clone()
	s.mu.Unlock()

	s.notify(snap)
}

func (s *Store) notify(snap types.State) {
	s.subsMu.Lock()
	fns := make([]func(types.State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// begin starts an action of kind k: it counts the action as in flight, bumps
// the generation counter for k, sets status to loading and returns the
// counters the action must present when it resolves.
func (s *Store) begin(k kind) generations {
	var t generations
	s.update(func(st *types.State) bool {
		s.inflight++
		switch k {
		case kindCollection:
			s.gen.collection++
		case kindDetail:
			s.gen.detail++
		}
		t = s.gen
		st.Status = types.StatusLoading
		st.ErrorMessage = ""
		return true
	})
	return t
}

// superseded reports whether a newer action of kind k replaced the result
// of the action holding t. Caller holds s.mu.
func (s *Store) superseded(k kind, t generations) bool {
	switch k {
	case kindCollection:
		return t.collection != s.gen.collection
	case kindDetail:
		return t.detail != s.gen.detail
	}
	return false
}

// fail resolves t's action as failed. The error status is recorded unless
// the session was cleared or a newer action of kind k replaced the result.
func (s *Store) fail(k kind, t generations, err error, fallback string) {
	msg := types.MessageFor(err, fallback)
	s.logger.Warn("contact action failed", "message", msg, "error", err)
	s.update(func(st *types.State) bool {
		if t.session != s.gen.session {
			return false
		}
		s.inflight--
		if s.superseded(k, t) {
			if s.inflight == 0 && st.Status == types.StatusLoading {
				st.Status = types.StatusIdle
			}
			return true
		}
		st.Status = types.StatusError
		st.ErrorMessage = msg
		return true
	})
}

// settle resolves an action as successful. Status returns to idle once no
// other action of the session is in flight. Caller holds s.mu.
func (s *Store) settle(st *types.State) {
	s.inflight--
	if s.inflight == 0 {
		st.Status = types.StatusIdle
		st.ErrorMessage = ""
	}
}

// SetFilter merges patch into the active filter. It does not fetch; call
// FetchCollection when the new filter should take effect.
func (s *Store) SetFilter(patch types.FilterPatch) {
	s.update(func(st *types.State) bool {
		st.Filter = st.Filter.Merge(patch)
		return true
	})
}

// FetchCollection replaces the collection with the server's answer for
// override, or for the active filter when override is nil. Empty filter
// fields are stripped. On failure the status records the error and the
// previous collection stays visible; the error is not returned.
func (s *Store) FetchCollection(ctx context.Context, override *types.FilterCriteria) {
	s.mu.Lock()
	filter := s.state.Filter
	s.mu.Unlock()
	if override != nil {
		filter = *override
	}
	filter = filter.Compact()

	t := s.begin(kindCollection)
	s.logger.Debug("fetching contacts", "search", filter.Search, "sort_order", filter.SortOrder, "category", filter.Category)

	contacts, err := s.remote.List(ctx, filter)
	if err != nil {
		s.fail(kindCollection, t, err, MsgFetchCollection)
		return
	}

	s.update(func(st *types.State) bool {
		if t.session != s.gen.session {
			return false
		}
		if t.collection == s.gen.collection {
			st.Collection = dedupe(contacts)
		} else {
			s.logger.Debug("discarding stale collection response", "generation", t.collection, "latest", s.gen.collection)
		}
		s.settle(st)
		return true
	})
}

// FetchDetail loads one contact into Detail and returns it. A failure keeps
// the previous Detail and is returned so the caller can stop rendering a
// stale record. If the consumer moved on (ClearDetail, ClearStore or a newer
// FetchDetail) before the response arrived, the contact is still returned
// but not stored.
func (s *Store) FetchDetail(ctx context.Context, id string) (types.Contact, error) {
	t := s.begin(kindDetail)
	s.logger.Debug("fetching contact", "id", id)

	contact, err := s.remote.Get(ctx, id)
	if err != nil {
		s.fail(kindDetail, t, err, MsgFetchDetail)
		return types.Contact{}, err
	}

	s.update(func(st *types.State) bool {
		if t.session != s.gen.session {
			return false
		}
		if t.detail == s.gen.detail {
			c := contact
			st.Detail = &c
		}
		s.settle(st)
		return true
	})
	return contact, nil
}

// CreateEntity creates a contact and prepends it to the collection,
// independent of the active sort order.
func (s *Store) CreateEntity(ctx context.Context, fields types.ContactFields) (types.Contact, error) {
	t := s.begin(kindMutation)
	s.logger.Debug("creating contact", "full_name", fields.FullName)

	contact, err := s.remote.Create(ctx, fields)
	if err != nil {
		s.fail(kindMutation, t, err, MsgCreate)
		return types.Contact{}, err
	}

	s.update(func(st *types.State) bool {
		if t.session != s.gen.session {
			return false
		}
		rest := removeID(st.Collection, contact.ID)
		next := make([]types.Contact, 0, len(rest)+1)
		next = append(next, contact)
		st.Collection = append(next, rest...)
		s.settle(st)
		return true
	})
	return contact, nil
}

// UpdateEntity patches a contact and merges the fields the server reports
// as changed into the matching collection entry and into Detail when it is
// the same contact.
func (s *Store) UpdateEntity(ctx context.Context, id string, patch types.ContactPatch) (types.ContactPatch, error) {
	t := s.begin(kindMutation)
	s.logger.Debug("updating contact", "id", id)

	changed, err := s.remote.Update(ctx, id, patch)
	if err != nil {
		s.fail(kindMutation, t, err, MsgUpdate)
		return types.ContactPatch{}, err
	}

	s.update(func(st *types.State) bool {
		if t.session != s.gen.session {
			return false
		}
		for i := range st.Collection {
			if st.Collection[i].ID == id {
				st.Collection[i] = changed.Apply(st.Collection[i])
			}
		}
		if st.Detail != nil && st.Detail.ID == id {
			d := changed.Apply(*st.Detail)
			st.Detail = &d
		}
		s.settle(st)
		return true
	})
	return changed, nil
}

// DeleteEntity deletes a contact remotely and removes it from the
// collection. On failure the row stays and the error is returned.
func (s *Store) DeleteEntity(ctx context.Context, id string) error {
	t := s.begin(kindMutation)
	s.logger.Debug("deleting contact", "id", id)

	if err := s.remote.Delete(ctx, id); err != nil {
		s.fail(kindMutation, t, err, MsgDelete)
		return err
	}

	s.update(func(st *types.State) bool {
		if t.session != s.gen.session {
			return false
		}
		st.Collection = removeID(st.Collection, id)
		s.settle(st)
		return true
	})
	return nil
}

// ClearDetail drops the contact under inspection. Idempotent.
func (s *Store) ClearDetail() {
	s.update(func(st *types.State) bool {
		s.gen.detail++
		if st.Detail == nil {
			return false
		}
		st.Detail = nil
		return true
	})
}

// ClearError returns from the error status to idle. It does nothing in any
// other status.
func (s *Store) ClearError() {
	s.update(func(st *types.State) bool {
		if st.Status != types.StatusError {
			return false
		}
		st.Status = types.StatusIdle
		st.ErrorMessage = ""
		return true
	})
}

// ClearStore resets the state to its initial values and invalidates every
// action still in flight. Used on session teardown. Clearing a store that is
// already in its initial state changes nothing and notifies no one.
func (s *Store) ClearStore() {
	s.update(func(st *types.State) bool {
		s.gen.session++
		s.gen.collection++
		s.gen.detail++
		s.inflight = 0
		if s.isInitial(st) {
			return false
		}
		rev := st.Revision
		*st = s.initialState()
		st.Revision = rev
		return true
	})
}

func (s *Store) isInitial(st *types.State) bool {
	return len(st.Collection) == 0 &&
		st.Detail == nil &&
		st.Filter == s.initialFilter &&
		st.Status == types.StatusIdle &&
		st.ErrorMessage == ""
}

// removeID returns contacts without the entries whose ID is id, preserving
// order. It never aliases the input.
func removeID(contacts []types.Contact, id string) []types.Contact {
	out := make([]types.Contact, 0, len(contacts))
	for _, c := range contacts {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

// dedupe keeps the first occurrence of each ID so the collection never holds
// two entries with the same ID.
func dedupe(contacts []types.Contact) []types.Contact {
	seen := make(map[string]struct{}, len(contacts))
	out := make([]types.Contact, 0, len(contacts))
	for _, c := range contacts {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}
