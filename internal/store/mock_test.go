package store

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// mockCollection is a testify mock of types.ContactCollection.
type mockCollection struct {
	mock.Mock
}

var _ types.ContactCollection = (*mockCollection)(nil)

func (m *mockCollection) List(ctx context.Context, filter types.FilterCriteria) ([]types.Contact, error) {
	args := m.Called(ctx, filter)
	contacts, _ := args.Get(0).([]types.Contact)
	return contacts, args.Error(1)
}

func (m *mockCollection) Get(ctx context.Context, id string) (types.Contact, error) {
	args := m.Called(ctx, id)
	contact, _ := args.Get(0).(types.Contact)
	return contact, args.Error(1)
}

func (m *mockCollection) Create(ctx context.Context, fields types.ContactFields) (types.Contact, error) {
	args := m.Called(ctx, fields)
	contact, _ := args.Get(0).(types.Contact)
	return contact, args.Error(1)
}

func (m *mockCollection) Update(ctx context.Context, id string, patch types.ContactPatch) (types.ContactPatch, error) {
	args := m.Called(ctx, id, patch)
	changed, _ := args.Get(0).(types.ContactPatch)
	return changed, args.Error(1)
}

func (m *mockCollection) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// gate holds one remote call open until the test releases it.
type gate struct {
	entered chan struct{}
	release chan error
}

func newGate() *gate {
	return &gate{entered: make(chan struct{}), release: make(chan error, 1)}
}

// wait signals that the call started and blocks until released.
func (g *gate) wait() error {
	close(g.entered)
	return <-g.release
}

// gatedCollection answers every call from canned data, but only after the
// gate registered for that call's key is released. List is keyed by the
// filter's Search, the other methods by ID (Create by FullName).
type gatedCollection struct {
	mu       sync.Mutex
	gates    map[string]*gate
	lists    map[string][]types.Contact
	contacts map[string]types.Contact
}

func newGatedCollection() *gatedCollection {
	return &gatedCollection{
		gates:    make(map[string]*gate),
		lists:    make(map[string][]types.Contact),
		contacts: make(map[string]types.Contact),
	}
}

func (g *gatedCollection) gate(key string) *gate {
	gt := newGate()
	g.mu.Lock()
	g.gates[key] = gt
	g.mu.Unlock()
	return gt
}

func (g *gatedCollection) gateFor(key string) *gate {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gates[key]
}

func (g *gatedCollection) List(_ context.Context, filter types.FilterCriteria) ([]types.Contact, error) {
	if err := g.gateFor(filter.Search).wait(); err != nil {
		return nil, err
	}
	return g.lists[filter.Search], nil
}

func (g *gatedCollection) Get(_ context.Context, id string) (types.Contact, error) {
	if err := g.gateFor(id).wait(); err != nil {
		return types.Contact{}, err
	}
	return g.contacts[id], nil
}

func (g *gatedCollection) Create(_ context.Context, fields types.ContactFields) (types.Contact, error) {
	if err := g.gateFor(fields.FullName).wait(); err != nil {
		return types.Contact{}, err
	}
	return g.contacts[fields.FullName], nil
}

func (g *gatedCollection) Update(_ context.Context, id string, patch types.ContactPatch) (types.ContactPatch, error) {
	if err := g.gateFor(id).wait(); err != nil {
		return types.ContactPatch{}, err
	}
	return patch, nil
}

func (g *gatedCollection) Delete(_ context.Context, id string) error {
	return g.gateFor(id).wait()
}
