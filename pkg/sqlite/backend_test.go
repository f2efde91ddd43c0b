package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/rolodex/pkg/types"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	contacts, closeFn, err := Open(dir)
	require.NoError(t, err)
	c, err := contacts.Create(ctx, types.ContactFields{FullName: "Ada", Email: "ada@x.com", Phone: "1"})
	require.NoError(t, err)
	require.NoError(t, closeFn())

	contacts, closeFn, err = Open(dir)
	require.NoError(t, err)
	defer closeFn()
	got, err := contacts.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.FullName)
}

type otherCollection struct{ types.ContactCollection }

func TestSeed(t *testing.T) {
	ctx := context.Background()
	contacts, closeFn, err := Open(t.TempDir())
	require.NoError(t, err)
	defer closeFn()

	records := []types.Contact{
		{ID: "ignored", FullName: "Ada", Email: "ada@x.com", Phone: "1"},
		{FullName: "Grace", Email: "grace@x.com", Phone: "2"},
	}
	n, err := Seed(ctx, contacts, records)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := contacts.List(ctx, types.FilterCriteria{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, c := range all {
		assert.NotEqual(t, "ignored", c.ID)
	}

	_, err = Seed(ctx, otherCollection{}, records)
	assert.Error(t, err)
}
