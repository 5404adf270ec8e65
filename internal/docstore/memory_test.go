package docstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCollection_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	coll := NewMemoryStore().Collection("items")

	require.NoError(t, coll.Set(ctx, "a", map[string]any{"itemName": "compass"}))

	doc, err := coll.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "compass", doc.Fields["itemName"])

	require.NoError(t, coll.Delete(ctx, "a"))
	_, err = coll.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNoDocument)
}

func TestMemoryCollection_UpdateRequiresExistingDocument(t *testing.T) {
	ctx := context.Background()
	coll := NewMemoryStore().Collection("users")

	err := coll.Update(ctx, "missing", map[string]any{"balance": 10.0})
	assert.ErrorIs(t, err, ErrNoDocument)

	require.NoError(t, coll.Set(ctx, "u1", map[string]any{"name": "Ann", "balance": 0.0}))
	require.NoError(t, coll.Update(ctx, "u1", map[string]any{"balance": 10.0}))

	doc, err := coll.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 10.0, doc.Fields["balance"])
	assert.Equal(t, "Ann", doc.Fields["name"])
}

func TestMemoryCollection_AddAssignsIDAndKeepsOrder(t *testing.T) {
	ctx := context.Background()
	coll := NewMemoryStore().Collection("items")

	id1, err := coll.Add(ctx, map[string]any{"itemName": "boots"})
	require.NoError(t, err)
	id2, err := coll.Add(ctx, map[string]any{"itemName": "backpack"})
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	docs, err := coll.QueryAll(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "boots", docs[0].Fields["itemName"])
	assert.Equal(t, "backpack", docs[1].Fields["itemName"])
}

func TestMemoryCollection_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	coll := NewMemoryStore().Collection("items")

	require.NoError(t, coll.Set(ctx, "a", map[string]any{"quantity": 5}))

	doc, err := coll.Get(ctx, "a")
	require.NoError(t, err)
	doc.Fields["quantity"] = 0

	again, err := coll.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 5, again.Fields["quantity"])
}
