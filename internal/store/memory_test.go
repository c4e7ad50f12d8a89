package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/veneer/internal/errors"
)

func seededMemory(t *testing.T) *Memory {
	t.Helper()

	m := NewMemory()
	m.Put("acme", "products", Document{IDField: ObjectID("665f1c09a2b3c4d5e6f70801"), "name": "Widget", "price": Int64(10)})
	m.Put("acme", "products", Document{IDField: ObjectID("665f1c09a2b3c4d5e6f70802"), "name": "Gadget", "price": Int64(25)})
	m.Put("acme", "products", Document{IDField: ObjectID("665f1c09a2b3c4d5e6f70803"), "name": "Widget", "price": Int64(7)})
	m.Put("acme", "orders", Document{IDField: Int64(1), "total": Int64(35)})
	m.Put("globex", "products", Document{IDField: "sku-1", "name": "Sprocket"})

	return m
}

func TestMemoryPartitionsAndCollections(t *testing.T) {
	m := seededMemory(t)
	ctx := context.Background()

	partitions, err := m.Partitions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"acme", "globex"}, partitions)

	collections, err := m.Collections(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, []string{"orders", "products"}, collections)
}

func TestMemoryList(t *testing.T) {
	m := seededMemory(t)
	ctx := context.Background()

	t.Run("unfiltered", func(t *testing.T) {
		docs, err := m.List(ctx, "acme", "products", Query{})
		require.NoError(t, err)
		assert.Len(t, docs, 3)
	})

	t.Run("filter equality", func(t *testing.T) {
		docs, err := m.List(ctx, "acme", "products", Query{Filter: `{"name":"Widget"}`})
		require.NoError(t, err)
		assert.Len(t, docs, 2)
	})

	t.Run("invalid filter is a store error", func(t *testing.T) {
		_, err := m.List(ctx, "acme", "products", Query{Filter: `{broken`})
		require.Error(t, err)
		var ve *errors.VeneerError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, errors.ErrorTypeStore, ve.Type)
	})

	t.Run("pagination", func(t *testing.T) {
		docs, err := m.List(ctx, "acme", "products", Query{Page: 2, PageSize: 2})
		require.NoError(t, err)
		assert.Len(t, docs, 1)

		docs, err = m.List(ctx, "acme", "products", Query{Page: 9, PageSize: 2})
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("projection keeps identifier", func(t *testing.T) {
		docs, err := m.List(ctx, "acme", "products", Query{Keys: "name"})
		require.NoError(t, err)
		require.NotEmpty(t, docs)
		assert.Contains(t, docs[0], IDField)
		assert.Contains(t, docs[0], "name")
		assert.NotContains(t, docs[0], "price")
	})

	t.Run("sort descending", func(t *testing.T) {
		docs, err := m.List(ctx, "acme", "products", Query{Sort: "-name"})
		require.NoError(t, err)
		require.Len(t, docs, 3)
		assert.Equal(t, "Widget", docs[0]["name"])
		assert.Equal(t, "Gadget", docs[2]["name"])
	})
}

func TestMemoryGet(t *testing.T) {
	m := seededMemory(t)
	ctx := context.Background()

	doc, found, err := m.Get(ctx, "acme", "products", "665f1c09a2b3c4d5e6f70802")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Gadget", doc["name"])

	_, found, err = m.Get(ctx, "acme", "products", "missing")
	require.NoError(t, err)
	assert.False(t, found)

	// Non-default identifier kinds resolve through their canonical form.
	doc, found, err = m.Get(ctx, "acme", "orders", "1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, Int64(35), doc["total"])
}

func TestMemoryCounts(t *testing.T) {
	m := seededMemory(t)
	ctx := context.Background()

	exact, err := m.CountExact(ctx, "acme", "products", `{"name":"Widget"}`)
	require.NoError(t, err)
	assert.Equal(t, int64(2), exact)

	estimate, err := m.CountEstimate(ctx, "acme", "products")
	require.NoError(t, err)
	assert.Equal(t, int64(3), estimate)

	collections, err := m.CountCollections(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, int64(2), collections)

	_, err = m.CountExact(ctx, "acme", "products", `not json`)
	assert.Error(t, err)
}

func TestLoadSeed(t *testing.T) {
	seed := `
partitions:
  acme:
    products:
      - _id: "oid:665f1c09a2b3c4d5e6f70801"
        name: Widget
        added: "date:2024-06-01T10:00:00Z"
        blob: "bin:aGVsbG8="
        tags:
          - a
          - b
        details:
          weight: 3
`
	path := filepath.Join(t.TempDir(), "seed.yml")
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o644))

	m := NewMemory()
	require.NoError(t, LoadSeed(path, m))

	doc, found, err := m.Get(context.Background(), "acme", "products", "665f1c09a2b3c4d5e6f70801")
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, ObjectID("665f1c09a2b3c4d5e6f70801"), doc[IDField])
	assert.Equal(t, "Widget", doc["name"])
	assert.Equal(t, Binary("hello"), doc["blob"])

	added, ok := doc["added"].(DateTime)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC), added.Time())

	details, ok := doc["details"].(Document)
	require.True(t, ok)
	assert.Equal(t, Int64(3), details["weight"])

	tags, ok := doc["tags"].(Array)
	require.True(t, ok)
	assert.Len(t, tags, 2)
}

func TestLoadSeedMissingFile(t *testing.T) {
	err := LoadSeed("/nonexistent/seed.yml", NewMemory())
	assert.Error(t, err)
}

func TestKindOfID(t *testing.T) {
	assert.Equal(t, IDKindObjectID, KindOfID(ObjectID("abc")))
	assert.Equal(t, IDKindString, KindOfID("abc"))
	assert.Equal(t, IDKindNumber, KindOfID(Int64(4)))
	assert.Equal(t, IDKindNumber, KindOfID(Int32(4)))
	assert.Equal(t, IDKindNumber, KindOfID(7.5))
	assert.Equal(t, IDKindDate, KindOfID(DateTime(time.Now())))
}

func TestFormatID(t *testing.T) {
	assert.Equal(t, "abc", FormatID(ObjectID("abc")))
	assert.Equal(t, "42", FormatID(Int64(42)))
	assert.Equal(t, "sku-1", FormatID("sku-1"))
	assert.Equal(t, "2024-06-01T10:00:00Z",
		FormatID(DateTime(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))))
}
