package catalog

import (
	"errors"
	"testing"
	"time"

	"vcs/internal/digest"
	"vcs/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCatalog(t *testing.T) *Catalog {
	db, err := storage.Open("", true)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db)
}

func TestCatalog(t *testing.T) {
	c := setupCatalog(t)

	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)
	c.now = func() time.Time { return first }

	e, err := digest.New(digest.SHA256)
	require.NoError(t, err)
	d := e.SumBytes([]byte("hello"))

	t.Run("Record creates", func(t *testing.T) {
		meta, err := c.Record(d, digest.SHA256, 5)
		require.NoError(t, err)
		assert.Equal(t, uint32(1), meta.Writes)
		assert.Equal(t, first, meta.CreatedAt)
		assert.Equal(t, int64(5), meta.Size)
	})

	t.Run("Record again bumps writes only", func(t *testing.T) {
		c.now = func() time.Time { return second }
		meta, err := c.Record(d, digest.SHA256, 5)
		require.NoError(t, err)
		assert.Equal(t, uint32(2), meta.Writes)
		assert.True(t, meta.CreatedAt.Equal(first))
		assert.True(t, meta.WrittenAt.Equal(second))
	})

	t.Run("Get unknown", func(t *testing.T) {
		_, err := c.Get(e.SumBytes([]byte("other")))
		assert.True(t, errors.Is(err, ErrUnknownObject))
	})

	t.Run("List", func(t *testing.T) {
		metas, err := c.List()
		require.NoError(t, err)
		require.Len(t, metas, 1)
		assert.Equal(t, d, metas[0].Digest)

		n, err := c.Count()
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("Forget", func(t *testing.T) {
		require.NoError(t, c.Forget(d))
		require.NoError(t, c.Forget(d))
		_, err := c.Get(d)
		assert.True(t, errors.Is(err, ErrUnknownObject))

		n, err := c.Count()
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}
