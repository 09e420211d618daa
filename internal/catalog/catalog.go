// Package catalog keeps advisory metadata about stored objects in badger.
// Object files stay the source of truth; the catalog only answers
// "when was this written, how big, how often".
package catalog

import (
	"errors"
	"fmt"
	"time"

	"vcs/internal/digest"
	"vcs/internal/storage"

	"github.com/dgraph-io/badger/v4"
)

var ErrUnknownObject = errors.New("object not in catalog")

// ObjectMeta stores metadata about stored content
type ObjectMeta struct {
	Digest    digest.Digest    `json:"digest"`
	Algorithm digest.Algorithm `json:"algorithm"`
	Size      int64            `json:"size"`
	Writes    uint32           `json:"writes"`
	CreatedAt time.Time        `json:"created_at"`
	WrittenAt time.Time        `json:"written_at"`
}

func (m *ObjectMeta) GetID() string { return string(m.Digest) }

type Catalog struct {
	store *storage.BadgerStore
	now   func() time.Time
}

func New(db *badger.DB) *Catalog {
	return &Catalog{
		store: storage.NewBadgerStore(db, "object"),
		now:   time.Now,
	}
}

// Record notes a write of size bytes under d, creating the entry on first sight.
func (c *Catalog) Record(d digest.Digest, algo digest.Algorithm, size int64) (*ObjectMeta, error) {
	now := c.now()

	meta, err := c.Get(d)
	switch {
	case errors.Is(err, ErrUnknownObject):
		meta = &ObjectMeta{
			Digest:    d,
			Algorithm: algo,
			CreatedAt: now,
		}
	case err != nil:
		return nil, err
	}

	meta.Size = size
	meta.Writes++
	meta.WrittenAt = now

	if err := c.store.Put(meta); err != nil {
		return nil, fmt.Errorf("storing metadata: %w", err)
	}
	return meta, nil
}

func (c *Catalog) Get(d digest.Digest) (*ObjectMeta, error) {
	var meta ObjectMeta
	if err := c.store.Get(string(d), &meta); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownObject, d)
		}
		return nil, fmt.Errorf("getting metadata: %w", err)
	}
	return &meta, nil
}

// Forget drops the entry for d. Only metadata is touched.
func (c *Catalog) Forget(d digest.Digest) error {
	if err := c.store.Delete(string(d)); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("deleting metadata: %w", err)
	}
	return nil
}

// Count returns the number of entries without decoding them.
func (c *Catalog) Count() (int, error) {
	ids, err := c.store.IDs()
	if err != nil {
		return 0, fmt.Errorf("listing metadata keys: %w", err)
	}
	return len(ids), nil
}

// List returns every entry in digest order.
func (c *Catalog) List() ([]ObjectMeta, error) {
	var metas []ObjectMeta
	if err := c.store.List(&metas); err != nil {
		return nil, err
	}
	return metas, nil
}
