// internal/objects/store.go
package objects

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"vcs/internal/catalog"
	"vcs/internal/digest"
	"vcs/internal/errors"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// maxCachedSize keeps large blobs out of the read cache.
const maxCachedSize = 1 << 20

// Recorder receives a note of every completed write.
type Recorder interface {
	Record(d digest.Digest, algo digest.Algorithm, size int64) (*catalog.ObjectMeta, error)
}

// Store persists blobs under <root>/<digest[:2]>/<digest[2:]>.
type Store struct {
	root     string
	engine   *digest.Engine
	cache    *lru.Cache[digest.Digest, []byte]
	recorder Recorder
	logger   *zap.Logger
}

type Options struct {
	Root      string
	Engine    *digest.Engine
	CacheSize int
	Recorder  Recorder // optional
	Logger    *zap.Logger
}

func NewStore(opts Options) (*Store, error) {
	if opts.Root == "" {
		return nil, fmt.Errorf("root directory is required")
	}
	if opts.Engine == nil {
		return nil, fmt.Errorf("digest engine is required")
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 256
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	cache, err := lru.New[digest.Digest, []byte](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating cache: %w", err)
	}

	return &Store{
		root:     opts.Root,
		engine:   opts.Engine,
		cache:    cache,
		recorder: opts.Recorder,
		logger:   opts.Logger,
	}, nil
}

func (s *Store) Root() string { return s.root }

// Path returns where the object for d lives, whether or not it exists.
func (s *Store) Path(d digest.Digest) string {
	return filepath.Join(s.root, d.Shard(), d.Rest())
}

// Put stream-copies r into the object file for d. An existing object is
// truncated and rewritten; with matching digests the bytes are identical.
func (s *Store) Put(d digest.Digest, r io.Reader) error {
	if _, err := digest.Parse(string(d)); err != nil {
		return err
	}

	dir := filepath.Join(s.root, d.Shard())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.IOFailure("create directory", dir, err)
	}

	path := s.Path(d)
	dest, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.IOFailure("open", path, err)
	}

	n, err := io.CopyBuffer(dest, r, make([]byte, digest.ChunkSize))
	if closeErr := dest.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return errors.IOFailure("write", path, err)
	}

	if s.recorder != nil {
		if _, err := s.recorder.Record(d, s.engine.Algorithm(), n); err != nil {
			s.logger.Warn("Failed to record object metadata",
				zap.String("digest", d.String()),
				zap.Error(err))
		}
	}

	s.logger.Debug("Stored object",
		zap.String("digest", d.String()),
		zap.Int64("size", n))
	return nil
}

// PutFile copies the file at src into the object for d.
func (s *Store) PutFile(d digest.Digest, src string) error {
	f, err := os.Open(src)
	if err != nil {
		return errors.IOFailure("open", src, err)
	}
	defer f.Close()

	return s.Put(d, f)
}

// Exists checks if the object file for d is present on disk. The read
// cache is not consulted.
func (s *Store) Exists(d digest.Digest) bool {
	if _, err := digest.Parse(string(d)); err != nil {
		return false
	}
	_, err := os.Stat(s.Path(d))
	return err == nil
}

// Open returns a reader over the stored bytes of d. Objects up to
// maxCachedSize are read whole and kept in the cache; larger ones are
// streamed from disk.
func (s *Store) Open(d digest.Digest) (io.ReadCloser, error) {
	if _, err := digest.Parse(string(d)); err != nil {
		return nil, err
	}
	if content, ok := s.cache.Get(d); ok {
		return io.NopCloser(bytes.NewReader(content)), nil
	}

	path := s.Path(d)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound(fmt.Sprintf("object %s not found", d))
		}
		return nil, errors.IOFailure("open", path, err)
	}

	info, err := f.Stat()
	if err != nil || info.Size() > maxCachedSize {
		return f, nil
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.IOFailure("read", path, err)
	}
	s.cache.Add(d, content)
	return io.NopCloser(bytes.NewReader(content)), nil
}

// Get reads the whole object for d.
func (s *Store) Get(d digest.Digest) ([]byte, error) {
	rc, err := s.Open(d)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.IOFailure("read", s.Path(d), err)
	}
	return content, nil
}

// Verify rehashes the stored bytes of d from disk with algo, the algorithm
// d was produced by. An empty algo means the store's own engine.
func (s *Store) Verify(d digest.Digest, algo digest.Algorithm) error {
	if _, err := digest.Parse(string(d)); err != nil {
		return err
	}
	engine := s.engine
	if algo != "" && algo != engine.Algorithm() {
		var err error
		if engine, err = digest.New(algo); err != nil {
			return err
		}
	}
	f, err := os.Open(s.Path(d))
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NotFound(fmt.Sprintf("object %s not found", d))
		}
		return errors.IOFailure("open", s.Path(d), err)
	}
	defer f.Close()

	actual, err := engine.Sum(f)
	if err != nil {
		return errors.IOFailure("read", s.Path(d), err)
	}
	if actual != d {
		s.cache.Remove(d)
		return errors.CorruptObject(d.String(), actual.String())
	}
	return nil
}

// Walk calls fn for every object file found under the shard directories,
// in shard then name order. Entries that do not form a valid digest are skipped.
func (s *Store) Walk(fn func(digest.Digest) error) error {
	shards, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.IOFailure("read directory", s.root, err)
	}

	for _, shard := range shards {
		if !shard.IsDir() || len(shard.Name()) != 2 {
			continue
		}
		dir := filepath.Join(s.root, shard.Name())
		files, err := os.ReadDir(dir)
		if err != nil {
			return errors.IOFailure("read directory", dir, err)
		}
		for _, f := range files {
			if !f.Type().IsRegular() {
				continue
			}
			d, err := digest.Parse(shard.Name() + f.Name())
			if err != nil {
				continue
			}
			if err := fn(d); err != nil {
				return err
			}
		}
	}
	return nil
}
