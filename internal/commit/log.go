// Package commit freezes the staging index into immutable, timestamp-named
// records under the commits directory.
package commit

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"vcs/internal/errors"
	"vcs/internal/staging"
	"vcs/internal/validation"
	"vcs/shared/types"

	"go.uber.org/zap"
)

// Log reads the index and writes commit records into dir.
type Log struct {
	dir       string
	indexPath string
	now       func() time.Time
	logger    *zap.Logger
}

type Option func(*Log)

// WithClock replaces the wall clock commit ids are derived from.
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

func WithLogger(logger *zap.Logger) Option {
	return func(l *Log) { l.logger = logger }
}

func NewLog(dir, indexPath string, opts ...Option) *Log {
	l := &Log{
		dir:       dir,
		indexPath: indexPath,
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Log) Dir() string { return l.dir }

// Create commits whatever the index holds. With no index it returns
// NoStagedChanges and writes nothing. Two commits in the same second share
// an id and the later one replaces the earlier record.
func (l *Log) Create() (*shared.Commit, error) {
	entries, err := staging.ReadIndex(l.indexPath)
	if err != nil {
		return nil, err
	}

	created := l.now()
	id := strconv.FormatInt(created.Unix(), 10)

	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return nil, errors.IOFailure("create directory", l.dir, err)
	}

	path := filepath.Join(l.dir, id)
	if _, err := os.Stat(path); err == nil {
		l.logger.Warn("Commit id reused, replacing earlier record", zap.String("id", id))
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, errors.IOFailure("open", path, err)
	}
	if err := staging.WriteEntries(f, entries); err != nil {
		f.Close()
		return nil, errors.IOFailure("write", path, err)
	}
	if err := f.Close(); err != nil {
		return nil, errors.IOFailure("close", path, err)
	}

	l.logger.Info("Created commit", zap.String("id", id), zap.Int("entries", len(entries)))
	return &shared.Commit{
		ID:      id,
		Time:    time.Unix(created.Unix(), 0),
		Entries: entries,
	}, nil
}

// IDs lists the record names present, in directory order. A missing
// commits directory yields no ids and no error.
func (l *Log) IDs() ([]string, error) {
	dirEntries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.IOFailure("read directory", l.dir, err)
	}

	ids := make([]string, 0, len(dirEntries))
	for _, de := range dirEntries {
		if !de.Type().IsRegular() {
			continue
		}
		ids = append(ids, de.Name())
	}
	return ids, nil
}

// Read loads one commit record.
func (l *Log) Read(id string) (*shared.Commit, error) {
	if err := validation.CommitID(id); err != nil {
		return nil, err
	}

	path := filepath.Join(l.dir, id)
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.CorruptCommit(id, err)
	}
	defer f.Close()

	entries, err := staging.ParseEntries(f)
	if err != nil {
		return nil, errors.CorruptCommit(id, err)
	}
	return &shared.Commit{ID: id, Time: TimeOf(id), Entries: entries}, nil
}

// TimeOf interprets a commit id as Unix seconds. Ids that are not integers
// give the zero time.
func TimeOf(id string) time.Time {
	secs, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(secs, 0)
}
