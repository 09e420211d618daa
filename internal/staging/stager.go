// Package staging snapshots working files into the object store and keeps
// the staging index: the (filename, digest) pairs the next commit will hold.
package staging

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"vcs/internal/digest"
	"vcs/internal/errors"
	"vcs/shared/types"

	"go.uber.org/zap"
)

// ObjectWriter persists the content of a file under its digest.
type ObjectWriter interface {
	PutFile(d digest.Digest, src string) error
}

// Failure is one file stage-all could not snapshot.
type Failure struct {
	Name string
	Err  error
}

// Result is what one stage-all pass produced.
type Result struct {
	Entries  []shared.Entry
	Failures []Failure
}

type Stager struct {
	engine     *digest.Engine
	objects    ObjectWriter
	indexPath  string
	controlDir string
	logger     *zap.Logger
}

// NewStager builds a stager writing its index to indexPath. Entries named
// controlDir are never staged.
func NewStager(engine *digest.Engine, objects ObjectWriter, indexPath, controlDir string, logger *zap.Logger) *Stager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Stager{
		engine:     engine,
		objects:    objects,
		indexPath:  indexPath,
		controlDir: controlDir,
		logger:     logger,
	}
}

func (s *Stager) IndexPath() string { return s.indexPath }

// Stage snapshots one file and returns its digest. The index is left alone.
func (s *Stager) Stage(path string) (digest.Digest, error) {
	d, err := s.engine.SumFile(path)
	if err != nil {
		return "", err
	}
	if err := s.objects.PutFile(d, path); err != nil {
		return "", err
	}

	s.logger.Debug("Staged file", zap.String("path", path), zap.String("digest", d.String()))
	return d, nil
}

// StageAll snapshots every regular file directly inside baseDir and
// replaces the index with the result. Subdirectories are not entered.
// Files are visited in name order. A file that fails is recorded in
// Result.Failures and left out of the index; the rest still go through.
func (s *Stager) StageAll(baseDir string) (*Result, error) {
	dirEntries, err := os.ReadDir(baseDir)
	if err != nil {
		return nil, errors.IOFailure("read directory", baseDir, err)
	}

	index, err := os.OpenFile(s.indexPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, errors.IOFailure("open", s.indexPath, err)
	}
	w := bufio.NewWriter(index)

	result := &Result{}
	for _, de := range dirEntries {
		name := de.Name()
		if name == "." || name == ".." || name == s.controlDir {
			continue
		}

		path := filepath.Join(baseDir, name)
		info, err := os.Stat(path)
		if err != nil {
			s.logger.Warn("Failed to stat file", zap.String("path", path), zap.Error(err))
			result.Failures = append(result.Failures, Failure{Name: name, Err: errors.IOFailure("stat", path, err)})
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}

		d, err := s.Stage(path)
		if err != nil {
			s.logger.Warn("Failed to stage file", zap.String("path", path), zap.Error(err))
			result.Failures = append(result.Failures, Failure{Name: name, Err: err})
			continue
		}

		entry := shared.Entry{Name: name, Digest: d}
		if _, err := w.WriteString(entry.Line() + "\n"); err != nil {
			index.Close()
			return result, errors.IOFailure("write", s.indexPath, err)
		}
		result.Entries = append(result.Entries, entry)
	}

	if err := w.Flush(); err != nil {
		index.Close()
		return result, errors.IOFailure("write", s.indexPath, err)
	}
	if err := index.Close(); err != nil {
		return result, errors.IOFailure("close", s.indexPath, err)
	}

	s.logger.Info("Staged directory",
		zap.String("dir", baseDir),
		zap.Int("staged", len(result.Entries)),
		zap.Int("failed", len(result.Failures)))
	return result, nil
}

// Staged returns the entries currently in the index.
func (s *Stager) Staged() ([]shared.Entry, error) {
	entries, err := ReadIndex(s.indexPath)
	if err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}
	return entries, nil
}
