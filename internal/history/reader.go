// Package history replays commit records in order.
package history

import (
	"iter"
	"sort"
	"strconv"

	"vcs/internal/commit"
	"vcs/internal/config"
	"vcs/shared/types"

	"go.uber.org/zap"
)

// Source is the part of the commit log history needs.
type Source interface {
	IDs() ([]string, error)
	Read(id string) (*shared.Commit, error)
}

type Reader struct {
	source Source
	order  string
	logger *zap.Logger
}

// NewReader returns a reader sorting ids by order: config.OrderLexical
// compares them as strings, so "10" comes before "9"; config.OrderNumeric
// compares their integer values.
func NewReader(source Source, order string, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if order == "" {
		order = config.OrderLexical
	}
	return &Reader{source: source, order: order, logger: logger}
}

// SortIDs orders ids in place.
func SortIDs(ids []string, order string) {
	if order != config.OrderNumeric {
		sort.Strings(ids)
		return
	}
	sort.SliceStable(ids, func(i, j int) bool {
		a, errA := strconv.ParseInt(ids[i], 10, 64)
		b, errB := strconv.ParseInt(ids[j], 10, 64)
		switch {
		case errA != nil && errB != nil:
			return ids[i] < ids[j]
		case errA != nil:
			return false
		case errB != nil:
			return true
		}
		return a < b
	})
}

// IDs returns every commit id in display order.
func (r *Reader) IDs() ([]string, error) {
	ids, err := r.source.IDs()
	if err != nil {
		return nil, err
	}
	SortIDs(ids, r.order)
	return ids, nil
}

// All yields commits lazily. Records that cannot be read are skipped.
// Enumeration errors end the sequence early; use List to observe them.
func (r *Reader) All() iter.Seq[shared.Commit] {
	return func(yield func(shared.Commit) bool) {
		ids, err := r.IDs()
		if err != nil {
			r.logger.Warn("Failed to list commits", zap.Error(err))
			return
		}
		r.read(ids)(yield)
	}
}

// List returns the whole history. No commits is an empty slice, not an error.
func (r *Reader) List() ([]shared.Commit, error) {
	ids, err := r.IDs()
	if err != nil {
		return nil, err
	}
	commits := make([]shared.Commit, 0, len(ids))
	for c := range r.read(ids) {
		commits = append(commits, c)
	}
	return commits, nil
}

func (r *Reader) read(ids []string) iter.Seq[shared.Commit] {
	return func(yield func(shared.Commit) bool) {
		for _, id := range ids {
			c, err := r.source.Read(id)
			if err != nil {
				r.logger.Debug("Skipping unreadable commit", zap.String("id", id), zap.Error(err))
				continue
			}
			if !yield(*c) {
				return
			}
		}
	}
}

var _ Source = (*commit.Log)(nil)
