// internal/watch/watcher.go
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"vcs/internal/repository"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Committer runs one stage-all-and-commit pass over a directory.
type Committer interface {
	StageAllAndCommit(baseDir string) (*repository.StageAllResult, error)
}

// Watcher commits the top level of a directory after it has been quiet for
// the debounce interval. Passes run one at a time on the event loop.
type Watcher struct {
	root       string
	controlDir string
	debounce   time.Duration
	committer  Committer
	watcher    *fsnotify.Watcher
	onCommit   func(*repository.StageAllResult)
	logger     *zap.Logger
}

type Option func(*Watcher)

// OnCommit registers fn to run after every pass that produced a commit.
func OnCommit(fn func(*repository.StageAllResult)) Option {
	return func(w *Watcher) { w.onCommit = fn }
}

// New starts watching root. Events under controlDir are ignored.
func New(root, controlDir string, debounce time.Duration, committer Committer, logger *zap.Logger, opts ...Option) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	if err := fw.Add(root); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", root, err)
	}

	w := &Watcher{
		root:       root,
		controlDir: controlDir,
		debounce:   debounce,
		committer:  committer,
		watcher:    fw,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run processes events until ctx is cancelled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("File changed",
				zap.String("path", event.Name),
				zap.String("op", event.Op.String()))
			timer.Reset(w.debounce)

		case <-timer.C:
			w.commit()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", zap.Error(err))
		}
	}
}

// Close stops the watcher; a running Run returns.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) commit() {
	result, err := w.committer.StageAllAndCommit(w.root)
	switch {
	case repository.IsNoStagedChanges(err):
		w.logger.Debug("Nothing to commit")
		return
	case err != nil:
		w.logger.Error("Failed to commit changes", zap.Error(err))
		return
	}

	for _, f := range result.Staged.Failures {
		w.logger.Warn("Failed to stage file", zap.String("file", f.Name), zap.Error(f.Err))
	}
	w.logger.Info("Created commit",
		zap.String("id", result.Commit.ID),
		zap.Int("files", len(result.Commit.Entries)))
	if w.onCommit != nil {
		w.onCommit(result)
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	return !w.ShouldIgnore(event.Name)
}

// ShouldIgnore reports whether path lies inside the control directory.
func (w *Watcher) ShouldIgnore(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return true
	}
	first, _, _ := strings.Cut(rel, string(filepath.Separator))
	return first == w.controlDir
}
