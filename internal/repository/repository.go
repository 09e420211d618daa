// internal/repository/repository.go
package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"vcs/internal/catalog"
	"vcs/internal/commit"
	"vcs/internal/config"
	"vcs/internal/digest"
	"vcs/internal/errors"
	"vcs/internal/history"
	"vcs/internal/objects"
	"vcs/internal/staging"
	"vcs/internal/storage"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// DirName is the control directory kept at the repository root.
const DirName = ".vcs"

// Repository ties the object store, staging index, commit log and history
// of one working directory together.
type Repository struct {
	Root    string
	Dir     string
	Config  *config.Config
	Engine  *digest.Engine
	DB      *badger.DB
	Catalog *catalog.Catalog // nil when the catalog is disabled
	Objects *objects.Store
	Stager  *staging.Stager
	Commits *commit.Log
	History *history.Reader
	Logger  *zap.Logger
}

type settings struct {
	config *config.Config
	clock  func() time.Time
}

type Option func(*settings)

// WithConfig skips loading the config file.
func WithConfig(c *config.Config) Option {
	return func(s *settings) { s.config = c }
}

// WithClock sets the clock commit ids are taken from.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.clock = now }
}

// Initialize creates the control directory and object store at root and
// writes a default config. Running it again changes nothing.
func Initialize(root string) error {
	dir := filepath.Join(root, DirName)
	dirs := []string{
		dir,
		filepath.Join(dir, "objects"),
	}

	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			return errors.IOFailure("create directory", d, err)
		}
	}

	configPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := config.Default().Save(configPath); err != nil {
			return fmt.Errorf("writing default config: %w", err)
		}
	}

	return nil
}

// FindRoot searches startDir and its parents for the control directory.
func FindRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if info, err := os.Stat(filepath.Join(dir, DirName)); err == nil && info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", errors.NotFound(fmt.Sprintf("not a repository (no %s directory in %s or any parent)", DirName, startDir))
}

// New opens the repository at root, which must already be initialized.
func New(root string, logger *zap.Logger, opts ...Option) (*Repository, error) {
	var set settings
	for _, opt := range opts {
		opt(&set)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	absPath, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path for root %s: %w", root, err)
	}
	dir := filepath.Join(absPath, DirName)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, errors.NotFound(fmt.Sprintf("not a repository: %s missing", dir))
	}

	cfg := set.config
	if cfg == nil {
		cfg, err = config.LoadOrDefault(config.Path(dir))
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	engine, err := digest.New(digest.Algorithm(cfg.Digest.Algorithm))
	if err != nil {
		return nil, err
	}

	r := &Repository{
		Root:   absPath,
		Dir:    dir,
		Config: cfg,
		Engine: engine,
		Logger: logger,
	}

	var recorder objects.Recorder
	if cfg.Catalog.Enabled {
		r.DB, err = storage.Open(filepath.Join(dir, "catalog"), cfg.Catalog.InMemory)
		if err != nil {
			return nil, fmt.Errorf("opening catalog: %w", err)
		}
		r.Catalog = catalog.New(r.DB)
		recorder = r.Catalog
	}

	r.Objects, err = objects.NewStore(objects.Options{
		Root:      filepath.Join(dir, "objects"),
		Engine:    engine,
		CacheSize: cfg.Cache.Size,
		Recorder:  recorder,
		Logger:    logger.Named("objects"),
	})
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("initializing object store: %w", err)
	}

	indexPath := filepath.Join(dir, "index")
	r.Stager = staging.NewStager(engine, r.Objects, indexPath, DirName, logger.Named("staging"))

	logOpts := []commit.Option{commit.WithLogger(logger.Named("commit"))}
	if set.clock != nil {
		logOpts = append(logOpts, commit.WithClock(set.clock))
	}
	r.Commits = commit.NewLog(filepath.Join(dir, "commits"), indexPath, logOpts...)
	r.History = history.NewReader(r.Commits, cfg.History.Order, logger.Named("history"))

	return r, nil
}

// Close releases the catalog database.
func (r *Repository) Close() error {
	if r == nil || r.DB == nil {
		return nil
	}
	if err := r.DB.Close(); err != nil {
		return fmt.Errorf("closing catalog: %w", err)
	}
	r.DB = nil
	return nil
}

// IsNoStagedChanges reports whether err means there was nothing to commit.
func IsNoStagedChanges(err error) bool {
	return errors.IsType(err, errors.ErrorTypeNoStagedChanges)
}
