package repository

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"vcs/internal/catalog"
	"vcs/internal/digest"
	"vcs/internal/errors"
	"vcs/internal/staging"
	"vcs/shared/types"

	"go.uber.org/zap"
)

// StageAllResult is what `add .` did: the files staged and, unless the
// commit step failed, the commit made from them.
type StageAllResult struct {
	Staged *staging.Result
	Commit *shared.Commit
}

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	Digest    digest.Digest       `json:"digest"`
	Algorithm digest.Algorithm    `json:"algorithm"`
	CID       string              `json:"cid"`
	Path      string              `json:"path"`
	Size      int64               `json:"size"`
	Meta      *catalog.ObjectMeta `json:"meta,omitempty"`
}

// VerifyReport lists what a full integrity pass found.
type VerifyReport struct {
	Checked int             `json:"checked"`
	Corrupt []digest.Digest `json:"corrupt"`
	// Missing are catalog entries whose object file is gone; their
	// metadata is dropped.
	Missing []digest.Digest `json:"missing"`

	// Cataloged counts catalog entries left after reconciliation.
	Cataloged int `json:"cataloged"`
}

func (v *VerifyReport) OK() bool {
	return len(v.Corrupt) == 0 && len(v.Missing) == 0
}

// StageSingleFile snapshots one file into the object store. The staging
// index is not updated.
func (r *Repository) StageSingleFile(path string) (digest.Digest, error) {
	return r.Stager.Stage(path)
}

// StageAllAndCommit stages every regular file directly inside baseDir,
// replacing the index, then commits it.
func (r *Repository) StageAllAndCommit(baseDir string) (*StageAllResult, error) {
	staged, err := r.Stager.StageAll(baseDir)
	if err != nil {
		return nil, fmt.Errorf("staging %s: %w", baseDir, err)
	}

	result := &StageAllResult{Staged: staged}
	result.Commit, err = r.Commits.Create()
	if err != nil {
		return result, err
	}
	return result, nil
}

// Commit freezes the current index without restaging.
func (r *Repository) Commit() (*shared.Commit, error) {
	return r.Commits.Create()
}

// ListHistory returns every readable commit in display order. A repository
// without commits yields an empty slice.
func (r *Repository) ListHistory() ([]shared.Commit, error) {
	return r.History.List()
}

// ReadCommit loads a single commit record.
func (r *Repository) ReadCommit(id string) (*shared.Commit, error) {
	return r.Commits.Read(id)
}

// CatObject opens the stored bytes of d.
func (r *Repository) CatObject(d digest.Digest) (io.ReadCloser, error) {
	return r.Objects.Open(d)
}

// StatObject reports where d is stored, its size, CID and catalog entry.
// Algorithm and CID follow the algorithm the object was written with.
func (r *Repository) StatObject(d digest.Digest) (*ObjectInfo, error) {
	if _, err := digest.Parse(string(d)); err != nil {
		return nil, err
	}

	path := r.Objects.Path(d)
	st, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound(fmt.Sprintf("object %s not found", d))
		}
		return nil, errors.IOFailure("stat", path, err)
	}

	info := &ObjectInfo{
		Digest:    d,
		Algorithm: r.Engine.Algorithm(),
		Path:      path,
		Size:      st.Size(),
	}
	if meta := r.objectMeta(d); meta != nil {
		info.Meta = meta
		if meta.Algorithm != "" {
			info.Algorithm = meta.Algorithm
		}
	}

	c, err := digest.CID(d, info.Algorithm)
	if err != nil {
		return nil, err
	}
	info.CID = c.String()
	return info, nil
}

// Verify rehashes every stored object and reconciles the catalog. Each
// object is rehashed with the algorithm the catalog recorded for it,
// falling back to the configured one.
func (r *Repository) Verify() (*VerifyReport, error) {
	report := &VerifyReport{}

	err := r.Objects.Walk(func(d digest.Digest) error {
		report.Checked++
		var algo digest.Algorithm
		if meta := r.objectMeta(d); meta != nil {
			algo = meta.Algorithm
		}

		err := r.Objects.Verify(d, algo)
		switch {
		case err == nil:
			return nil
		case errors.IsType(err, errors.ErrorTypeCorruptObject):
			r.Logger.Warn("Corrupt object", zap.String("digest", d.String()), zap.Error(err))
			report.Corrupt = append(report.Corrupt, d)
			return nil
		}
		return err
	})
	if err != nil {
		return report, fmt.Errorf("verifying objects: %w", err)
	}

	if r.Catalog == nil {
		return report, nil
	}

	metas, err := r.Catalog.List()
	if err != nil {
		return report, fmt.Errorf("listing catalog: %w", err)
	}
	for _, meta := range metas {
		if r.Objects.Exists(meta.Digest) {
			continue
		}
		report.Missing = append(report.Missing, meta.Digest)
		if err := r.Catalog.Forget(meta.Digest); err != nil {
			return report, err
		}
	}

	if report.Cataloged, err = r.Catalog.Count(); err != nil {
		return report, err
	}
	return report, nil
}

// objectMeta returns the catalog entry for d, or nil when there is none.
func (r *Repository) objectMeta(d digest.Digest) *catalog.ObjectMeta {
	if r.Catalog == nil {
		return nil
	}
	meta, err := r.Catalog.Get(d)
	if err != nil {
		if !stderrors.Is(err, catalog.ErrUnknownObject) {
			r.Logger.Warn("Failed to read object metadata", zap.String("digest", d.String()), zap.Error(err))
		}
		return nil
	}
	return meta
}
