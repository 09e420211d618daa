// internal/api/handlers.go
package api

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"vcs/internal/digest"
	"vcs/internal/errors"
	"vcs/internal/logging"
	"vcs/internal/middleware"
	"vcs/internal/repository"
	"vcs/internal/validation"
	"vcs/shared/types"

	"go.uber.org/zap"
)

// Repository is the read side of a repository the API serves.
type Repository interface {
	ListHistory() ([]shared.Commit, error)
	ReadCommit(id string) (*shared.Commit, error)
	CatObject(d digest.Digest) (io.ReadCloser, error)
	StatObject(d digest.Digest) (*repository.ObjectInfo, error)
}

// Handler serves history and objects read-only over HTTP.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Handler{repo: repo, logger: logger}
}

// Routes registers every endpoint on a new mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /api/history", h.History)
	mux.HandleFunc("GET /api/commits/{id}", h.Commit)
	mux.HandleFunc("GET /api/objects/{digest}", h.Object)
	mux.HandleFunc("GET /api/objects/{digest}/stat", h.ObjectStat)
	return mux
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	commits, err := h.repo.ListHistory()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, commits)
}

func (h *Handler) Commit(w http.ResponseWriter, r *http.Request) {
	id, err := validation.CommitIDParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	middleware.Annotate(r.Context(), zap.String("commit", id))

	c, err := h.repo.ReadCommit(id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Object streams the raw stored bytes.
func (h *Handler) Object(w http.ResponseWriter, r *http.Request) {
	d, err := validation.DigestParam(r, "digest")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	middleware.Annotate(r.Context(), zap.String("digest", d.String()))

	rc, err := h.repo.CatObject(d)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("ETag", `"`+d.String()+`"`)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.WithRequestID(r.Context()).Warn("Failed to stream object",
			zap.String("digest", d.String()),
			zap.Error(err))
	}
}

func (h *Handler) ObjectStat(w http.ResponseWriter, r *http.Request) {
	d, err := validation.DigestParam(r, "digest")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	middleware.Annotate(r.Context(), zap.String("digest", d.String()))

	info, err := h.repo.StatObject(d)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *errors.Error
	if !stderrors.As(err, &apiErr) {
		apiErr = &errors.Error{
			Type:    errors.ErrorTypeInternal,
			Message: err.Error(),
			Code:    http.StatusInternalServerError,
		}
	}

	status := errors.StatusCode(err)
	if status >= http.StatusInternalServerError {
		h.logger.WithRequestID(r.Context()).Error("Request failed", zap.Error(err))
	}
	writeJSON(w, status, apiErr)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
