package validation

import (
	"fmt"
	"net/http"
	"strings"

	"vcs/internal/digest"
	"vcs/internal/errors"
)

// CommitID rejects ids that could name anything other than a record file
// directly inside the commits directory.
func CommitID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return errors.ValidationError(fmt.Sprintf("invalid commit id %q", id), id)
	}
	return nil
}

// CommitIDParam reads and checks the named path parameter.
func CommitIDParam(r *http.Request, name string) (string, error) {
	id := r.PathValue(name)
	if err := CommitID(id); err != nil {
		return "", err
	}
	return id, nil
}

// DigestParam reads the named path parameter as a digest.
func DigestParam(r *http.Request, name string) (digest.Digest, error) {
	return digest.Parse(strings.ToLower(r.PathValue(name)))
}
