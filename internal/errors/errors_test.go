package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsType(t *testing.T) {
	ioErr := IOFailure("open", "a.txt", fs.ErrNotExist)

	assert.True(t, IsType(ioErr, ErrorTypeIO))
	assert.False(t, IsType(ioErr, ErrorTypeNotFound))
	assert.True(t, stderrors.Is(ioErr, fs.ErrNotExist))

	wrapped := fmt.Errorf("staging: %w", ioErr)
	assert.True(t, IsType(wrapped, ErrorTypeIO))
	assert.False(t, IsType(fmt.Errorf("plain"), ErrorTypeIO))
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusCode(NotFound("missing")))
	assert.Equal(t, http.StatusBadRequest, StatusCode(fmt.Errorf("x: %w", ValidationError("bad", nil))))
	assert.Equal(t, http.StatusConflict, StatusCode(NoStagedChanges()))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(fmt.Errorf("boom")))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "No files staged for commit", NoStagedChanges().Error())
	assert.Equal(t, "open a.txt: file does not exist", IOFailure("open", "a.txt", fs.ErrNotExist).Error())
}
