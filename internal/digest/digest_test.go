package digest

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vcs/internal/errors"

	gocid "github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSumKnownVectors(t *testing.T) {
	tests := []struct {
		algo  Algorithm
		input string
		want  Digest
	}{
		{SHA256, "", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{SHA256, "hello", "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"},
		{BLAKE3, "", "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262"},
	}

	for _, tt := range tests {
		t.Run(string(tt.algo)+"/"+tt.input, func(t *testing.T) {
			e, err := New(tt.algo)
			require.NoError(t, err)

			got, err := e.Sum(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, e.SumBytes([]byte(tt.input)))
		})
	}
}

func TestSumDeterministic(t *testing.T) {
	// Larger than one chunk so the streaming path loops.
	data := bytes.Repeat([]byte("0123456789abcdef"), ChunkSize/8)

	for _, algo := range []Algorithm{SHA256, BLAKE3} {
		e, err := New(algo)
		require.NoError(t, err)

		first, err := e.Sum(bytes.NewReader(data))
		require.NoError(t, err)
		second, err := e.Sum(bytes.NewReader(data))
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Len(t, string(first), Size)
		assert.Equal(t, strings.ToLower(string(first)), string(first))
	}
}

func TestSumFile(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "nested-name.bin")
	require.NoError(t, os.WriteFile(a, []byte("hello"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("hello"), 0644))

	e, err := New(SHA256)
	require.NoError(t, err)

	da, err := e.SumFile(a)
	require.NoError(t, err)
	db, err := e.SumFile(b)
	require.NoError(t, err)
	assert.Equal(t, da, db, "digest must not depend on the file name")

	_, err = e.SumFile(filepath.Join(dir, "missing"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeIO))
}

func TestNew(t *testing.T) {
	e, err := New("")
	require.NoError(t, err)
	assert.Equal(t, SHA256, e.Algorithm())

	_, err = New("md5")
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	valid := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"

	d, err := Parse(valid)
	require.NoError(t, err)
	assert.Equal(t, "2c", d.Shard())
	assert.Equal(t, valid[2:], d.Rest())
	assert.Equal(t, valid[:12], d.Short())

	for _, bad := range []string{"", "2cf2", strings.ToUpper(valid), valid[:63] + "g"} {
		_, err := Parse(bad)
		assert.True(t, errors.IsType(err, errors.ErrorTypeValidation), bad)
	}
}

func TestCID(t *testing.T) {
	for _, tt := range []struct {
		algo Algorithm
		code uint64
	}{
		{SHA256, multihash.SHA2_256},
		{BLAKE3, multihash.BLAKE3},
	} {
		e, err := New(tt.algo)
		require.NoError(t, err)
		d := e.SumBytes([]byte("hello"))

		c, err := e.CID(d)
		require.NoError(t, err)
		assert.Equal(t, uint64(gocid.Raw), c.Type())
		assert.Equal(t, tt.code, c.Prefix().MhType)

		decoded, err := multihash.Decode(c.Hash())
		require.NoError(t, err)
		assert.Equal(t, string(d), hex.EncodeToString(decoded.Digest))

		same, err := CID(d, tt.algo)
		require.NoError(t, err)
		assert.True(t, c.Equals(same))
	}
}
