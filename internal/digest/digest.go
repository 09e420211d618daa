// Package digest computes the content fingerprints objects are stored under.
//
// A Digest is the lowercase hex rendering of a 256-bit hash. Identical bytes
// always produce the identical Digest, whatever file or path they came from.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"

	"vcs/internal/errors"

	gocid "github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"github.com/zeebo/blake3"
)

// ChunkSize bounds how much of a source is held in memory while hashing.
const ChunkSize = 32 * 1024

// Size is the hex length of every digest produced here.
const Size = 64

type Algorithm string

const (
	SHA256 Algorithm = "sha256"
	BLAKE3 Algorithm = "blake3"
)

// Digest is a hex-encoded content hash.
type Digest string

func (d Digest) String() string { return string(d) }

// Shard is the object directory name: the first two hex characters.
func (d Digest) Shard() string { return string(d[:2]) }

// Rest is the object file name inside the shard.
func (d Digest) Rest() string { return string(d[2:]) }

// Short returns the first 12 characters, for display.
func (d Digest) Short() string {
	if len(d) < 12 {
		return string(d)
	}
	return string(d[:12])
}

// Parse validates s as a digest produced by this package.
func Parse(s string) (Digest, error) {
	if len(s) != Size {
		return "", errors.ValidationError(fmt.Sprintf("invalid digest %q: want %d hex characters", s, Size), s)
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return "", errors.ValidationError(fmt.Sprintf("invalid digest %q: not lowercase hex", s), s)
		}
	}
	return Digest(s), nil
}

// Engine hashes byte streams with one algorithm.
type Engine struct {
	algo Algorithm
}

func New(algo Algorithm) (*Engine, error) {
	switch algo {
	case SHA256, BLAKE3:
		return &Engine{algo: algo}, nil
	case "":
		return &Engine{algo: SHA256}, nil
	}
	return nil, fmt.Errorf("unsupported digest algorithm %q", algo)
}

func (e *Engine) Algorithm() Algorithm { return e.algo }

func (e *Engine) newHash() hash.Hash {
	if e.algo == BLAKE3 {
		return blake3.New()
	}
	return sha256.New()
}

// Sum streams r through the hash in ChunkSize reads.
func (e *Engine) Sum(r io.Reader) (Digest, error) {
	h := e.newHash()
	buf := make([]byte, ChunkSize)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", fmt.Errorf("reading content: %w", err)
	}
	return Digest(hex.EncodeToString(h.Sum(nil))), nil
}

// SumBytes hashes an in-memory buffer.
func (e *Engine) SumBytes(b []byte) Digest {
	h := e.newHash()
	h.Write(b)
	return Digest(hex.EncodeToString(h.Sum(nil)))
}

// SumFile hashes the file at path.
func (e *Engine) SumFile(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.IOFailure("open", path, err)
	}
	defer f.Close()

	d, err := e.Sum(f)
	if err != nil {
		return "", errors.IOFailure("read", path, err)
	}
	return d, nil
}

// CID renders d as a CIDv1 with the raw codec, so objects can be named the
// way content-addressed tooling outside this repository expects.
func (e *Engine) CID(d Digest) (gocid.Cid, error) {
	return CID(d, e.algo)
}

// CID renders d, produced by algo, as a CIDv1 raw multihash.
func CID(d Digest, algo Algorithm) (gocid.Cid, error) {
	raw, err := hex.DecodeString(string(d))
	if err != nil {
		return gocid.Undef, fmt.Errorf("decoding digest: %w", err)
	}
	code := uint64(multihash.SHA2_256)
	if algo == BLAKE3 {
		code = multihash.BLAKE3
	}
	mh, err := multihash.Encode(raw, code)
	if err != nil {
		return gocid.Undef, fmt.Errorf("multihash: %w", err)
	}
	return gocid.NewCidV1(gocid.Raw, mh), nil
}
