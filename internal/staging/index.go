package staging

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"vcs/internal/digest"
	"vcs/internal/errors"
	"vcs/shared/types"
)

// ParseEntries reads "<name> <digest>" lines. Each line is split at its
// first space; lines missing either field are skipped. Filenames that
// contain spaces do not survive this format.
func ParseEntries(r io.Reader) ([]shared.Entry, error) {
	var entries []shared.Entry
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		name, hash, ok := strings.Cut(strings.TrimRight(scanner.Text(), "\r"), " ")
		if !ok || name == "" || hash == "" {
			continue
		}
		entries = append(entries, shared.Entry{Name: name, Digest: digest.Digest(hash)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning entries: %w", err)
	}
	return entries, nil
}

// WriteEntries writes one "<name> <digest>\n" line per entry.
func WriteEntries(w io.Writer, entries []shared.Entry) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		if _, err := bw.WriteString(e.Line() + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadIndex loads the staging index at path. A missing index is reported
// as NoStagedChanges.
func ReadIndex(path string) ([]shared.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NoStagedChanges()
		}
		return nil, errors.IOFailure("open", path, err)
	}
	defer f.Close()

	entries, err := ParseEntries(f)
	if err != nil {
		return nil, errors.IOFailure("read", path, err)
	}
	return entries, nil
}
