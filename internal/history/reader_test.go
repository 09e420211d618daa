package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"vcs/internal/commit"
	"vcs/internal/config"
	"vcs/internal/errors"
	"vcs/shared/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// commitAt writes an index and commits it with the clock pinned to secs.
func commitAt(t *testing.T, dir string, secs int64, index string) {
	indexPath := filepath.Join(dir, "index")
	require.NoError(t, os.WriteFile(indexPath, []byte(index), 0644))

	l := commit.NewLog(filepath.Join(dir, "commits"), indexPath,
		commit.WithClock(func() time.Time { return time.Unix(secs, 0) }))
	_, err := l.Create()
	require.NoError(t, err)
}

func newLog(dir string) *commit.Log {
	return commit.NewLog(filepath.Join(dir, "commits"), filepath.Join(dir, "index"))
}

func ids(commits []shared.Commit) []string {
	out := make([]string, 0, len(commits))
	for _, c := range commits {
		out = append(out, c.ID)
	}
	return out
}

func TestListLexicalOrder(t *testing.T) {
	dir := t.TempDir()
	commitAt(t, dir, 9, "nine.txt 999\n")
	commitAt(t, dir, 10, "ten.txt 101\n")

	commits, err := NewReader(newLog(dir), config.OrderLexical, nil).List()
	require.NoError(t, err)

	// String comparison puts "10" ahead of "9" even though 9 came first.
	assert.Equal(t, []string{"10", "9"}, ids(commits))
	assert.Equal(t, time.Unix(10, 0), commits[0].Time)
	assert.Equal(t, []shared.Entry{{Name: "nine.txt", Digest: "999"}}, commits[1].Entries)
}

func TestListNumericOrder(t *testing.T) {
	dir := t.TempDir()
	commitAt(t, dir, 10, "ten.txt 101\n")
	commitAt(t, dir, 9, "nine.txt 999\n")
	commitAt(t, dir, 100, "hundred.txt 100\n")

	commits, err := NewReader(newLog(dir), config.OrderNumeric, nil).List()
	require.NoError(t, err)
	assert.Equal(t, []string{"9", "10", "100"}, ids(commits))
}

func TestListEmpty(t *testing.T) {
	dir := t.TempDir()

	commits, err := NewReader(newLog(dir), "", nil).List()
	require.NoError(t, err)
	assert.NotNil(t, commits)
	assert.Empty(t, commits)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "commits"), 0755))
	commits, err = NewReader(newLog(dir), "", nil).List()
	require.NoError(t, err)
	assert.Empty(t, commits)
}

// flakySource reports ids whose records cannot all be read.
type flakySource struct {
	ids     []string
	missing map[string]bool
}

func (f *flakySource) IDs() ([]string, error) {
	return append([]string(nil), f.ids...), nil
}

func (f *flakySource) Read(id string) (*shared.Commit, error) {
	if f.missing[id] {
		return nil, errors.CorruptCommit(id, os.ErrNotExist)
	}
	return &shared.Commit{ID: id, Time: commit.TimeOf(id)}, nil
}

func TestListSkipsUnreadableRecords(t *testing.T) {
	src := &flakySource{ids: []string{"3", "1", "2"}, missing: map[string]bool{"2": true}}

	commits, err := NewReader(src, config.OrderLexical, nil).List()
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, ids(commits))
}

func TestAllStopsEarly(t *testing.T) {
	src := &flakySource{ids: []string{"1", "2", "3"}}

	var seen []string
	for c := range NewReader(src, config.OrderLexical, nil).All() {
		seen = append(seen, c.ID)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"1", "2"}, seen)
}

func TestSortIDs(t *testing.T) {
	tests := []struct {
		name  string
		order string
		in    []string
		want  []string
	}{
		{"lexical crosses digit boundary", config.OrderLexical, []string{"9", "10", "100"}, []string{"10", "100", "9"}},
		{"numeric", config.OrderNumeric, []string{"100", "9", "10"}, []string{"9", "10", "100"}},
		{"numeric puts junk last", config.OrderNumeric, []string{"x", "2", "1"}, []string{"1", "2", "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SortIDs(tt.in, tt.order)
			assert.Equal(t, tt.want, tt.in)
		})
	}
}
