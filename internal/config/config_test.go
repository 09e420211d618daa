package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name      string
		file      string
		body      string
		wantAlgo  string
		wantOrder string
		wantErr   bool
	}{
		{
			name:      "json overrides",
			file:      "config.json",
			body:      `{"digest":{"algorithm":"blake3"},"history":{"order":"numeric"}}`,
			wantAlgo:  "blake3",
			wantOrder: OrderNumeric,
		},
		{
			name:      "yaml overrides",
			file:      "config.yaml",
			body:      "digest:\n  algorithm: blake3\nlog_level: debug\n",
			wantAlgo:  "blake3",
			wantOrder: OrderLexical,
		},
		{
			name:      "empty json keeps defaults",
			file:      "empty.json",
			body:      `{}`,
			wantAlgo:  "sha256",
			wantOrder: OrderLexical,
		},
		{
			name:    "unknown algorithm",
			file:    "bad.json",
			body:    `{"digest":{"algorithm":"md5"}}`,
			wantErr: true,
		},
		{
			name:    "unknown order",
			file:    "bad.yml",
			body:    "history:\n  order: random\n",
			wantErr: true,
		},
		{
			name:    "malformed json",
			file:    "broken.json",
			body:    `{`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0644))

			c, err := Load(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAlgo, c.Digest.Algorithm)
			assert.Equal(t, tt.wantOrder, c.History.Order)
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	c, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	c := Default()
	c.History.Order = OrderNumeric
	require.NoError(t, c.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}

func TestPathEnvOverride(t *testing.T) {
	assert.Equal(t, filepath.Join("repo", FileName), Path("repo"))

	t.Setenv(EnvPath, "/etc/vcs.yaml")
	assert.Equal(t, "/etc/vcs.yaml", Path("repo"))
}
