package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	t.Setenv("SIFT_TEST_DIR", "/var/data")

	tests := []struct {
		name string
		path string
		want string
	}{
		{"empty", "", ""},
		{"absolute path untouched", "/etc/sift/config.yaml", "/etc/sift/config.yaml"},
		{"tilde prefix", "~/.local/share/sift/sift.db", filepath.Join(home, ".local/share/sift/sift.db")},
		{"bare tilde", "~", home},
		{"env var", "$SIFT_TEST_DIR/sift.db", "/var/data/sift.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.path))
		})
	}
}
