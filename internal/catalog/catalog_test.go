package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"campusdesk/internal/models"
)

func TestLoadMissingFileFallsBack(t *testing.T) {
	entries, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), entries)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statuses.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
statuses:
  - value: open
    label: Open
    badge_color: blue
  - value: resolved
    label: Resolved
    badge_color: green
`), 0o644))

	entries, err := Load(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, models.StatusOpen, entries[0].Value)
	require.Equal(t, "green", entries[1].BadgeColor)
}

func TestLoadRejectsEmptyValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statuses.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
statuses:
  - value: ""
    label: Broken
`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
