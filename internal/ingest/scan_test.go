package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kinect-show-go/internal/types"
)

func TestScan(t *testing.T) {
	root := t.TempDir()
	writeStream(t, root, types.Depth, 0, []byte{0})
	writeStream(t, root, types.Depth, 10, []byte{0})
	writeStream(t, root, types.Depth, 2, []byte{0})
	writeStream(t, root, types.Index, 2, []byte{0})
	writeStream(t, root, types.Index, 3, []byte{0})

	indexDir := filepath.Join(root, "INDEX")
	for _, name := range []string{"007.uint8", "4.uint16", "notes.txt", ".uint8", "-1.uint8"} {
		require.NoError(t, os.WriteFile(filepath.Join(indexDir, name), nil, 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(indexDir, "5.uint8"), 0o755))

	ix, err := Scan(root + "/")
	require.NoError(t, err)

	assert.Equal(t, []int{0, 2, 10}, ix.Frames(types.Depth))
	assert.Equal(t, []int{2, 3}, ix.Frames(types.Index))
	assert.Empty(t, ix.Frames(types.Color))
	assert.Equal(t, 0, ix.Count(types.TrackedColor))
	assert.Equal(t, []int{0, 2, 3, 10}, ix.AllFrames())
	assert.True(t, ix.Has(types.Depth, 10))
	assert.False(t, ix.Has(types.Depth, 3))
}

func TestScanInvalidRoot(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, ErrInvalidRecordingRoot)
}

func TestSessions(t *testing.T) {
	base := t.TempDir()
	writeStream(t, base+"/2016-03-01 10_00_00", types.Depth, 0, []byte{0})
	writeStream(t, base+"/2016-02-01 09_00_00", types.Color, 0, []byte{0})
	require.NoError(t, os.MkdirAll(filepath.Join(base, "empty"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "readme.txt"), nil, 0o644))

	got, err := Sessions(base)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(base, "2016-02-01 09_00_00"),
		filepath.Join(base, "2016-03-01 10_00_00"),
	}, got)
}

func TestParseFrameName(t *testing.T) {
	n, ok := parseFrameName("12.uint16", "uint16")
	assert.True(t, ok)
	assert.Equal(t, 12, n)

	_, ok = parseFrameName("12.uint8", "uint16")
	assert.False(t, ok)
	_, ok = parseFrameName("0012.uint8", "uint8")
	assert.False(t, ok)
	_, ok = parseFrameName("+1.uint8", "uint8")
	assert.False(t, ok)
}
