package aggregate

import (
	"os"
	"path/filepath"
	"testing"

	"hypoavg/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalker_ListsHierarchyAndSkipsDerivedFiles(t *testing.T) {
	root := t.TempDir()
	writeObservation(t, root, "h1", "v1", "b.json", obs(1, 1))
	writeObservation(t, root, "h1", "v1", "a.json", obs(1, 1))
	writeObservation(t, root, "h1", "v2", "c.json", obs(1, 1))
	writeObservation(t, root, "h2", "v1", "d.json", obs(1, 1))

	// derived artifacts, temp files and foreign files are not observations
	require.NoError(t, os.WriteFile(filepath.Join(root, "h1", "v1", AverageFileName), []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "h1", "v1", ".tmp-average.json-1"), []byte("{"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "h1", "v1", "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "h1", AverageFileName), []byte("{}"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0755))

	ds, err := NewWalker(root, quietLogger()).Walk()
	require.NoError(t, err)

	require.Len(t, ds.Hypotheses, 2)
	h1 := ds.Hypotheses[0]
	assert.Equal(t, "h1", h1.Name)
	require.Len(t, h1.Variants, 2)
	assert.Equal(t, []string{
		filepath.Join(root, "h1", "v1", "a.json"),
		filepath.Join(root, "h1", "v1", "b.json"),
	}, h1.Variants[0].Files)
	assert.Len(t, h1.Variants[1].Files, 1)
	assert.Equal(t, "h2", ds.Hypotheses[1].Name)
}

func TestWalker_MissingRootIsStorageUnavailable(t *testing.T) {
	_, err := NewWalker(filepath.Join(t.TempDir(), "nope"), quietLogger()).Walk()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeStorageUnavailable))
}

func TestWalker_UnlistableHypothesisIsSkipped(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	root := t.TempDir()
	writeObservation(t, root, "ok", "v", "a.json", obs(1, 1))
	writeObservation(t, root, "locked", "v", "a.json", obs(1, 1))
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0000))
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	ds, err := NewWalker(root, quietLogger()).Walk()
	require.NoError(t, err)
	require.Len(t, ds.Hypotheses, 1)
	assert.Equal(t, "ok", ds.Hypotheses[0].Name)
}

func TestIsObservationFile(t *testing.T) {
	assert.True(t, IsObservationFile("/d/h/v/0b6f.json"))
	assert.False(t, IsObservationFile("/d/h/v/average.json"))
	assert.False(t, IsObservationFile("/d/h/v/.tmp-average.json-77"))
	assert.False(t, IsObservationFile("/d/h/v/readme.md"))
}
