package schema

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"hypoavg/domain/average"
	"hypoavg/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestFileStore_LoadJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "resurrection.json"),
		`{"evidence":[{"id":3,"head":"Empty tomb"},{"id":1,"head":"Appearances"}]}`)

	got, err := NewFileStore(dir).Load(context.Background(), "resurrection")
	require.NoError(t, err)
	assert.Equal(t, average.EvidenceSchema{{ID: 3, Head: "Empty tomb"}, {ID: 1, Head: "Appearances"}}, got)
}

func TestFileStore_LoadYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "fine-tuning.yaml"), `
evidence:
  - id: 1
    head: Constants
  - id: 2
    head: Multiverse
`)

	got, err := NewFileStore(dir).Load(context.Background(), "fine-tuning")
	require.NoError(t, err)
	assert.Equal(t, average.EvidenceSchema{{ID: 1, Head: "Constants"}, {ID: 2, Head: "Multiverse"}}, got)
}

func TestFileStore_MissingSchema(t *testing.T) {
	_, err := NewFileStore(t.TempDir()).Load(context.Background(), "unknown")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeSchemaMissing))
}

func TestFileStore_EmptyEvidenceIsMissing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "h.json"), `{"evidence":[]}`)

	_, err := NewFileStore(dir).Load(context.Background(), "h")
	assert.True(t, errors.Is(err, errors.CodeSchemaMissing))
}

func TestFileStore_InvalidDocuments(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "broken.json"), `{"evidence":[`)
	writeFile(t, filepath.Join(dir, "dup.json"), `{"evidence":[{"id":1,"head":"a"},{"id":1,"head":"b"}]}`)
	store := NewFileStore(dir)

	_, err := store.Load(context.Background(), "broken")
	assert.True(t, errors.Is(err, errors.CodeValidationError))

	_, err = store.Load(context.Background(), "dup")
	assert.True(t, errors.Is(err, errors.CodeValidationError))

	_, err = store.Load(context.Background(), "../escape")
	assert.True(t, errors.Is(err, errors.CodeInvalidInput))
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.yml")
	writeFile(t, path, "evidence:\n  - id: 9\n    head: Nine\n")

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, average.EvidenceSchema{{ID: 9, Head: "Nine"}}, got)
}
