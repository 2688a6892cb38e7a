package schema

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"hypoavg/domain/average"
	"hypoavg/internal/errors"
)

// Replacer stores a whole schema for a hypothesis
type Replacer interface {
	Replace(ctx context.Context, hypothesis string, schema average.EvidenceSchema) error
}

// SchemaFile is one schema document found in a directory
type SchemaFile struct {
	Hypothesis string
	Path       string
}

// ListFiles returns the schema files in dir, one per hypothesis. When a hypothesis has
// several, the same precedence as FileStore applies (.json, then .yaml, then .yml).
func ListFiles(dir string) ([]SchemaFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.StorageUnavailable(dir, err)
	}

	rank := map[string]int{}
	for i, d := range fileDecoders {
		rank[d.ext] = i
	}

	best := map[string]SchemaFile{}
	bestRank := map[string]int{}
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		ext := filepath.Ext(e.Name())
		r, ok := rank[ext]
		if !ok {
			continue
		}
		hypothesis := strings.TrimSuffix(e.Name(), ext)
		if prev, seen := bestRank[hypothesis]; seen && prev <= r {
			continue
		}
		best[hypothesis] = SchemaFile{Hypothesis: hypothesis, Path: filepath.Join(dir, e.Name())}
		bestRank[hypothesis] = r
	}

	out := make([]SchemaFile, 0, len(best))
	for _, f := range best {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hypothesis < out[j].Hypothesis })
	return out, nil
}

// ImportFile parses path and stores it as the schema of hypothesis
func ImportFile(ctx context.Context, dst Replacer, hypothesis, path string) (int, error) {
	s, err := ReadFile(path)
	if err != nil {
		return 0, err
	}
	if len(s) == 0 {
		return 0, errors.ValidationError("schema " + path + " lists no evidence")
	}
	if err := dst.Replace(ctx, hypothesis, s); err != nil {
		return 0, err
	}
	return len(s), nil
}

// ImportDir copies every schema file in dir into dst and returns the imported hypotheses
func ImportDir(ctx context.Context, dst Replacer, dir string) ([]string, error) {
	files, err := ListFiles(dir)
	if err != nil {
		return nil, err
	}
	imported := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := ImportFile(ctx, dst, f.Hypothesis, f.Path); err != nil {
			return imported, errors.Wrapf(err, "failed to import %s", f.Path)
		}
		imported = append(imported, f.Hypothesis)
	}
	return imported, nil
}
