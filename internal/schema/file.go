package schema

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"hypoavg/domain/average"
	"hypoavg/internal/errors"

	"gopkg.in/yaml.v3"
)

// FileStore reads <dir>/<hypothesis>.json, falling back to .yaml and .yml
type FileStore struct {
	dir string
}

// NewFileStore creates a schema store rooted at dir
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

var fileDecoders = []struct {
	ext    string
	decode func([]byte, *Document) error
}{
	{".json", func(b []byte, d *Document) error { return json.Unmarshal(b, d) }},
	{".yaml", func(b []byte, d *Document) error { return yaml.Unmarshal(b, d) }},
	{".yml", func(b []byte, d *Document) error { return yaml.Unmarshal(b, d) }},
}

// Load implements Store
func (s *FileStore) Load(ctx context.Context, hypothesis string) (average.EvidenceSchema, error) {
	if hypothesis == "" || filepath.Base(hypothesis) != hypothesis {
		return nil, errors.InvalidInput("invalid hypothesis name " + hypothesis)
	}

	for _, d := range fileDecoders {
		path := filepath.Join(s.dir, hypothesis+d.ext)
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read schema %s", path)
		}

		var doc Document
		if err := d.decode(data, &doc); err != nil {
			return nil, errors.WithCodef(errors.CodeValidationError, err, "failed to parse schema %s", path)
		}
		if len(doc.Evidence) == 0 {
			return nil, errors.SchemaMissing(hypothesis)
		}
		schema := average.EvidenceSchema(doc.Evidence)
		if err := Validate(hypothesis, schema); err != nil {
			return nil, err
		}
		return schema, nil
	}
	return nil, errors.SchemaMissing(hypothesis)
}

// ReadFile parses a single schema document, choosing the decoder by extension
func ReadFile(path string) (average.EvidenceSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read schema %s", path)
	}
	var doc Document
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	default:
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, errors.WithCodef(errors.CodeValidationError, err, "failed to parse schema %s", path)
	}
	return average.EvidenceSchema(doc.Evidence), nil
}
