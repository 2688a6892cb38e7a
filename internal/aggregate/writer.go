package aggregate

import (
	"encoding/json"
	"path/filepath"

	"hypoavg/domain/average"
	"hypoavg/internal"
	"hypoavg/internal/errors"
	"hypoavg/internal/fsutil"
)

// Writer publishes normalized averages as <dir>/average.json
type Writer struct {
	logger *internal.Logger
}

// NewWriter creates a writer
func NewWriter(logger *internal.Logger) *Writer {
	return &Writer{logger: logger.WithComponent("Writer")}
}

// Publish rounds n and atomically replaces dir/average.json. On failure the previously
// published document stays in place.
func (w *Writer) Publish(dir string, n average.NormalizedAverage) error {
	path := filepath.Join(dir, AverageFileName)

	data, err := Encode(average.ToDocument(n))
	if err != nil {
		return errors.WriteFailure(path, err)
	}
	if err := fsutil.WriteFileAtomic(path, data, 0644); err != nil {
		return errors.WriteFailure(path, err)
	}

	w.logger.Debug("published %s (count=%d)", path, n.Count)
	return nil
}

// Encode renders a document the way it is stored on disk
func Encode(doc average.Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
