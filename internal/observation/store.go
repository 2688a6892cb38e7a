// Package observation stores submitted survey results as raw observation files
// under <root>/<hypothesis>/<variant>/<id>.json.
package observation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"hypoavg/domain/average"
	"hypoavg/internal"
	"hypoavg/internal/aggregate"
	"hypoavg/internal/errors"
	"hypoavg/internal/fsutil"

	"github.com/google/uuid"
)

var segmentPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidateSegment checks that name can be used as a single directory name
func ValidateSegment(field, name string) error {
	if name == "" {
		return errors.InvalidInput(field + " is required")
	}
	if name == "." || name == ".." || !segmentPattern.MatchString(name) {
		return errors.InvalidInput(fmt.Sprintf("%s %q must match [A-Za-z0-9._-]+", field, name))
	}
	return nil
}

// Stored describes a persisted observation
type Stored struct {
	ID         string
	Hypothesis string
	Variant    string
	Path       string
}

// Store persists raw observations
type Store struct {
	root   string
	logger *internal.Logger
}

// NewStore creates a store rooted at the data directory
func NewStore(root string, logger *internal.Logger) *Store {
	return &Store{root: root, logger: logger.WithComponent("ObservationStore")}
}

// Root returns the data directory
func (s *Store) Root() string { return s.root }

// Save validates body and writes it verbatim under a fresh id
func (s *Store) Save(body []byte) (*Stored, error) {
	obs, err := Validate(body)
	if err != nil {
		return nil, err
	}

	hypothesis, variant := obs.HypothesisID(), obs.VariantID()
	dir := filepath.Join(s.root, hypothesis, variant)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.WriteFailure(dir, err)
	}

	id := uuid.New().String()
	path := filepath.Join(dir, id+".json")
	if err := fsutil.WriteFileAtomic(path, body, 0644); err != nil {
		return nil, errors.WriteFailure(path, err)
	}

	s.logger.Info("stored observation %s for %s/%s", id, hypothesis, variant)
	return &Stored{ID: id, Hypothesis: hypothesis, Variant: variant, Path: path}, nil
}

// FindByID returns the raw document stored under id
func (s *Store) FindByID(id string) ([]byte, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.InvalidInput(fmt.Sprintf("invalid result id %q", id))
	}

	matches, err := filepath.Glob(filepath.Join(s.root, "*", "*", parsed.String()+".json"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to search results")
	}
	if len(matches) == 0 {
		return nil, errors.NotFound("result " + id)
	}
	if len(matches) > 1 {
		s.logger.Warn("result %s stored %d times, serving %s", id, len(matches), matches[0])
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read result %s", id)
	}
	return data, nil
}

// Validate checks the shape of a submitted observation
func Validate(body []byte) (average.RawObservation, error) {
	obs, err := aggregate.ParseObservation("request body", body)
	if err != nil {
		return average.RawObservation{}, errors.WithCode(errors.CodeValidationError, err)
	}
	if err := ValidateSegment("title", obs.HypothesisID()); err != nil {
		return average.RawObservation{}, err
	}
	if err := ValidateSegment("denomination", obs.VariantID()); err != nil {
		return average.RawObservation{}, err
	}

	var shape struct {
		Evidence []map[string]json.RawMessage `json:"evidence"`
	}
	if err := json.Unmarshal(body, &shape); err != nil {
		return average.RawObservation{}, errors.ValidationError("evidence must be a list of objects")
	}
	for i, e := range shape.Evidence {
		if _, ok := e["id"]; !ok {
			return average.RawObservation{}, errors.ValidationError(fmt.Sprintf("evidence[%d] has no id", i))
		}
	}
	return obs, nil
}
