package aggregate

import (
	"encoding/json"
	"fmt"
	"os"

	"hypoavg/domain/average"
	"hypoavg/internal/errors"
)

// ReadObservation parses one raw observation file. Anything that does not fit the
// observation shape is reported as MALFORMED_OBSERVATION.
func ReadObservation(path string) (average.RawObservation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return average.RawObservation{}, errors.MalformedObservation(path, err)
	}
	return ParseObservation(path, data)
}

// requiredObservationKeys must be present in every observation document
var requiredObservationKeys = []string{"title", "denomination", "aprioriPct", "posteriorPct"}

// ParseObservation decodes and validates an observation document
func ParseObservation(source string, data []byte) (average.RawObservation, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return average.RawObservation{}, errors.MalformedObservation(source, err)
	}
	if fields == nil {
		return average.RawObservation{}, errors.MalformedObservation(source, fmt.Errorf("document is null"))
	}
	for _, key := range requiredObservationKeys {
		if _, ok := fields[key]; !ok {
			return average.RawObservation{}, errors.MalformedObservation(source, fmt.Errorf("missing %q", key))
		}
	}

	var obs average.RawObservation
	if err := json.Unmarshal(data, &obs); err != nil {
		return average.RawObservation{}, errors.MalformedObservation(source, err)
	}
	if id, dup := obs.DuplicateEvidenceID(); dup {
		return average.RawObservation{}, errors.MalformedObservation(source, fmt.Errorf("evidence id %d listed twice", id))
	}
	return obs, nil
}

// ReadDocument loads a published average
func ReadDocument(path string) (*average.Document, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.NotFound("average " + path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	var doc average.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return &doc, nil
}
