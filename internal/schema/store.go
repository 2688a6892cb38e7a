// Package schema loads the canonical evidence list of each hypothesis. Schemas are
// reference data: read fresh on every aggregation pass and never written by it.
package schema

import (
	"context"
	"fmt"

	"hypoavg/domain/average"
	"hypoavg/internal/errors"
)

// Store returns the evidence schema for a hypothesis. A hypothesis without reference
// data yields an error with code SCHEMA_MISSING.
type Store interface {
	Load(ctx context.Context, hypothesis string) (average.EvidenceSchema, error)
}

// Document is the on-disk and over-the-wire schema shape: {"evidence":[{"id":1,"head":"..."}]}
type Document struct {
	Evidence []average.SchemaEntry `json:"evidence" yaml:"evidence"`
}

// Validate rejects schemas listing the same evidence id twice
func Validate(hypothesis string, s average.EvidenceSchema) error {
	seen := make(map[int]struct{}, len(s))
	for _, entry := range s {
		if _, dup := seen[entry.ID]; dup {
			return errors.ValidationError(fmt.Sprintf("schema for %q lists evidence id %d twice", hypothesis, entry.ID))
		}
		seen[entry.ID] = struct{}{}
	}
	return nil
}
