package aggregate

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"hypoavg/domain/average"
	"hypoavg/internal"
	"hypoavg/internal/errors"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func quietLogger() *internal.Logger {
	return internal.NewLogger(internal.LogLevelError)
}

// MockSchemaStore is a schema.Store driven by testify expectations
type MockSchemaStore struct {
	mock.Mock
}

func (m *MockSchemaStore) Load(ctx context.Context, hypothesis string) (average.EvidenceSchema, error) {
	args := m.Called(ctx, hypothesis)
	s, _ := args.Get(0).(average.EvidenceSchema)
	return s, args.Error(1)
}

// mapSchemaStore serves fixed schemas; unknown hypotheses are missing
type mapSchemaStore map[string]average.EvidenceSchema

func (m mapSchemaStore) Load(_ context.Context, hypothesis string) (average.EvidenceSchema, error) {
	if s, ok := m[hypothesis]; ok {
		return s, nil
	}
	return nil, errors.SchemaMissing(hypothesis)
}

func writeObservation(t *testing.T, root, hypothesis, variant, name string, obs average.RawObservation) string {
	t.Helper()
	dir := filepath.Join(root, hypothesis, variant)
	require.NoError(t, os.MkdirAll(dir, 0755))
	if obs.Title == "" {
		obs.Title = hypothesis
	}
	if obs.Denomination == "" {
		obs.Denomination = variant
	}
	data, err := json.Marshal(obs)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func obs(apriori, posterior float64, evidence ...average.EvidenceObservation) average.RawObservation {
	return average.RawObservation{AprioriPct: apriori, PosteriorPct: posterior, Evidence: evidence}
}

func evObs(id int, head string, peh, penh float64, weight int) average.EvidenceObservation {
	return average.EvidenceObservation{ID: id, Head: head, PehPct: peh, PenhPct: penh, Weight: weight}
}

func readDoc(t *testing.T, path string) *average.Document {
	t.Helper()
	doc, err := ReadDocument(path)
	require.NoError(t, err)
	return doc
}
