package average

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func schemaABC() EvidenceSchema {
	return EvidenceSchema{{ID: 1, Head: "A"}, {ID: 2, Head: "B"}, {ID: 3, Head: "C"}}
}

func TestNormalize_FillsMissingWithDisregardedPlaceholders(t *testing.T) {
	acc := FoldAll([]RawObservation{
		observation(40, 60, ev(2, 80, 20, 2)),
		observation(50, 70, ev(2, 60, 40, 1)),
		observation(60, 80, ev(2, 70, 30, 3)),
	})

	n := Normalize(acc, schemaABC())
	require.True(t, n.Normalized)
	require.Len(t, n.Evidence, 3)

	ids := []int{n.Evidence[0].ID, n.Evidence[1].ID, n.Evidence[2].ID}
	assert.Equal(t, []int{1, 2, 3}, ids)

	for _, i := range []int{0, 2} {
		p := n.Evidence[i]
		assert.Equal(t, 0, p.Weight)
		assert.Equal(t, 0.0, p.WeightInternal())
		assert.Equal(t, 0.0, p.PehPct)
		assert.Equal(t, 0.0, p.PenhPct)
		assert.Equal(t, acc.Count, p.Count)
		assert.Equal(t, acc.Count, p.CountDisregard)
	}
	assert.Equal(t, "A", n.Evidence[0].Head)
	assert.Equal(t, "C", n.Evidence[2].Head)

	observed := n.Evidence[1]
	assert.Equal(t, 3, observed.Count)
	assert.InDelta(t, 70.0, observed.PehPct, tolerance)
	assert.Equal(t, "B", observed.Head)
}

func TestNormalize_FollowsSchemaOrderAndDropsUnknownIDs(t *testing.T) {
	acc := FoldAll([]RawObservation{
		observation(50, 50, ev(9, 1, 1, 1), ev(3, 30, 30, 1), ev(1, 10, 10, 1)),
	})

	n := Normalize(acc, schemaABC())
	ids := make([]int, 0, len(n.Evidence))
	for _, e := range n.Evidence {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []int{1, 2, 3}, ids)
}

func TestNormalize_EmptySchemaPassesThrough(t *testing.T) {
	acc := FoldAll([]RawObservation{
		observation(50, 50, ev(5, 1, 1, 1), ev(2, 2, 2, 1)),
		observation(50, 50, ev(8, 3, 3, 1)),
	})

	n := Normalize(acc, nil)
	assert.False(t, n.Normalized)
	require.Len(t, n.Evidence, 3)
	assert.Equal(t, 5, n.Evidence[0].ID)
	assert.Equal(t, 2, n.Evidence[1].ID)
	assert.Equal(t, 8, n.Evidence[2].ID)
	assert.Equal(t, acc.Count, n.Count)
}

func TestNormalize_DuplicateSchemaIDPlacedOnce(t *testing.T) {
	acc := FoldAll([]RawObservation{observation(50, 50, ev(1, 1, 1, 1))})
	n := Normalize(acc, EvidenceSchema{{ID: 1, Head: "A"}, {ID: 1, Head: "again"}})
	require.Len(t, n.Evidence, 1)
	assert.Equal(t, "A", n.Evidence[0].Head)
}

func TestToDocument_RoundsOnlyOnOutput(t *testing.T) {
	acc := FoldAll([]RawObservation{
		observation(10, 20, ev(1, 10, 11, 1), ev(2, 0, 0, 0)),
		observation(11, 21, ev(1, 11, 12, 2), ev(2, 0, 0, 0)),
	})
	n := Normalize(acc, schemaABC())
	doc := ToDocument(n)

	assert.Equal(t, 11, doc.AprioriPct) // 10.5
	assert.Equal(t, 21, doc.PosteriorPct)
	assert.Equal(t, 2, doc.Count)
	assert.Equal(t, 2, doc.ObservationCount)
	require.Len(t, doc.Evidence, 3)

	first := doc.Evidence[0]
	assert.Equal(t, 11, first.PehPct)  // 10.5
	assert.Equal(t, 12, first.PenhPct) // 11.5
	assert.Equal(t, 2, first.Weight)   // 1.5
	assert.Equal(t, 0, first.CountDisregardPct)

	second := doc.Evidence[1]
	assert.Equal(t, 2, second.CountDisregard)
	assert.Equal(t, 100, second.CountDisregardPct)

	// the accumulator still holds the unrounded values
	assert.Equal(t, 10.5, n.AprioriPct)
}
