package average

import "math"

// RollupDenomination labels the hypothesis-wide average built from every variant
const RollupDenomination = "All"

// ============================================================================
// INPUT: raw observations as submitted
// ============================================================================

// EvidenceObservation is one evidence entry of a submitted observation
type EvidenceObservation struct {
	ID      int     `json:"id"`
	Head    string  `json:"head"`
	PehPct  float64 `json:"pehPct"`  // P(E|H) in percent
	PenhPct float64 `json:"penhPct"` // P(E|¬H) in percent
	Weight  int     `json:"weight"`  // 0 means the respondent disregarded this evidence
}

// RawObservation is one submitted survey record. Title is the hypothesis path segment,
// Denomination the variant path segment. Never mutated after submission.
type RawObservation struct {
	Name         string                `json:"name,omitempty"`
	Title        string                `json:"title"`
	Denomination string                `json:"denomination"`
	AprioriPct   float64               `json:"aprioriPct"`
	PosteriorPct float64               `json:"posteriorPct"`
	Evidence     []EvidenceObservation `json:"evidence"`
}

// HypothesisID returns the hypothesis this observation belongs to
func (o RawObservation) HypothesisID() string { return o.Title }

// VariantID returns the variant this observation belongs to
func (o RawObservation) VariantID() string { return o.Denomination }

// DuplicateEvidenceID returns the first evidence id listed more than once, if any
func (o RawObservation) DuplicateEvidenceID() (int, bool) {
	seen := make(map[int]struct{}, len(o.Evidence))
	for _, e := range o.Evidence {
		if _, dup := seen[e.ID]; dup {
			return e.ID, true
		}
		seen[e.ID] = struct{}{}
	}
	return 0, false
}

// ============================================================================
// REFERENCE DATA
// ============================================================================

// SchemaEntry is one canonical evidence item of a hypothesis
type SchemaEntry struct {
	ID   int    `json:"id" yaml:"id" db:"evidence_id"`
	Head string `json:"head" yaml:"head" db:"head"`
}

// EvidenceSchema fixes identity, order and display label of a hypothesis' evidence.
// An empty schema means no reference data exists.
type EvidenceSchema []SchemaEntry

// ============================================================================
// ACCUMULATION STATE
// ============================================================================

// Labels identifies what an average describes
type Labels struct {
	Name         string
	Title        string
	Denomination string
}

// EvidenceAverage is the running mean of one evidence item.
// INVARIANTS:
// - Count <= owning RunningAverage.Count
// - Weight == RoundHalfUp(weightInternal), never set independently
type EvidenceAverage struct {
	ID             int
	Head           string
	Count          int
	CountDisregard int // folded samples whose weight was 0
	PehPct         float64
	PenhPct        float64
	Weight         int

	weightInternal float64
}

// WeightInternal returns the unrounded weight mean
func (e EvidenceAverage) WeightInternal() float64 {
	return e.weightInternal
}

func (e *EvidenceAverage) setWeight(w float64) {
	e.weightInternal = w
	e.Weight = RoundHalfUp(w)
}

// RunningAverage accumulates one (hypothesis, variant) pair or the hypothesis rollup.
// The zero value is the empty accumulator.
type RunningAverage struct {
	Labels
	Count            int // samples folded in
	ObservationCount int // raw observations underneath, equal to Count below the rollup
	AprioriPct       float64
	PosteriorPct     float64
	Evidence         EvidenceSet
}

// IsEmpty reports whether nothing has been folded yet
func (a RunningAverage) IsEmpty() bool {
	return a.Count == 0
}

// Clone returns a deep copy that shares no evidence storage with a
func (a RunningAverage) Clone() RunningAverage {
	out := a
	out.Evidence = a.Evidence.clone()
	return out
}

// NormalizedAverage is the only representation ever persisted. Evidence follows schema
// order unless Normalized is false (no schema existed), in which case it is first-seen order.
type NormalizedAverage struct {
	Labels
	Count            int
	ObservationCount int
	AprioriPct       float64
	PosteriorPct     float64
	Evidence         []EvidenceAverage
	Normalized       bool
}

// RoundHalfUp rounds to the nearest integer, halves rounding towards +Inf
func RoundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
