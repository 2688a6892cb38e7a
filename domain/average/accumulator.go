package average

// EvidenceSample is one evidence entry as seen by the accumulator
type EvidenceSample struct {
	ID      int
	Head    string
	PehPct  float64
	PenhPct float64
	Weight  float64
}

// Sample is anything that can be folded into a RunningAverage: a raw observation,
// or a variant average folded into the hypothesis rollup as if it were one observation.
type Sample interface {
	SampleLabels() Labels
	SampleApriori() float64
	SamplePosterior() float64
	SampleEvidence() []EvidenceSample
	SampleObservations() int
}

// SampleLabels returns the hypothesis and variant the observation belongs to.
func (o RawObservation) SampleLabels() Labels {
	return Labels{Name: o.Name, Title: o.Title, Denomination: o.Denomination}
}

// SampleApriori returns the prior percentage as read.
func (o RawObservation) SampleApriori() float64 { return o.AprioriPct }

// SamplePosterior returns the posterior percentage as read.
func (o RawObservation) SamplePosterior() float64 { return o.PosteriorPct }

// SampleObservations is always 1 for a raw observation.
func (o RawObservation) SampleObservations() int { return 1 }

// SampleEvidence converts each evidence entry to a sample of its declared weight.
func (o RawObservation) SampleEvidence() []EvidenceSample {
	out := make([]EvidenceSample, 0, len(o.Evidence))
	for _, e := range o.Evidence {
		out = append(out, EvidenceSample{
			ID:      e.ID,
			Head:    e.Head,
			PehPct:  e.PehPct,
			PenhPct: e.PenhPct,
			Weight:  float64(e.Weight),
		})
	}
	return out
}

// SampleLabels returns the labels of the folded average.
func (a RunningAverage) SampleLabels() Labels { return a.Labels }

// SampleApriori returns the unrounded mean prior.
func (a RunningAverage) SampleApriori() float64 { return a.AprioriPct }

// SamplePosterior returns the unrounded mean posterior.
func (a RunningAverage) SamplePosterior() float64 { return a.PosteriorPct }

// SampleObservations returns how many observations the average already covers.
func (a RunningAverage) SampleObservations() int { return a.ObservationCount }

// SampleEvidence exposes the unrounded weight so a rollup never folds rounded values
func (a RunningAverage) SampleEvidence() []EvidenceSample {
	out := make([]EvidenceSample, 0, a.Evidence.Len())
	for _, e := range a.Evidence.All() {
		out = append(out, EvidenceSample{
			ID:      e.ID,
			Head:    e.Head,
			PehPct:  e.PehPct,
			PenhPct: e.PenhPct,
			Weight:  e.weightInternal,
		})
	}
	return out
}

// OnlineMean folds x into a mean over n-1 samples, giving the mean over n.
func OnlineMean(avg float64, n int, x float64) float64 {
	return avg + (x-avg)/float64(n)
}

// Fold returns current with s folded in. current is never modified; the result
// shares no storage with it or with s. Within one sample only the first entry for
// an evidence id counts.
func Fold(current RunningAverage, s Sample) RunningAverage {
	if current.IsEmpty() {
		return seed(s)
	}

	next := current.Clone()
	n := next.Count + 1
	next.AprioriPct = OnlineMean(next.AprioriPct, n, s.SampleApriori())
	next.PosteriorPct = OnlineMean(next.PosteriorPct, n, s.SamplePosterior())
	next.Count = n
	next.ObservationCount += s.SampleObservations()

	seen := make(map[int]struct{})
	for _, es := range s.SampleEvidence() {
		if _, dup := seen[es.ID]; dup {
			continue
		}
		seen[es.ID] = struct{}{}

		existing, ok := next.Evidence.Get(es.ID)
		if !ok {
			// first appearance of this id partway through the fold
			next.Evidence.put(seedEvidence(es))
			continue
		}
		existing.Count++
		existing.PehPct = OnlineMean(existing.PehPct, existing.Count, es.PehPct)
		existing.PenhPct = OnlineMean(existing.PenhPct, existing.Count, es.PenhPct)
		existing.setWeight(OnlineMean(existing.weightInternal, existing.Count, es.Weight))
		if es.Weight == 0 {
			existing.CountDisregard++
		}
		next.Evidence.put(existing)
	}
	return next
}

// FoldAll folds samples in order into an empty accumulator
func FoldAll[S Sample](samples []S) RunningAverage {
	var acc RunningAverage
	for _, s := range samples {
		acc = Fold(acc, s)
	}
	return acc
}

// Rollup folds variant averages, each counted as a single sample, into the
// hypothesis-wide average labelled RollupDenomination. The first variant seeds
// the rollup by value; later variants use the update recurrence.
func Rollup(variants []RunningAverage) RunningAverage {
	var acc RunningAverage
	for _, v := range variants {
		if v.IsEmpty() {
			continue
		}
		acc = Fold(acc, v)
		acc.Denomination = RollupDenomination
	}
	return acc
}

func seed(s Sample) RunningAverage {
	acc := RunningAverage{
		Labels:           s.SampleLabels(),
		Count:            1,
		ObservationCount: s.SampleObservations(),
		AprioriPct:       s.SampleApriori(),
		PosteriorPct:     s.SamplePosterior(),
	}
	for _, es := range s.SampleEvidence() {
		if _, dup := acc.Evidence.Get(es.ID); dup {
			continue
		}
		acc.Evidence.put(seedEvidence(es))
	}
	return acc
}

func seedEvidence(es EvidenceSample) EvidenceAverage {
	e := EvidenceAverage{
		ID:      es.ID,
		Head:    es.Head,
		Count:   1,
		PehPct:  es.PehPct,
		PenhPct: es.PenhPct,
	}
	e.setWeight(es.Weight)
	if es.Weight == 0 {
		e.CountDisregard = 1
	}
	return e
}
