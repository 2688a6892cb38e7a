package aggregate

import (
	"context"
	"sort"
	"sync"
	"time"

	"hypoavg/domain/average"
	"hypoavg/internal"
	"hypoavg/internal/errors"
	"hypoavg/internal/schema"

	"golang.org/x/sync/errgroup"
)

// PassResult summarises one aggregation pass
type PassResult struct {
	StartedAt     time.Time     `json:"startedAt"`
	Duration      time.Duration `json:"duration"`
	Hypotheses    int           `json:"hypotheses"`
	Variants      int           `json:"variants"`
	Observations  int           `json:"observations"`
	Malformed     int           `json:"malformed"`
	Published     int           `json:"published"`
	WriteFailures int           `json:"writeFailures"`
	Unnormalized  []string      `json:"unnormalized,omitempty"`
}

func (r *PassResult) merge(o PassResult) {
	r.Hypotheses += o.Hypotheses
	r.Variants += o.Variants
	r.Observations += o.Observations
	r.Malformed += o.Malformed
	r.Published += o.Published
	r.WriteFailures += o.WriteFailures
	r.Unnormalized = append(r.Unnormalized, o.Unnormalized...)
}

// Engine runs complete recompute passes: walk, fold, normalize, publish
type Engine struct {
	walker  *Walker
	schemas schema.Store
	writer  *Writer
	workers int
	logger  *internal.Logger
}

// NewEngine wires the pass pipeline. workers bounds how many hypotheses are
// aggregated concurrently; hypotheses never share output files.
func NewEngine(walker *Walker, schemas schema.Store, writer *Writer, workers int, logger *internal.Logger) *Engine {
	if workers < 1 {
		workers = 1
	}
	return &Engine{
		walker:  walker,
		schemas: schemas,
		writer:  writer,
		workers: workers,
		logger:  logger.WithComponent("Engine"),
	}
}

// Run recomputes every average from the raw observations present at listing time.
// A started pass is never abandoned: cancellation of ctx is not propagated into it.
// Only an unlistable root fails the pass; every other problem is logged and counted.
func (e *Engine) Run(ctx context.Context) (*PassResult, error) {
	start := time.Now()
	ctx = context.WithoutCancel(ctx)

	ds, err := e.walker.Walk()
	if err != nil {
		return nil, err
	}

	result := &PassResult{StartedAt: start}
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(e.workers)
	for _, hyp := range ds.Hypotheses {
		g.Go(func() error {
			r := e.aggregateHypothesis(ctx, hyp)
			mu.Lock()
			result.merge(r)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(result.Unnormalized)
	result.Duration = time.Since(start)
	e.logger.Info("pass finished in %s: %d hypotheses, %d variants, %d observations, %d malformed, %d published, %d write failures",
		result.Duration.Round(time.Millisecond), result.Hypotheses, result.Variants, result.Observations,
		result.Malformed, result.Published, result.WriteFailures)
	return result, nil
}

func (e *Engine) aggregateHypothesis(ctx context.Context, hyp HypothesisDir) PassResult {
	res := PassResult{Hypotheses: 1}
	evidenceSchema := e.loadSchema(ctx, hyp.Name)

	var variantAverages []average.RunningAverage
	for _, v := range hyp.Variants {
		acc, folded, malformed := e.foldVariant(v)
		res.Observations += folded
		res.Malformed += malformed
		if acc.IsEmpty() {
			continue
		}
		res.Variants++

		acc = withFallbackLabels(acc, hyp.Name, v.Name)
		e.publish(v.Path, average.Normalize(acc, evidenceSchema), &res)
		variantAverages = append(variantAverages, acc)
	}

	if len(variantAverages) == 0 {
		return res
	}
	if len(evidenceSchema) == 0 {
		res.Unnormalized = []string{hyp.Name}
	}

	rollup := average.Rollup(variantAverages)
	e.publish(hyp.Path, average.Normalize(rollup, evidenceSchema), &res)
	return res
}

func (e *Engine) loadSchema(ctx context.Context, hypothesis string) average.EvidenceSchema {
	s, err := e.schemas.Load(ctx, hypothesis)
	switch {
	case err == nil:
		return s
	case errors.Is(err, errors.CodeSchemaMissing):
		e.logger.Warn("no evidence schema for %s, publishing unnormalized averages", hypothesis)
	default:
		e.logger.Error("evidence schema for %s unusable, publishing unnormalized averages: %v", hypothesis, err)
	}
	return nil
}

func (e *Engine) foldVariant(v VariantDir) (acc average.RunningAverage, folded, malformed int) {
	for _, path := range v.Files {
		obs, err := ReadObservation(path)
		if err != nil {
			e.logger.Warn("skipping observation: %v", err)
			malformed++
			continue
		}
		acc = average.Fold(acc, obs)
		folded++
	}
	return acc, folded, malformed
}

func (e *Engine) publish(dir string, n average.NormalizedAverage, res *PassResult) {
	if err := e.writer.Publish(dir, n); err != nil {
		e.logger.Error("%v", err)
		res.WriteFailures++
		return
	}
	res.Published++
}

func withFallbackLabels(acc average.RunningAverage, hypothesis, variant string) average.RunningAverage {
	if acc.Title == "" {
		acc.Title = hypothesis
	}
	if acc.Denomination == "" {
		acc.Denomination = variant
	}
	return acc
}
