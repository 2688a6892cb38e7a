// Package report exports published averages as an xlsx workbook.
package report

import (
	"fmt"
	"strings"

	"hypoavg/domain/average"
	"hypoavg/internal/aggregate"
	"hypoavg/internal/errors"

	"github.com/montanaflynn/stats"
	"github.com/xuri/excelize/v2"
)

const (
	SummarySheet  = "Summary"
	maxSheetName  = 31
	rollupVariant = average.RollupDenomination
)

var (
	summaryHeader  = []interface{}{"Hypothesis", "Variant", "Count", "Observations", "Apriori %", "Posterior %"}
	spreadHeader   = []interface{}{"Hypothesis", "Variants", "Apriori mean", "Apriori stddev", "Posterior mean", "Posterior stddev"}
	evidenceHeader = []interface{}{"Variant", "ID", "Head", "Count", "Disregarded", "Disregarded %", "P(E|H) %", "P(E|~H) %", "Weight"}
)

// VariantSpread summarises how far the variant averages of one hypothesis disagree
type VariantSpread struct {
	Variants        int
	AprioriMean     float64
	AprioriStdDev   float64
	PosteriorMean   float64
	PosteriorStdDev float64
}

// Spread computes mean and population standard deviation of the variant averages
func Spread(h aggregate.PublishedHypothesis) (VariantSpread, error) {
	s := VariantSpread{Variants: len(h.Variants)}
	if s.Variants == 0 {
		return s, nil
	}

	apriori := make(stats.Float64Data, 0, s.Variants)
	posterior := make(stats.Float64Data, 0, s.Variants)
	for _, v := range h.Variants {
		apriori = append(apriori, float64(v.Document.AprioriPct))
		posterior = append(posterior, float64(v.Document.PosteriorPct))
	}

	var err error
	if s.AprioriMean, err = apriori.Mean(); err != nil {
		return s, err
	}
	if s.AprioriStdDev, err = apriori.StandardDeviation(); err != nil {
		return s, err
	}
	if s.PosteriorMean, err = posterior.Mean(); err != nil {
		return s, err
	}
	if s.PosteriorStdDev, err = posterior.StandardDeviation(); err != nil {
		return s, err
	}
	return s, nil
}

// Build lays out the workbook: a summary sheet followed by one evidence sheet per hypothesis
func Build(published []aggregate.PublishedHypothesis) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		f.Close()
		return nil, err
	}

	if err := writeSummary(f, published); err != nil {
		f.Close()
		return nil, err
	}

	used := map[string]bool{strings.ToLower(SummarySheet): true}
	for _, h := range published {
		name := sheetName(h.Name, used)
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, err
		}
		if err := writeEvidence(f, name, h); err != nil {
			f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// Export builds the workbook and saves it to path
func Export(published []aggregate.PublishedHypothesis, path string) error {
	f, err := Build(published)
	if err != nil {
		return errors.Wrap(err, "failed to build workbook")
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return errors.WriteFailure(path, err)
	}
	return nil
}

func writeSummary(f *excelize.File, published []aggregate.PublishedHypothesis) error {
	row := 1
	if err := setRow(f, SummarySheet, row, summaryHeader); err != nil {
		return err
	}
	for _, h := range published {
		row++
		if err := setRow(f, SummarySheet, row, documentRow(h.Name, rollupVariant, h.Rollup)); err != nil {
			return err
		}
		for _, v := range h.Variants {
			row++
			if err := setRow(f, SummarySheet, row, documentRow(h.Name, v.Name, v.Document)); err != nil {
				return err
			}
		}
	}

	row += 2
	if err := setRow(f, SummarySheet, row, spreadHeader); err != nil {
		return err
	}
	for _, h := range published {
		spread, err := Spread(h)
		if err != nil {
			return fmt.Errorf("spread of %s: %w", h.Name, err)
		}
		row++
		values := []interface{}{h.Name, spread.Variants, spread.AprioriMean, spread.AprioriStdDev, spread.PosteriorMean, spread.PosteriorStdDev}
		if err := setRow(f, SummarySheet, row, values); err != nil {
			return err
		}
	}
	return nil
}

func writeEvidence(f *excelize.File, sheet string, h aggregate.PublishedHypothesis) error {
	row := 1
	if err := setRow(f, sheet, row, evidenceHeader); err != nil {
		return err
	}

	write := func(variant string, doc *average.Document) error {
		for _, e := range doc.Evidence {
			row++
			values := []interface{}{variant, e.ID, e.Head, e.Count, e.CountDisregard, e.CountDisregardPct, e.PehPct, e.PenhPct, e.Weight}
			if err := setRow(f, sheet, row, values); err != nil {
				return err
			}
		}
		return nil
	}

	if err := write(rollupVariant, h.Rollup); err != nil {
		return err
	}
	for _, v := range h.Variants {
		if err := write(v.Name, v.Document); err != nil {
			return err
		}
	}
	return nil
}

func documentRow(hypothesis, variant string, doc *average.Document) []interface{} {
	return []interface{}{hypothesis, variant, doc.Count, doc.ObservationCount, doc.AprioriPct, doc.PosteriorPct}
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// sheetName fits name into the sheet name limit and keeps it unique (case-insensitively)
func sheetName(name string, used map[string]bool) string {
	base := name
	if len(base) > maxSheetName {
		base = base[:maxSheetName]
	}
	candidate := base
	for i := 2; used[strings.ToLower(candidate)]; i++ {
		suffix := fmt.Sprintf("~%d", i)
		trimmed := base
		if len(trimmed)+len(suffix) > maxSheetName {
			trimmed = trimmed[:maxSheetName-len(suffix)]
		}
		candidate = trimmed + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}
