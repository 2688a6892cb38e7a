package aggregate

import (
	"path/filepath"

	"hypoavg/domain/average"
	"hypoavg/internal/errors"
)

// PublishedHypothesis groups the hypothesis rollup with its variant averages
type PublishedHypothesis struct {
	Name     string
	Rollup   *average.Document
	Variants []PublishedVariant
}

// PublishedVariant is one variant's published average
type PublishedVariant struct {
	Name     string
	Document *average.Document
}

// HypothesisAveragePath is where the rollup for hypothesis is published
func HypothesisAveragePath(root, hypothesis string) string {
	return filepath.Join(root, hypothesis, AverageFileName)
}

// VariantAveragePath is where the average for one variant is published
func VariantAveragePath(root, hypothesis, variant string) string {
	return filepath.Join(root, hypothesis, variant, AverageFileName)
}

// CollectPublished reads every published document under root. Hypotheses without a
// rollup are left out; unreadable variant documents are skipped.
func CollectPublished(root string) ([]PublishedHypothesis, error) {
	hypotheses, err := listDirs(root)
	if err != nil {
		return nil, errors.StorageUnavailable(root, err)
	}

	var out []PublishedHypothesis
	for _, hyp := range hypotheses {
		rollup, err := ReadDocument(HypothesisAveragePath(root, hyp))
		if err != nil {
			continue
		}
		ph := PublishedHypothesis{Name: hyp, Rollup: rollup}

		variants, err := listDirs(filepath.Join(root, hyp))
		if err != nil {
			continue
		}
		for _, v := range variants {
			doc, err := ReadDocument(VariantAveragePath(root, hyp, v))
			if err != nil {
				continue
			}
			ph.Variants = append(ph.Variants, PublishedVariant{Name: v, Document: doc})
		}
		out = append(out, ph)
	}
	return out, nil
}
