package aggregate

import (
	"os"
	"path/filepath"
	"strings"

	"hypoavg/internal"
	"hypoavg/internal/errors"
)

// AverageFileName is the reserved name of every derived artifact
const AverageFileName = "average.json"

// Dataset is a snapshot of the observation store taken once per pass
type Dataset struct {
	Root       string
	Hypotheses []HypothesisDir
}

// HypothesisDir is one hypothesis directory and its variants
type HypothesisDir struct {
	Name     string
	Path     string
	Variants []VariantDir
}

// VariantDir is one variant directory and the raw observation files it held at listing time
type VariantDir struct {
	Name  string
	Path  string
	Files []string
}

// Walker enumerates <root>/<hypothesis>/<variant>/<observation>.json
type Walker struct {
	root   string
	logger *internal.Logger
}

// NewWalker creates a walker over root
func NewWalker(root string, logger *internal.Logger) *Walker {
	return &Walker{root: root, logger: logger.WithComponent("Walker")}
}

// Root returns the observation store root
func (w *Walker) Root() string {
	return w.root
}

// Walk lists every directory exactly once. An unlistable root is fatal; an unlistable
// hypothesis or variant directory is logged and skipped. Listings are lexically ordered.
func (w *Walker) Walk() (*Dataset, error) {
	hypotheses, err := listDirs(w.root)
	if err != nil {
		return nil, errors.StorageUnavailable(w.root, err)
	}

	ds := &Dataset{Root: w.root}
	for _, hypName := range hypotheses {
		hypPath := filepath.Join(w.root, hypName)
		variants, err := listDirs(hypPath)
		if err != nil {
			w.logger.Warn("skipping hypothesis %s: %v", hypName, errors.StorageUnavailable(hypPath, err))
			continue
		}

		hyp := HypothesisDir{Name: hypName, Path: hypPath}
		for _, varName := range variants {
			varPath := filepath.Join(hypPath, varName)
			files, err := listObservationFiles(varPath)
			if err != nil {
				w.logger.Warn("skipping variant %s/%s: %v", hypName, varName, errors.StorageUnavailable(varPath, err))
				continue
			}
			hyp.Variants = append(hyp.Variants, VariantDir{Name: varName, Path: varPath, Files: files})
		}
		ds.Hypotheses = append(ds.Hypotheses, hyp)
	}

	w.logger.Debug("listed %d hypotheses under %s", len(ds.Hypotheses), w.root)
	return ds, nil
}

// IsObservationFile reports whether name is a raw observation rather than a derived
// artifact, a temp file or something foreign
func IsObservationFile(name string) bool {
	base := filepath.Base(name)
	return strings.HasSuffix(base, ".json") &&
		base != AverageFileName &&
		!strings.HasPrefix(base, ".")
}

func listDirs(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

func listObservationFiles(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() && IsObservationFile(e.Name()) {
			out = append(out, filepath.Join(path, e.Name()))
		}
	}
	return out, nil
}
