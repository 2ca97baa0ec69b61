package ingest

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/TFMV/neongraph/models"
)

//go:embed fallback.json
var fallbackJSON []byte

// FallbackSource is the Dataset.Source of the embedded dataset.
const FallbackSource = "embedded:fallback.json"

// DefaultPaths are tried in order when no data path is configured.
var DefaultPaths = []string{"./new_data.json", "new_data.json", "/new_data.json"}

// Fallback returns the small embedded dataset.
func Fallback() *models.Dataset {
	departments, err := NewJSONProcessor().ProcessData(fallbackJSON)
	if err != nil {
		panic(fmt.Sprintf("ingest: embedded fallback is invalid: %v", err))
	}
	return models.NewDataset(FallbackSource, departments)
}

// Loader reads the department dataset from the first readable path.
type Loader struct {
	Paths  []string
	Logger *slog.Logger
}

// NewLoader creates a loader over paths, or DefaultPaths when none are given.
func NewLoader(logger *slog.Logger, paths ...string) *Loader {
	if len(paths) == 0 {
		paths = DefaultPaths
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{Paths: paths, Logger: logger}
}

// Load returns the first dataset that loads cleanly. When none does it
// logs a warning and returns the embedded fallback, so Load never fails
// for missing or broken files; it only reports context cancellation.
func (l *Loader) Load(ctx context.Context) (*models.Dataset, error) {
	var errs []error
	for _, path := range l.Paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ds, err := LoadFile(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		l.Logger.Info("department data loaded", "path", path, "departments", len(ds.Departments))
		return ds, nil
	}
	l.Logger.Warn("using embedded fallback data", "error", errors.Join(errs...))
	return Fallback(), nil
}

// LoadFile reads one JSON or CSV file.
func LoadFile(path string) (*models.Dataset, error) {
	proc, err := ProcessorFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	departments, err := proc.ProcessData(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return models.NewDataset(path, departments), nil
}
