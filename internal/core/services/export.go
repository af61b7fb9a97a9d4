package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/custodia-labs/valvex/internal/core/domain"
	"github.com/custodia-labs/valvex/internal/core/ports/driven"
	"github.com/custodia-labs/valvex/internal/core/ports/driving"
	"github.com/custodia-labs/valvex/internal/logger"
)

// Ensure ExportService implements the interface.
var _ driving.ExportService = (*ExportService)(nil)

// ExportService writes run results through the registered sinks.
type ExportService struct {
	sinks map[domain.OutputFormat]driven.ResultSink
}

// NewExportService creates a new export service.
func NewExportService(sinks ...driven.ResultSink) *ExportService {
	s := &ExportService{sinks: make(map[domain.OutputFormat]driven.ResultSink, len(sinks))}
	for _, sink := range sinks {
		s.sinks[sink.Format()] = sink
	}
	return s
}

// Export writes result in format and returns the path written.
// An empty path writes <dir>/<run ID><extension>.
func (s *ExportService) Export(
	ctx context.Context,
	result *domain.RunResult,
	format domain.OutputFormat,
	dir, path string,
) (string, error) {
	if result == nil {
		return "", fmt.Errorf("%w: no result to export", domain.ErrInvalidInput)
	}
	sink, ok := s.sinks[format]
	if !ok {
		return "", fmt.Errorf("%w: output format %q", domain.ErrUnsupportedType, format)
	}

	if path == "" {
		if dir == "" {
			dir = "."
		}
		path = filepath.Join(dir, result.ID+format.Extension())
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	// Written beside the target and renamed, so a failed write leaves an existing file intact
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create output file: %w", err)
	}
	tmp := f.Name()
	if err := sink.Write(ctx, f, result); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return "", fmt.Errorf("write %s output: %w", format, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("close output file: %w", err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("set output permissions: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("move output into place: %w", err)
	}

	logger.Info("Wrote %d records to %s", result.Records.Len(), path)
	return path, nil
}

// Formats returns the available output formats in sorted order.
func (s *ExportService) Formats() []domain.OutputFormat {
	formats := make([]domain.OutputFormat, 0, len(s.sinks))
	for f := range s.sinks {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}
