package summary

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"geosummary/internal/domain"
)

var (
	ErrReportNotFound = errors.New("report file not found")
	ErrReportInvalid  = errors.New("report file is not valid JSON")
)

// Explanatory pairs returned by SummarizeFile when the report cannot be used.
const (
	NotFoundSummary         = "The JSON report file was not found."
	NotFoundRecommendations = "Please run the analysis first."
	InvalidSummary          = "An error occurred while processing the report file."
	InvalidRecommendations  = "Check the file format and try again."
)

// LoadReport reads and decodes an audit report file.
func LoadReport(path string) (domain.Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Batch{}, fmt.Errorf("%w: %s", ErrReportNotFound, path)
		}
		return domain.Batch{}, fmt.Errorf("%w: %v", ErrReportInvalid, err)
	}
	batch, err := domain.ParseBatch(data)
	if err != nil {
		return domain.Batch{}, fmt.Errorf("%w: %v", ErrReportInvalid, err)
	}
	return batch, nil
}

// SummarizeFile loads a report and summarizes it. When the file is missing
// or unreadable it returns an explanatory pair together with the cause; the
// pair is always safe to show.
func (s *Summarizer) SummarizeFile(ctx context.Context, path string) (domain.ParsedResult, error) {
	batch, err := LoadReport(path)
	if err != nil {
		s.logger.Error("loading report", zap.String("path", path), zap.Error(err))
		return FileFailure(err), err
	}
	return s.Summarize(ctx, batch), nil
}

// FileFailure maps a LoadReport error to its explanatory pair.
func FileFailure(err error) domain.ParsedResult {
	if errors.Is(err, ErrReportNotFound) {
		return domain.ParsedResult{Summary: NotFoundSummary, Recommendations: NotFoundRecommendations, Method: MethodError}
	}
	return domain.ParsedResult{Summary: InvalidSummary, Recommendations: InvalidRecommendations, Method: MethodError}
}
