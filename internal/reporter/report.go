package reporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"api-test-generator/internal/logger"
	"api-test-generator/internal/types"
)

// Report represents the test execution report
type Report struct {
	Timestamp   time.Time    `json:"timestamp"`
	TotalTests  int          `json:"totalTests"`
	PassedTests int          `json:"passedTests"`
	FailedTests int          `json:"failedTests"`
	Duration    int64        `json:"durationMs"`
	Results     []TestResult `json:"results"`
}

// TestResult represents a single generated class and, when it was run, its
// execution outcome
type TestResult struct {
	ClassName string                 `json:"className"`
	FileName  string                 `json:"fileName"`
	Method    string                 `json:"method"`
	Endpoint  string                 `json:"endpoint"`
	Error     string                 `json:"error,omitempty"`
	Execution *types.ExecutionResult `json:"execution,omitempty"`
}

// Passed reports whether the entry was generated and, if executed, passed
func (r TestResult) Passed() bool {
	if r.Error != "" {
		return false
	}
	return r.Execution == nil || r.Execution.Success
}

// Config holds the configuration for reporting
type Config struct {
	OutputDir string
}

// Reporter writes generated classes and execution reports to disk
type Reporter struct {
	config Config
	log    *zap.Logger
	now    func() time.Time
}

// NewReporter creates a new instance of Reporter
func NewReporter(config Config, log *zap.Logger) *Reporter {
	return &Reporter{
		config: config,
		log:    logger.OrNop(log),
		now:    time.Now,
	}
}

// WriteUnit writes the class source to <OutputDir>/<FileName> and returns the
// path written
func (r *Reporter) WriteUnit(unit types.GeneratedUnit) (string, error) {
	if unit.FileName == "" || filepath.Base(unit.FileName) != unit.FileName {
		return "", &types.OpError{Op: "reporter.write_unit", Kind: types.KindInvalidRequest, Err: fmt.Errorf("%w: bad file name %q", types.ErrInvalidRequest, unit.FileName)}
	}
	if err := os.MkdirAll(r.config.OutputDir, 0755); err != nil {
		return "", &types.OpError{Op: "reporter.write_unit", Kind: types.KindIO, Err: fmt.Errorf("failed to create output directory: %w", err)}
	}

	path := filepath.Join(r.config.OutputDir, unit.FileName)
	if err := os.WriteFile(path, []byte(unit.SourceText), 0644); err != nil {
		return "", &types.OpError{Op: "reporter.write_unit", Kind: types.KindIO, Err: err}
	}
	r.log.Info("Test class written", zap.String("className", unit.ClassName), zap.String("path", path))
	return path, nil
}

// GenerateReport summarizes results and writes them as
// <OutputDir>/report_<timestamp>.json, returning the report and its path
func (r *Reporter) GenerateReport(results []TestResult, duration time.Duration) (*Report, string, error) {
	report := &Report{
		Timestamp:  r.now(),
		TotalTests: len(results),
		Duration:   duration.Milliseconds(),
		Results:    results,
	}
	for _, result := range results {
		if result.Passed() {
			report.PassedTests++
		} else {
			report.FailedTests++
		}
	}

	path, err := r.generateJSONReport(report)
	if err != nil {
		return report, "", &types.OpError{Op: "reporter.generate_report", Kind: types.KindIO, Err: fmt.Errorf("failed to generate JSON report: %w", err)}
	}
	r.log.Info("Report written",
		zap.String("path", path),
		zap.Int("total", report.TotalTests),
		zap.Int("passed", report.PassedTests),
		zap.Int("failed", report.FailedTests))
	return report, path, nil
}

// generateJSONReport generates a JSON format report
func (r *Reporter) generateJSONReport(report *Report) (string, error) {
	if err := os.MkdirAll(r.config.OutputDir, 0755); err != nil {
		return "", err
	}

	reportPath := filepath.Join(r.config.OutputDir, fmt.Sprintf("report_%s.json", report.Timestamp.Format("20060102_150405")))

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}

	return reportPath, os.WriteFile(reportPath, data, 0644)
}
