package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"api-test-generator/internal/executor"
	"api-test-generator/internal/history"
	"api-test-generator/internal/reporter"
	"api-test-generator/internal/template"
	"api-test-generator/internal/types"
)

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	failMark = color.New(color.FgRed).Sprint("✗")
)

// batch generates, optionally writes and optionally executes a list of
// request descriptions
type batch struct {
	app      *app
	out      io.Writer
	reporter *reporter.Reporter
	execute  executor.ExecuteFunc
	history  history.Store
	write    bool
}

func (b *batch) run(ctx context.Context, requests []types.RequestDescription) []reporter.TestResult {
	results := make([]reporter.TestResult, 0, len(requests))
	for _, desc := range requests {
		if err := ctx.Err(); err != nil {
			break
		}
		results = append(results, b.process(ctx, desc))
	}
	return results
}

func (b *batch) process(ctx context.Context, desc types.RequestDescription) reporter.TestResult {
	result := reporter.TestResult{Method: desc.Method, Endpoint: desc.Endpoint}

	desc.Normalize()
	if err := desc.Validate(); err != nil {
		result.Error = err.Error()
		fmt.Fprintf(b.out, "%s %s %s: %s\n", failMark, desc.Method, desc.Endpoint, err)
		return result
	}

	unit, err := template.Generate(desc)
	if err != nil {
		result.Error = err.Error()
		fmt.Fprintf(b.out, "%s %s %s: %s\n", failMark, desc.Method, desc.Endpoint, err)
		return result
	}
	result.ClassName, result.FileName = unit.ClassName, unit.FileName

	if b.write {
		path, err := b.reporter.WriteUnit(unit)
		if err != nil {
			result.Error = err.Error()
			fmt.Fprintf(b.out, "%s %s: %s\n", failMark, unit.FileName, err)
			return result
		}
		fmt.Fprintf(b.out, "%s %s %s -> %s\n", okMark, desc.Method, desc.Endpoint, path)
	}
	b.app.record(ctx, b.history, history.Entry{
		Kind:      history.KindGenerate,
		ClassName: unit.ClassName,
		Method:    desc.Method,
		Endpoint:  desc.Endpoint,
		Status:    "GENERATED",
		Success:   true,
	})

	if b.execute == nil {
		return result
	}

	exec, err := b.execute(ctx, unit.ClassName, unit.SourceText)
	if err != nil {
		result.Error = err.Error()
		fmt.Fprintf(b.out, "%s %s: %s\n", failMark, unit.ClassName, err)
		return result
	}
	result.Execution = exec
	printExecution(b.out, exec)

	b.app.record(ctx, b.history, history.Entry{
		Kind:       history.KindExecute,
		ClassName:  unit.ClassName,
		Method:     desc.Method,
		Endpoint:   desc.Endpoint,
		Status:     exec.Status,
		Success:    exec.Success,
		DurationMs: exec.ExecutionTime,
	})
	return result
}

// finish writes the report when asked to and turns failures into an error
func (b *batch) finish(results []reporter.TestResult, started time.Time, report bool) error {
	failed := 0
	for _, r := range results {
		if !r.Passed() {
			failed++
		}
	}

	if report {
		_, path, err := b.reporter.GenerateReport(results, time.Since(started))
		if err != nil {
			return err
		}
		fmt.Fprintf(b.out, "Report written to %s\n", path)
	}

	b.app.log.Info("Batch finished", zap.Int("total", len(results)), zap.Int("failed", failed))
	if failed > 0 {
		return fmt.Errorf("%d of %d request(s) failed", failed, len(results))
	}
	return nil
}

func printExecution(w io.Writer, r *types.ExecutionResult) {
	status := color.GreenString(r.Status)
	if !r.Success {
		status = color.RedString(firstNonEmpty(r.Status, types.StatusError))
	}
	fmt.Fprintf(w, "  %s %s: run %d, failures %d, skips %d (%dms)\n",
		status, r.ClassName, r.TestsRun, r.Failures, r.Skips, r.ExecutionTime)
	if r.Error != "" {
		fmt.Fprintf(w, "    %s\n", r.Error)
	}
	if r.CompilationErrors != "" {
		fmt.Fprintf(w, "    %s\n", r.CompilationErrors)
	}
	if r.ExecutionErrors != "" {
		fmt.Fprintf(w, "    %s\n", r.ExecutionErrors)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
