package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"api-test-generator/internal/history"
	"api-test-generator/internal/reporter"
	"api-test-generator/internal/testdata"
	"api-test-generator/internal/types"
)

func runCmd(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "run <file.java|request file>",
		Short: "Compile and run a test class, generating it first from a request file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := args[0]
			started := time.Now()

			store, err := a.openHistory(ctx)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			if strings.EqualFold(filepath.Ext(path), ".java") {
				source, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				className := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

				result, err := a.executor().Execute(ctx, className, string(source))
				if err != nil {
					return err
				}
				a.record(ctx, store, history.Entry{
					Kind:       history.KindExecute,
					ClassName:  className,
					Status:     result.Status,
					Success:    result.Success,
					DurationMs: result.ExecutionTime,
				})
				if err := printJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
				return failedRun([]*types.ExecutionResult{result})
			}

			requests, err := testdata.NewLoader("").Load(path)
			if err != nil {
				return err
			}
			b := &batch{
				app:      a,
				out:      cmd.ErrOrStderr(),
				reporter: a.reporter(""),
				execute:  a.executor().Execute,
				history:  store,
			}
			results := b.run(ctx, requests)
			if err := printJSON(cmd.OutOrStdout(), executions(results)); err != nil {
				return err
			}
			return b.finish(results, started, false)
		},
	}
	return c
}

func executions(results []reporter.TestResult) []*types.ExecutionResult {
	out := make([]*types.ExecutionResult, 0, len(results))
	for _, r := range results {
		if r.Execution != nil {
			out = append(out, r.Execution)
		} else {
			out = append(out, &types.ExecutionResult{ClassName: r.ClassName, Status: types.StatusError, Error: r.Error})
		}
	}
	return out
}

func failedRun(results []*types.ExecutionResult) error {
	for _, r := range results {
		if !r.Success {
			return fmt.Errorf("test run failed: %s %s", r.ClassName, firstNonEmpty(r.Status, types.StatusError))
		}
	}
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
