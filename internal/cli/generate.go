package cli

import (
	"time"

	"github.com/spf13/cobra"

	"api-test-generator/internal/testdata"
)

func generateCmd(a *app) *cobra.Command {
	var output string
	var execute bool
	var report bool

	c := &cobra.Command{
		Use:   "generate <file>",
		Short: "Generate test classes from a JSON or YAML request file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			started := time.Now()

			requests, err := testdata.NewLoader("").Load(args[0])
			if err != nil {
				return err
			}

			store, err := a.openHistory(ctx)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			b := &batch{
				app:      a,
				out:      cmd.OutOrStdout(),
				reporter: a.reporter(output),
				history:  store,
				write:    true,
			}
			if execute {
				b.execute = a.executor().Execute
			}

			results := b.run(ctx, requests)
			return b.finish(results, started, report || execute)
		},
	}

	c.Flags().StringVarP(&output, "output", "o", "", "output directory for generated classes (default reporting.output_dir)")
	c.Flags().BoolVar(&execute, "execute", false, "compile and run each generated class")
	c.Flags().BoolVar(&report, "report", false, "write a JSON report")
	return c
}
