// Package cli holds the api-test-generator command line.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the root command and exits non-zero on failure
func Execute() {
	a := &app{}
	cmd := newRootCmd(a)
	err := cmd.Execute()
	_ = a.close()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "api-test-generator",
		Short:        "Generate RestAssured/TestNG API tests from request descriptions",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.init()
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default config/config.yaml)")
	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(
		serveCmd(a),
		generateCmd(a),
		runCmd(a),
		openapiCmd(a),
		depsCmd(a),
		javaCheckCmd(a),
		historyCmd(a),
	)
	return cmd
}
