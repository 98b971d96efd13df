package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func javaCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "java-check",
		Short: "Report whether Java is available for running tests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			status := a.executor().CheckJava(cmd.Context())
			out := cmd.OutOrStdout()
			if !status.Available {
				fmt.Fprintf(out, "%s %s\n", color.RedString("Java unavailable:"), status.Error)
				return errors.New("java is not available")
			}
			fmt.Fprintf(out, "%s %s\n", color.GreenString("Java available:"), status.Version)
			return nil
		},
	}
}

func historyCmd(a *app) *cobra.Command {
	var limit int
	var asJSON bool

	c := &cobra.Command{
		Use:   "history",
		Short: "List recent generations and executions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := a.openHistory(ctx)
			if err != nil {
				return err
			}
			if store == nil {
				return errors.New("history is not enabled, set history.driver in the config")
			}
			defer store.Close()

			entries, err := store.Recent(ctx, limit)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), entries)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tKIND\tCLASS\tMETHOD\tSTATUS\tDURATION")
			for _, e := range entries {
				status := color.GreenString(e.Status)
				if !e.Success {
					status = color.RedString(e.Status)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%dms\n",
					e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Kind, e.ClassName, e.Method, status, e.DurationMs)
			}
			return tw.Flush()
		},
	}

	c.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show")
	c.Flags().BoolVar(&asJSON, "json", false, "print entries as JSON")
	return c
}
