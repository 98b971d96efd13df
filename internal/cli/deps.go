package cli

import (
	"fmt"
	"sync/atomic"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"api-test-generator/internal/deps"
)

func depsCmd(a *app) *cobra.Command {
	var repository string
	var libsDir string

	c := &cobra.Command{
		Use:   "deps",
		Short: "Download the Java libraries needed to run generated tests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg.Dependencies
			if repository != "" {
				cfg.Repository = repository
			}
			if libsDir != "" {
				cfg.LibsDir = libsDir
			}

			out := cmd.OutOrStdout()
			total := len(deps.TestLibraries)
			fmt.Fprintf(out, "Downloading %d libraries to %s\n", total, cfg.LibsDir)

			fetcher := deps.NewFetcher(deps.Config{
				Repository:  cfg.Repository,
				LibsDir:     cfg.LibsDir,
				Concurrency: cfg.Concurrency,
				Timeout:     cfg.Timeout.Std(),
			}, a.log)

			var done int32
			fetcher.OnProgress(func(ev deps.Event) {
				n := atomic.AddInt32(&done, 1)
				prefix := fmt.Sprintf("[%d/%d]", n, total)
				switch ev.Status {
				case deps.Downloaded:
					fmt.Fprintf(out, "%s %s %s\n", prefix, color.GreenString("downloaded"), ev.Artifact.FileName())
				case deps.Skipped:
					fmt.Fprintf(out, "%s %s %s\n", prefix, color.YellowString("exists    "), ev.Artifact.FileName())
				case deps.Failed:
					fmt.Fprintf(out, "%s %s %s: %v\n", prefix, color.RedString("failed    "), ev.Artifact.FileName(), ev.Err)
				}
			})

			summary, err := fetcher.Fetch(cmd.Context(), deps.TestLibraries)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "\nDownloaded: %d, skipped: %d, failed: %d\n", summary.Downloaded, summary.Skipped, summary.Failed)
			if !summary.Ready() {
				return fmt.Errorf("%d libraries could not be downloaded", summary.Failed)
			}
			fmt.Fprintln(out, color.GreenString("All libraries are ready."))
			return nil
		},
	}

	c.Flags().StringVar(&repository, "repository", "", "Maven repository URL (default dependencies.repository)")
	c.Flags().StringVar(&libsDir, "libs-dir", "", "directory for the jars (default dependencies.libs_dir)")
	return c
}
