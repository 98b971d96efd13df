package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"api-test-generator/internal/server"
)

func serveCmd(a *app) *cobra.Command {
	var port int

	c := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if port == 0 {
				port = a.cfg.Server.Port
			}

			exec := a.executor()
			if status := exec.CheckJava(ctx); !status.Available {
				a.log.Warn("Java is not available, test execution will fail", zap.String("error", status.Error))
			} else {
				a.log.Info("Java detected", zap.String("version", status.Version))
			}

			store, err := a.openHistory(ctx)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			srv := server.New(server.Options{
				Execute:    exec.Execute,
				Java:       exec,
				History:    store,
				BodyLimit:  a.cfg.Server.BodyLimit,
				CORSOrigin: a.cfg.Server.CORSOrigin,
			}, a.log)
			return srv.ListenAndServe(ctx, fmt.Sprintf(":%d", port))
		},
	}

	c.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (default server.port)")
	return c
}
