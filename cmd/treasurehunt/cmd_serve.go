package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"treasurehunt/pkg/api"
	"treasurehunt/pkg/hunt"
	"treasurehunt/pkg/network"
)

func newServeCmd(gf *globalFlags) *cobra.Command {
	var httpAddr, tcpAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve hunts over HTTP (JSON) and TCP (binary protocol)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(gf, cmd.ErrOrStderr())
			if err != nil {
				return reportErr(cmd, err)
			}
			if httpAddr != "" {
				a.cfg.Server.Addr = httpAddr
			}
			if tcpAddr != "" {
				a.cfg.Server.TCPAddr = tcpAddr
			}
			return reportErr(cmd, serve(cmd.Context(), a))
		},
	}
	cmd.Flags().StringVar(&httpAddr, "http", "", "HTTP listen address (overrides config)")
	cmd.Flags().StringVar(&tcpAddr, "tcp", "", "TCP listen address (overrides config)")
	return cmd
}

func serve(ctx context.Context, a *app) error {
	h, err := a.openHistory()
	if err != nil {
		return err
	}
	defer h.Close()

	svc := hunt.NewService(
		hunt.WithHistory(h),
		hunt.WithMetrics(a.metrics),
		hunt.WithLogger(a.logger),
		hunt.WithMaxRegions(a.cfg.Server.MaxRegions),
	)
	httpSrv := api.NewServer(svc, a.metrics, a.logger)
	tcpSrv := network.NewTCPServer(svc, a.logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return httpSrv.Start(a.cfg.Server.Addr) })
	g.Go(func() error { return tcpSrv.Start(a.cfg.Server.TCPAddr) })
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		herr := httpSrv.Shutdown(shutdownCtx)
		terr := tcpSrv.Close()
		if herr != nil {
			return herr
		}
		return terr
	})
	return g.Wait()
}
