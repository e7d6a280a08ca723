package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/anthonybishopric/docgraph/pkg/engine"
	"github.com/anthonybishopric/docgraph/pkg/viewer"
)

const shutdownTimeout = 5 * time.Second

func serveCmd(a *app) *cobra.Command {
	var (
		addr   string
		load   string
		format string
		title  string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser viewer",
		Long: `Serve the browser viewer. The layout runs in this process and frames are
streamed to every open page over a WebSocket.

  docgraph serve --addr :8080
  docgraph serve --load results.json
  curl -X POST --data-binary @results.json localhost:8080/graph`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			loop := engine.NewLoop(engine.NewView(a.cfg.ViewOptions(a.logger)), a.cfg.Server.FPS, a.logger)
			srv := viewer.New(loop, viewer.Options{
				Title:           title,
				ClientBuffer:    a.cfg.Server.ClientBuffer,
				MaxPayloadBytes: a.cfg.Server.MaxPayloadBytes,
				Logger:          a.logger,
			})
			httpServer := &http.Server{
				Addr:              addr,
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error { return loop.Run(ctx) })
			if err := srv.Attach(ctx); err != nil {
				stop()
				_ = g.Wait()
				return err
			}
			if load != "" {
				p, err := readPayload(cmd.InOrStdin(), load, format)
				if err != nil {
					stop()
					_ = g.Wait()
					return err
				}
				if err := loop.Do(ctx, func(v *engine.View) error {
					v.Load(p)
					return nil
				}); err != nil {
					return err
				}
			}

			g.Go(func() error {
				a.logger.Info("serving viewer", "addr", addr)
				fmt.Fprintf(cmd.OutOrStdout(), "%s listening on %s\n", brand.Sprint("docgraph"), addr)
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return errors.Wrap(err, "http server")
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				a.logger.Info("shutting down")
				return errors.Wrap(httpServer.Shutdown(shutdownCtx), "shutdown")
			})
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&load, "load", "", "payload file to show at startup (- for stdin)")
	cmd.Flags().StringVar(&format, "format", "", "payload format: json or yaml (default by extension)")
	cmd.Flags().StringVar(&title, "title", "", "page title")
	return cmd
}
