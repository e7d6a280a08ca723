package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/anthonybishopric/docgraph/pkg/engine"
	"github.com/anthonybishopric/docgraph/pkg/term"
)

func viewCmd(a *app) *cobra.Command {
	var (
		format  string
		logFile string
		labels  bool
	)
	cmd := &cobra.Command{
		Use:   "view <payload>",
		Short: "Show a payload in the terminal",
		Long: `Show a payload in the terminal. Drag nodes with the mouse, double-click
to toggle a lock, hover for details.

Keys: q quit, f fit to screen, b toggle busy.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readPayload(cmd.InOrStdin(), args[0], format)
			if err != nil {
				return err
			}

			// The screen owns the terminal, so logs go to a file or nowhere.
			logger := slog.New(slog.DiscardHandler)
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return errors.Wrapf(err, "open log file %s", logFile)
				}
				defer f.Close()
				if logger, err = newLogger(a.cfg.Log, f); err != nil {
					return err
				}
			}

			screen, err := tcell.NewScreen()
			if err != nil {
				return errors.Wrap(err, "open terminal")
			}
			if err := screen.Init(); err != nil {
				return errors.Wrap(err, "init terminal")
			}
			defer screen.Fini()

			if !cmd.Flags().Changed("labels") {
				labels = a.cfg.Terminal.ShowLabels
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			loop := engine.NewLoop(engine.NewView(a.cfg.ViewOptions(logger)), a.cfg.Terminal.FPS, logger)
			v := term.New(screen, loop, term.Options{
				FPS:        a.cfg.Terminal.FPS,
				CellWidth:  a.cfg.Terminal.CellWidth,
				ShowLabels: labels,
				Logger:     logger,
			})

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error { return loop.Run(ctx) })
			g.Go(func() error {
				defer cancel()
				if err := loop.Do(ctx, func(view *engine.View) error {
					view.Load(p)
					return nil
				}); err != nil {
					return err
				}
				return v.Run(ctx)
			})
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "payload format: json or yaml (default by extension)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file")
	cmd.Flags().BoolVar(&labels, "labels", true, "draw node labels")
	return cmd
}
