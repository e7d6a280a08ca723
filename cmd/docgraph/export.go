package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/anthonybishopric/docgraph/pkg/d3"
	"github.com/anthonybishopric/docgraph/pkg/engine"
)

func exportCmd(a *app) *cobra.Command {
	var (
		ticks  int
		format string
		output string
		title  string
	)
	cmd := &cobra.Command{
		Use:   "export <payload>",
		Short: "Lay out a payload and write it as a standalone HTML page",
		Long: `Lay out a payload headless and write the result as a self-contained D3.js
page. Nodes are drawn where the simulation left them.

  docgraph export results.json -o results.html
  docgraph export results.yaml --ticks 600 > results.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if ticks < 0 {
				return errors.Errorf("ticks must not be negative, got %d", ticks)
			}
			p, err := readPayload(cmd.InOrStdin(), args[0], format)
			if err != nil {
				return err
			}

			view := engine.NewView(a.cfg.ViewOptions(a.logger))
			defer view.Close()
			view.Load(p)
			now := time.Now()
			for i := 0; i < ticks; i++ {
				now = now.Add(time.Second / engine.DefaultFPS)
				view.Frame(now)
			}

			vp := view.Store().Viewport()
			page, err := d3.RenderHTML(d3.FromStore(view.Store(), p.SeedNodeID), d3.RenderOptions{
				Title:  title,
				Query:  p.Query,
				Width:  int(vp.Width),
				Height: int(vp.Height),
			})
			if err != nil {
				return err
			}

			if output == "" {
				_, err := cmd.OutOrStdout().Write(page)
				return errors.Wrap(err, "write page")
			}
			if err := os.WriteFile(output, page, 0o644); err != nil {
				return errors.Wrapf(err, "write %s", output)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Written to %s\n", output)
			return nil
		},
	}
	cmd.Flags().IntVarP(&ticks, "ticks", "n", 300, "simulation ticks to run")
	cmd.Flags().StringVar(&format, "format", "", "payload format: json or yaml (default by extension)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&title, "title", "t", "", "page title")
	return cmd
}
