package main

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/anthonybishopric/docgraph/pkg/config"
	"github.com/anthonybishopric/docgraph/pkg/graph"
)

var (
	brand  = color.New(color.FgHiGreen, color.Bold)
	subtle = color.New(color.FgHiBlack)
	good   = color.New(color.FgGreen)
)

// app carries state shared by every command.
type app struct {
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "docgraph",
		Short: "Interactive force-directed layout for document graphs",
		Long: `docgraph lays out a document graph (papers, authors and the citations
or similarities between them) with a live force simulation.

Drag a node to pin it where you drop it. Double-click to toggle its lock.
While a node is held, everything reachable from it through unlocked nodes
is highlighted.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "TOML configuration file")

	root.AddCommand(
		serveCmd(a),
		viewCmd(a),
		layoutCmd(a),
		exportCmd(a),
		tiersCmd(a),
		configCmd(a),
	)
	return root
}

func (a *app) setup(stderr io.Writer) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger, err = newLogger(cfg.Log, stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(a.logger)
	return nil
}

func newLogger(c config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := c.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// readPayload reads a payload file, or stdin when path is "-".
func readPayload(in io.Reader, path, format string) (*graph.Payload, error) {
	if path == "-" {
		f, err := graph.ParseFormat(format)
		if err != nil {
			return nil, err
		}
		p, err := graph.Decode(in, f)
		return p, errors.Wrap(err, "read payload from stdin")
	}
	if format == "" {
		return graph.DecodeFile(path)
	}
	f, err := graph.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open payload %s", path)
	}
	defer file.Close()
	return graph.Decode(file, f)
}
