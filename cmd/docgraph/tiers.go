package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/anthonybishopric/docgraph/pkg/config"
	"github.com/anthonybishopric/docgraph/pkg/sizing"
)

// tierCounts are the largest node counts of each size tier, plus one past the
// last boundary.
var tierCounts = []int{5, 10, 20, 50, 51}

func tiersCmd(a *app) *cobra.Command {
	var counts []int
	cmd := &cobra.Command{
		Use:   "tiers",
		Short: "Print node sizes and force constants per size tier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(counts) == 0 {
				counts = tierCounts
			}
			for _, n := range counts {
				if n < 0 {
					return errors.Errorf("node count must not be negative, got %d", n)
				}
			}
			printTiers(cmd.OutOrStdout(), sizing.New(a.cfg.Sizing), counts)
			return nil
		},
	}
	cmd.Flags().IntSliceVar(&counts, "nodes", nil, "node counts to show (default one per tier)")
	return cmd
}

func printTiers(w io.Writer, calc sizing.Calculator, counts []int) {
	headers := []string{"NODES", "TIER", "SIZE", "LABEL", "COLLIDE", "CHARGE", "LINK", "VIEWPORT", "LABELS", "EDGES"}
	rows := make([][]string, 0, len(counts))
	for _, n := range counts {
		size := calc.NodeSize(n)
		f := calc.Forces(n)
		vp := sizing.ViewportFor(n)
		rows = append(rows, []string{
			strconv.Itoa(n),
			strconv.FormatFloat(size.Ratio, 'f', 1, 64),
			num(size.NodeSize),
			num(size.LabelSize),
			num(size.CollisionRadius),
			num(f.ChargeStrength),
			num(f.LinkDistance.Min) + "-" + num(f.LinkDistance.Max),
			strconv.Itoa(vp.Width) + "x" + strconv.Itoa(vp.Height),
			yesNo(sizing.ShowLabels(n)),
			yesNo(sizing.ShowEdges(n)),
		})
	}
	table(w, headers, rows)
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func yesNo(ok bool) string {
	if ok {
		return good.Sprint("yes")
	}
	return subtle.Sprint("no")
}

// table prints an aligned table. Column widths ignore colour codes.
func table(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if l := visibleLen(cell); i < len(widths) && l > widths[i] {
				widths[i] = l
			}
		}
	}

	var head, sep strings.Builder
	head.WriteString("  ")
	sep.WriteString("  ")
	for i, h := range headers {
		fmt.Fprintf(&head, "%-*s  ", widths[i], h)
		sep.WriteString(strings.Repeat("─", widths[i]) + "  ")
	}
	subtle.Fprintln(w, strings.TrimRight(head.String(), " "))
	subtle.Fprintln(w, strings.TrimRight(sep.String(), " "))

	for _, row := range rows {
		var line strings.Builder
		line.WriteString("  ")
		for i, cell := range row {
			line.WriteString(cell)
			line.WriteString(strings.Repeat(" ", widths[i]-visibleLen(cell)+2))
		}
		fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
	}
}

func visibleLen(s string) int {
	n, esc := 0, false
	for _, r := range s {
		switch {
		case r == '\x1b':
			esc = true
		case esc:
			if r == 'm' {
				esc = false
			}
		default:
			n++
		}
	}
	return n
}

func configCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Write(cmd.OutOrStdout(), a.cfg)
		},
	}
}
