package term

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/anthonybishopric/docgraph/pkg/engine"
	"github.com/anthonybishopric/docgraph/pkg/graph"
	"github.com/anthonybishopric/docgraph/pkg/notify"
	"github.com/anthonybishopric/docgraph/pkg/render"
	"github.com/anthonybishopric/docgraph/pkg/sizing"
)

// cells maps viewport screen units onto terminal cells. Cells are about twice
// as tall as they are wide.
type cells struct {
	width float64
}

func (c cells) height() float64 { return c.width * 2 }

func (c cells) toCell(p graph.Point) (int, int) {
	return int(math.Floor(p.X / c.width)), int(math.Floor(p.Y / c.height()))
}

func (c cells) toScreen(x, y int) graph.Point {
	return graph.Point{X: (float64(x) + 0.5) * c.width, Y: (float64(y) + 0.5) * c.height()}
}

type sceneNode struct {
	id      string
	label   string
	author  bool
	x, y    int
	screen  graph.Point
	radius  float64
	locked  bool
	classes []string
}

func (n sceneNode) has(class string) bool { return slices.Contains(n.classes, class) }

// scene is a copy of the render graph taken on the engine loop and drawn
// outside it.
type scene struct {
	nodes      []sceneNode
	edges      [][2]int
	alpha      float64
	busy       bool
	showLabels bool
	tooltip    notify.Tooltip
	status     string
}

func snapshot(v *engine.View, c cells, labels bool) scene {
	store := v.Store()
	vp := store.Viewport()
	nodes := store.Nodes()

	sc := scene{
		nodes:      make([]sceneNode, 0, len(nodes)),
		busy:       v.Controller().Busy(),
		showLabels: labels && sizing.ShowLabels(len(nodes)),
	}
	if sim := v.Simulation(); sim != nil {
		sc.alpha = sim.Alpha()
	}

	index := make(map[string]int, len(nodes))
	for _, n := range nodes {
		p := vp.ToScreen(n.Position)
		x, y := c.toCell(p)
		index[n.ID] = len(sc.nodes)
		sc.nodes = append(sc.nodes, sceneNode{
			id:      n.ID,
			label:   n.Label,
			author:  n.Kind == "author",
			x:       x,
			y:       y,
			screen:  p,
			radius:  n.Size.NodeSize * vp.Zoom / 2,
			locked:  n.Locked,
			classes: n.Classes,
		})
	}
	if sizing.ShowEdges(len(nodes)) {
		for _, e := range store.Edges() {
			si, ok1 := index[e.Source]
			ti, ok2 := index[e.Target]
			if ok1 && ok2 {
				sc.edges = append(sc.edges, [2]int{si, ti})
			}
		}
	}
	return sc
}

// hit returns the node under screen point p, preferring the closest.
func (sc scene) hit(p graph.Point, c cells) (string, bool) {
	best, bestDist := "", math.Inf(1)
	for _, n := range sc.nodes {
		d := math.Hypot(n.screen.X-p.X, n.screen.Y-p.Y)
		if d <= math.Max(n.radius, c.height()) && d < bestDist {
			best, bestDist = n.id, d
		}
	}
	return best, best != ""
}

var (
	styleEdge      = tcell.StyleDefault.Foreground(tcell.ColorGray)
	stylePaper     = tcell.StyleDefault.Foreground(tcell.ColorDodgerBlue)
	styleAuthor    = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleLabel     = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleHighlight = tcell.StyleDefault.Foreground(tcell.ColorOrange).Bold(true)
	styleFaded     = tcell.StyleDefault.Foreground(tcell.ColorDarkSlateGray)
	styleSelected  = tcell.StyleDefault.Foreground(tcell.ColorFuchsia).Bold(true)
	styleStatus    = tcell.StyleDefault.Reverse(true)
	styleTooltip   = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)
)

const (
	runePaper  = '●'
	runeAuthor = '◆'
	runeLocked = '■'
	runeEdge   = '·'
)

func (n sceneNode) style() tcell.Style {
	st := stylePaper
	if n.author {
		st = styleAuthor
	}
	switch {
	case n.has(render.ClassSelected):
		st = styleSelected
	case n.has(render.ClassHighlight):
		st = styleHighlight
	case n.has(render.ClassFaded):
		st = styleFaded
	}
	if n.has(render.ClassHover) {
		st = st.Underline(true)
	}
	return st
}

func (n sceneNode) glyph() rune {
	switch {
	case n.locked:
		return runeLocked
	case n.author:
		return runeAuthor
	default:
		return runePaper
	}
}

// draw renders the scene. The last row is the status bar.
func draw(s tcell.Screen, sc scene, c cells) {
	s.Clear()
	w, h := s.Size()
	rows := h - 1

	for _, e := range sc.edges {
		a, b := sc.nodes[e[0]], sc.nodes[e[1]]
		line(a.x, a.y, b.x, b.y, func(x, y int) {
			if x >= 0 && x < w && y >= 0 && y < rows {
				s.SetContent(x, y, runeEdge, nil, styleEdge)
			}
		})
	}
	for _, n := range sc.nodes {
		if n.x < 0 || n.x >= w || n.y < 0 || n.y >= rows {
			continue
		}
		s.SetContent(n.x, n.y, n.glyph(), nil, n.style())
		if sc.showLabels {
			text(s, n.x+2, n.y, w, truncate(n.label, 24), styleLabel)
		}
	}

	if sc.tooltip.Visible {
		x, y := c.toCell(graph.Point{X: sc.tooltip.X, Y: sc.tooltip.Y})
		for i, l := range strings.Split(sc.tooltip.Content, "\n") {
			if y+1+i < rows {
				text(s, x+1, y+1+i, w, " "+l+" ", styleTooltip)
			}
		}
	}

	status := statusLine(sc)
	for x := 0; x < w; x++ {
		s.SetContent(x, h-1, ' ', nil, styleStatus)
	}
	text(s, 0, h-1, w, status, styleStatus)
}

func statusLine(sc scene) string {
	var b strings.Builder
	b.WriteString(" nodes ")
	b.WriteString(strconv.Itoa(len(sc.nodes)))
	b.WriteString("  alpha ")
	b.WriteString(strconv.FormatFloat(sc.alpha, 'f', 3, 64))
	if sc.busy {
		b.WriteString("  [busy]")
	}
	if sc.status != "" {
		b.WriteString("  ")
		b.WriteString(sc.status)
	}
	b.WriteString("  q quit  f fit  b busy")
	return b.String()
}

func text(s tcell.Screen, x, y, maxX int, str string, st tcell.Style) {
	for _, r := range str {
		if x >= maxX {
			return
		}
		if x >= 0 {
			s.SetContent(x, y, r, nil, st)
		}
		x++
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// line walks the cells between two points (Bresenham), excluding both ends.
func line(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	err := dx + dy
	x, y := x0, y0
	for {
		if x == x1 && y == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
		if x == x1 && y == y1 {
			return
		}
		plot(x, y)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
