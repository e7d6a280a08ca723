package d3

import (
	"bytes"
	"encoding/json"
	"html/template"

	"github.com/pkg/errors"
)

// RenderOptions configures HTML rendering.
type RenderOptions struct {
	Title  string
	Query  string // Search that produced the graph, shown in the header
	Width  int
	Height int
}

var snapshotTemplate = template.Must(template.New("snapshot").Parse(htmlTemplate))

// RenderHTML generates a self-contained HTML file showing g at its computed
// positions.
func RenderHTML(g *Graph, opts RenderOptions) ([]byte, error) {
	if opts.Title == "" {
		opts.Title = "Document Graph"
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 960, 600
	}

	graphJSON, err := json.Marshal(g)
	if err != nil {
		return nil, errors.Wrap(err, "encode graph")
	}
	lo, hi := g.Bounds()

	data := struct {
		Title     string
		Query     string
		Width     int
		Height    int
		GraphJSON template.JS
		MinX      float64
		MinY      float64
		SpanX     float64
		SpanY     float64
	}{
		Title:     opts.Title,
		Query:     opts.Query,
		Width:     opts.Width,
		Height:    opts.Height,
		GraphJSON: template.JS(graphJSON),
		MinX:      lo.X,
		MinY:      lo.Y,
		SpanX:     max(hi.X-lo.X, 1),
		SpanY:     max(hi.Y-lo.Y, 1),
	}

	var buf bytes.Buffer
	if err := snapshotTemplate.Execute(&buf, data); err != nil {
		return nil, errors.Wrap(err, "render snapshot")
	}
	return buf.Bytes(), nil
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <script src="https://d3js.org/d3.v7.min.js"></script>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
            overflow: hidden;
            background: #f5f5f5;
        }
        svg {
            width: 100vw;
            height: 100vh;
            background: white;
        }
        header {
            position: absolute;
            top: 16px;
            left: 16px;
            background: white;
            border-radius: 8px;
            box-shadow: 0 2px 12px rgba(0,0,0,0.15);
            padding: 12px 16px;
            font-size: 13px;
            color: #333;
        }
        header h1 { font-size: 14px; font-weight: 600; }
        header .query { color: #888; margin-top: 4px; }
        .node { cursor: pointer; }
        .node:hover { filter: brightness(0.85); }
        .node circle { fill: #4a90d9; stroke: #fff; stroke-width: 2; }
        .node.author circle { fill: #7cb342; }
        .node.locked circle { stroke: #333; stroke-width: 3; stroke-dasharray: 4 2; }
        .node.selected circle { stroke: #ff6b00; stroke-width: 4; }
        .node.seed circle { stroke: #6a1b9a; stroke-width: 4; }
        .link { stroke: #999; stroke-opacity: 0.6; }
        .link.citation { stroke: #555; }
        .link.similarity { stroke-dasharray: 6 3; }
        .node-label {
            pointer-events: none;
            text-anchor: middle;
            dominant-baseline: central;
            fill: #333;
        }
        .tooltip {
            position: absolute;
            background: rgba(0, 0, 0, 0.85);
            color: white;
            padding: 8px 12px;
            border-radius: 4px;
            font-size: 12px;
            white-space: pre-line;
            pointer-events: none;
            opacity: 0;
            transition: opacity 0.15s;
            max-width: 300px;
            z-index: 1000;
        }
    </style>
</head>
<body>
    <header>
        <h1>{{.Title}}</h1>
        {{if .Query}}<div class="query">{{.Query}}</div>{{end}}
    </header>
    <svg id="graph"></svg>
    <div class="tooltip" id="tooltip"></div>
    <script>
    const graphData = {{.GraphJSON}};
    const width = {{.Width}};
    const height = {{.Height}};
    const pad = 50;

    // Fit the computed layout into the view box.
    const scale = Math.min((width - 2 * pad) / {{.SpanX}}, (height - 2 * pad) / {{.SpanY}}, 2);
    const offsetX = (width - {{.SpanX}} * scale) / 2 - {{.MinX}} * scale;
    const offsetY = (height - {{.SpanY}} * scale) / 2 - {{.MinY}} * scale;

    const byId = new Map(graphData.nodes.map(n => [n.id, n]));
    let selectedNodeId = null;

    const svg = d3.select("#graph")
        .attr("viewBox", [0, 0, width, height]);

    // Container for zoom/pan
    const g = svg.append("g");
    const layout = g.append("g")
        .attr("transform", "translate(" + offsetX + "," + offsetY + ") scale(" + scale + ")");

    const zoom = d3.zoom()
        .scaleExtent([0.1, 4])
        .on("zoom", (event) => {
            g.attr("transform", event.transform);
        });
    svg.call(zoom);

    const links = graphData.showEdges ? (graphData.links || []) : [];
    layout.append("g")
        .selectAll("line")
        .data(links)
        .join("line")
        .attr("class", d => "link " + d.kind)
        .attr("stroke-width", d => 1 + 3 * d.weight)
        .attr("x1", d => byId.get(d.source).x)
        .attr("y1", d => byId.get(d.source).y)
        .attr("x2", d => byId.get(d.target).x)
        .attr("y2", d => byId.get(d.target).y);

    const node = layout.append("g")
        .selectAll("g")
        .data(graphData.nodes)
        .join("g")
        .attr("class", d => ["node", d.kind, d.locked ? "locked" : "", d.id === graphData.seedNodeId ? "seed" : ""].join(" "))
        .attr("transform", d => "translate(" + d.x + "," + d.y + ")");

    node.append("circle").attr("r", d => d.size / 2);

    if (graphData.showLabels) {
        node.append("text")
            .attr("class", "node-label")
            .attr("font-size", d => d.font)
            .text(d => d.label || d.id);
    }

    const tooltip = d3.select("#tooltip");

    node.on("mouseover", function(event, d) {
        if (d.locked) return;
        tooltip
            .style("opacity", 1)
            .style("left", (event.pageX + 12) + "px")
            .style("top", (event.pageY - 12) + "px")
            .text(d.tooltip);
    })
    .on("mousemove", function(event) {
        tooltip
            .style("left", (event.pageX + 12) + "px")
            .style("top", (event.pageY - 12) + "px");
    })
    .on("mouseout", function() {
        tooltip.style("opacity", 0);
    });

    // Node click handler - selects node and emits custom event
    node.on("click", function(event, d) {
        event.stopPropagation();
        selectedNodeId = selectedNodeId === d.id ? null : d.id;
        node.classed("selected", n => n.id === selectedNodeId);

        document.dispatchEvent(new CustomEvent("nodeClick", {
            detail: { nodeId: d.id, data: { label: d.label, kind: d.kind }, selected: selectedNodeId === d.id },
            bubbles: true
        }));
    });

    node.on("dblclick", function(event, d) {
        event.stopPropagation();
        document.dispatchEvent(new CustomEvent("nodeExpand", {
            detail: { nodeId: d.id },
            bubbles: true
        }));
    });

    // Reset zoom on double-click
    svg.on("dblclick.zoom", null);
    svg.on("dblclick", function() {
        svg.transition().duration(500).call(
            zoom.transform,
            d3.zoomIdentity.translate(0, 0).scale(1)
        );
    });
    </script>
</body>
</html>`
