package viewer

import (
	"bytes"
	"html/template"
)

var pageTemplate = template.Must(template.New("page").Parse(pageHTML))

// renderPage generates the viewer page.
func renderPage(title string) ([]byte, error) {
	data := struct {
		Title string
	}{
		Title: title,
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const pageHTML = `<!DOCTYPE html>
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
        .container { display: flex; height: 100vh; }
        .left-panel {
            width: 360px;
            flex-shrink: 0;
            padding: 16px;
            overflow-y: auto;
        }
        h1 { font-size: 20px; margin-bottom: 12px; }
        label { display: block; margin: 12px 0 4px; font-weight: 500; font-size: 14px; }
        textarea {
            width: 100%;
            font-family: monospace;
            font-size: 13px;
            padding: 8px;
            border: 1px solid #ccc;
            border-radius: 4px;
        }
        button {
            margin-top: 12px;
            padding: 8px 16px;
            font-size: 14px;
            background: #4a90d9;
            color: white;
            border: none;
            border-radius: 4px;
            cursor: pointer;
        }
        button:hover { background: #357abd; }
        .hint { font-size: 12px; color: #888; margin-top: 4px; }
        svg { flex: 1; height: 100vh; background: white; touch-action: none; }
        .node { cursor: grab; }
        .node circle { fill: #4a90d9; stroke: #fff; stroke-width: 2; }
        .node.author circle { fill: #7cb342; }
        .node.locked circle { stroke: #333; stroke-width: 3; stroke-dasharray: 4 2; }
        .node.highlight circle { stroke: #ff6b00; stroke-width: 4; }
        .node.faded { opacity: 0.25; }
        .node.hover circle { filter: brightness(0.85); }
        .node.selected circle { stroke: #6a1b9a; stroke-width: 5; }
        .node-label {
            pointer-events: none;
            text-anchor: middle;
            dominant-baseline: central;
            fill: #222;
        }
        .link { stroke: #999; stroke-opacity: 0.6; }
        .link.citation { stroke: #555; }
        .link.similarity { stroke-dasharray: 6 3; }
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
<div class="container">
    <div class="left-panel">
        <h1>{{.Title}}</h1>
        <form id="load">
            <label for="payload">Graph payload (JSON or YAML)</label>
            <textarea id="payload" rows="14" placeholder='{"nodes":[{"id":"a","data":{"title":"A"}}],"edges":[]}'></textarea>
            <button type="submit">Load</button>
        </form>
        <label><input type="checkbox" id="busy"> Busy (disable input)</label>
        <div class="hint">Drag to pin a node. Double-click to toggle its lock. Drag the background to pan, scroll to zoom.</div>
        <pre id="status" class="hint"></pre>
    </div>
    <svg id="graph"></svg>
</div>
<div class="tooltip"></div>
<script>
(function() {
    const svg = d3.select('#graph');
    const root = svg.append('g');
    const edgeLayer = root.append('g');
    const nodeLayer = root.append('g');
    const tooltip = d3.select('.tooltip');
    const status = document.getElementById('status');

    let edges = [];
    let nodesById = new Map();
    let dragging = false;
    let hovering = false;
    let interaction = { panning: true, zooming: true };
    let navigating = false;

    const proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
    const ws = new WebSocket(proto + location.host + '/ws');

    function send(msg) {
        if (ws.readyState === WebSocket.OPEN) ws.send(JSON.stringify(msg));
    }

    function screen(event) {
        const p = d3.pointer(event, svg.node());
        return { x: p[0], y: p[1] };
    }

    function resize() {
        const r = svg.node().getBoundingClientRect();
        send({ type: 'resize', width: r.width, height: r.height });
    }

    // Wheel events zoom, everything else pans. Node presses stop propagation
    // and never reach the zoom behavior.
    const zoom = d3.zoom()
        .scaleExtent([0.05, 10])
        .filter(event => event.type === 'wheel' ? interaction.zooming : interaction.panning && !event.button)
        .on('start', () => { navigating = true; })
        .on('zoom', event => {
            const t = event.transform;
            root.attr('transform', t.toString());
            send({ type: 'viewport', x: t.x, y: t.y, zoom: t.k });
        })
        .on('end', () => { navigating = false; });
    svg.call(zoom).on('dblclick.zoom', null);

    ws.onopen = resize;
    window.addEventListener('resize', resize);

    ws.onmessage = function(m) {
        const msg = JSON.parse(m.data);
        if (msg.type === 'frame') draw(msg);
        else if (msg.type === 'event') handleEvent(msg.event);
        else if (msg.type === 'error') status.textContent = msg.error;
    };

    function draw(frame) {
        const vp = frame.viewport;
        if (frame.edges) edges = frame.edges;
        nodesById = new Map(frame.nodes.map(n => [n.id, n]));
        if (frame.interaction) interaction = frame.interaction;
        svg.style('cursor', interaction.panning ? 'move' : 'default');
        if (!navigating) {
            const t = d3.zoomIdentity.translate(vp.pan.x, vp.pan.y).scale(vp.zoom);
            svg.property('__zoom', t);
            root.attr('transform', t.toString());
        }

        const visible = frame.showEdges
            ? edges.filter(e => nodesById.has(e.source) && nodesById.has(e.target))
            : [];
        edgeLayer.selectAll('line')
            .data(visible, e => e.source + '>' + e.target)
            .join('line')
            .attr('class', e => 'link ' + e.kind)
            .attr('stroke-width', e => 1 + 3 * e.weight)
            .attr('x1', e => nodesById.get(e.source).x)
            .attr('y1', e => nodesById.get(e.source).y)
            .attr('x2', e => nodesById.get(e.target).x)
            .attr('y2', e => nodesById.get(e.target).y);

        const node = nodeLayer.selectAll('g.node')
            .data(frame.nodes, n => n.id)
            .join(enter => {
                const g = enter.append('g').attr('class', 'node');
                g.append('circle');
                g.append('text').attr('class', 'node-label');
                g.on('pointerdown', function(event, n) {
                    event.stopPropagation();
                    dragging = true;
                    const p = screen(event);
                    send({ type: 'pointerdown', node: n.id, x: p.x, y: p.y });
                });
                g.on('mouseenter', function(event, n) {
                    hovering = true;
                    const p = screen(event);
                    send({ type: 'hover', node: n.id, x: p.x, y: p.y });
                });
                g.on('mouseleave', function(event, n) {
                    hovering = false;
                    send({ type: 'hoverout', node: n.id });
                });
                return g;
            });

        node.attr('class', n => ['node', n.kind, n.locked ? 'locked' : ''].concat(n.classes || []).join(' '))
            .attr('transform', n => 'translate(' + n.x + ',' + n.y + ')');
        node.select('circle').attr('r', n => n.size / 2);
        node.select('text')
            .attr('font-size', n => n.font)
            .text(n => frame.showLabels ? n.label : '');
    }

    function handleEvent(e) {
        if (e.type === 'hoverTooltip') {
            const t = e.tooltip;
            const r = svg.node().getBoundingClientRect();
            tooltip.text(t.content)
                .style('left', (r.left + window.scrollX + t.x + 12) + 'px')
                .style('top', (r.top + window.scrollY + t.y + 12) + 'px')
                .style('opacity', t.visible ? 1 : 0);
            return;
        }
        // Same CustomEvent contract as the static renderer: listeners on
        // document receive nodeClick and nodeExpand.
        document.dispatchEvent(new CustomEvent(e.type, { detail: e.selection || e.expand }));
        status.textContent = e.type + ': ' + (e.selection || e.expand).nodeId;
    }

    svg.on('pointermove', function(event) {
        const p = screen(event);
        if (dragging) send({ type: 'pointermove', x: p.x, y: p.y });
        if (hovering) send({ type: 'hovermove', x: p.x, y: p.y });
    });
    window.addEventListener('pointerup', function(event) {
        if (!dragging) return;
        dragging = false;
        const p = screen(event);
        send({ type: 'pointerup', x: p.x, y: p.y });
    });

    document.getElementById('load').addEventListener('submit', function(e) {
        e.preventDefault();
        fetch('/graph', { method: 'POST', body: document.getElementById('payload').value })
            .then(r => r.ok ? r.json() : r.text().then(t => { throw new Error(t); }))
            .then(res => {
                status.textContent = 'loaded ' + res.nodes + ' nodes, ' + res.links + ' links, ' +
                    res.dropped + ' dropped, tier ' + res.tier;
            })
            .catch(err => { status.textContent = err.message; });
    });

    document.getElementById('busy').addEventListener('change', function(e) {
        fetch('/busy?on=' + e.target.checked, { method: 'POST' });
    });
})();
</script>
</body>
</html>`
