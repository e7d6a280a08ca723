// Package viewer serves the browser front end. The engine owns the layout;
// pages draw the frames streamed over a WebSocket and send pointer input back.
package viewer

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anthonybishopric/docgraph/pkg/d3"
	"github.com/anthonybishopric/docgraph/pkg/engine"
	"github.com/anthonybishopric/docgraph/pkg/graph"
	"github.com/anthonybishopric/docgraph/pkg/notify"
	"github.com/anthonybishopric/docgraph/pkg/render"
)

// Options configure a Server.
type Options struct {
	Title           string
	ClientBuffer    int
	MaxPayloadBytes int64
	Logger          *slog.Logger
}

// Server exposes a view over HTTP.
type Server struct {
	loop   *engine.Loop
	hub    *Hub
	opts   Options
	logger *slog.Logger
}

// LoadResponse summarizes a loaded payload.
type LoadResponse struct {
	Nodes   int     `json:"nodes"`
	Links   int     `json:"links"`
	Dropped int     `json:"dropped"`
	Tier    float64 `json:"tier"`
}

// New creates a server driving the view behind loop.
func New(loop *engine.Loop, opts Options) *Server {
	if opts.Title == "" {
		opts.Title = "docgraph"
	}
	if opts.MaxPayloadBytes <= 0 {
		opts.MaxPayloadBytes = 10 << 20
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		loop:   loop,
		hub:    NewHub(opts.ClientBuffer, logger),
		opts:   opts,
		logger: logger,
	}
}

// Hub returns the client hub.
func (s *Server) Hub() *Hub { return s.hub }

// Attach subscribes the hub to render commits and notifier events. Call it
// once, after the loop is running.
func (s *Server) Attach(ctx context.Context) error {
	return s.loop.Do(ctx, func(v *engine.View) error {
		v.Store().OnCommit(func(c render.Commit) {
			s.hub.Broadcast(encode(buildFrame(v.Store(), c.Structure)))
		})
		v.Events().Subscribe(notify.ObserverFunc(func(e notify.Event) {
			s.hub.Broadcast(encode(EventMessage{Type: "event", Event: e}))
		}))
		return nil
	})
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// GET / - the viewer page
	mux.HandleFunc("GET /{$}", s.handleIndex)

	// POST /graph - load a JSON or YAML payload; GET /graph - current frame
	mux.HandleFunc("POST /graph", s.handleLoad)
	mux.HandleFunc("GET /graph", s.handleFrame)

	// GET /snapshot - the current layout as a standalone page
	mux.HandleFunc("GET /snapshot", s.handleSnapshot)

	// POST /busy?on=true|false - disable or enable input
	mux.HandleFunc("POST /busy", s.handleBusy)

	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := renderPage(s.opts.Title)
	if err != nil {
		s.logger.Error("render page failed", "error", err)
		http.Error(w, "Failed to render page: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxPayloadBytes))
	if err != nil {
		http.Error(w, "Failed to read request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if len(body) == 0 {
		http.Error(w, "Request body is empty. Please provide a graph payload.", http.StatusBadRequest)
		return
	}

	p, err := graph.DecodeBytes(body, graph.SniffFormat(r.Header.Get("Content-Type"), body))
	if err != nil {
		http.Error(w, "Failed to parse payload: "+err.Error(), http.StatusBadRequest)
		return
	}

	var resp LoadResponse
	err = s.loop.Do(r.Context(), func(v *engine.View) error {
		res := v.Load(p)
		resp = LoadResponse{
			Nodes:   len(res.Nodes),
			Links:   len(res.Links),
			Dropped: len(res.Dropped),
			Tier:    res.Size.Ratio,
		}
		return nil
	})
	if err != nil {
		http.Error(w, "Failed to load graph: "+err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, resp)
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	var f Frame
	err := s.loop.Do(r.Context(), func(v *engine.View) error {
		f = buildFrame(v.Store(), true)
		return nil
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, f)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	var g *d3.Graph
	err := s.loop.Do(r.Context(), func(v *engine.View) error {
		g = d3.FromStore(v.Store(), v.Controller().Selected())
		return nil
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	page, err := d3.RenderHTML(g, d3.RenderOptions{Title: s.opts.Title})
	if err != nil {
		s.logger.Error("render snapshot failed", "error", err)
		http.Error(w, "Failed to render snapshot: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if r.URL.Query().Has("download") {
		w.Header().Set("Content-Disposition", `attachment; filename="docgraph.html"`)
	}
	w.Write(page)
}

func (s *Server) handleBusy(w http.ResponseWriter, r *http.Request) {
	on, err := strconv.ParseBool(r.URL.Query().Get("on"))
	if err != nil {
		http.Error(w, "Query parameter on must be true or false.", http.StatusBadRequest)
		return
	}
	err = s.loop.Do(r.Context(), func(v *engine.View) error {
		v.Controller().SetBusy(on)
		return nil
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	s.logger.Info("busy switched", "on", on)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("failed to upgrade the websocket", "error", err)
		return
	}
	defer conn.Close()

	c := s.hub.add(conn)
	defer s.hub.remove(c)
	go s.hub.writePump(c)

	ctx := r.Context()
	err = s.loop.Do(ctx, func(v *engine.View) error {
		s.hub.Send(c, encode(buildFrame(v.Store(), true)))
		return nil
	})
	if err != nil {
		return
	}

	for {
		var in Input
		if err := conn.ReadJSON(&in); err != nil {
			s.logger.Debug("viewer read ended", "client", c.id, "error", err)
			return
		}
		err := s.loop.Do(ctx, func(v *engine.View) error { return dispatch(v, in) })
		if err != nil {
			s.logger.Debug("input rejected", "client", c.id, "type", in.Type, "error", err)
			s.hub.Send(c, encode(ErrorMessage{Type: "error", Error: err.Error()}))
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
