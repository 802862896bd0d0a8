package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Ko-stant/building-engine/internal/building"
	"github.com/Ko-stant/building-engine/internal/config"
	"github.com/Ko-stant/building-engine/internal/protocol"
	"github.com/Ko-stant/building-engine/internal/registry"
	"github.com/Ko-stant/building-engine/internal/roof"
	"github.com/Ko-stant/building-engine/internal/telemetry"
	"github.com/Ko-stant/building-engine/internal/web"
	"github.com/Ko-stant/building-engine/internal/web/views"
	"github.com/Ko-stant/building-engine/internal/ws"
)

// Server is the preview server: plan page, command API, progress stream and
// metrics.
type Server struct {
	settings *config.Holder
	registry *registry.Store
	hub      *ws.Hub
	logger   *slog.Logger
}

func NewServer(settings *config.Holder, reg *registry.Store, hub *ws.Hub, logger *slog.Logger) *Server {
	return &Server{settings: settings, registry: reg, hub: hub, logger: logger}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /static/", http.FileServerFS(web.Static))
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/plan", s.handlePlan)
	mux.HandleFunc("GET /api/assets", s.handleAssets)
	mux.HandleFunc("POST /api/command", s.handleCommand)
	mux.Handle("GET /ws", s.hub)
	mux.Handle("GET /metrics", telemetry.MetricsHandler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "clients": s.hub.Len()})
	})
	return mux
}

// previewSpec reads seed, roof, floors, width and depth from the query, on top of
// the default spec.
func previewSpec(r *http.Request) (building.Spec, error) {
	spec := building.DefaultSpec()
	spec.Name = "preview"
	q := r.URL.Query()
	if v := q.Get("seed"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return spec, badRequest("bad_seed", err)
		}
		spec.Seed = n
	}
	if v := q.Get("roof"); v != "" {
		t, err := roof.ParseTypeStrict(v)
		if err != nil {
			return spec, badRequest("bad_roof", err)
		}
		spec.Roof = t
	}
	if v := q.Get("floors"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return spec, badRequest("bad_floors", err)
		}
		spec.Floors = n
	}
	for key, dst := range map[string]*float64{"width": &spec.Width, "depth": &spec.Depth} {
		if v := q.Get(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return spec, badRequest("bad_"+key, err)
			}
			*dst = f
		}
	}
	return spec, nil
}

func (s *Server) preview(ctx context.Context, r *http.Request) (*building.Building, error) {
	spec, err := previewSpec(r)
	if err != nil {
		return nil, err
	}
	b, err := building.NewGenerator(s.settings.Get(), s.logger).Generate(ctx, spec)
	if errors.Is(err, building.ErrInvalidSpec) {
		return nil, badRequest("invalid_spec", err)
	}
	return b, err
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	b, err := s.preview(r.Context(), r)
	if err != nil {
		writeError(w, err)
		return
	}
	page := views.PlanPage{
		Title:  fmt.Sprintf("%s %gx%g m", b.Name, b.Spec.Width, b.Spec.Depth),
		Seed:   b.Spec.Seed,
		Roof:   b.Spec.Roof.String(),
		Floors: b.Spec.Floors,
		Faces:  len(b.Mesh.Faces),
		Sheet:  b.Sheet(),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.Page(page).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	b, err := s.preview(r.Context(), r)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := b.Sheet().GeoJSON()
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	_, _ = w.Write(data)
}

func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	var tags []string
	if v := r.URL.Query().Get("tags"); v != "" {
		tags = strings.Split(v, ",")
	}
	assets, err := s.registry.FindByTags(r.Context(), tags)
	if err != nil {
		writeError(w, err)
		return
	}
	if assets == nil {
		assets = []registry.Asset{}
	}
	writeJSON(w, http.StatusOK, assets)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	cmd, err := protocol.Decode(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeError(w, badRequest("malformed_command", err))
		return
	}
	settings := s.settings.Get()
	exec := building.NewExecutor(settings, s.registry, s.logger)
	exec.ExportRoot = settings.ExportDir
	exec.Progress = s.hub.Progress
	res := exec.Execute(r.Context(), cmd)
	if res.OK() {
		s.hub.Publish(protocol.EventResult, res)
		writeJSON(w, http.StatusOK, res)
		return
	}
	writeJSON(w, http.StatusUnprocessableEntity, res)
}
