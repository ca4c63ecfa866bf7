package api

import (
	"net/http"
	"time"

	"github.com/paulmach/orb"

	"github.com/bikeflow-data/internal/common/config"
	"github.com/bikeflow-data/internal/common/logger"
	"github.com/bikeflow-data/internal/snapshot"
	"github.com/bikeflow-data/internal/surface"
	"github.com/bikeflow-data/internal/traffic"
)

// Server exposes a loaded snapshot over HTTP. Each viewer session plays the
// map surface: it owns a viewport and receives rendered frames.
type Server struct {
	snap     *snapshot.Snapshot
	mapCfg   config.MapConfig
	logger   logger.Logger
	frames   *FrameCache
	sessions *Sessions
}

func NewServer(snap *snapshot.Snapshot, mapCfg config.MapConfig, cacheSize int, log logger.Logger) *Server {
	return &Server{
		snap:     snap,
		mapCfg:   mapCfg,
		logger:   log,
		frames:   NewFrameCache(snap.Stations, snap.Trips, cacheSize),
		sessions: NewSessions(),
	}
}

// Handler returns the routed HTTP handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/map", s.handleMap)
	mux.HandleFunc("GET /api/stations", s.handleStations)
	mux.HandleFunc("GET /api/nearest", s.handleNearest)
	mux.HandleFunc("GET /api/stations/{shortName}", s.handleStation)
	mux.HandleFunc("GET /api/frames/{minute}", s.handleFrame)

	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("PUT /api/sessions/{id}/time", s.handleSetTime)
	mux.HandleFunc("PUT /api/sessions/{id}/viewport", s.handleSetViewport)
	mux.HandleFunc("GET /api/sessions/{id}/hover", s.handleHover)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)

	return s.logRequests(mux)
}

// Sessions returns the session registry
func (s *Server) Sessions() *Sessions {
	return s.sessions
}

// defaultViewport is the configured initial map view
func (s *Server) defaultViewport() surface.Viewport {
	return surface.NewViewport(
		orb.Point{s.mapCfg.CenterLon, s.mapCfg.CenterLat},
		s.mapCfg.Zoom,
		s.mapCfg.Width,
		s.mapCfg.Height,
		s.mapCfg.MinZoom,
		s.mapCfg.MaxZoom,
	)
}

// newSession starts a viewer at the unfiltered view
func (s *Server) newSession() (*Session, error) {
	canvas := surface.NewCanvas(s.defaultViewport())
	view, err := traffic.NewViewState(s.snap.Stations, s.snap.Trips, canvas, s.logger)
	if err != nil {
		return nil, err
	}
	return s.sessions.Add(view, canvas), nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
