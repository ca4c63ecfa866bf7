package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/bikeflow-data/internal/common/config"
	"github.com/bikeflow-data/internal/surface"
	"github.com/bikeflow-data/internal/traffic"
	"github.com/bikeflow-data/pkg/bikeshare/models"
)

// Breakdown is the hover tooltip for one station
type Breakdown struct {
	ShortName    string `json:"short_name"`
	Name         string `json:"name"`
	TotalTraffic int    `json:"total_traffic"`
	Departures   int    `json:"departures"`
	Arrivals     int    `json:"arrivals"`
	Summary      string `json:"summary"`
}

func breakdownOf(st traffic.StationTraffic) Breakdown {
	return Breakdown{
		ShortName:    st.Station.ShortName,
		Name:         st.Station.Name,
		TotalTraffic: st.TotalTraffic,
		Departures:   st.Departures,
		Arrivals:     st.Arrivals,
		Summary: fmt.Sprintf("%d total trips: %d departures, %d arrivals",
			st.TotalTraffic, st.Departures, st.Arrivals),
	}
}

func breakdownOfShape(s traffic.Shape) Breakdown {
	return breakdownOf(traffic.StationTraffic{
		Station:      models.Station{ShortName: s.ShortName, Name: s.Name, Position: s.Position},
		Arrivals:     s.Arrivals,
		Departures:   s.Departures,
		TotalTraffic: s.TotalTraffic,
	})
}

type healthResponse struct {
	Status   string              `json:"status"`
	Stations int                 `json:"stations"`
	Trips    int                 `json:"trips"`
	Sessions int                 `json:"sessions"`
	Snapshot models.SnapshotInfo `json:"snapshot"`
}

type mapResponse struct {
	Style    string                 `json:"style"`
	Center   orb.Point              `json:"center"`
	Zoom     float64                `json:"zoom"`
	MinZoom  float64                `json:"min_zoom"`
	MaxZoom  float64                `json:"max_zoom"`
	Bounds   []orb.Point            `json:"bounds,omitempty"`
	Overlays []config.OverlayConfig `json:"overlays"`
}

type stationResponse struct {
	Station      models.Station `json:"station"`
	Arrivals     int            `json:"arrivals"`
	Departures   int            `json:"departures"`
	TotalTraffic int            `json:"total_traffic"`
}

type nearestResponse struct {
	Breakdown
	Position   orb.Point `json:"position"`
	DistanceKm float64   `json:"distance_km"`
}

type sessionResponse struct {
	ID       string           `json:"id"`
	Display  traffic.Display  `json:"display"`
	Viewport surface.Viewport `json:"viewport"`
	Frame    traffic.Frame    `json:"frame"`
}

type timeRequest struct {
	Minute *int `json:"minute"`
}

// viewportRequest fields are optional; absent ones keep their value
type viewportRequest struct {
	Lon    *float64 `json:"lon"`
	Lat    *float64 `json:"lat"`
	Zoom   *float64 `json:"zoom"`
	Width  *int     `json:"width"`
	Height *int     `json:"height"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Stations: len(s.snap.Stations),
		Trips:    len(s.snap.Trips),
		Sessions: s.sessions.Len(),
		Snapshot: s.snap.Info,
	})
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	resp := mapResponse{
		Style:    s.mapCfg.Style,
		Center:   orb.Point{s.mapCfg.CenterLon, s.mapCfg.CenterLat},
		Zoom:     s.mapCfg.Zoom,
		MinZoom:  s.mapCfg.MinZoom,
		MaxZoom:  s.mapCfg.MaxZoom,
		Overlays: s.mapCfg.Overlays,
	}
	if len(s.snap.Stations) > 0 {
		b := surface.Bounds(s.snap.Stations)
		resp.Bounds = []orb.Point{b.Min, b.Max}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	all, err := s.frames.Traffic(traffic.NoFilter)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	stations := make([]stationResponse, len(all))
	for i, st := range all {
		stations[i] = stationResponse{
			Station:      st.Station,
			Arrivals:     st.Arrivals,
			Departures:   st.Departures,
			TotalTraffic: st.TotalTraffic,
		}
	}
	s.writeJSON(w, http.StatusOK, stations)
}

func (s *Server) handleStation(w http.ResponseWriter, r *http.Request) {
	minute, err := parseMinute(r.URL.Query().Get("time"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	st, ok, err := s.frames.Station(r.PathValue("shortName"), minute)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !ok {
		s.writeError(w, http.StatusNotFound, "station not found")
		return
	}
	s.writeJSON(w, http.StatusOK, breakdownOf(st))
}

func (s *Server) handleNearest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		s.writeError(w, http.StatusBadRequest, "lat must be a number within -90..90")
		return
	}
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil || lon < -180 || lon > 180 {
		s.writeError(w, http.StatusBadRequest, "lon must be a number within -180..180")
		return
	}
	minute, err := parseMinute(q.Get("time"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	station, km, ok := surface.Nearest(s.snap.Stations, orb.Point{lon, lat})
	if !ok {
		s.writeError(w, http.StatusNotFound, "no stations loaded")
		return
	}
	st, _, err := s.frames.Station(station.ShortName, minute)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	st.Station = station

	s.writeJSON(w, http.StatusOK, nearestResponse{
		Breakdown:  breakdownOf(st),
		Position:   station.Position,
		DistanceKm: km,
	})
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	minute, err := strconv.Atoi(r.PathValue("minute"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "minute must be an integer")
		return
	}

	viewport, err := s.viewportFromQuery(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	frame, err := s.frames.Frame(minute, viewport)
	if err != nil {
		s.writeError(w, statusFor(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, frame)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.newSession()
	if err != nil {
		s.logger.Error("Failed to create session", "error", err)
		s.writeError(w, http.StatusInternalServerError, "could not create session")
		return
	}
	s.logger.Info("Session created", "session", session.ID, "sessions", s.sessions.Len())
	s.writeJSON(w, http.StatusCreated, s.sessionView(session))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, s.sessionView(session))
}

func (s *Server) handleSetTime(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	var req timeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Minute == nil {
		s.writeError(w, http.StatusBadRequest, "minute is required")
		return
	}

	if _, err := session.View.SetTime(*req.Minute); err != nil {
		s.writeError(w, statusFor(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, s.sessionView(session))
}

func (s *Server) handleSetViewport(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	var req viewportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	current := session.Canvas.Viewport()
	center, zoom := current.Center, current.Zoom
	width, height := current.Width, current.Height
	if req.Lon != nil {
		center[0] = *req.Lon
	}
	if req.Lat != nil {
		center[1] = *req.Lat
	}
	if req.Zoom != nil {
		zoom = *req.Zoom
	}
	if req.Width != nil {
		width = *req.Width
	}
	if req.Height != nil {
		height = *req.Height
	}
	if err := validateViewport(center, width, height); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	session.Canvas.Move(center, zoom)
	session.Canvas.Resize(width, height)
	if _, err := session.View.Reproject(); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, s.sessionView(session))
}

func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	y, errY := strconv.ParseFloat(q.Get("y"), 64)
	if errX != nil || errY != nil {
		s.writeError(w, http.StatusBadRequest, "x and y must be numbers")
		return
	}

	shape, hit := surface.HitTest(session.View.Frame(), x, y)
	if !hit {
		s.writeError(w, http.StatusNotFound, "no station at this position")
		return
	}
	s.writeJSON(w, http.StatusOK, breakdownOfShape(shape))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	if !s.sessions.Remove(id) {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}
	s.logger.Info("Session closed", "session", id, "sessions", s.sessions.Len())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) lookupSession(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid session id")
		return nil, false
	}
	session, ok := s.sessions.Get(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return session, true
}

func (s *Server) sessionView(session *Session) sessionResponse {
	return sessionResponse{
		ID:       session.ID,
		Display:  session.View.Display(),
		Viewport: session.Canvas.Viewport(),
		Frame:    session.View.Frame(),
	}
}

// viewportFromQuery overlays zoom, lon, lat, width and height query params
// on the configured default view
func (s *Server) viewportFromQuery(r *http.Request) (surface.Viewport, error) {
	v := s.defaultViewport()
	q := r.URL.Query()

	center, zoom := v.Center, v.Zoom
	width, height := v.Width, v.Height

	for _, p := range []struct {
		name string
		dst  *float64
	}{
		{"lon", &center[0]},
		{"lat", &center[1]},
		{"zoom", &zoom},
	} {
		if raw := q.Get(p.name); raw != "" {
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return v, fmt.Errorf("%s must be a number", p.name)
			}
			*p.dst = f
		}
	}
	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"width", &width},
		{"height", &height},
	} {
		if raw := q.Get(p.name); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return v, fmt.Errorf("%s must be an integer", p.name)
			}
			*p.dst = n
		}
	}

	if err := validateViewport(center, width, height); err != nil {
		return v, err
	}
	return surface.NewViewport(center, zoom, width, height, v.MinZoom, v.MaxZoom), nil
}

func validateViewport(center orb.Point, width, height int) error {
	if center.Lon() < -180 || center.Lon() > 180 {
		return fmt.Errorf("lon must be within -180..180")
	}
	if center.Lat() < -85 || center.Lat() > 85 {
		return fmt.Errorf("lat must be within -85..85")
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("width and height must be positive")
	}
	return nil
}

// parseMinute reads an optional slider value; empty means no filter
func parseMinute(raw string) (int, error) {
	if raw == "" {
		return traffic.NoFilter, nil
	}
	m, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("time must be an integer")
	}
	if !traffic.ValidMinute(m) {
		return 0, fmt.Errorf("%w: got %d", traffic.ErrInvalidMinute, m)
	}
	return m, nil
}

func statusFor(err error) int {
	if errors.Is(err, traffic.ErrInvalidMinute) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("Error encoding response", "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
