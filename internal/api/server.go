// Package api exposes the card and its name override over HTTP for
// headless use. It applies exactly the rules the TUI applies.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/daviddao/bikecard_viewer/internal/names"
	"github.com/daviddao/bikecard_viewer/internal/snapshot"
	"github.com/daviddao/bikecard_viewer/internal/telemetry"
)

// FeedFunc returns the current reading.
type FeedFunc func() (*telemetry.Reading, error)

// Server serves card and name endpoints.
type Server struct {
	feed  FeedFunc
	names *names.Names
	now   func() time.Time
	log   *zap.Logger
}

// NewServer returns a Server reading from feed and persisting names in n.
// A nil logger disables logging.
func NewServer(feed FeedFunc, n *names.Names, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{feed: feed, names: n, now: time.Now, log: log}
}

// Router returns the HTTP routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/card", s.handleCard).Methods(http.MethodGet)
	r.HandleFunc("/names/{device}", s.handleGetName).Methods(http.MethodGet)
	r.HandleFunc("/names/{device}", s.handlePutName).Methods(http.MethodPut)
	return r
}

type nameResponse struct {
	Device   string `json:"device"`
	Name     string `json:"name"`
	Override string `json:"override,omitempty"`
}

type nameRequest struct {
	Name string `json:"name"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCard(w http.ResponseWriter, r *http.Request) {
	reading, err := s.feed()
	if err != nil {
		s.log.Warn("read feed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	var override string
	if reading.Device != "" {
		override, _, err = s.names.Get(reading.Device)
		if err != nil {
			s.log.Error("read name", zap.String("device", reading.Device), zap.Error(err))
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, snapshot.Build(reading, override, s.now()))
}

func (s *Server) handleGetName(w http.ResponseWriter, r *http.Request) {
	device := mux.Vars(r)["device"]
	e := names.NewEditor(s.names)
	if err := e.Load(device); err != nil {
		s.log.Error("read name", zap.String("device", device), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, nameResponse{Device: device, Name: e.DisplayName(), Override: e.Override()})
}

// handlePutName commits a name edit. A blank name is not stored; the
// response then reports the name that is already in effect.
func (s *Server) handlePutName(w http.ResponseWriter, r *http.Request) {
	device := mux.Vars(r)["device"]

	var req nameRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	e := names.NewEditor(s.names)
	if err := e.Load(device); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	e.Begin()
	e.SetText(req.Name)
	if err := e.Commit(); err != nil {
		s.log.Error("save name", zap.String("device", device), zap.Error(err))
		status := http.StatusInternalServerError
		if errors.Is(err, names.ErrEmptyDevice) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err)
		return
	}
	s.log.Info("name committed", zap.String("device", device), zap.String("name", e.Override()))
	writeJSON(w, http.StatusOK, nameResponse{Device: device, Name: e.DisplayName(), Override: e.Override()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
