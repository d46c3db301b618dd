package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/wricardo/adc-hub/game/scoring"
	"github.com/wricardo/adc-hub/game/service"
	"github.com/wricardo/adc-hub/game/settings"
	"github.com/wricardo/adc-hub/internal/metrics"
	"github.com/wricardo/adc-hub/robotevents"
	"github.com/wricardo/adc-hub/transport/websocket"
)

// RequestIDHeader carries the request id on requests and responses
const RequestIDHeader = "X-Request-ID"

// Options wires the server to its services. Lookup, Hub and Metrics may be nil.
type Options struct {
	Scores   service.ScoreService
	Lookup   service.LookupService
	Settings settings.Store
	Hub      *websocket.Hub
	Metrics  *metrics.Metrics
	Logger   zerolog.Logger
}

// Server represents the REST API server
type Server struct {
	scores   service.ScoreService
	lookup   service.LookupService
	settings settings.Store
	hub      *websocket.Hub
	metrics  *metrics.Metrics
	log      zerolog.Logger
	router   *mux.Router

	// settingsMu serializes read-modify-write cycles on the settings store
	settingsMu sync.Mutex
}

// NewServer creates a new API server
func NewServer(opts Options) *Server {
	s := &Server{
		scores:   opts.Scores,
		lookup:   opts.Lookup,
		settings: opts.Settings,
		hub:      opts.Hub,
		metrics:  opts.Metrics,
		log:      opts.Logger,
		router:   mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(s.requestID, s.observe)

	api := s.router.PathPrefix("/api").Subrouter()

	// Stateless scoring
	api.HandleFunc("/disciplines", s.handleDisciplines).Methods("GET")
	api.HandleFunc("/score/{discipline}", s.handleCalculate).Methods("POST")

	// Scoresheets
	api.HandleFunc("/sheets", s.handleCreateSheet).Methods("POST")
	api.HandleFunc("/sheets", s.handleListSheets).Methods("GET")
	api.HandleFunc("/sheets/{id}", s.handleGetSheet).Methods("GET")
	api.HandleFunc("/sheets/{id}", s.handleDeleteSheet).Methods("DELETE")
	api.HandleFunc("/sheets/{id}/increment", s.handleIncrement).Methods("POST")
	api.HandleFunc("/sheets/{id}/decrement", s.handleDecrement).Methods("POST")
	api.HandleFunc("/sheets/{id}/landing", s.handleLanding).Methods("POST")
	api.HandleFunc("/sheets/{id}/clear", s.handleClear).Methods("POST")
	api.HandleFunc("/sheets/{id}/history", s.handleGetHistory).Methods("GET")

	// RobotEvents lookups
	api.HandleFunc("/teams/{number}", s.handleTeam).Methods("GET")
	api.HandleFunc("/events", s.handleEvents).Methods("GET")
	api.HandleFunc("/worldskills", s.handleWorldSkills).Methods("GET")
	api.HandleFunc("/worldskills/refresh", s.handleRefreshWorldSkills).Methods("POST")

	// Settings
	api.HandleFunc("/settings", s.handleGetSettings).Methods("GET")
	api.HandleFunc("/settings", s.handlePutSettings).Methods("PUT")
	api.HandleFunc("/settings/reset", s.handleResetSettings).Methods("POST")
	api.HandleFunc("/settings/favorites/{team}", s.handleAddFavorite).Methods("POST")
	api.HandleFunc("/settings/favorites/{team}", s.handleRemoveFavorite).Methods("DELETE")

	// Seasons
	api.HandleFunc("/seasons", s.handleListSeasons).Methods("GET")
	api.HandleFunc("/seasons/{id}", s.handleGetSeason).Methods("GET")

	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	}

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps typed errors to status codes; anything unknown gets fallback
func respondServiceError(w http.ResponseWriter, err error, fallback int) {
	respondError(w, statusFor(err, fallback), err.Error())
}

func statusFor(err error, fallback int) int {
	var apiErr *robotevents.APIError
	switch {
	case errors.Is(err, service.ErrSheetNotFound),
		errors.Is(err, service.ErrSeasonNotFound),
		errors.Is(err, robotevents.ErrTeamNotFound):
		return http.StatusNotFound
	case errors.Is(err, scoring.ErrUnknownDiscipline),
		errors.Is(err, scoring.ErrUnknownTask),
		errors.Is(err, scoring.ErrUnknownSlot),
		errors.Is(err, scoring.ErrUnknownLanding),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, settings.ErrInvalidSettings):
		return http.StatusBadRequest
	case errors.Is(err, scoring.ErrLandingUnavailable):
		return http.StatusConflict
	case errors.Is(err, robotevents.ErrNoToken):
		return http.StatusServiceUnavailable
	case errors.As(err, &apiErr):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return fallback
}

// decodeBody decodes an optional JSON body; an empty body leaves v untouched
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// Chunked requests report an unknown length even when empty
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errors.New("Invalid request body")
	}
	return nil
}

// Middleware

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrader take over the connection
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hj.Hijack()
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		log := s.log.With().Str("request_id", id).Logger()
		next.ServeHTTP(w, r.WithContext(log.WithContext(r.Context())))
	})
}

func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		s.metrics.ObserveHTTP(route, r.Method, rec.status, elapsed)

		zerolog.Ctx(r.Context()).Debug().
			Str("method", r.Method).
			Str("route", route).
			Int("status", rec.status).
			Dur("elapsed", elapsed).
			Msg("request")
	})
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "live updates disabled", http.StatusServiceUnavailable)
		return
	}
	sheetID := r.URL.Query().Get("sheet")
	if sheetID == "" {
		http.Error(w, "sheet parameter required", http.StatusBadRequest)
		return
	}

	// Verify sheet exists
	info, err := s.scores.GetSheet(r.Context(), sheetID)
	if err != nil {
		http.Error(w, "Invalid sheet", http.StatusNotFound)
		return
	}

	// The snapshot is taken again once the viewer is registered
	s.hub.ServeWS(w, r, info.ID, func() (*scoring.SheetState, error) {
		current, err := s.scores.GetSheet(r.Context(), info.ID)
		if err != nil {
			return nil, err
		}
		return current.State, nil
	})
}

func (s *Server) broadcast(info *service.SheetInfo) {
	if s.hub != nil && info != nil {
		s.hub.BroadcastToSheet(info.ID, info.State)
	}
}
