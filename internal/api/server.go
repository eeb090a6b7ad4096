package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ramp_capacity/internal/capacity"
	"ramp_capacity/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Simulator runs allocation batches
type Simulator interface {
	Run(ctx context.Context, req models.SimulationRequest) (models.SimulationResult, error)
}

// Recommender produces relocation suggestions for an airport
type Recommender interface {
	GetRecommendations(ctx context.Context, airportCode string) ([]models.Recommendation, error)
}

// CapacityProvider returns FBO capacity at an instant
type CapacityProvider interface {
	CapacitySnapshot(ctx context.Context, airportCode string, at time.Time) ([]models.FBOSnapshot, error)
}

// MaintenanceStore toggles the maintenance state of an aircraft
type MaintenanceStore interface {
	SetMaintenance(ctx context.Context, tailNumber, airportCode string, at time.Time) error
	ClearMaintenance(ctx context.Context, tailNumber string) error
}

// RosterSource lists the aircraft tied to an airport
type RosterSource interface {
	AirportAircraft(ctx context.Context, airportCode string, now time.Time) ([]models.Aircraft, error)
}

// Deps are the collaborators behind the HTTP routes
type Deps struct {
	Simulator   Simulator
	Recommender Recommender
	Capacity    CapacityProvider
	Maintenance MaintenanceStore
	Roster      RosterSource
	Policy      capacity.Policy
	Metrics     http.Handler     // optional, served on /metrics
	Ping        func() error     // optional health probe
	Now         func() time.Time // defaults to time.Now
}

type Server struct {
	deps Deps
}

// New constructs the HTTP router wired to the engines
func New(deps Deps) http.Handler {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	s := &Server{deps: deps}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(corsMiddleware)

	r.Get("/health", s.handleHealth)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Route("/simulator", func(r chi.Router) {
		r.Post("/runSimulation", s.handleRunSimulation)
		r.Get("/getRecommendations/{airportCode}", s.handleRecommendations)
		r.Get("/getAirportFBOs/{airportCode}", s.handleAirportFBOs)
		r.Get("/getAllPlanes/{airportCode}", s.handleAllPlanes)
		r.Post("/maintenance/{acid}", s.handleAddMaintenance)
		r.Delete("/maintenance/{acid}", s.handleRemoveMaintenance)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ping != nil {
		if err := s.deps.Ping(); err != nil {
			slog.Error("Health check failed", "error", err)
			writeJSONError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// simulationRequest accepts both the structured batch shape and the
// selectedPlanes/planeTimes shape sent by the existing web client.
type simulationRequest struct {
	AirportCode    string                `json:"airportCode"`
	Aircraft       []models.PlaneRequest `json:"aircraft"`
	SelectedPlanes []string              `json:"selectedPlanes"`
	PlaneTimes     map[string]string     `json:"planeTimes"`
}

func (b simulationRequest) toModel() models.SimulationRequest {
	req := models.SimulationRequest{
		AirportCode: strings.ToUpper(strings.TrimSpace(b.AirportCode)),
		Aircraft:    b.Aircraft,
	}
	for _, id := range b.SelectedPlanes {
		req.Aircraft = append(req.Aircraft, models.PlaneRequest{ID: id, RequestedTime: b.PlaneTimes[id]})
	}
	return req
}

type simulationResponse struct {
	Success bool                    `json:"success"`
	RunID   string                  `json:"run_id"`
	Data    models.SimulationResult `json:"data"`
}

func (s *Server) handleRunSimulation(w http.ResponseWriter, r *http.Request) {
	var body simulationRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "bad request")
		return
	}

	req := body.toModel()
	req.RunID = uuid.NewString()

	result, err := s.deps.Simulator.Run(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, simulationResponse{Success: true, RunID: req.RunID, Data: result})
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	code := airportParam(r)

	recs, err := s.deps.Recommender.GetRecommendations(r.Context(), code)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleAirportFBOs(w http.ResponseWriter, r *http.Request) {
	code := airportParam(r)

	fbos, err := s.deps.Capacity.CapacitySnapshot(r.Context(), code, s.deps.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, s.deps.Policy.Overview(fbos))
}

func (s *Server) handleAllPlanes(w http.ResponseWriter, r *http.Request) {
	code := airportParam(r)

	planes, err := s.deps.Roster.AirportAircraft(r.Context(), code, s.deps.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, planes)
}

func (s *Server) handleAddMaintenance(w http.ResponseWriter, r *http.Request) {
	acid := chi.URLParam(r, "acid")
	airport := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("airport")))
	if airport == "" {
		writeJSONError(w, http.StatusBadRequest, "airport query parameter is required")
		return
	}

	if err := s.deps.Maintenance.SetMaintenance(r.Context(), acid, airport, s.deps.Now()); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("Aircraft placed in maintenance", "aircraft_id", acid, "airport", airport)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleRemoveMaintenance(w http.ResponseWriter, r *http.Request) {
	acid := chi.URLParam(r, "acid")

	if err := s.deps.Maintenance.ClearMaintenance(r.Context(), acid); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("Aircraft released from maintenance", "aircraft_id", acid)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// ===== helpers =====

func airportParam(r *http.Request) string {
	return strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "airportCode")))
}

// statusClientClosedRequest is nginx's code for a client that hung up
// before the response was written.
const statusClientClosedRequest = 499

// statusFor maps error classes to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrDataUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == statusClientClosedRequest {
		slog.Info("Request canceled by client", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()))
		writeJSONError(w, status, "client closed request")
		return
	}
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "path", r.URL.Path, "status", status, "error", err)
		writeJSONError(w, status, "")
		return
	}
	writeJSONError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
