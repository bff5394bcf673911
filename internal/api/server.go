// Package api exposes the thermalnetwork calculators over HTTP/JSON.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"expvar"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ajitpratap0/thermalnetwork/internal/equipment"
	"github.com/ajitpratap0/thermalnetwork/internal/fluid"
	"github.com/ajitpratap0/thermalnetwork/internal/pipe"
	"github.com/ajitpratap0/thermalnetwork/internal/topology"
)

// maxBody bounds request bodies; GeoJSON documents can be large.
const maxBody = 16 << 20

// Server is an HTTP API server for the sizing calculators.
type Server struct {
	fluidTemp float64
	logger    *slog.Logger
	authToken string // empty = no auth required
}

// NewServer creates a new Server. fluidTemp is the pipe sizing design
// temperature in °C.
func NewServer(fluidTemp float64, logger *slog.Logger, authToken string) *Server {
	return &Server{
		fluidTemp: fluidTemp,
		logger:    logger,
		authToken: authToken,
	}
}

// Handler returns an http.Handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check and counters, no auth required.
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /debug/vars", expvar.Handler())

	mux.HandleFunc("POST /v1/pipe/size", s.auth(s.handleSizePipe))
	mux.HandleFunc("POST /v1/pipe/friction-factor", s.auth(s.handleFrictionFactor))
	mux.HandleFunc("POST /v1/heat-pump/source-load", s.auth(s.handleSourceLoad))
	mux.HandleFunc("POST /v1/loop/resolve", s.auth(s.handleResolveLoop))

	return mux
}

// --- middleware ---

// auth wraps a handler with Bearer token authentication when authToken is set.
func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.authToken == "" {
			next(w, r)
			return
		}
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) != 1 {
			s.writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

// --- handlers ---

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// sizePipeRequest is the body accepted by POST /v1/pipe/size.
type sizePipeRequest struct {
	FlowRate              float64 `json:"flow_rate"`                // m³/s
	PressureLossPerLength float64 `json:"pressure_loss_per_length"` // Pa/m
	DimensionRatio        float64 `json:"dimension_ratio"`
	Discrete              *bool   `json:"discrete"`
	Fluid                 string  `json:"fluid"`
	Concentration         float64 `json:"concentration"`
}

// sizePipeResponse is returned by POST /v1/pipe/size.
type sizePipeResponse struct {
	InnerDiameter         float64 `json:"inner_diameter"`
	OuterDiameter         float64 `json:"outer_diameter"`
	PressureLossPerLength float64 `json:"pressure_loss_per_length"`
	Velocity              float64 `json:"velocity"`
	Reynolds              float64 `json:"reynolds"`
}

func (s *Server) handleSizePipe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req sizePipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FlowRate <= 0 || req.PressureLossPerLength <= 0 {
		s.writeError(w, http.StatusBadRequest, "flow_rate and pressure_loss_per_length must be > 0")
		return
	}
	if req.DimensionRatio == 0 {
		req.DimensionRatio = 11
	}
	discrete := req.Discrete == nil || *req.Discrete

	f, err := fluid.New(req.Fluid, req.Concentration, s.logger)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := pipe.New(req.DimensionRatio, 1, f, s.fluidTemp, s.logger)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	inner, err := p.SizeHydraulicDiameter(req.FlowRate, req.PressureLossPerLength, discrete)
	if err != nil {
		s.logger.Error("pipe sizing failed", "error", err)
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, sizePipeResponse{
		InnerDiameter:         inner,
		OuterDiameter:         p.OuterDiameter(),
		PressureLossPerLength: p.PressureLoss(req.FlowRate),
		Velocity:              p.Velocity(req.FlowRate),
		Reynolds:              p.Reynolds(req.FlowRate),
	})
}

func (s *Server) handleFrictionFactor(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req struct {
		Reynolds float64 `json:"reynolds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Reynolds <= 0 {
		s.writeError(w, http.StatusBadRequest, "reynolds must be > 0")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]float64{
		"reynolds":        req.Reynolds,
		"friction_factor": pipe.FrictionFactor(req.Reynolds),
	})
}

// sourceLoadRequest is the body accepted by POST /v1/heat-pump/source-load.
type sourceLoadRequest struct {
	Loads      []float64 `json:"loads"` // W, positive heating
	COPHeating float64   `json:"cop_heating"`
	COPCooling float64   `json:"cop_cooling"`
}

func (s *Server) handleSourceLoad(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	var req sourceLoadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Loads) == 0 {
		s.writeError(w, http.StatusBadRequest, "loads is required")
		return
	}
	if req.COPHeating == 0 {
		req.COPHeating = 2.5
	}
	if req.COPCooling == 0 {
		req.COPCooling = 3.5
	}
	hp, err := equipment.NewHeatPump("api heat pump", req.COPHeating, req.COPCooling)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]float64{"source_loads": hp.SourceLoads(req.Loads)})
}

// resolveLoopResponse is returned by POST /v1/loop/resolve.
type resolveLoopResponse struct {
	Order      []string         `json:"order"`
	Groups     []topology.Group `json:"groups"`
	LoopLength float64          `json:"loop_length"`
}

func (s *Server) handleResolveLoop(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	doc, err := topology.Parse(data)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	order, err := topology.Resolve(doc)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ids := make([]string, len(order))
	for i, f := range order {
		ids[i] = f.ID
	}
	s.writeJSON(w, http.StatusOK, resolveLoopResponse{
		Order:      ids,
		Groups:     topology.Groups(order),
		LoopLength: doc.LoopLength(),
	})
}

// --- helpers ---

// writeJSON encodes v as JSON and writes it to w with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(v); encErr != nil {
		s.logger.Error("failed to encode response", "error", encErr)
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// Shutdown gracefully shuts down an http.Server with the given timeout.
// This is a convenience helper used by the serve command.
func Shutdown(srv *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
