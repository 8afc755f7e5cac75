package chi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/zagg/internal/domain"
	"github.com/kailas-cloud/zagg/internal/domain/aggregate"
	domcombine "github.com/kailas-cloud/zagg/internal/domain/combine"
	"github.com/kailas-cloud/zagg/internal/domain/zset"
	combineuc "github.com/kailas-cloud/zagg/internal/usecase/combine"
	healthuc "github.com/kailas-cloud/zagg/internal/usecase/health"
)

// maxSources caps the number of source keys in a single aggregation.
const maxSources = 1000

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the zagg HTTP API.
type Server struct {
	combine       *combineuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(combine *combineuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		combine: combine,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrWrongType, http.StatusConflict, ErrorCodeWrongType),
		sentinelHandler(domain.ErrForbidden, http.StatusForbidden, ErrorCodeForbidden),
		sentinelHandler(domain.ErrUnavailable, http.StatusServiceUnavailable, ErrorCodeUnavailable),
	}
	return s
}

// Routes registers the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/sets/{key}", s.AddMembers)
		r.Get("/sets/{key}", s.RangeMembers)
		r.Post("/union", s.combineHandler(zset.Union))
		r.Post("/inter", s.combineHandler(zset.Inter))
	})
}

// AddMembers handles POST /v1/sets/{key}.
func (s *Server) AddMembers(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req AddMembersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Members) == 0 {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "At least one member is required")
		return
	}

	members := make([]zset.Member, len(req.Members))
	for i, m := range req.Members {
		if m.Score == nil {
			writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed,
				fmt.Sprintf("members[%d]: score is required", i))
			return
		}
		members[i] = zset.Member{Name: m.Member, Score: float64(*m.Score)}
	}

	added, err := s.combine.Add(r.Context(), key, members)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AddMembersResponse{Key: key, Added: added})
}

// RangeMembers handles GET /v1/sets/{key}?start=&stop=.
func (s *Server) RangeMembers(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	start, err := queryInt(r, "start", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	stop, err := queryInt(r, "stop", -1)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}

	members, err := s.combine.Range(r.Context(), key, start, stop)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MembersResponse{Members: membersToDTO(members, true)})
}

func (s *Server) combineHandler(op zset.Op) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body CombineRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
			return
		}
		if len(body.Sources) > maxSources {
			writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed,
				fmt.Sprintf("Too many sources: %d (max %d)", len(body.Sources), maxSources))
			return
		}

		req, err := combineRequestFromDTO(op, body)
		if err != nil {
			writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
			return
		}

		res, err := s.combine.Combine(r.Context(), req)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}

		if req.Stores() {
			stored := res.Stored
			writeJSON(w, http.StatusOK, CombineResponse{Destination: req.Destination(), Stored: &stored})
			return
		}
		members := membersToDTO(res.Members, req.WithScoresRequested())
		writeJSON(w, http.StatusOK, CombineResponse{Members: &members})
	}
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:      string(report.Status),
		Checks:      checks,
		DBLatencyMs: float64(report.DBLatency.Microseconds()) / 1000,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func combineRequestFromDTO(op zset.Op, body CombineRequest) (*domcombine.Request, error) {
	sources := make([]domcombine.Source, len(body.Sources))
	for i, src := range body.Sources {
		sources[i] = domcombine.Source{Key: src.Key, Weight: src.Weight}
	}

	var opts []domcombine.Option
	if body.Aggregate != "" {
		p, err := aggregate.ParsePolicy(body.Aggregate)
		if err != nil {
			return nil, err
		}
		opts = append(opts, domcombine.WithAggregate(p))
	}
	if body.Destination != "" {
		opts = append(opts, domcombine.WithDestination(body.Destination))
	}
	if body.WithScores {
		opts = append(opts, domcombine.WithScores())
	}
	return domcombine.NewRequest(op, sources, opts...)
}

func queryInt(r *http.Request, name string, def int64) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return v, nil
}

// internalErrorBody is sent when a reply cannot be encoded.
var internalErrorBody = []byte(`{"code":"internal_error","message":"Failed to encode response"}` + "\n")

// writeJSON encodes v in full before writing the header.
// An encoding failure is sent as a 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		status = http.StatusInternalServerError
		buf.Reset()
		buf.Write(internalErrorBody)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidRequest,
		domain.ErrNotFound,
		domain.ErrWrongType,
		domain.ErrForbidden,
		domain.ErrUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
