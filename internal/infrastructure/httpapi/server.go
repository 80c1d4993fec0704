package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"rugpull-detector/internal/domain/entity"
	"rugpull-detector/internal/domain/service"
	"rugpull-detector/internal/infrastructure/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RejectionRecorder counts requests rejected before analysis
type RejectionRecorder interface {
	RequestRejected(transport string)
}

// Server exposes the detector as the platform's HTTP plugin endpoint
type Server struct {
	detector     service.RugpullDetector
	registry     service.SignatureRegistry
	rejections   RejectionRecorder
	logger       *logger.Logger
	maxBodyBytes int64
}

// ruleView is the JSON shape of a signature rule on GET /rules
type ruleView struct {
	Selector    string          `json:"selector"`
	Name        string          `json:"name"`
	Type        entity.RiskType `json:"type"`
	Severity    entity.Severity `json:"severity"`
	Description string          `json:"description"`
	Gated       bool            `json:"gated"`
}

// NewServer creates a new HTTP API server
func NewServer(
	detector service.RugpullDetector,
	registry service.SignatureRegistry,
	rejections RejectionRecorder,
	logger *logger.Logger,
	maxBodyBytes int64,
) *Server {
	return &Server{
		detector:     detector,
		registry:     registry,
		rejections:   rejections,
		logger:       logger.WithComponent("http-api"),
		maxBodyBytes: maxBodyBytes,
	}
}

// Routes builds the chi router serving the plugin endpoints
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/rules", s.handleRules)
	r.Post("/detect", s.handleDetect)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	rules := s.registry.Rules()
	views := make([]ruleView, 0, len(rules))
	for i := range rules {
		views = append(views, ruleView{
			Selector:    "0x" + rules[i].Selector,
			Name:        rules[i].Name,
			Type:        rules[i].Type,
			Severity:    rules[i].Severity,
			Description: rules[i].Description,
			Gated:       rules[i].IsGated(),
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	if s.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	}

	var req entity.DetectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Warn("Failed to decode detect request", zap.Error(err))
		if s.rejections != nil {
			s.rejections.RequestRejected("http")
		}
		writeJSON(w, http.StatusBadRequest, &entity.DetectResponse{
			DetectionInfo: entity.DetectionInfo{
				Error:   true,
				Message: fmt.Sprintf("Error analyzing transaction: invalid request body: %v", err),
			},
		})
		return
	}

	writeJSON(w, http.StatusOK, s.detector.Detect(r.Context(), &req))
}

// requestLogger logs every request through zap
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Debug("Handled request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
