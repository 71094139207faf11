// Package http exposes the compliance core over REST. Handlers parse and
// validate transport concerns only; all behavior lives in the use cases.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/shiftwise/shiftwise/internal/service/logger"
	"github.com/shiftwise/shiftwise/internal/service/ratelimit"
	"github.com/shiftwise/shiftwise/internal/service/token"
	"github.com/shiftwise/shiftwise/internal/usecase"
)

// Server is the HTTP server for the compliance API.
type Server struct {
	server *http.Server
	logger logger.Logger
}

// ServerConfig carries the transport settings.
type ServerConfig struct {
	Addr              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// NewServer wires handlers, middleware and routes.
func NewServer(
	cfg ServerConfig,
	compliance *usecase.ComplianceUseCase,
	ruleSets *usecase.RuleSetUseCase,
	violations *usecase.ViolationUseCase,
	stats *usecase.StatsUseCase,
	reports *usecase.ReportUseCase,
	audit *usecase.AuditUseCase,
	tokens *token.Service,
	limiter ratelimit.Limiter,
	log logger.Logger,
) *Server {
	router := mux.NewRouter()

	complianceHandler := NewComplianceHandler(compliance, stats)
	ruleSetHandler := NewRuleSetHandler(ruleSets)
	violationHandler := NewViolationHandler(violations)
	reportHandler := NewReportHandler(reports)
	auditHandler := NewAuditHandler(audit)

	authMW := NewAuthMiddleware(tokens)
	limitMW := NewRateLimitMiddleware(limiter, cfg.RateLimitRequests, cfg.RateLimitWindow, log)

	api := router.PathPrefix("/api/v1/compliance").Subrouter()
	api.Use(authMW.RequireIdentity)

	api.Handle("/check", limitMW.Limit(http.HandlerFunc(complianceHandler.CheckCompliance))).Methods("POST")
	api.HandleFunc("/stats", complianceHandler.GetStats).Methods("GET")

	api.HandleFunc("/rules", ruleSetHandler.GetRuleSet).Methods("GET")
	api.HandleFunc("/rules", ruleSetHandler.UpdateRuleSet).Methods("PATCH")
	api.HandleFunc("/rules/seed", ruleSetHandler.SeedRuleSet).Methods("POST")

	api.HandleFunc("/violations", violationHandler.ListViolations).Methods("GET")
	api.HandleFunc("/violations/{id}", violationHandler.GetViolation).Methods("GET")
	api.HandleFunc("/violations/{id}/acknowledge", violationHandler.AcknowledgeViolation).Methods("POST")

	api.Handle("/reports", limitMW.Limit(http.HandlerFunc(reportHandler.GenerateReport))).Methods("POST")
	api.HandleFunc("/reports/{id}", reportHandler.GetReport).Methods("GET")

	api.HandleFunc("/audit-logs", auditHandler.ListAuditLogs).Methods("GET")
	api.HandleFunc("/audit-logs/verify", auditHandler.VerifyChain).Methods("POST")

	// Download authenticates via its own time-bounded token, not the bearer
	// identity: the URL must work for whoever it was handed to, until expiry.
	router.HandleFunc("/api/v1/compliance/reports/{id}/download", reportHandler.DownloadReport).Methods("GET")

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	router.Use(correlationMiddleware)
	router.Use(loggingMiddleware(log))
	router.Use(recoveryMiddleware(log))

	return &Server{
		server: &http.Server{
			Addr:         cfg.Addr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		logger: log,
	}
}

// Start starts the HTTP server and blocks.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func correlationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cid := r.Header.Get("X-Correlation-ID")
		if cid == "" {
			cid = uuid.NewString()
		}
		w.Header().Set("X-Correlation-ID", cid)
		ctx := context.WithValue(r.Context(), logger.CorrelationIDKey, cid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(log logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Info(r.Context(), "Request handled", map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"remote_addr": r.RemoteAddr,
				"duration_ms": time.Since(start).Milliseconds(),
			})
		})
	}
}

func recoveryMiddleware(log logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error(r.Context(), "Panic recovered", nil, map[string]interface{}{
						"panic": rec,
						"path":  r.URL.Path,
					})
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
