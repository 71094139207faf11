package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	httpadapter "github.com/shiftwise/shiftwise/internal/adapter/http"
	"github.com/shiftwise/shiftwise/internal/adapter/persistence"
	"github.com/shiftwise/shiftwise/internal/config"
	"github.com/shiftwise/shiftwise/internal/detector"
	"github.com/shiftwise/shiftwise/internal/rulepack"
	"github.com/shiftwise/shiftwise/internal/service/logger"
	"github.com/shiftwise/shiftwise/internal/service/ratelimit"
	"github.com/shiftwise/shiftwise/internal/service/token"
	"github.com/shiftwise/shiftwise/internal/usecase"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	structuredLogger := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		ServiceName: "compliance-core",
	})
	structuredLogger.Info(ctx, "Application starting", map[string]interface{}{
		"env": cfg.Server.Environment,
	})

	db, err := sql.Open("postgres", cfg.DatabaseURL())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxConnections)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		structuredLogger.Error(ctx, "Failed to ping database", err, map[string]interface{}{
			"host": cfg.Database.Host,
		})
		log.Fatalf("Failed to ping database: %v", err)
	}
	structuredLogger.Info(ctx, "Database connection established", map[string]interface{}{
		"host":   cfg.Database.Host,
		"dbname": cfg.Database.DBName,
	})

	limiter, err := ratelimit.New(ratelimit.Config{
		Enabled:  cfg.Redis.Enabled,
		RedisURL: cfg.Redis.URL,
	}, logrus.New())
	if err != nil {
		structuredLogger.Error(ctx, "Failed to initialize rate limiter", err, map[string]interface{}{
			"redis_url": cfg.Redis.URL,
		})
		log.Fatalf("Failed to initialize rate limiter: %v", err)
	}

	tokens, err := token.NewService(cfg.Security.TokenSecret)
	if err != nil {
		log.Fatalf("Failed to initialize token service: %v", err)
	}

	packs, err := rulepack.LoadDefaults()
	if err != nil {
		log.Fatalf("Failed to load rule packs: %v", err)
	}

	ruleSetRepo := persistence.NewPostgresRuleSetRepository(db)
	violationRepo := persistence.NewPostgresViolationRepository(db)
	reportRepo := persistence.NewPostgresReportRepository(db)
	auditRepo := persistence.NewPostgresAuditLogRepository(db)
	entryProvider := persistence.NewPostgresTimeEntryProvider(db)

	engine := detector.NewEngine()

	complianceUC := usecase.NewComplianceUseCase(
		ruleSetRepo, violationRepo, auditRepo, entryProvider,
		engine, structuredLogger, cfg.Compliance.MaxRangeDays,
	)
	ruleSetUC := usecase.NewRuleSetUseCase(ruleSetRepo, auditRepo, packs, structuredLogger)
	violationUC := usecase.NewViolationUseCase(violationRepo, auditRepo, structuredLogger)
	statsUC := usecase.NewStatsUseCase(violationRepo, cfg.Compliance.StatsTypeHorizonDays)
	reportUC := usecase.NewReportUseCase(
		violationRepo, reportRepo, auditRepo, tokens, structuredLogger,
		cfg.Compliance.ReportBaseURL, cfg.Compliance.ReportDownloadTTL, cfg.Compliance.MaxRangeDays,
	)
	auditUC := usecase.NewAuditUseCase(auditRepo)

	server := httpadapter.NewServer(
		httpadapter.ServerConfig{
			Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
			ReadTimeout:       cfg.Server.ReadTimeout,
			WriteTimeout:      cfg.Server.WriteTimeout,
			IdleTimeout:       cfg.Server.IdleTimeout,
			RateLimitRequests: cfg.Security.RateLimitRequests,
			RateLimitWindow:   cfg.Security.RateLimitWindow,
		},
		complianceUC, ruleSetUC, violationUC, statsUC, reportUC, auditUC,
		tokens, limiter, structuredLogger,
	)

	go func() {
		structuredLogger.Info(ctx, "Starting server", map[string]interface{}{
			"host": cfg.Server.Host,
			"port": cfg.Server.Port,
		})
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			structuredLogger.Error(ctx, "Server failed to start", err, map[string]interface{}{
				"port": cfg.Server.Port,
			})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	structuredLogger.Info(ctx, "Shutting down server...", map[string]interface{}{})

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		structuredLogger.Error(ctx, "Server forced to shutdown", err, map[string]interface{}{})
	}
	structuredLogger.Info(ctx, "Server exited", map[string]interface{}{})
}
