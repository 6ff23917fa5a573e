// Package main provides the routing gateway server implementation.
package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"

	"github.com/routeforge/gateway/api/handlers"
	"github.com/routeforge/gateway/config"
	"github.com/routeforge/gateway/internal/budget"
	"github.com/routeforge/gateway/internal/cache"
	"github.com/routeforge/gateway/internal/complexity"
	"github.com/routeforge/gateway/internal/database"
	"github.com/routeforge/gateway/internal/metrics"
	"github.com/routeforge/gateway/internal/provider"
	"github.com/routeforge/gateway/internal/provider/httpexec"
	"github.com/routeforge/gateway/internal/router"
	"github.com/routeforge/gateway/internal/server"
	"github.com/routeforge/gateway/types"
)

// =============================================================================
// 🖥️ Server 结构
// =============================================================================

// Server is the routing gateway's main process: it wires the routing
// core's collaborators (complexity analyzer, budget controller, cache
// manager, provider registry) into a Router and exposes it over two HTTP
// listeners — the public API and a separate Prometheus metrics port.
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	httpManager    *server.Manager
	metricsManager *server.Manager

	router            *router.Router
	completionHandler *handlers.CompletionHandler
	systemHandler     *handlers.SystemHandler
	healthHandler     *handlers.HealthHandler

	metricsCollector *metrics.Collector

	db     *gorm.DB
	dbPool *database.PoolManager

	wg sync.WaitGroup
}

// NewServer creates a new Server instance.
func NewServer(cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{
		cfg:    cfg,
		logger: logger,
	}
}

// =============================================================================
// 🚀 启动流程
// =============================================================================

// Start wires every collaborator and starts both HTTP listeners.
func (s *Server) Start() error {
	s.metricsCollector = metrics.NewCollector("gateway", s.logger)

	db, err := openDatabase(s.cfg.Database, s.logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	poolCfg := database.PoolConfig{
		MaxIdleConns:        s.cfg.Database.MaxIdleConns,
		MaxOpenConns:        s.cfg.Database.MaxOpenConns,
		ConnMaxLifetime:     s.cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime:     database.DefaultPoolConfig().ConnMaxIdleTime,
		HealthCheckInterval: database.DefaultPoolConfig().HealthCheckInterval,
	}
	dbPool, err := database.NewPoolManager(s.db, poolCfg, s.logger)
	if err != nil {
		return fmt.Errorf("failed to init database pool: %w", err)
	}
	s.dbPool = dbPool

	if err := s.initRouter(); err != nil {
		return fmt.Errorf("failed to init router: %w", err)
	}

	s.initHandlers()

	if err := s.startHTTPServer(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	if err := s.startMetricsServer(); err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}

	s.logger.Info("All servers started",
		zap.Int("http_port", s.cfg.Server.HTTPPort),
		zap.Int("metrics_port", s.cfg.Server.MetricsPort),
		zap.Int("providers", len(s.cfg.Providers)),
	)

	return nil
}

// =============================================================================
// 🔧 路由核心装配
// =============================================================================

// initRouter builds the complexity analyzer, budget controller, cache
// manager, and provider registry, then assembles them into a Router.
func (s *Server) initRouter() error {
	analyzer := complexity.New(complexity.DefaultConfig())

	store, err := budget.NewStore(s.db, s.logger)
	if err != nil {
		return fmt.Errorf("failed to init budget store: %w", err)
	}
	budgetCtl := budget.NewController(s.logger, store)
	s.applyBudgetDefaults(budgetCtl)

	var redisClient redis.UniversalClient
	if s.cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:         s.cfg.Redis.Addr,
			Password:     s.cfg.Redis.Password,
			DB:           s.cfg.Redis.DB,
			PoolSize:     s.cfg.Redis.PoolSize,
			MinIdleConns: s.cfg.Redis.MinIdleConns,
		})
	}

	cacheCfg := cache.Config{
		L1Capacity: s.cfg.Cache.L1Capacity,
		L1TTL:      s.cfg.Cache.L1TTL,
		L2TTL:      s.cfg.Cache.L2TTL,
		L3TTL:      s.cfg.Cache.L3TTL,
	}
	cacheMgr, err := cache.NewManager(cacheCfg, redisClient, s.db, s.logger)
	if err != nil {
		return fmt.Errorf("failed to init cache manager: %w", err)
	}

	registry := provider.NewRegistry(s.logger)
	for _, p := range s.cfg.Providers {
		registry.Register(toProviderConfig(p))
	}

	executor := httpexec.New()

	s.router = router.New(analyzer, budgetCtl, cacheMgr, registry, executor, s.logger)
	return nil
}

// applyBudgetDefaults seeds the controller's fallback user/team/company
// configuration from the deployment's configured limits.
func (s *Server) applyBudgetDefaults(ctl *budget.Controller) {
	b := s.cfg.Budget
	period := types.BudgetPeriod(b.Period)
	if period == "" {
		period = types.BudgetPeriodMonthly
	}

	ctl.SetDefaultConfig(types.BudgetConfig{
		Level:            types.BudgetLevelUser,
		Period:           period,
		LimitUSD:         b.UserLimitUSD,
		WarningThreshold: b.WarningThreshold,
		Timezone:         b.Timezone,
	})
	ctl.SetDefaultConfig(types.BudgetConfig{
		Level:            types.BudgetLevelTeam,
		Period:           period,
		LimitUSD:         b.TeamLimitUSD,
		WarningThreshold: b.WarningThreshold,
		Timezone:         b.Timezone,
	})
	ctl.SetDefaultConfig(types.BudgetConfig{
		Level:            types.BudgetLevelCompany,
		Period:           period,
		LimitUSD:         b.CompanyLimitUSD,
		WarningThreshold: b.WarningThreshold,
		Timezone:         b.Timezone,
	})
}

// toProviderConfig converts the YAML-shaped config.ProviderConfig into
// the domain types.ProviderConfig the registry and executors consume.
func toProviderConfig(p config.ProviderConfig) types.ProviderConfig {
	timeout := p.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	openTimeout := p.OpenTimeout
	if openTimeout == 0 {
		openTimeout = 30 * time.Second
	}
	failureThreshold := p.FailureThreshold
	if failureThreshold == 0 {
		failureThreshold = 5
	}

	return types.ProviderConfig{
		ProviderID:       p.ProviderID,
		BaseURL:          p.BaseURL,
		CredentialEnvVar: p.CredentialEnvVar,
		APIVersion:       p.APIVersion,
		Timeout:          timeout,
		Cost: types.CostTable{
			InputPricePer1K:  p.InputPricePer1K,
			OutputPricePer1K: p.OutputPricePer1K,
		},
		Models: p.Models,
		Breaker: types.BreakerConfig{
			FailureThreshold: failureThreshold,
			OpenTimeout:      openTimeout,
		},
		RateLimits: types.RateLimits{
			RequestsPerMinute: p.RequestsPerMinute,
			TokensPerMinute:   p.TokensPerMinute,
		},
		IsEnabled: p.IsEnabled,
		Status:    types.ProviderStatusActive,
		Tags:      p.Tags,
	}
}

// initHandlers wires the HTTP handlers over the already-built router.
func (s *Server) initHandlers() {
	s.completionHandler = handlers.NewCompletionHandler(s.router, s.logger)
	s.systemHandler = handlers.NewSystemHandler(s.router, s.logger)
	s.healthHandler = handlers.NewHealthHandler(s.logger)

	if s.dbPool != nil {
		s.healthHandler.RegisterCheck(handlers.NewDatabaseHealthCheck("database", s.dbPool.Ping))
	}

	s.logger.Info("Handlers initialized")
}

// =============================================================================
// 🌐 HTTP 服务器
// =============================================================================

// startHTTPServer registers every route and starts the public listener
// behind the full middleware chain.
func (s *Server) startHTTPServer() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.healthHandler.HandleHealth)
	mux.HandleFunc("/healthz", s.healthHandler.HandleHealthz)
	mux.HandleFunc("/ready", s.healthHandler.HandleReady)
	mux.HandleFunc("/readyz", s.healthHandler.HandleReady)
	mux.HandleFunc("/version", s.healthHandler.HandleVersion(Version, BuildTime, GitCommit))

	mux.HandleFunc("/v1/chat/completions", s.completionHandler.HandleCompletion)
	mux.HandleFunc("/v1/stats", s.systemHandler.HandleStats)
	mux.HandleFunc("/v1/budget/summary", s.systemHandler.HandleBudgetSummary)
	mux.HandleFunc("/v1/cache/clear", s.systemHandler.HandleCacheClear)

	skipAuthPaths := []string{"/health", "/healthz", "/ready", "/readyz", "/version", "/metrics"}
	handler := Chain(mux,
		Recovery(s.logger),
		RequestID(),
		SecurityHeaders(),
		RequestLogger(s.logger),
		MetricsMiddleware(s.metricsCollector),
		CORS(s.cfg.Server.CORSAllowedOrigins),
		RateLimiter(context.Background(), s.cfg.Server.RateLimitRPS, s.cfg.Server.RateLimitBurst, s.logger),
		APIKeyAuth(s.cfg.Server.APIKeys, skipAuthPaths, false, s.logger),
	)

	serverConfig := server.Config{
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.HTTPPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		IdleTimeout:     120 * s.cfg.Server.ReadTimeout,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}

	s.httpManager = server.NewManager(handler, serverConfig, s.logger)

	if err := s.httpManager.Start(); err != nil {
		return err
	}

	s.logger.Info("HTTP server started", zap.Int("port", s.cfg.Server.HTTPPort))
	return nil
}

// =============================================================================
// 📊 Metrics 服务器
// =============================================================================

func (s *Server) startMetricsServer() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	serverConfig := server.Config{
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.MetricsPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}

	s.metricsManager = server.NewManager(mux, serverConfig, s.logger)

	if err := s.metricsManager.Start(); err != nil {
		return err
	}

	s.logger.Info("Metrics server started", zap.Int("port", s.cfg.Server.MetricsPort))
	return nil
}

// =============================================================================
// 🛑 关闭流程
// =============================================================================

// WaitForShutdown blocks until a termination signal arrives, then shuts
// down gracefully.
func (s *Server) WaitForShutdown() {
	if s.httpManager != nil {
		s.httpManager.WaitForShutdown()
	}
	s.Shutdown()
}

// Shutdown gracefully stops both listeners and closes the database.
func (s *Server) Shutdown() {
	s.logger.Info("Starting graceful shutdown...")

	ctx := context.Background()

	if s.httpManager != nil {
		if err := s.httpManager.Shutdown(ctx); err != nil {
			s.logger.Error("HTTP server shutdown error", zap.Error(err))
		}
	}

	if s.metricsManager != nil {
		if err := s.metricsManager.Shutdown(ctx); err != nil {
			s.logger.Error("Metrics server shutdown error", zap.Error(err))
		}
	}

	if s.dbPool != nil {
		if err := s.dbPool.Close(); err != nil {
			s.logger.Error("Database close error", zap.Error(err))
		}
	}

	s.wg.Wait()

	s.logger.Info("Graceful shutdown completed")
}

// =============================================================================
// 🗄️ 数据库连接
// =============================================================================

// openDatabase opens a gorm connection for the configured dialect.
// sqlite uses the pure-Go glebarez driver so the gateway binary needs no
// CGO toolchain; postgres and mysql use their standard gorm drivers.
func openDatabase(dbCfg config.DatabaseConfig, logger *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch dbCfg.Driver {
	case "postgres", "":
		dialector = postgres.Open(dbCfg.DSN())
	case "mysql":
		dialector = mysql.Open(dbCfg.DSN())
	case "sqlite":
		dialector = sqlite.Open(dbCfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", dbCfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	logger.Info("Database connected", zap.String("driver", dbCfg.Driver))
	return db, nil
}
