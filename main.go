package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/joho/godotenv/autoload"

	"fleet-crm/internal/admin"
	"fleet-crm/internal/advisor"
	"fleet-crm/internal/auth"
	"fleet-crm/internal/constants"
	"fleet-crm/internal/domain"
	"fleet-crm/internal/drafts"
	"fleet-crm/internal/enrichment"
	"fleet-crm/internal/infrastructure/repository"
	"fleet-crm/internal/matching"
	"fleet-crm/internal/processor"
	"fleet-crm/pkg/config"
	"fleet-crm/pkg/container"
	"fleet-crm/pkg/database"
	"fleet-crm/pkg/events"
	"fleet-crm/pkg/health"
	"fleet-crm/pkg/logging"
	"fleet-crm/pkg/metrics"
	"fleet-crm/pkg/monitoring"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg := config.Load()
	logger, err := logging.NewLogger(logging.LogConfig{
		Level:    logging.ParseLevel(cfg.LogLevel),
		Format:   cfg.LogFormat,
		Output:   "stdout",
		FilePath: cfg.LogFile,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", err)
	}
	logger.Info("starting fleet CRM", logging.String("version", version), logging.Any("config", cfg.Summary()))

	c := buildContainer(cfg, logger)
	defer func() {
		if err := c.Close(); err != nil {
			logger.Error("shutdown hooks failed", err)
		}
	}()

	eng := container.MustResolve[*processor.ProcessingEngine](c)
	roles := container.MustResolve[*auth.RoleResolver](c)
	eng.Start()

	// Hot reload: matcher weights and the roles file apply without a restart.
	cw := config.NewWatcher(cfg.ConfigReloadInterval)
	cw.Start()
	go applyConfigChanges(cw.Subscribe(), eng, roles, logger)
	c.OnClose(func() error { cw.Close(); return nil })

	router, err := buildRouter(c, cfg)
	if err != nil {
		logger.Fatal("router setup failed", err)
	}
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("HTTP server listening", logging.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received, draining")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.GracefulShutdownTimeoutDefault)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", err)
	}
	if err := eng.Stop(constants.EngineStopTimeoutDefault); err != nil {
		logger.Error("processing engine shutdown error", err)
	}
	logger.Info("shutdown complete")
}

// buildContainer registers every component. Storage falls back to memory when the
// corresponding URL is not configured.
func buildContainer(cfg *config.Config, logger *logging.Logger) *container.Container {
	c := container.New()
	must := func(err error) {
		if err != nil {
			logger.Fatal("container setup failed", err)
		}
	}

	must(container.Value(c, cfg))
	must(container.Value(c, logger))

	must(container.Provide(c, true, func(c *container.Container) (*database.DB, error) {
		if cfg.DatabaseURL == "" {
			return nil, nil
		}
		db, err := database.NewWithConfig(cfg)
		if err != nil {
			return nil, err
		}
		c.OnClose(db.Close)
		ctx, cancel := context.WithTimeout(context.Background(), constants.DBSchemaTimeout)
		defer cancel()
		if err := db.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return db, nil
	}))

	must(container.Provide(c, true, func(c *container.Container) (domain.Repository, error) {
		db, err := container.Resolve[*database.DB](c)
		if err != nil {
			return nil, err
		}
		if db == nil {
			logger.Warn("DATABASE_URL not set, records are kept in memory")
			return repository.NewMemoryRepository(), nil
		}
		return repository.NewSQLRepository(db), nil
	}))

	must(container.Provide(c, true, func(c *container.Container) (events.Store, error) {
		db, err := container.Resolve[*database.DB](c)
		if err != nil {
			return nil, err
		}
		if db == nil {
			return events.NewMemoryStore(), nil
		}
		return events.NewSQLStore(db), nil
	}))

	must(container.Provide(c, true, func(c *container.Container) (drafts.Store, error) {
		if cfg.RedisURL == "" {
			logger.Warn("REDIS_URL not set, drafts are kept in memory")
			return drafts.NewMemoryStore(), nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), constants.RedisConnectTimeout)
		defer cancel()
		store, err := drafts.NewRedisStore(ctx, cfg.RedisURL, cfg.DraftTTL)
		if err != nil {
			return nil, err
		}
		c.OnClose(store.Close)
		return store, nil
	}))

	must(container.Provide(c, true, func(c *container.Container) (*processor.ProcessingEngine, error) {
		repo, err := container.Resolve[domain.Repository](c)
		if err != nil {
			return nil, err
		}
		es, err := container.Resolve[events.Store](c)
		if err != nil {
			return nil, err
		}
		pc := processor.DefaultProcessingConfig()
		pc.WorkerCount = cfg.MatchWorkers
		pc.QueueSize = cfg.MatchQueueSize
		pc.RunTimeout = cfg.MatchRunTimeout
		eng := processor.NewProcessingEngine(repo, matching.NewMatcher(matcherConfig(cfg)), pc, logger)
		eng.SetEventStore(es)
		return eng, nil
	}))

	must(container.Provide(c, true, func(*container.Container) (*enrichment.Enricher, error) {
		return enrichment.New(cfg.GoogleMapsAPIKey, cfg.GeocodeRatePerSec, logger)
	}))

	must(container.Provide(c, true, func(*container.Container) (*advisor.Advisor, error) {
		return advisor.New(advisor.Config{
			APIKey:          cfg.OpenAIAPIKey,
			Model:           cfg.OpenAIModel,
			MaxTokens:       cfg.OpenAIMaxTokens,
			Timeout:         cfg.OpenAITimeout,
			MonthlyLimitUSD: cfg.OpenAIMonthlyLimit,
		}, logger)
	}))

	must(container.Provide(c, true, func(*container.Container) (*auth.RoleResolver, error) {
		return auth.NewRoleResolver(cfg.RolesFile, logger), nil
	}))

	must(container.Provide(c, true, func(c *container.Container) (*health.Manager, error) {
		return buildHealth(c, logger)
	}))

	return c
}

func matcherConfig(cfg *config.Config) matching.Config {
	mc := matching.DefaultConfig()
	mc.MinScore = cfg.MatchMinScore
	mc.StackNameRules = cfg.StackNameRules
	return mc
}

func buildHealth(c *container.Container, logger *logging.Logger) (*health.Manager, error) {
	hm := health.NewManager(version, constants.HealthTimeoutDefault, logger)

	db, err := container.Resolve[*database.DB](c)
	if err != nil {
		return nil, err
	}
	if db != nil {
		hm.Register(health.NewPingChecker("database", true, db))
	}

	store, err := container.Resolve[drafts.Store](c)
	if err != nil {
		return nil, err
	}
	if rs, ok := store.(*drafts.RedisStore); ok {
		// drafts are a convenience; losing Redis degrades the service but does not take it down
		hm.Register(health.NewPingChecker("redis", false, health.PingFunc(rs.Ping)))
	}

	eng, err := container.Resolve[*processor.ProcessingEngine](c)
	if err != nil {
		return nil, err
	}
	hm.Register(health.NewFuncChecker("processor", false, func(context.Context) health.ComponentHealth {
		st := eng.GetStats()
		h := health.ComponentHealth{
			Status: health.StatusHealthy,
			Metadata: map[string]any{
				"queue_size":     st.QueueSize,
				"workers":        st.WorkerCount,
				"completed_runs": st.CompletedRuns,
				"failed_runs":    st.FailedRuns,
			},
		}
		if st.TotalRuns > 0 && float64(st.FailedRuns) > constants.ProcessorFailedRunRatio*float64(st.TotalRuns) {
			h.Status = health.StatusDegraded
			h.Message = "more than half of the match runs failed"
		}
		return h
	}))
	return hm, nil
}

func buildRouter(c *container.Container, cfg *config.Config) (*mux.Router, error) {
	logger := container.MustResolve[*logging.Logger](c)
	repo, err := container.Resolve[domain.Repository](c)
	if err != nil {
		return nil, err
	}
	store, err := container.Resolve[drafts.Store](c)
	if err != nil {
		return nil, err
	}
	es, err := container.Resolve[events.Store](c)
	if err != nil {
		return nil, err
	}
	enricher, err := container.Resolve[*enrichment.Enricher](c)
	if err != nil {
		return nil, err
	}
	adv, err := container.Resolve[*advisor.Advisor](c)
	if err != nil {
		return nil, err
	}
	hm, err := container.Resolve[*health.Manager](c)
	if err != nil {
		return nil, err
	}
	eng := container.MustResolve[*processor.ProcessingEngine](c)
	roles := container.MustResolve[*auth.RoleResolver](c)

	router := mux.NewRouter()
	router.Handle("/healthz", health.LivenessHandler()).Methods(http.MethodGet)
	router.Handle("/readyz", hm.Handler()).Methods(http.MethodGet)

	if cfg.MetricsEnabled {
		reqs := monitoring.NewRequests(512, metrics.Default)
		router.Use(monitoring.Middleware(reqs))
		router.Handle(cfg.MetricsPath, metrics.Handler()).Methods(http.MethodGet)
		router.Handle("/debug/stats", monitoring.StatsHandler(reqs)).Methods(http.MethodGet)
	}
	if cfg.Env == "development" {
		monitoring.RegisterPprof(router)
	}

	router.Use(auth.NewMiddleware(roles, repo).Handler)
	admin.NewServer(admin.Deps{
		Repo:     repo,
		Drafts:   store,
		Engine:   eng,
		Events:   es,
		Enricher: enricher,
		Advisor:  adv,
		Logger:   logger,
	}).Register(router)
	return router, nil
}

func applyConfigChanges(ch <-chan config.Change, eng *processor.ProcessingEngine, roles *auth.RoleResolver, logger *logging.Logger) {
	log := logger.WithComponent("config")
	for chg := range ch {
		if chg.Err != nil {
			log.Warn("config reload rejected", logging.Error(chg.Err))
			continue
		}
		if chg.Old.MatchMinScore != chg.New.MatchMinScore || chg.Old.StackNameRules != chg.New.StackNameRules {
			eng.SetMatcher(matching.NewMatcher(matcherConfig(chg.New)))
		}
		if chg.Old.RolesFile != chg.New.RolesFile {
			if err := roles.SetPath(chg.New.RolesFile); err != nil {
				log.Warn("roles file not reloaded", logging.String("path", chg.New.RolesFile), logging.Error(err))
			}
		}
		log.Info("config applied", logging.Any("fields", chg.Fields))
	}
}
