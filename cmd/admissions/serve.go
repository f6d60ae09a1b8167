package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "github.com/noah-isme/admissions-crm-api/api/swagger"
	"github.com/noah-isme/admissions-crm-api/internal/handler"
	"github.com/noah-isme/admissions-crm-api/internal/repository"
	"github.com/noah-isme/admissions-crm-api/internal/server"
	"github.com/noah-isme/admissions-crm-api/internal/service"
	"github.com/noah-isme/admissions-crm-api/pkg/cache"
	"github.com/noah-isme/admissions-crm-api/pkg/config"
	"github.com/noah-isme/admissions-crm-api/pkg/database"
	"github.com/noah-isme/admissions-crm-api/pkg/llm"
	"github.com/noah-isme/admissions-crm-api/pkg/news"
	"github.com/noah-isme/admissions-crm-api/pkg/scraper"
)

const (
	shutdownTimeout    = 10 * time.Second
	cacheSweepInterval = time.Minute
)

func newServeCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply the embedded schema before serving")
	return cmd
}

func runServe(parent context.Context, migrate bool) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, logr, err := bootstrap()
	if err != nil {
		return err
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if migrate {
		if err := database.Migrate(ctx, db, logr); err != nil {
			return err
		}
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, scrape cache stays in memory", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	followUpRepo := repository.NewFollowUpRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	customerRepo := repository.NewCustomerRepository(db)

	var cacheStore service.ScrapeCacheRepository
	if redisClient != nil {
		cacheStore = repository.NewScrapeCacheRepository(redisClient, cfg.Chat.CacheTTL, logr)
	}
	scrapeCache := service.NewScrapeCache(cacheStore, metrics, cfg.Chat.CacheTTL, logr)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
		AdminCode:   cfg.Admin.Code,
	})
	userSvc := service.NewUserService(userRepo, enrollmentRepo, logr)
	courseSvc := service.NewCourseService(courseRepo, validate)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, followUpRepo, userRepo, courseRepo, metrics, validate, logr)
	exportSvc := service.NewExportService(enrollmentSvc, logr)
	leadSvc := service.NewLeadService(leadRepo, validate, logr)
	customerSvc := service.NewCustomerService(customerRepo, validate)
	clock := service.NewClock(cfg.Chat.TimeZone)

	providers := llm.NewRegistry(cfg.Chat.DefaultProvider,
		llm.NewOpenRouter(providerConfig(cfg.Chat.OpenRouter, cfg.Chat.Timeout)),
		llm.NewGemini(providerConfig(cfg.Chat.Gemini, cfg.Chat.Timeout)),
		llm.NewHuggingFace(providerConfig(cfg.Chat.HuggingFace, cfg.Chat.Timeout)),
	)
	pages := scraper.NewService(scraper.Config{
		Job: scraper.JobConfig{
			APIKey:       cfg.Scraper.APIKey,
			BaseURL:      cfg.Scraper.BaseURL,
			Actor:        cfg.Scraper.Actor,
			PollInterval: cfg.Scraper.PollInterval,
			MaxAttempts:  cfg.Scraper.MaxAttempts,
			HTTPTimeout:  cfg.Scraper.FetchTimeout,
		},
		FetchTimeout: cfg.Scraper.FetchTimeout,
		MaxChars:     cfg.Scraper.MaxChars,
	}, logr)
	headlines := news.NewClient(cfg.News.APIKey, cfg.News.BaseURL, cfg.Scraper.FetchTimeout)
	chatSvc := service.NewChatService(providers, pages, headlines, scrapeCache, clock, metrics, logr)

	checks := map[string]handler.ReadinessCheck{"database": db.PingContext}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	router := server.NewRouter(server.Options{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AuthRequired:   cfg.JWT.AuthRequired,
		DocsEnabled:    cfg.Docs.Enabled,
		MetricsEnabled: cfg.Metrics.Enabled,
	}, server.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		Admin:      handler.NewAdminHandler(courseSvc, userSvc),
		Enrollment: handler.NewEnrollmentHandler(enrollmentSvc, exportSvc),
		Lead:       handler.NewLeadHandler(leadSvc),
		Customer:   handler.NewCustomerHandler(customerSvc),
		Chat:       handler.NewChatHandler(chatSvc, clock),
		Metrics:    handler.NewMetricsHandler(metrics, checks),
	}, authSvc, metrics, logr)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return scrapeCache.Run(gctx, cacheSweepInterval)
	})
	g.Go(func() error {
		<-gctx.Done()
		logr.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func providerConfig(p config.ProviderConfig, timeout time.Duration) llm.Config {
	return llm.Config{APIKey: p.APIKey, BaseURL: p.BaseURL, Model: p.Model, Timeout: timeout}
}
