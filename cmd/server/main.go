package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"skillbridge/internal/assistant"
	"skillbridge/internal/auth"
	"skillbridge/internal/config"
	apphttp "skillbridge/internal/http"
	"skillbridge/internal/metrics"
	"skillbridge/internal/repository/sqlite"
	"skillbridge/internal/service"
	"skillbridge/internal/session"
	"skillbridge/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	configureLogger(logger, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	profileRepo := sqlite.NewProfileRepository(db)
	userRepo := sqlite.NewUserRepository(db)

	if err := profileRepo.Init(ctx); err != nil {
		logger.Fatalf("init profile repository: %v", err)
	}
	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	sessions, closeSessions := buildSessionStore(ctx, cfg, logger)
	defer closeSessions()

	var archive *storage.ResumeArchive
	if cfg.Storage.Bucket != "" {
		storageSvc, err := buildStorage(ctx, cfg, logger)
		if err != nil {
			logger.Fatalf("setup storage: %v", err)
		}
		archive = storage.NewResumeArchive(storageSvc, cfg.Storage.Bucket, cfg.Storage.KeyPrefix)
	} else {
		logger.Info("storage bucket not set, uploaded resumes are not archived")
	}

	profileService := service.NewProfileService(profileRepo, collector)
	advisor := service.NewStubAdvisor(logger)
	var archiver service.ResumeArchiver
	if archive != nil {
		archiver = archive
	}
	analysisService := service.NewAnalysisService(advisor, sessions, archiver, collector, logger)

	dispatcher := assistant.NewDispatcher(assistant.Config{
		ReplyDelay: cfg.Assistant.ReplyDelay,
		MaxPending: cfg.Assistant.MaxPending,
		Logger:     logger,
		Events:     collector,
	}, sessions)
	if err := dispatcher.Start(ctx); err != nil {
		logger.Fatalf("start assistant: %v", err)
	}

	opts := apphttp.Options{
		Profiles:       profileService,
		Analyses:       analysisService,
		Assistant:      dispatcher,
		Metrics:        collector,
		Logger:         logger,
		MaxUploadBytes: cfg.Upload.MaxBytes,
		ResumeURLTTL:   time.Duration(cfg.Storage.URLTTLMinutes) * time.Minute,
		RateLimit:      rate.Limit(cfg.RateLimit.RPS),
		RateBurst:      cfg.RateLimit.Burst,
		CORSOrigins:    cfg.Server.CORSOrigins,
	}
	if archive != nil {
		opts.Archive = archive
	}
	if cfg.AuthEnabled() {
		opts.Users = service.NewUserService(userRepo, cfg.Auth.RegisterPassword)
		opts.Tokens = auth.NewTokenService(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)
		logger.Info("accounts enabled, profile routes require a bearer token")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/metrics", gin.WrapH(metrics.Handler(registry)))
	apphttp.NewHandler(opts).RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	dispatcher.Shutdown()

	logger.Info("bye")
}

func configureLogger(logger *logrus.Logger, cfg config.Config) {
	if strings.EqualFold(cfg.Log.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
}

// buildSessionStore prefers Redis and falls back to memory when it is unset or unreachable.
func buildSessionStore(ctx context.Context, cfg config.Config, logger *logrus.Logger) (session.Store, func()) {
	if cfg.Cache.RedisAddr != "" {
		store, err := session.NewRedisStore(ctx, session.RedisOptions{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
			TTL:      cfg.Cache.SessionTTL,
		})
		if err == nil {
			logger.Infof("analysis sessions stored in redis at %s", cfg.Cache.RedisAddr)
			return store, func() {
				if err := store.Close(); err != nil {
					logger.Warnf("close redis: %v", err)
				}
			}
		}
		logger.WithError(err).Warn("redis unavailable, keeping analysis sessions in memory")
	}
	return session.NewMemoryStore(cfg.Cache.SessionTTL), func() {}
}

func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	if cfg.Storage.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("archiving resumes to s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client), nil
}
