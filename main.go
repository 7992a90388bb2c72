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

	"github.com/gogotex/docshare/internal/config"
	"github.com/gogotex/docshare/internal/database"
	"github.com/gogotex/docshare/internal/document/repository"
	"github.com/gogotex/docshare/internal/document/service"
	"github.com/gogotex/docshare/internal/keepalive"
	"github.com/gogotex/docshare/internal/oidc"
	"github.com/gogotex/docshare/internal/server"
	"github.com/gogotex/docshare/internal/storage"
	"github.com/gogotex/docshare/internal/sweeper"
	"github.com/gogotex/docshare/pkg/logger"
	"github.com/gogotex/docshare/pkg/metrics"
	"github.com/gogotex/docshare/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: store=%s redis=%v archive=%v keycloak=%v", cfg.Store.Backend, cfg.Redis.Host != "", cfg.Archive.Endpoint != "", cfg.Keycloak.URL != "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := repository.Open(ctx, cfg)
	if err != nil {
		if !cfg.Store.AllowDegraded {
			logger.Fatalf("storage unavailable: %v", err)
		}
		logger.Warnf("starting degraded, every document request will fail with 503: %v", err)
		repo, closeRepo = repository.NewUnavailableRepo(err), func() {}
	}
	defer closeRepo()

	policy := service.HideMismatch
	if cfg.Store.MismatchPolicy == config.PolicyForbidden {
		policy = service.RevealMismatch
	}
	svc := service.New(repo,
		service.WithOperationTimeout(cfg.Store.OperationTimeout),
		service.WithMismatchPolicy(policy),
	)

	sweepOpts := []sweeper.Option{
		sweeper.WithRetention(cfg.Retention.MaxAge),
		sweeper.WithInterval(cfg.Retention.SweepInterval),
	}
	if cfg.Archive.Endpoint != "" {
		arch, err := storage.NewMinIOStorage(ctx, cfg.Archive)
		if err != nil {
			logger.Warnf("archive disabled: %v", err)
		} else {
			sweepOpts = append(sweepOpts, sweeper.WithArchiver(arch))
			logger.Infof("archiving swept documents to bucket %s", cfg.Archive.Bucket)
		}
	}
	sw := sweeper.New(repo, sweepOpts...)
	go func() { _ = sw.Run(ctx) }()

	var rdb *redis.Client
	if addr := cfg.RedisAddr(); addr != "" {
		c, err := database.ConnectRedis(ctx, addr, cfg.Redis.Password, cfg.Redis.DB, 5*time.Second)
		if err != nil {
			logger.Warnf("redis unavailable, rate limits stay in-process: %v", err)
		} else {
			rdb = c
			defer rdb.Close()
			logger.Infof("connected to Redis at %s", addr)
		}
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)

	r, err := server.NewRouter(server.Deps{
		Config:   cfg,
		Service:  svc,
		Sweeper:  sw,
		Verifier: adminVerifier(ctx, cfg),
		Redis:    rdb,
		Started:  time.Now(),
	})
	if err != nil {
		logger.Fatalf("failed to build router: %v", err)
	}

	if cfg.KeepAlive.URL != "" {
		go keepalive.New(cfg.KeepAlive.URL, cfg.KeepAlive.Interval).Run(ctx)
	}

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("Starting document service on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown: %v", err)
	}
}

// adminVerifier prefers Keycloak and falls back to the shared HS256 secret.
// A nil result leaves the admin routes unregistered.
func adminVerifier(ctx context.Context, cfg *config.Config) middleware.Verifier {
	if cfg.Keycloak.URL != "" && cfg.Keycloak.Realm != "" && cfg.Keycloak.ClientID != "" {
		ver, err := oidc.NewVerifier(ctx, oidc.IssuerURL(cfg.Keycloak.URL, cfg.Keycloak.Realm), cfg.Keycloak.ClientID)
		if err == nil {
			return ver
		}
		logger.Warnf("failed to initialize OIDC verifier: %v", err)
	}
	if cfg.Admin.JWTSecret != "" {
		ver, err := oidc.NewHMACVerifier(cfg.Admin.JWTSecret)
		if err == nil {
			return ver
		}
		logger.Warnf("failed to initialize admin token verifier: %v", err)
	}
	logger.Infof("admin routes disabled: no verifier configured")
	return nil
}
