package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CAFxX/httpcompression"

	"github.com/msomdec/recipe-community/internal/cache"
	"github.com/msomdec/recipe-community/internal/config"
	"github.com/msomdec/recipe-community/internal/domain"
	"github.com/msomdec/recipe-community/internal/events"
	"github.com/msomdec/recipe-community/internal/handler"
	"github.com/msomdec/recipe-community/internal/jobs"
	"github.com/msomdec/recipe-community/internal/metrics"
	"github.com/msomdec/recipe-community/internal/repository/sqlite"
	"github.com/msomdec/recipe-community/internal/service"
	"github.com/msomdec/recipe-community/internal/tracing"
)

const streamPath = "/api/feed/stream"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logOpts := &slog.HandlerOptions{Level: cfg.LogLevel}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied")

	healthChecks := map[string]handler.HealthCheck{"database": db.Ping}

	var suggestionCache domain.Cache = cache.NewMemory()
	if len(cfg.MemcacheServers) > 0 {
		mc := cache.NewMemcache("recipes:", cfg.MemcacheServers...)
		if err := mc.Ping(); err != nil {
			slog.Warn("memcache unreachable, suggestions will be recomputed until it recovers", "error", err)
		}
		suggestionCache = mc
		healthChecks["memcache"] = func(context.Context) error { return mc.Ping() }
		slog.Info("using memcache", "servers", cfg.MemcacheServers)
	}

	m := metrics.New()

	forward := []domain.EventPublisher{m}
	if cfg.NATSURL != "" {
		natsPub, err := events.ConnectNATS(cfg.NATSURL)
		if err != nil {
			slog.Error("failed to connect to nats", "error", err)
			os.Exit(1)
		}
		defer natsPub.Close()
		forward = append(forward, natsPub)
		slog.Info("publishing feed events to nats", "url", cfg.NATSURL)
	}
	hub := events.NewHub(forward...)
	m.GaugeFunc("feed_stream_subscribers", "Open live feed streams.", func() float64 {
		return float64(hub.Subscribers())
	})
	m.GaugeFunc("feed_stream_dropped_events", "Events dropped for slow live feed streams.", func() float64 {
		return float64(hub.Dropped())
	})

	photoService := service.NewPhotoService(db.Photos(), db.FileStore(), cfg.DefaultPhotoURL)
	services := handler.Services{
		Auth:     service.NewAuthService(db.Users(), cfg.JWTSecret, cfg.BcryptCost),
		Posts:    service.NewPostService(db.Posts(), photoService, hub),
		Feed:     service.NewFeedService(db.Posts()),
		Social:   service.NewSocialService(db.Follows(), db.Users(), suggestionCache, cfg.SuggestionTTL, hub),
		Profiles: service.NewProfileService(db.Users(), db.Follows(), db.Recipes(), db.Posts(), photoService),
		Recipes:  service.NewRecipeService(db.Recipes(), photoService),
		Photos:   photoService,
		Events:   hub,
	}

	// 5 attempts then one more every 12s per IP on auth endpoints; writes
	// allow short bursts per user.
	authLimiter := service.NewTokenBucket(1.0/12, 5)
	defer authLimiter.Close()
	writeLimiter := service.NewTokenBucket(1, 20)
	defer writeLimiter.Close()

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, services, handler.Options{
		CookieSecure: cfg.CookieSecure,
		HealthChecks: healthChecks,
		AuthLimiter:  authLimiter,
		WriteLimiter: writeLimiter,
		Metrics:      m.Handler(),
	})

	scheduler := jobs.NewScheduler()
	if err := scheduler.AddOrphanSweep(cfg.OrphanSweepSchedule, photoService, cfg.OrphanGracePeriod); err != nil {
		slog.Error("failed to schedule jobs", "error", err)
		os.Exit(1)
	}
	scheduler.Start()

	// metrics.Middleware reads the matched route pattern, so it wraps the mux
	// directly.
	var h http.Handler = m.Middleware(mux)
	if cfg.ZipkinURL != "" {
		tracer, err := tracing.New("recipe-community", "0.0.0.0:"+cfg.Port, cfg.ZipkinURL)
		if err != nil {
			slog.Error("failed to create tracer", "error", err)
			os.Exit(1)
		}
		defer tracer.Close()
		h = tracer.Middleware(h)
		slog.Info("reporting traces to zipkin", "url", cfg.ZipkinURL)
	}

	compress, err := httpcompression.DefaultAdapter()
	if err != nil {
		slog.Error("failed to create compression adapter", "error", err)
		os.Exit(1)
	}
	h = skipStream(compress(h), h)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.SecurityHeaders(handler.LogRequests(h)),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Live feed streams run until their request context ends, so shutdown
	// cancels the base context they derive from.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	srv.BaseContext = func(net.Listener) context.Context { return baseCtx }
	srv.RegisterOnShutdown(func() {
		slog.Info("closing live feed streams", "subscribers", hub.Subscribers())
		cancelBase()
	})

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	scheduler.Stop(shutdownCtx)
	slog.Info("server stopped")
}

// skipStream routes the SSE endpoint around the compressing handler so each
// event is flushed to the client as it is written.
func skipStream(compressed, plain http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == streamPath {
			plain.ServeHTTP(w, r)
			return
		}
		compressed.ServeHTTP(w, r)
	})
}
