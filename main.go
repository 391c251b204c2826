package main

// GET    /api/v1/product/latest          - latest products (cached)
// GET    /api/v1/product/{id}            - single product (cached)
// POST   /api/v1/product/new             - multipart create, clears product caches
// POST   /api/v1/order/new               - place order, reduce stock, clear caches
// PUT    /api/v1/order/{id}              - advance order status
// GET    /api/v1/dashboard/stats         - admin statistics (cached)
// See handler.RegisterRoutes for the full table.

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"ecommerce-api/assets"
	"ecommerce-api/cache"
	"ecommerce-api/config"
	"ecommerce-api/handler"
	"ecommerce-api/service"
	"ecommerce-api/store"
)

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	var log zerolog.Logger
	if cfg.IsDev() {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	} else {
		log = zerolog.New(os.Stdout)
	}
	return log.Level(level).With().Timestamp().Logger()
}

func component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Config ---
	cfg, err := config.LoadFromEnv()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := newLogger(cfg)
	log.Info().Msgf("configuration: %s", cfg)

	// --- Migrations ---
	if err := store.Migrate(cfg.GetDSN(), component(log, "migrate")); err != nil {
		log.Fatal().Err(err).Msg("failed running migrations")
	}

	// --- Store ---
	st, err := store.NewPostgresStore(cfg.GetDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("db connection failed")
	}
	defer st.Close()

	// --- Cache ---
	c, err := cache.New(ctx, cache.Options{
		Backend: cfg.CacheBackend,
		Size:    cfg.CacheSize,
		Redis: cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			DB:       cfg.RedisDB,
			Password: cfg.RedisPassword,
		},
	}, component(log, "cache"))
	if err != nil {
		log.Fatal().Err(err).Msg("cache init failed")
	}
	defer c.Close()

	// --- Assets ---
	host, err := assets.NewMinio(ctx, assets.Config{
		Endpoint:     cfg.S3Endpoint,
		Region:       cfg.S3Region,
		Bucket:       cfg.S3Bucket,
		AccessKey:    cfg.S3AccessKey,
		SecretKey:    cfg.S3SecretKey,
		UseSSL:       cfg.S3UseSSL,
		PublicURL:    cfg.S3PublicURL,
		MaxDimension: cfg.ImageMaxDimension,
	}, component(log, "assets"))
	if err != nil {
		log.Fatal().Err(err).Msg("asset host init failed")
	}

	// --- Service ---
	svc := service.NewService(st, c, host, service.Options{
		PerPage: cfg.ProductsPerPage,
		Log:     component(log, "service"),
	})
	var serviceInterface service.ServiceInterface = svc

	// --- Handlers ---
	checks := map[string]handler.Pinger{"store": st, "assets": host}
	if p, ok := c.(handler.Pinger); ok {
		checks["cache"] = p
	}
	h := handler.NewHandler(serviceInterface, handler.Options{
		Log:       component(log, "http"),
		UploadDir: cfg.UploadDir,
		Checks:    checks,
	})

	// --- Router ---
	r := mux.NewRouter()
	h.RegisterRoutes(r)

	// --- Server ---
	srv := &http.Server{
		Addr:              cfg.AppPort,
		Handler:           h.Wrap(r),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		MaxHeaderBytes:    1 << 20,
		ReadHeaderTimeout: 2 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(stopCtx); err != nil {
		log.Error().Err(err).Msg("forced to shutdown")
	}
}
