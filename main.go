package main

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/archive-admin/internal/admin"
	"github.com/debemdeboas/archive-admin/internal/cache"
	"github.com/debemdeboas/archive-admin/internal/config"
	"github.com/debemdeboas/archive-admin/internal/db"
	"github.com/debemdeboas/archive-admin/internal/logger"
	"github.com/debemdeboas/archive-admin/internal/repository"
)

//go:embed static/* templates/*
var content embed.FS

const (
	envConfigPath         = "CONFIG_PATH"
	envS3AccessKeyID      = "S3_ACCESS_KEY_ID"
	envS3SecretAccessKey  = "S3_SECRET_ACCESS_KEY"
	defaultConfigPath     = "config.yaml"
	shutdownTimeout       = 10 * time.Second
	serverReadHeaderLimit = 5 * time.Second
)

func main() {
	// A missing .env is fine; the environment may be set by other means.
	envErr := godotenv.Load()

	configPath := os.Getenv(envConfigPath)
	if configPath == "" {
		configPath = defaultConfigPath
	}

	bootLogger := logger.New("info")
	config.SetLogger(bootLogger)

	cfg, err := config.Load(configPath)
	if err != nil {
		bootLogger.Fatal().Err(err).Str("path", configPath).Msg("Failed to load config")
	}

	log := logger.New(cfg.Logging.Level)
	if envErr != nil {
		log.Debug().Err(envErr).Msg("No .env file loaded")
	}

	config.SetLogger(log.With().Str("component", "config").Logger())
	db.SetLogger(log.With().Str("component", "db").Logger())
	repository.SetLogger(log.With().Str("component", "repository").Logger())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := repository.New(ctx, cfg, repository.S3Credentials{
		AccessKeyID:     os.Getenv(envS3AccessKeyID),
		SecretAccessKey: os.Getenv(envS3SecretAccessKey),
	})
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Storage.Backend).Msgf(config.ErrCreateRepositoryFmt, err)
	}
	defer func() {
		if err := closeRepo(); err != nil {
			log.Error().Err(err).Msg("Failed to close post repository")
		}
	}()

	handler, err := newRouter(cfg, repo, content, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build router")
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: serverReadHeaderLimit,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Failed to shut down server")
		}
	}()

	log.Info().
		Str("addr", srv.Addr).
		Str("backend", cfg.Storage.Backend).
		Dur("submit_delay", cfg.Admin.SubmitDelay).
		Msg("Starting server")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}
	log.Info().Msg("Server stopped")
}

// newRouter wires the admin routes, static files and middleware over assets,
// which must contain the static and templates directories.
func newRouter(cfg *config.Config, repo repository.PostRepository, assets fs.FS, log zerolog.Logger) (http.Handler, error) {
	static, err := fs.Sub(assets, config.StaticLocalDir)
	if err != nil {
		return nil, err
	}

	if err := cache.HashStaticFS(static, config.StaticUrlPath); err != nil {
		return nil, err
	}

	views, err := admin.ParseViews(assets)
	if err != nil {
		return nil, err
	}

	adminHandler := admin.NewHandler(repo, views, admin.Options{
		SiteName:     cfg.Site.Name,
		MarkdownRows: cfg.Admin.MarkdownRows,
		Delay:        admin.Sleep(cfg.Admin.SubmitDelay),
	})

	mux := http.NewServeMux()

	mux.HandleFunc(config.RobotsPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCType, "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("User-agent: *\nDisallow: /"))
	})

	mux.Handle(config.StaticUrlPath, http.StripPrefix(config.StaticUrlPath, http.FileServer(http.FS(static))))
	adminHandler.Register(mux)

	mux.HandleFunc(config.RootPath+"{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, config.AdminUrlPath, http.StatusFound)
	})

	securedMux := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == config.RobotsPath { // Ignore robots.txt
			mux.ServeHTTP(w, r)
		} else {
			secureHeaders(mux.ServeHTTP)(w, r)
		}
	})

	var h http.Handler = cacheIt(securedMux)
	h = middleware.Recoverer(h)
	h = logger.WithRequestLogger(log)(h)
	h = middleware.RealIP(h)

	return h, nil
}

func cacheIt(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCacheControl, "no-cache")

		// Add etag header to response if it's a static file
		if hash, ok := cache.GetStaticHash(r.URL.Path); ok {
			w.Header().Set(config.HCacheControl, "public, max-age=3600")
			w.Header().Set(config.HETag, hash)
		}

		h(w, r)
	}
}

func secureHeaders(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "deny")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "same-origin")

		h(w, r)
	}
}
