package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/getzep/nlp-annotator-api/config"
	"github.com/getzep/nlp-annotator-api/pkg/annotators"
	"github.com/getzep/nlp-annotator-api/pkg/auth"
	"github.com/getzep/nlp-annotator-api/pkg/cache"
	"github.com/getzep/nlp-annotator-api/pkg/metrics"
	"github.com/getzep/nlp-annotator-api/pkg/models"
	"github.com/getzep/nlp-annotator-api/pkg/server"
	"github.com/getzep/nlp-annotator-api/pkg/telemetry"
)

const (
	serviceName        = "nlp-annotator-api"
	serviceURL         = "https://github.com/getzep/nlp-annotator-api"
	serviceAuthor      = "getzep"
	serviceDescription = "Entity, relationship and property annotators for text and tables"
	shutdownTimeout    = 30 * time.Second
)

// run is the entrypoint for the annotator server
func run() {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		log.Fatalf("Error configuring annotator: %s", err)
	}

	handleCLIOptions(cfg)

	log.Infof("Starting annotator server version %s", config.VersionString)

	config.SetLogLevel(cfg)

	ctx := context.Background()
	shutdownTracing, err := telemetry.SetupProvider(ctx, cfg.Tracing, config.Version)
	if err != nil {
		log.Fatalf("Failed to set up tracing: %s", err)
	}

	appState, closers, err := NewAppState(cfg)
	if err != nil {
		log.Fatal(err)
	}

	m := metrics.New(cfg.Metrics.Namespace)
	cacheLayer := newCacheLayer(ctx, cfg, m)

	srv := server.Create(appState, cacheLayer, m)
	// the cache layer goes last so pending stores drain after the server stops
	done := setupSignalHandler(srv, append(closers, cacheLayer), shutdownTracing)

	log.Infof("Listening on: %s", srv.Addr)
	err = srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	<-done
	log.Info("Annotator server stopped")
}

// NewAppState builds the annotator registry from the config. The returned closers release
// model sessions and must be closed on shutdown.
func NewAppState(cfg *config.Config) (*models.AppState, []io.Closer, error) {
	registry, closers, err := annotators.NewRegistry(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build annotators: %w", err)
	}

	appState := &models.AppState{
		Config:     cfg,
		Annotators: registry,
		Metadata: models.AnnotatorMetadata{
			Name:        serviceName,
			Version:     config.VersionString,
			URL:         serviceURL,
			Author:      serviceAuthor,
			Description: serviceDescription,
		},
	}

	log.Infof("Registered annotators: %v", registry.Names())

	return appState, closers, nil
}

// newCacheLayer connects the idempotency cache. Without a usable redis_cache.url every
// request is computed; a cache problem never stops the server.
func newCacheLayer(ctx context.Context, cfg *config.Config, m *metrics.Metrics) *cache.Layer {
	var store cache.Store
	if cfg.RedisCache.URL == "" {
		log.Info("Idempotency cache disabled")
	} else if redisStore, err := cache.NewRedisStore(ctx, cfg.RedisCache); err != nil {
		log.Warnf("Idempotency cache disabled: %s", err)
	} else {
		store = redisStore
		log.Info("Using redis idempotency cache")
	}

	return cache.NewLayer(
		store,
		cfg.RedisCache.DeadlineSkew,
		cfg.RedisCache.StoreTimeout,
		cache.WithObserver(m),
	)
}

// handleCLIOptions handles CLI options that don't require the server to run
func handleCLIOptions(cfg *config.Config) {
	if showVersion {
		out, err := yaml.Marshal(config.GetBuildInfo())
		if err != nil {
			log.Fatalf("Failed to print version: %s", err)
		}
		fmt.Print(string(out))
		os.Exit(0)
	}
	if dumpConfig {
		out, err := yaml.Marshal(redactConfig(*cfg))
		if err != nil {
			log.Fatalf("Failed to dump config: %s", err)
		}
		fmt.Print(string(out))
		os.Exit(0)
	}
	if generateKey {
		token, err := auth.GenerateJWT(cfg, tokenTTL)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(token)
		os.Exit(0)
	}
}

// redactConfig masks secrets loaded from the environment before the config is printed.
func redactConfig(cfg config.Config) config.Config {
	for _, secret := range []*string{
		&cfg.Auth.APIKey,
		&cfg.Auth.Secret,
		&cfg.HealthAnnotator.APIKey,
		&cfg.RedisCache.URL,
	} {
		if *secret != "" {
			*secret = "********"
		}
	}
	return cfg
}

// setupSignalHandler shuts the server down gracefully on SIGINT or SIGTERM. The returned
// channel is closed once the shutdown sequence has finished.
func setupSignalHandler(
	srv *http.Server,
	closers []io.Closer,
	shutdownTracing telemetry.ShutdownFunc,
) <-chan struct{} {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	return shutdownOnSignal(signalCh, srv, closers, shutdownTracing)
}

// shutdownOnSignal waits for a signal, stops the server, then closes closers in order and
// flushes tracing.
func shutdownOnSignal(
	signalCh <-chan os.Signal,
	srv *http.Server,
	closers []io.Closer,
	shutdownTracing telemetry.ShutdownFunc,
) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		sig := <-signalCh
		log.Infof("Received %s, shutting down", sig)

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Errorf("Error shutting down server: %v", err)
		}
		for _, c := range closers {
			if err := c.Close(); err != nil {
				log.Errorf("Error closing resource: %v", err)
			}
		}
		if err := shutdownTracing(ctx); err != nil {
			log.Errorf("Error shutting down tracing: %v", err)
		}
	}()
	return done
}
