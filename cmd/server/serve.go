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

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"course-market/internal/auth"
	"course-market/internal/config"
	"course-market/internal/domain"
	"course-market/internal/geocoding"
	apphttp "course-market/internal/http"
	"course-market/internal/service"
)

var addrOverride string

func registerServeFlags(fs *pflag.FlagSet) {
	fs.StringVar(&addrOverride, "addr", "", "listen address (overrides server.addr)")
}

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if addrOverride != "" {
				cfg.Server.Addr = addrOverride
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg, logger)
		},
	}
	registerServeFlags(cmd.Flags())
	return cmd
}

func runServer(ctx context.Context, cfg config.Config, logger *logrus.Logger) error {
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer closeStore()

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.TokenTTL())
	if err != nil {
		return err
	}
	hasher, err := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}
	geocoder, err := geocoding.NewMapbox(geocoding.Config{
		AccessToken: cfg.Geocoding.Token,
		BaseURL:     cfg.Geocoding.BaseURL,
		Timeout:     cfg.GeocodingTimeout(),
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("setup geocoder: %w", err)
	}
	images, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("setup storage: %w", err)
	}

	deps := service.PrincipalDeps{
		Hasher:   hasher,
		Tokens:   tokens,
		Geocoder: geocoder,
		Images:   images,
		Logger:   logger,
	}
	principals := make([]service.PrincipalService, 0, 2)
	for _, role := range []domain.Role{domain.RoleStudent, domain.RoleInstructor} {
		principals = append(principals, service.NewPrincipalService(role, store.Principals(role), deps))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	gin.SetMode(gin.ReleaseMode)
	handler := apphttp.NewHandler(apphttp.Deps{
		Principals: principals,
		Directory:  service.NewDirectoryService(store),
		Courses:    service.NewCourseService(store.Courses),
		Tokens:     tokens,
		Logger:     logger,
		Metrics:    apphttp.NewMetrics(registry),
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
	return nil
}
