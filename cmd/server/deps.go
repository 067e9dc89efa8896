package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"

	"course-market/internal/config"
	"course-market/internal/repository"
	"course-market/internal/repository/postgres"
	"course-market/internal/repository/sqlite"
	"course-market/internal/storage"
)

func newLogger(level, format string) *logrus.Logger {
	logger := logrus.New()
	if strings.EqualFold(format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logger.Warnf("unknown log level %q, using info", level)
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// loadConfig reads configuration and builds the logger it asks for.
func loadConfig() (config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, newLogger(cfg.Log.Level, cfg.Log.Format), nil
}

// openStore connects the configured backend and creates the schema. The
// returned close func releases the connection.
func openStore(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*repository.Store, func(), error) {
	var (
		store   *repository.Store
		closeFn func()
	)

	switch cfg.Database.Driver {
	case "postgres":
		pool, err := postgres.Open(ctx, cfg.Database.DSN, cfg.Database.MaxConns)
		if err != nil {
			return nil, nil, err
		}
		store, closeFn = postgres.NewStore(pool), pool.Close
		logger.Info("using postgres database")
	case "sqlite", "":
		db, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			return nil, nil, err
		}
		store, closeFn = sqlite.NewStore(db), func() { db.Close() }
		logger.Infof("using sqlite database %s", cfg.Database.Path)
	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}

	if err := store.Init(ctx); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("init schema: %w", err)
	}
	return store, closeFn, nil
}

// buildStorage returns nil when no bucket is configured; uploaded images are
// then ignored.
func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	if cfg.Storage.Bucket == "" {
		logger.Warn("storage bucket not configured, image uploads are disabled")
		return nil, nil
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
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client, storage.UploadOptions{
		Bucket:        cfg.Storage.Bucket,
		KeyPrefix:     cfg.Storage.KeyPrefix,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
	})
}
