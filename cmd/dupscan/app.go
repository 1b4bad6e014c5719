package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/dupscan/internal/config"
	"github.com/kailas-cloud/dupscan/internal/db"
	dbRedis "github.com/kailas-cloud/dupscan/internal/db/redis"
	domdoc "github.com/kailas-cloud/dupscan/internal/domain/document"
	logpkg "github.com/kailas-cloud/dupscan/internal/logger"
	documentrepo "github.com/kailas-cloud/dupscan/internal/repository/document"
	"github.com/kailas-cloud/dupscan/internal/repository/jsonfile"
	mongorepo "github.com/kailas-cloud/dupscan/internal/repository/mongo"
	"github.com/kailas-cloud/dupscan/internal/repository/postgres"
	"github.com/kailas-cloud/dupscan/internal/repository/sqlite"
	"github.com/kailas-cloud/dupscan/internal/usecase/detection"
)

// documentSource is what the composition root needs from a store adapter.
type documentSource interface {
	detection.DocumentSource
	Ping(ctx context.Context) error
}

// loadConfig resolves --config, then --env, then $ENV.
func loadConfig() (config.Config, string, error) {
	env := envName
	if env == "" {
		env = config.GetEnv()
	}

	var (
		cfg config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return config.Config{}, env, fmt.Errorf("load config: %w", err)
	}
	return cfg, env, nil
}

func newLogger(env string, cfg config.Config) (*zap.Logger, error) {
	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger, nil
}

// openSource builds the adapter for cfg.Driver and waits until it answers.
// The returned close function is never nil.
func openSource(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (documentSource, func(), error) {
	src, closeFn, err := newSource(ctx, cfg)
	if err != nil {
		return nil, func() {}, fmt.Errorf("open %s store: %w", cfg.Driver, err)
	}

	timeout := time.Duration(cfg.ReadinessTimeout) * time.Second
	if err := db.WaitForReady(ctx, src, timeout); err != nil {
		closeFn()
		return nil, func() {}, fmt.Errorf("%s store not ready: %w", cfg.Driver, err)
	}

	logger.Info("Connected to document store",
		zap.String("driver", cfg.Driver),
		zap.String("collection", cfg.Collection),
	)
	return src, closeFn, nil
}

func newSource(ctx context.Context, cfg config.StoreConfig) (documentSource, func(), error) {
	fields := cfg.Fields.WithDefaults()

	switch cfg.Driver {
	case "redis", "valkey":
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Redis.Addrs,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		return documentrepo.New(store, cfg.Redis.KeyPrefix, fields), store.Close, nil

	case "sqlite":
		repo, err := sqlite.Open(cfg.SQLite.Path, fields)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { _ = repo.Close() }, nil

	case "postgres":
		repo, err := postgres.Connect(ctx, cfg.Postgres.URL, fields)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil

	case "mongo":
		repo, err := mongorepo.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database, fields)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = repo.Close(ctx)
		}, nil

	case "jsonfile":
		return jsonfile.New(cfg.JSONFile.Dir, fields), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// runOptions maps the detection section onto run options.
func runOptions(cfg config.DetectionConfig) (detection.Options, error) {
	tf, err := domdoc.ParseTextField(cfg.TextField)
	if err != nil {
		return detection.Options{}, err
	}
	opts := detection.Options{
		Threshold: *cfg.Threshold,
		Workers:   cfg.Workers,
		TextField: tf,
		AutoJunk:  cfg.AutoJunk,
		Write:     true,
	}
	return opts, opts.Validate()
}
