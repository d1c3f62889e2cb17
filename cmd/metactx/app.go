package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ajitpratap0/metactx/pkg/config"
	"github.com/ajitpratap0/metactx/pkg/events"
	"github.com/ajitpratap0/metactx/pkg/logger"
	"github.com/ajitpratap0/metactx/pkg/metadata"
	"github.com/ajitpratap0/metactx/pkg/metrics"
	"github.com/ajitpratap0/metactx/pkg/observability"
	"github.com/ajitpratap0/metactx/pkg/remote"
	"github.com/ajitpratap0/metactx/pkg/repository"
	"github.com/ajitpratap0/metactx/pkg/storage"
	"github.com/ajitpratap0/metactx/pkg/storage/memory"
	"github.com/ajitpratap0/metactx/pkg/storage/mongodb"
	"github.com/ajitpratap0/metactx/pkg/storage/postgres"
)

// app holds what the commands share: flags, configuration and the
// resources opened for the current command.
type app struct {
	configPath string
	serverURL  string

	cfg      *config.Config
	log      *zap.Logger
	metrics  *metrics.Collector
	closers  []func(context.Context) error
	prepared bool
}

// setup loads the configuration and builds the logger, metrics and, when
// enabled, the tracer provider.
func (a *app) setup() error {
	if a.prepared {
		return nil
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.serverURL != "" {
		cfg.Remote.BaseURL = a.serverURL
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Observability.LogLevel,
		Encoding:    cfg.Observability.LogEncoding,
		Development: cfg.Observability.Development,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return err
	}
	logger.Set(log)

	if cfg.Observability.EnableTracing {
		tc := observability.DefaultTracingConfig()
		tc.ServiceVersion = version
		tc.SamplingRate = cfg.Observability.TracingSampleRate
		shutdown, err := observability.Init(tc)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, shutdown)
	}
	if cfg.Observability.EnableMetrics {
		a.metrics = metrics.Default()
	}

	a.cfg, a.log, a.prepared = cfg, log.With(zap.String("component", "metactx-cli")), true
	return nil
}

// close releases resources in reverse order of acquisition.
func (a *app) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.log.Warn("failed to release resource", zap.Error(err))
		}
	}
	a.closers = nil
	if a.log != nil {
		_ = a.log.Sync()
	}
}

// openBackend opens the configured storage backend. A memory backend is
// seeded from its snapshot and saves it again on close.
func (a *app) openBackend(ctx context.Context) (storage.Backend, error) {
	sc := a.cfg.Storage
	switch sc.Backend {
	case config.BackendMemory, "":
		b := memory.New()
		if sc.SnapshotPath == "" {
			return b, nil
		}
		if err := b.LoadSnapshot(sc.SnapshotPath, sc.SnapshotCodec); err != nil {
			return nil, err
		}
		elements, relationships := b.Len()
		a.log.Info("Loaded snapshot",
			zap.String("path", sc.SnapshotPath),
			zap.Int("elements", elements),
			zap.Int("relationships", relationships))
		a.closers = append(a.closers, func(context.Context) error {
			if err := b.SaveSnapshot(sc.SnapshotPath, sc.SnapshotCodec); err != nil {
				return err
			}
			a.log.Info("Saved snapshot", zap.String("path", sc.SnapshotPath))
			return nil
		})
		return b, nil
	case config.BackendPostgres:
		return postgres.Open(ctx, postgres.Config{DSN: sc.PostgresDSN}, a.log)
	case config.BackendMongoDB:
		return mongodb.Open(ctx, mongodb.Config{URI: sc.MongoURI, Database: sc.MongoDatabase}, a.log)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", sc.Backend)
	}
}

// openRepository opens the backend and the repository over it.
func (a *app) openRepository(ctx context.Context) (*repository.Repository, error) {
	backend, err := a.openBackend(ctx)
	if err != nil {
		return nil, err
	}
	var opts []repository.Option
	if a.metrics != nil {
		opts = append(opts, repository.WithMetrics(a.metrics))
	}
	repo := repository.New(backend, repository.Config{
		MaxPageSize:  a.cfg.Repository.MaxPageSize,
		AllowedUsers: a.cfg.Repository.AllowedUsers,
	}, a.log, opts...)
	// registered after the snapshot saver so the backend closes last
	a.closers = append([]func(context.Context) error{repo.Close}, a.closers...)
	return repo, nil
}

// openClient returns a remote client when a server URL is configured and an
// in-process repository otherwise.
func (a *app) openClient(ctx context.Context) (metadata.Client, string, error) {
	if a.cfg.Remote.BaseURL != "" {
		var opts []remote.Option
		if a.metrics != nil {
			opts = append(opts, remote.WithMetrics(a.metrics))
		}
		c, err := remote.New(ctx, a.cfg.Remote, a.log, opts...)
		if err != nil {
			return nil, "", err
		}
		return c, a.cfg.Remote.ServerName, nil
	}
	repo, err := a.openRepository(ctx)
	if err != nil {
		return nil, "", err
	}
	return repo, a.cfg.Server.Name, nil
}

// openPublisher returns the publisher element events go to: the log, plus
// Kafka when events are enabled.
func (a *app) openPublisher() (events.Publisher, error) {
	multi := events.NewMultiPublisher(a.metrics, a.log, events.NewLogPublisher(a.log))
	if a.cfg.Events.Enabled {
		kafka, err := events.NewKafkaPublisher(a.cfg.Events, a.log)
		if err != nil {
			return nil, err
		}
		multi.Add(kafka)
	}
	a.closers = append(a.closers, func(context.Context) error { return multi.Close() })
	return multi, nil
}
