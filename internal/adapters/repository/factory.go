package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/giapha/core/internal/infrastructure/config"
	"github.com/giapha/core/internal/infrastructure/database"
	"github.com/giapha/core/internal/infrastructure/logger"
	"github.com/giapha/core/internal/infrastructure/metrics"
	"github.com/giapha/core/internal/ports"
)

// Open builds the blob store selected by storage.driver and wraps it with
// logging and metrics. Postgres databases are migrated up on open.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger, m *metrics.Metrics) (ports.BlobStore, error) {
	var (
		store ports.BlobStore
		err   error
	)

	switch cfg.Storage.Driver {
	case config.DriverFile:
		store, err = NewFileStore(cfg.Storage.Path)
	case config.DriverMemory:
		store = NewMemoryStore()
	case config.DriverSQLite:
		store, err = NewSQLiteStore(cfg.Storage.SQLitePath)
	case config.DriverPostgres:
		var db *database.DB
		db, err = database.New(cfg.Database)
		if err != nil {
			break
		}
		if _, err = db.Migrate(database.MigrateUp, 0); err != nil {
			_ = db.Close()
			break
		}
		store = NewPostgresStore(db)
	case config.DriverS3:
		store, err = NewS3Store(ctx, S3Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			Prefix:          cfg.S3.Prefix,
			PathStyle:       cfg.S3.PathStyle,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})
	case config.DriverRedis:
		store, err = NewRedisStore(ctx, RedisConfig{
			Addr:     cfg.Redis.GetAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
	default:
		err = fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Driver, err)
	}

	return NewInstrumentedStore(store, log, m), nil
}

// InstrumentedStore logs and counts every call to the wrapped store.
type InstrumentedStore struct {
	inner   ports.BlobStore
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewInstrumentedStore(inner ports.BlobStore, log *logger.Logger, m *metrics.Metrics) *InstrumentedStore {
	return &InstrumentedStore{
		inner:   inner,
		logger:  log.WithComponent("storage"),
		metrics: m,
	}
}

func (s *InstrumentedStore) observe(op, key string, size int, start time.Time, err error) {
	// A missing key is an expected outcome on first start, not a failure.
	logged := err
	if errors.Is(err, ports.ErrBlobNotFound) {
		logged = nil
	}
	ms := float64(time.Since(start).Microseconds()) / 1000
	s.logger.LogStorageOp(s.inner.Driver(), op, key, size, ms, logged)
	s.metrics.StorageOp(s.inner.Driver(), op, logged)
}

func (s *InstrumentedStore) Driver() string { return s.inner.Driver() }

func (s *InstrumentedStore) Put(ctx context.Context, key string, data []byte) error {
	start := time.Now()
	err := s.inner.Put(ctx, key, data)
	s.observe("put", key, len(data), start, err)
	return err
}

func (s *InstrumentedStore) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	b, err := s.inner.Get(ctx, key)
	s.observe("get", key, len(b), start, err)
	return b, err
}

func (s *InstrumentedStore) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Stats forwards to the wrapped store when it reports statistics.
func (s *InstrumentedStore) Stats() map[string]interface{} {
	if r, ok := s.inner.(ports.StatsReporter); ok {
		return r.Stats()
	}
	return nil
}

func (s *InstrumentedStore) Close() error {
	return s.inner.Close()
}
