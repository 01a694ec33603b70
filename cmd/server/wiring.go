package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	apporder "github.com/vertinimas/portal/internal/application/order"
	appreport "github.com/vertinimas/portal/internal/application/report"
	"github.com/vertinimas/portal/internal/domain/geo"
	"github.com/vertinimas/portal/internal/infrastructure/auth"
	"github.com/vertinimas/portal/internal/infrastructure/cache"
	"github.com/vertinimas/portal/internal/infrastructure/config"
	"github.com/vertinimas/portal/internal/infrastructure/export"
	"github.com/vertinimas/portal/internal/infrastructure/geocoding"
	"github.com/vertinimas/portal/internal/infrastructure/logger"
	"github.com/vertinimas/portal/internal/infrastructure/migration"
	"github.com/vertinimas/portal/internal/infrastructure/persistence"
	"github.com/vertinimas/portal/internal/infrastructure/storage"
	"github.com/vertinimas/portal/internal/infrastructure/telemetry"
	"github.com/vertinimas/portal/migrations"
)

// openDatabase connects, enables tracing and brings the schema up to date.
// Postgres uses the embedded SQL migrations; sqlite is created from the
// models.
func openDatabase(cfg *config.Config, meter metric.Meter, log *zap.Logger) (*persistence.Database, error) {
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		return nil, err
	}
	log.Info("Database connected", zap.String("driver", db.Driver))

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:          cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBSystem:         dbSystem(db.Driver),
		SlowQueryThresh:  200 * time.Millisecond,
		IncludeVariables: !cfg.App.IsProduction(),
	}, log); err != nil {
		log.Warn("Failed to enable database tracing", zap.Error(err))
	}

	if _, err := telemetry.RegisterPoolMetrics(meter, poolStats(db)); err != nil {
		log.Warn("Failed to register connection pool metrics", zap.Error(err))
	}

	if !cfg.Database.AutoMigrate {
		return db, nil
	}
	if err := migrateSchema(db, log); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateSchema(db *persistence.Database, log *zap.Logger) error {
	if db.Driver != "postgres" {
		if err := db.AutoMigrate(); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
		log.Info("Schema created from models")
		return nil
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	m, err := migration.NewFromFS(sqlDB, migrations.FS, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Error closing migrator", zap.Error(err))
		}
	}()
	if err := m.Up(); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

func poolStats(db *persistence.Database) telemetry.PoolStatsFunc {
	return func() (telemetry.PoolStats, error) {
		s, err := db.Stats()
		if err != nil {
			return telemetry.PoolStats{}, err
		}
		return telemetry.PoolStats{
			MaxOpen:   s.MaxOpenConnections,
			Open:      s.OpenConnections,
			InUse:     s.InUse,
			Idle:      s.Idle,
			WaitCount: s.WaitCount,
		}, nil
	}
}

func dbSystem(driver string) string {
	if driver == "postgres" {
		return "postgresql"
	}
	return driver
}

// infrastructure holds the adapters chosen by configuration
type infrastructure struct {
	redis         *redis.Client
	blacklist     auth.TokenBlacklist
	reportCache   cache.Store
	geocodeCache  cache.Store
	objects       apporder.ObjectStorage
	geocoder      geo.Geocoder
	orderGeocoder geo.Geocoder
	writers       map[appreport.Format]appreport.DocumentWriter
	pdf           *export.ChromedpRenderer
	log           *zap.Logger
}

// newInfrastructure connects Redis when configured, falling back to
// in-process caches and blacklist otherwise
func newInfrastructure(ctx context.Context, cfg *config.Config, log *zap.Logger) (*infrastructure, error) {
	infra := &infrastructure{log: log}

	if cfg.Redis.Enabled() {
		client, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			return nil, err
		}
		infra.redis = client
		infra.blacklist = auth.NewRedisTokenBlacklist(client)
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	} else {
		infra.blacklist = auth.NewInMemoryTokenBlacklist()
		log.Warn("Redis not configured, sessions and caches are kept in process")
	}

	var client redis.UniversalClient
	if infra.redis != nil {
		client = infra.redis
	}
	infra.reportCache = cache.NewStore(client, "portal:report:", log)
	infra.geocodeCache = cache.NewStore(client, "portal:geocode:", log)

	objects, err := newObjectStorage(ctx, cfg.Storage, log)
	if err != nil {
		infra.Close()
		return nil, err
	}
	infra.objects = objects

	infra.geocoder = geocoding.Disabled{}
	if cfg.Geocoding.Enabled {
		nominatim := geocoding.NewNominatimClient(cfg.Geocoding, cfg.App.DefaultLanguage, log)
		cached := geocoding.NewCachedGeocoder(nominatim, infra.geocodeCache, cfg.Geocoding.CacheTTL, log)
		infra.geocoder = cached
		infra.orderGeocoder = cached
	}

	infra.pdf = export.NewChromedpRenderer(cfg.PDF, log)
	infra.writers = map[appreport.Format]appreport.DocumentWriter{
		appreport.FormatCSV: export.NewCSVWriter(),
		appreport.FormatPDF: export.NewPDFWriter(infra.pdf),
	}
	return infra, nil
}

func newObjectStorage(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (apporder.ObjectStorage, error) {
	if !cfg.Enabled {
		log.Warn("Object storage disabled, report uploads are rejected")
		return storage.Disabled{}, nil
	}
	s3Storage, err := storage.NewS3ObjectStorage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if err := s3Storage.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	log.Info("Object storage ready", zap.String("bucket", s3Storage.Bucket()))
	return s3Storage, nil
}

// Close releases caches, the browser allocator and the Redis connection
func (i *infrastructure) Close() {
	if i.pdf != nil {
		if err := i.pdf.Close(); err != nil {
			i.log.Warn("Error closing PDF renderer", zap.Error(err))
		}
	}
	for _, s := range []cache.Store{i.reportCache, i.geocodeCache} {
		if s != nil {
			_ = s.Close()
		}
	}
	if i.redis != nil {
		if err := i.redis.Close(); err != nil {
			i.log.Error("Error closing Redis", zap.Error(err))
		}
	}
}
