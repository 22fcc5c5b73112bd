// Package postgres provides the PostgreSQL implementations of the repository
// interfaces, backed by GORM. Schema and migrations are owned by the
// ingestion/deployment tooling; this service only reads and upserts.
package postgres

import (
	"context"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/CSingh26/ReliScore/internal/config"
	"github.com/CSingh26/ReliScore/pkg/errors"
	"github.com/CSingh26/ReliScore/pkg/logger"
)

// NewDBConnection opens a GORM connection pool against PostgreSQL and
// verifies it with a ping.
func NewDBConnection(ctx context.Context, cfg *config.DatabaseConfig, log logger.Logger) (*gorm.DB, error) {
	if cfg == nil {
		return nil, errors.ErrInvalidConfig.WithMessagef("database config is nil")
	}

	db, err := gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.ErrDatabaseOperation.Wrap(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.ErrDatabaseOperation.Wrap(err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxConnLifetime) * time.Minute)

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, errors.ErrDatabaseOperation.Wrap(err)
	}

	log.Info(ctx, "PostgreSQL connection established", logger.Fields{
		"host":     cfg.Host,
		"port":     cfg.Port,
		"database": cfg.Database,
	})
	return db, nil
}
