package db

import (
	"errors"
	"fmt"
	"hash/fnv"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

type PostgresDB struct {
	db *gorm.DB
}

func NewPostgresDB(dsn string, logger *zap.SugaredLogger) (*PostgresDB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: newGormLogger(logger),
	})
	if err != nil {
		return &PostgresDB{}, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &PostgresDB{
		db: db,
	}, nil
}

func (p *PostgresDB) MigrateTable(tbl ...any) error {
	err := p.db.AutoMigrate(tbl...)
	if err != nil {
		return fmt.Errorf("failed to migrate table: %w", err)
	}

	return nil
}

// Gorm exposes the underlying handle to repositories.
func (p *PostgresDB) Gorm() *gorm.DB {
	return p.db
}

// LockKey folds an identity string into a 64-bit advisory lock key. Postgres
// advisory locks are keyed by bigint, so two claims on the same slot always
// contend on the same key.
func LockKey(identity string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(identity))
	return int64(h.Sum64())
}
