package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

//go:embed schema.sql
var schemaSQL string

var ErrEmptyDSN = errors.New("postgres: empty dsn")

// PoolConfig ajusta el pool de database/sql. Campos en cero toman el default.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
}

// Pocas conexiones: el servicio hace una escritura por request y un barrido diario.
var defaultPool = PoolConfig{
	MaxOpenConns:    8,
	MaxIdleConns:    4,
	ConnMaxIdleTime: 5 * time.Minute,
	ConnMaxLifetime: time.Hour,
	PingTimeout:     5 * time.Second,
}

func (c PoolConfig) withDefaults() PoolConfig {
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = defaultPool.MaxOpenConns
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = defaultPool.MaxIdleConns
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		c.MaxIdleConns = c.MaxOpenConns
	}
	if c.ConnMaxIdleTime <= 0 {
		c.ConnMaxIdleTime = defaultPool.ConnMaxIdleTime
	}
	if c.ConnMaxLifetime <= 0 {
		c.ConnMaxLifetime = defaultPool.ConnMaxLifetime
	}
	if c.PingTimeout <= 0 {
		c.PingTimeout = defaultPool.PingTimeout
	}
	return c
}

// Open valida el DSN con pgx antes de tocar la red y devuelve el pool ya
// verificado. Si el ping falla el pool se cierra.
func Open(ctx context.Context, dsn string, pool PoolConfig) (*sql.DB, error) {
	connCfg, err := parseDSN(dsn)
	if err != nil {
		return nil, err
	}

	pool = pool.withDefaults()
	db := stdlib.OpenDB(*connCfg)
	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxIdleTime(pool.ConnMaxIdleTime)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pool.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping %s:%d: %w", connCfg.Host, connCfg.Port, err)
	}
	return db, nil
}

// pgx acepta "" (usa PG* del entorno); acá se exige explícito.
func parseDSN(dsn string) (*pgx.ConnConfig, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, ErrEmptyDSN
	}
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse dsn: %w", err)
	}
	return cfg, nil
}

// Migrate aplica schema.sql; se puede correr en cada arranque.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrate treatment_plans: %w", err)
	}
	return nil
}
