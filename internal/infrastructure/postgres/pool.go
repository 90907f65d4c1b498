package postgres

import (
	"context"
	"fmt"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stock-ledger/pkg/config"
)

// DB ciclo de vida del pool de conexiones. Se crea una vez en main y se inyecta;
// no hay pool global.
type DB struct {
	cfg  config.DBConfig
	pool *pgxpool.Pool
}

// New prepara el pool sin conectarse todavía.
func New(cfg config.DBConfig) *DB {
	return &DB{cfg: cfg}
}

// Init abre el pool y verifica la conexión.
func (db *DB) Init(ctx context.Context) error {
	if db.pool != nil {
		return nil
	}
	pool, err := NewPool(ctx, db.cfg)
	if err != nil {
		return err
	}
	db.pool = pool
	return nil
}

// Pool devuelve el pool abierto (nil antes de Init).
func (db *DB) Pool() *pgxpool.Pool { return db.pool }

// Close cierra el pool; seguro de llamar más de una vez.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
		db.pool = nil
	}
}

// NewPool crea un pool de conexiones PostgreSQL usando la configuración de la app.
// Si está definido DATABASE_URL, se usa tal cual; si no, se construye el DSN desde DB_HOST, DB_PORT, etc.
func NewPool(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}

	maxConns := cfg.MaxConns
	if maxConns <= 0 {
		maxConns = 25
	}
	poolConfig.MaxConns = int32(maxConns)
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	// Registrar codec para NUMERIC/DECIMAL -> shopspring/decimal (todas las conexiones del pool).
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB: %w", err)
	}
	return pool, nil
}
