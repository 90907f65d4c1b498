package postgres

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/jhoicas/stock-ledger/pkg/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrator aplica las migraciones SQL embebidas en el binario (golang-migrate).
type Migrator struct {
	m   *migrate.Migrate
	log *logger.Logger
}

// NewMigrator abre una conexión propia para migrar; no usa el pool de la aplicación.
func NewMigrator(databaseURL string, log *logger.Logger) (*Migrator, error) {
	if log == nil {
		log = logger.Nop()
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}
	return &Migrator{m: m, log: log}, nil
}

// Close libera la conexión de migración.
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}

// Up aplica todas las migraciones pendientes.
func (mg *Migrator) Up() error {
	from, err := mg.current()
	if err != nil {
		return err
	}
	if err := mg.m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			mg.log.Info().Uint("version", from).Msg("sin migraciones pendientes")
			return nil
		}
		return fmt.Errorf("run migrations: %w", err)
	}
	to, _, err := mg.m.Version()
	if err != nil {
		return fmt.Errorf("get new version: %w", err)
	}
	mg.log.Info().Uint("from_version", from).Uint("to_version", to).Msg("migraciones aplicadas")
	return nil
}

// Down revierte steps migraciones.
func (mg *Migrator) Down(steps int) error {
	if steps <= 0 {
		return fmt.Errorf("steps debe ser mayor a cero")
	}
	if _, err := mg.current(); err != nil {
		return err
	}
	if err := mg.m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("rollback migrations: %w", err)
	}
	mg.log.Warn().Int("steps", steps).Msg("migraciones revertidas")
	return nil
}

// Version devuelve la versión actual (0 si no hay ninguna aplicada) y si quedó sucia.
func (mg *Migrator) Version() (uint, bool, error) {
	v, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get current version: %w", err)
	}
	return v, dirty, nil
}

func (mg *Migrator) current() (uint, error) {
	v, dirty, err := mg.Version()
	if err != nil {
		return 0, err
	}
	if dirty {
		return 0, fmt.Errorf("la base está sucia en la versión %d; corregir manualmente", v)
	}
	return v, nil
}

// migrateURL cambia el esquema al driver pgx/v5 de golang-migrate.
func migrateURL(databaseURL string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(databaseURL, prefix) {
			return "pgx5://" + strings.TrimPrefix(databaseURL, prefix)
		}
	}
	return databaseURL
}
