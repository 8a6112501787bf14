package infra

import (
	"fmt"

	"github.com/AmericableSA/Sistema-sub000/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update the ledger tables, then applies idempotent SQL patches that
// GORM cannot express (partial unique index on open sessions).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates the schema. Also used by integration tests.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.SesionCaja{},
		&model.Transaccion{},
		&model.TransaccionItem{},
		&model.Movimiento{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// The partial unique index is the database-level backstop for the
// one-open-session-per-caja invariant; the service also guards it behind the
// per-caja lock, so hitting this index means two opens raced past the lock
// (InvarianteViolada).
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uni_sesion_abierta_por_caja') THEN
		    CREATE UNIQUE INDEX uni_sesion_abierta_por_caja
		        ON sesiones_caja (caja)
		        WHERE estado = 'abierta';
		  END IF;
		END $$`,
		// The history statement filters both sources by caja and day.
		`CREATE INDEX IF NOT EXISTS idx_transacciones_caja_dia ON transacciones (caja, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_movimientos_caja_dia ON movimientos (caja, created_at)`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("schema patch: %w", err)
		}
	}
	return nil
}
