package infra

import (
	"fmt"

	"ammotrack/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that GORM
// cannot express (partial unique index, CHECK constraints).
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

// RunMigrations creates/updates the schema. Also used by integration tests
// against throwaway containers.
func RunMigrations(db *gorm.DB) error {
	// gen_random_uuid() needs pgcrypto on Postgres < 13.
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return fmt.Errorf("pgcrypto extension: %w", err)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.StockLot{},
		&model.IssueRecord{},
		&model.StockMovement{},
		&model.Alert{},
		&model.Report{},
		&model.AuditLog{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}

	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// Each statement uses IF NOT EXISTS / existence guards so re-running on an
// already-patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// Duplicate suppression for lot-scoped alerts: at most one OPEN alert
		// per (lot, type). Creation relies on ON CONFLICT against this index.
		{"partial unique index on open alerts", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uq_alerts_open_lot_type') THEN
    CREATE UNIQUE INDEX uq_alerts_open_lot_type
        ON alerts (stock_lot_id, type)
        WHERE status = 'open';
  END IF;
END $$`},
		// Belt-and-braces floor under the conditional decrement: the ledger
		// can never record a negative balance even if application code slips.
		{"non-negative quantity check on stock_lots", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_stock_lots_quantity_nonneg') THEN
    ALTER TABLE stock_lots
      ADD CONSTRAINT chk_stock_lots_quantity_nonneg CHECK (quantity >= 0);
  END IF;
END $$`},
		// Issue quantities are always positive disbursals.
		{"positive quantity check on issue_records", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_issue_records_quantity_pos') THEN
    ALTER TABLE issue_records
      ADD CONSTRAINT chk_issue_records_quantity_pos CHECK (quantity > 0);
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
