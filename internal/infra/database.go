package infra

import (
	"fmt"

	"github.com/bryan1993-HA/domovra-addons/internal/config"
	"github.com/bryan1993-HA/domovra-addons/internal/model"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the configured datastore (Postgres when DATABASE_URL is a
// postgres URL, SQLite at DB_PATH otherwise), migrates the schema, then applies
// idempotent SQL patches that AutoMigrate cannot express.
func NewDatabase(cfg *config.Config) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	if cfg.UsePostgres() {
		db, err = OpenPostgres(cfg.DatabaseURL)
	} else {
		db, err = OpenSQLite(cfg.DBPath)
	}
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Info().Str("dialect", db.Dialector.Name()).Msg("database ready")
	return db, nil
}

// OpenPostgres connects to a Postgres server with a small pool.
func OpenPostgres(dsn string) (*gorm.DB, error) {
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
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(2)
	return db, nil
}

// OpenSQLite opens (or creates) the SQLite file at path. ":memory:" is accepted
// for tests. A single connection serializes writers, which is what SQLite
// wants anyway and keeps an in-memory database alive for the pool's lifetime.
func OpenSQLite(path string) (*gorm.DB, error) {
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?_busy_timeout=5000&_journal_mode=WAL"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	return db, nil
}

// Migrate creates / updates all tables then applies schema patches.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent statements that GORM AutoMigrate cannot
// handle on its own. Each one is written in the SQL subset shared by SQLite
// and Postgres so re-running on an already-patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// barcode is optional but unique once set; empty strings are treated as unset
		{"unique non-empty barcode", `
CREATE UNIQUE INDEX IF NOT EXISTS ux_products_barcode
    ON products (barcode)
    WHERE barcode IS NOT NULL AND barcode <> ''`},
		// lots created before created_on existed take the date of their first IN movement
		{"backfill stock_lots.created_on", `
UPDATE stock_lots
   SET created_on = (
       SELECT MIN(m.ts) FROM movements m
        WHERE m.lot_id = stock_lots.id AND m.type = 'IN')
 WHERE (created_on IS NULL OR created_on = '')
   AND EXISTS (SELECT 1 FROM movements m WHERE m.lot_id = stock_lots.id AND m.type = 'IN')`},
		// movements written before product_id was denormalized
		{"backfill movements.product_id", `
UPDATE movements
   SET product_id = (SELECT l.product_id FROM stock_lots l WHERE l.id = movements.lot_id)
 WHERE product_id = 0
   AND EXISTS (SELECT 1 FROM stock_lots l WHERE l.id = movements.lot_id)`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
