package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/tienda/internal/config"
	"github.com/Skotchmaster/tienda/internal/models"
)

type Options struct {
	Driver       string
	DSN          string
	MaxOpenConns int
}

func FromConfig(cfg *config.Config) Options {
	return Options{
		Driver:       cfg.DBDriver,
		DSN:          cfg.DatabaseURL,
		MaxOpenConns: cfg.DBMaxOpenConns,
	}
}

func dialector(opts Options) (gorm.Dialector, error) {
	switch opts.Driver {
	case config.DriverPostgres:
		return postgres.Open(opts.DSN), nil
	case config.DriverPQ:
		// database/sql driver registered by lib/pq
		return postgres.New(postgres.Config{DriverName: "postgres", DSN: opts.DSN}), nil
	case config.DriverSQLite:
		return sqlite.Open(opts.DSN), nil
	default:
		return nil, fmt.Errorf("unknown driver %q", opts.Driver)
	}
}

func configurePool(sqlDB *sql.DB, opts Options) {
	const (
		maxIdleConns    = 10
		connMaxLifetime = 30 * time.Minute
		connMaxIdleTime = 5 * time.Minute
	)

	maxOpen := opts.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 20
	}
	// every connection to ":memory:" is a separate database
	if opts.Driver == config.DriverSQLite && isMemory(opts.DSN) {
		maxOpen = 1
	}

	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(min(maxIdleConns, maxOpen))
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)
}

func isMemory(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

func Open(ctx context.Context, opts Options) (*gorm.DB, error) {
	if opts.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	d, err := dialector(opts)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(d, &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	configurePool(sqlDB, opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Account{},
		&models.Product{},
		&models.CartLine{},
		&models.Order{},
		&models.Session{},
	); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// OpenMemory opens a migrated in-memory sqlite database.
func OpenMemory(ctx context.Context) (*gorm.DB, error) {
	db, err := Open(ctx, Options{Driver: config.DriverSQLite, DSN: ":memory:"})
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
