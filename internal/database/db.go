package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"accessapi/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Models lists every table owned by the service, in dependency order.
var Models = []interface{}{
	&model.Role{},
	&model.Module{},
	&model.Resource{},
	&model.Permission{},
	&model.User{},
	&model.RoleResourcePermission{},
	&model.AuditLog{},
}

// Dialector picks the gorm driver from the URL scheme: postgres://, postgresql:// or sqlite://<path>.
func Dialector(databaseURL string) (gorm.Dialector, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return postgres.Open(databaseURL), nil
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return sqlite.Open(SQLiteDSN(strings.TrimPrefix(databaseURL, "sqlite://"))), nil
	default:
		return nil, fmt.Errorf("unsupported DATABASE_URL scheme: %q", databaseURL)
	}
}

// SQLiteDSN enables foreign keys and a busy timeout on a sqlite file path.
func SQLiteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// NewConnection opens the pool, checks it and auto-migrates the schema.
func NewConnection(ctx context.Context, databaseURL string) (*gorm.DB, error) {
	dialector, err := Dialector(databaseURL)
	if err != nil {
		return nil, err
	}
	return Open(ctx, dialector)
}

func Open(ctx context.Context, dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger:         newGormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	configurePool(sqlDB)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the tables for all models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

func configurePool(sqlDB *sql.DB) {
	const (
		maxOpenConns    = 20
		maxIdleConns    = 10
		connMaxLifetime = 30 * time.Minute
		connMaxIdleTime = 5 * time.Minute
	)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)
}
