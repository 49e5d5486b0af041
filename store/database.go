package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cppla/storeapi/config"
	"github.com/cppla/storeapi/models"
	"github.com/cppla/storeapi/utils"
)

const sqliteScheme = "sqlite://"

// Open connects to the database named by cfg.DatabaseURL and migrates the schema.
//
//	postgres://... or postgresql://...  -> PostgreSQL (pgx)
//	sqlite://<path or file: URI>         -> SQLite (pure Go)
//	anything else                        -> MySQL DSN
//
// With no DatabaseURL a MySQL DSN is assembled from the DB_* fields.
func Open(cfg *config.AppConfig) (*gorm.DB, error) {
	dialector, isSQLite := dialectorFor(cfg)

	// Route SQL logs through zap; only slow queries and errors by default.
	gLogger := logger.New(
		zap.NewStdLog(utils.Logger.Named("gorm")),
		logger.Config{
			SlowThreshold:             2 * time.Second,
			LogLevel:                  toGormLogLevel(cfg.LogLevel),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if isSQLite {
		// SQLite serializes writers; a single connection also keeps in-memory databases alive.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
		sqlDB.SetConnMaxIdleTime(10 * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database ping: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Post{}, &models.Comment{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return db, nil
}

func dialectorFor(cfg *config.AppConfig) (gorm.Dialector, bool) {
	url := strings.TrimSpace(cfg.DatabaseURL)
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return postgres.Open(url), false
	case strings.HasPrefix(url, sqliteScheme):
		return sqlite.Open(strings.TrimPrefix(url, sqliteScheme)), true
	case url != "":
		return mysql.Open(url), false
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBName,
	)
	return mysql.Open(dsn), false
}

// toGormLogLevel maps application LogLevel to GORM's logger level.
func toGormLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		// GORM 'Info' shows SQL; use with caution
		return logger.Info
	case "error":
		return logger.Error
	case "silent":
		return logger.Silent
	default:
		return logger.Warn
	}
}
