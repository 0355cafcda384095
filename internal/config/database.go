package config

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	applog "alfredoptarigan/career-coach/internal/logger"
	"alfredoptarigan/career-coach/internal/models"
)

func InitDatabase(cfg *Config, log *applog.Logger) (*gorm.DB, error) {
	logLevel := logger.Silent
	if cfg.Server.Env == "development" {
		logLevel = logger.Info
	}

	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info("database connected", "driver", cfg.Database.Driver)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info("database migration completed")

	return db, nil
}

// Migrate creates or updates every table the API owns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Document{},
		&models.DocumentVersion{},
		&models.InterviewChat{},
		&models.InterviewMessage{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func dialectorFor(cfg *Config) (gorm.Dialector, error) {
	switch cfg.Database.Driver {
	case "postgres", "":
		return postgres.Open(cfg.GetDatabaseDSN()), nil
	case "sqlite":
		// foreign keys are off by default in sqlite; cascades depend on them
		return sqlite.Open(cfg.Database.SQLitePath + "?_foreign_keys=1"), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}
}
