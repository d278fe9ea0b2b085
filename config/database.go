package config

import (
	"fmt"
	"time"

	"github.com/travel-point/api-go/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the Postgres pool and migrates the tables this service owns.
func InitDB(s *Settings, log *zap.Logger) (*gorm.DB, error) {
	gormLogLevel := logger.Warn
	if s.Env == "prod" || s.Env == "production" {
		gormLogLevel = logger.Error
	}

	db, err := gorm.Open(postgres.Open(s.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if s.AutoMigrate {
		if err := db.AutoMigrate(
			&models.Landmark{},
			&models.NaturalWonder{},
			&models.RestaurantFood{},
			&models.PoiImage{},
			&models.User{},
		); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("database schema migrated")
	}

	return db, nil
}
