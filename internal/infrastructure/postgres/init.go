package postgres

import (
	"fmt"
	"log"

	"github.com/LavaJover/shvark-mypvit-relay/internal/config"
	"github.com/LavaJover/shvark-mypvit-relay/internal/infrastructure/postgres/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func MustInitDB(cfg *config.Config) *gorm.DB {
	db, err := InitDB(cfg.Storage.Dsn)
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}
	return db
}

func InitDB(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("storage dsn is empty")
	}
	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
}

// AutoMigrate creates the relay tables when no SQL migrations are configured.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.SecretModel{},
		&models.PaymentTransactionModel{},
		&models.SaleModel{},
		&models.TripModel{},
	)
}
