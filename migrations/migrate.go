package main

import (
	"os"

	"investgame/src/config"
	"investgame/src/database"
	"investgame/src/utils"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	// Load the appropriate config based on the environment
	cfg, err := config.LoadConfig("./settings", os.Getenv("ENV"))
	if err != nil {
		utils.NewLogger("info", "").WithError(err).Fatal("Error loading config")
	}
	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.File)

	db, err := gorm.Open(postgres.Open(cfg.Databases.SQL.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.WithError(err).Fatal("Failed to get SQL DB from GORM DB")
	}
	defer sqlDB.Close()

	// Apply migrations
	if err := database.Migrate(sqlDB); err != nil {
		logger.WithError(err).Fatal("Failed to apply migrations")
	}

	var stocks int64
	if err := db.Table("stocks").Count(&stocks).Error; err != nil {
		logger.WithError(err).Fatal("Failed to verify migrated schema")
	}
	logger.WithField("stocks", stocks).Info("Database migration completed successfully")
}
