package database

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/averyk/lifeledger/internal/model"
)

// NewMySQLConnection opens the database and migrates the schema. The
// returned handle is injected into repositories; nothing holds it as
// package state.
func NewMySQLConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// Migrate creates or updates the tables. Shared with the sqlite-backed
// test databases.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Wallet{},
		&model.Expense{},
		&model.Subexpense{},
		&model.Subscription{},
		&model.WalletLimit{},
	); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}
