// Package db provides GORM connection helpers for the delivery history
// store. SQLite is the default backend; a MySQL-compatible server can be
// configured instead for shared deployments.
package db

import (
	"fmt"

	driver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/zulandar/switchboard/internal/models"
)

// ConnectSQLite opens a GORM connection to a SQLite database file. Use
// ":memory:" for an ephemeral store.
func ConnectSQLite(path string) (*gorm.DB, error) {
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("db: open sqlite %s: %w", path, err)
	}
	return gdb, nil
}

// DSN builds a MySQL-compatible DSN.
func DSN(host string, port int, user, database string) string {
	cfg := driver.NewConfig()
	cfg.User = user
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", host, port)
	cfg.DBName = database
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// ConnectMySQL opens a GORM connection to a MySQL-compatible server.
func ConnectMySQL(host string, port int, user, database string) (*gorm.DB, error) {
	gdb, err := gorm.Open(mysql.Open(DSN(host, port, user, database)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("db: connect to %s:%d/%s: %w", host, port, database, err)
	}
	return gdb, nil
}

// Migrate creates or updates the history schema.
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(&models.DeliveryRecord{}); err != nil {
		return fmt.Errorf("db: migrate: %w", err)
	}
	return nil
}
