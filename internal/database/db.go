package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/smm-webpanel/internal/config"
)

// DSN builds the driver connection string for cfg. multiStatements is only
// enabled for the migration connection.
func DSN(cfg config.Config, multiStatements bool) string {
	mc := mysql.NewConfig()
	mc.User = cfg.DBUser
	mc.Passwd = cfg.DBPass
	mc.Net = "tcp"
	mc.Addr = cfg.DBHost + ":" + cfg.DBPort
	mc.DBName = cfg.DBName
	mc.Params = map[string]string{"charset": "utf8mb4"}
	// DATETIME -> time.Time in UTC
	mc.ParseTime = true
	mc.Loc = time.UTC
	// RowsAffected counts matched rows so an UPDATE to the same value is not a miss
	mc.ClientFoundRows = true
	mc.MultiStatements = multiStatements
	return mc.FormatDSN()
}

// Open connects to MySQL and verifies the connection.
func Open(cfg config.Config) (*sql.DB, error) {
	db, err := sql.Open("mysql", DSN(cfg, false))
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
