package database

import (
	"database/sql"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Open connects to the SQLite file at dbUrl and migrates it to the latest
// schema. Foreign keys are enforced on every pooled connection.
func Open(dbUrl string) (db *sql.DB, err error) {
	db, err = sql.Open("sqlite3", dsn(dbUrl))
	if err != nil {
		return
	}

	// db tuning options
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(2 * time.Hour)

	err = migrateDB(db)
	if err != nil {
		db.Close()
		return
	}

	return
}

func dsn(dbUrl string) string {
	sep := "?"
	if strings.Contains(dbUrl, "?") {
		sep = "&"
	}
	return dbUrl + sep + "_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate"
}
