// Package testsupport opens throwaway SQLite databases shaped like the
// production schema for repository and handler specs.
package testsupport

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const schema = `
CREATE TABLE users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	id_number TEXT NOT NULL
);

CREATE TABLE kplc_permits (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	permit_number TEXT NOT NULL UNIQUE,
	issued_to TEXT,
	substation TEXT,
	work_details TEXT,
	safe_work_limits TEXT,
	safe_hv_work_limits TEXT,
	mv_lv_equipment TEXT,
	earth_points TEXT,
	additional_earth_connections TEXT,
	consent_person TEXT,
	issue_date TEXT,
	issue_time TEXT,
	submitted_at DATETIME NOT NULL,
	urgency TEXT,
	status TEXT,
	comments TEXT,
	approver_name TEXT,
	approval_date TEXT,
	approval_time TEXT,
	clearance_date TEXT,
	clearance_time TEXT,
	clearance_signature TEXT,
	connections TEXT,
	cancellation_consent_person TEXT
);
`

// DB bundles both handles the services use over one in-memory database.
type DB struct {
	SQLX *sqlx.DB
	Gorm *gorm.DB
}

// OpenSQLite returns a fresh in-memory database with the users and
// kplc_permits tables. The pool is pinned to one connection since every
// SQLite memory connection is its own database.
func OpenSQLite() (*DB, error) {
	sqlxDB, err := sqlx.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlxDB.SetMaxOpenConns(1)

	if _, err := sqlxDB.Exec(schema); err != nil {
		_ = sqlxDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	gormDB, err := gorm.Open(&sqlite.Dialector{Conn: sqlxDB.DB}, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		_ = sqlxDB.Close()
		return nil, fmt.Errorf("open gorm: %w", err)
	}

	return &DB{SQLX: sqlxDB, Gorm: gormDB}, nil
}

func (d *DB) Close() error {
	return d.SQLX.Close()
}
