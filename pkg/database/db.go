package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"fleet-crm/internal/constants"
	"fleet-crm/pkg/config"
	errs "fleet-crm/pkg/errors"

	_ "github.com/go-sql-driver/mysql"
)

const (
	DefaultReadTimeout  = constants.DBReadTimeoutDefault
	DefaultWriteTimeout = constants.DBWriteTimeoutDefault
)

// DB stores every CRM entity as a JSON document next to a handful of indexed lookup
// columns. Writes always replace the whole document.
type DB struct {
	conn         *sql.DB
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func New(databaseURL string) (*DB, error) {
	conn, err := sql.Open("mysql", databaseURL)
	if err != nil {
		return nil, errs.NewDB("database.New", "failed to open connection", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(10)
	conn.SetConnMaxLifetime(10 * time.Minute)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, errs.NewDB("database.New", "failed to ping", err)
	}

	return &DB{conn: conn, readTimeout: DefaultReadTimeout, writeTimeout: DefaultWriteTimeout}, nil
}

// NewWithConfig creates a database connection with pool settings and timeouts from cfg.
func NewWithConfig(cfg *config.Config) (*DB, error) {
	conn, err := sql.Open("mysql", cfg.DatabaseURL)
	if err != nil {
		return nil, errs.NewDB("database.NewWithConfig", "failed to open connection", err)
	}

	conn.SetMaxOpenConns(cfg.DBMaxOpenConns)
	conn.SetMaxIdleConns(cfg.DBMaxIdleConns)
	conn.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetime) * time.Minute)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, errs.NewDB("database.NewWithConfig", "failed to ping", err)
	}

	return NewFromConn(conn, cfg.DBReadTimeout, cfg.DBWriteTimeout), nil
}

// NewFromConn wraps an already opened pool. Zero timeouts fall back to the defaults.
func NewFromConn(conn *sql.DB, readTimeout, writeTimeout time.Duration) *DB {
	if readTimeout <= 0 {
		readTimeout = DefaultReadTimeout
	}
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	return &DB{conn: conn, readTimeout: readTimeout, writeTimeout: writeTimeout}
}

func (db *DB) Close() error { return db.conn.Close() }

func (db *DB) Conn() *sql.DB { return db.conn }

// PingCtx is used by the health checker.
func (db *DB) PingCtx(ctx context.Context) error {
	ctx, cancel := db.withReadTimeout(ctx)
	defer cancel()
	if err := db.conn.PingContext(ctx); err != nil {
		return errs.NewDB("database.Ping", "ping failed", err)
	}
	return nil
}

func (db *DB) withReadTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, db.readTimeout)
}

func (db *DB) withWriteTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, db.writeTimeout)
}

// documentTable renders the DDL shared by every entity table.
func documentTable(name string, keys ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", name)
	b.WriteString("\tid VARCHAR(64) NOT NULL PRIMARY KEY,\n")
	b.WriteString("\tcompany_id VARCHAR(64) NOT NULL DEFAULT '',\n")
	b.WriteString("\tname VARCHAR(255) NOT NULL DEFAULT '',\n")
	b.WriteString("\ttax_id VARCHAR(32) NOT NULL DEFAULT '',\n")
	b.WriteString("\tstate CHAR(2) NOT NULL DEFAULT '',\n")
	b.WriteString("\tdoc JSON NOT NULL,\n")
	b.WriteString("\tupdated_at DATETIME(6) NOT NULL")
	for _, k := range keys {
		fmt.Fprintf(&b, ",\n\tKEY idx_%s_%s (%s)", name, k, k)
	}
	b.WriteString("\n) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4")
	return b.String()
}

var schema = []string{
	documentTable(tableContacts, "name", "state"),
	documentTable(tableCompanies, "name", "state", "tax_id"),
	documentTable(tableVehicles, "company_id", "name"),
	documentTable(tableMatches, "company_id"),
	documentTable(tableUsers, "name"),
	`CREATE TABLE IF NOT EXISTS audit_events (
	seq BIGINT AUTO_INCREMENT PRIMARY KEY,
	id VARCHAR(64) NOT NULL,
	type VARCHAR(64) NOT NULL,
	subject_id VARCHAR(64) NOT NULL DEFAULT '',
	actor_id VARCHAR(64) NOT NULL DEFAULT '',
	payload JSON NULL,
	created_at DATETIME(6) NOT NULL,
	UNIQUE KEY idx_audit_id (id),
	KEY idx_audit_subject (subject_id, seq),
	KEY idx_audit_created (created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates missing tables. Existing tables are left untouched.
func (db *DB) EnsureSchema(ctx context.Context) error {
	ctx, cancel := db.withWriteTimeout(ctx)
	defer cancel()
	for i, stmt := range schema {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return errs.NewDB("database.EnsureSchema", fmt.Sprintf("statement %d failed", i), err)
		}
	}
	return nil
}

// Truncate empties every table. Only meant for integration tests.
func (db *DB) Truncate(ctx context.Context) error {
	ctx, cancel := db.withWriteTimeout(ctx)
	defer cancel()
	for _, t := range []string{tableContacts, tableCompanies, tableVehicles, tableMatches, tableUsers, "audit_events"} {
		if _, err := db.conn.ExecContext(ctx, "DELETE FROM "+t); err != nil {
			return errs.NewDB("database.Truncate", "failed to clear "+t, err)
		}
	}
	return nil
}
