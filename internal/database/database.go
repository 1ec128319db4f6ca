package database

import (
	"database/sql"

	_ "modernc.org/sqlite" // SQLite driver
)

// New creates a new database connection pool. Foreign keys are enforced on
// every connection and time values use SQLite's datetime text format.
func New(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dataSourceName+"?_pragma=foreign_keys(1)&_time_format=sqlite")
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs the SQL statements to set up the database schema.
// Statements are additive and idempotent; a restart never drops data.
func Migrate(db *sql.DB) error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		display_name TEXT NOT NULL,
		profile_picture TEXT,
		role TEXT NOT NULL DEFAULT 'user',
		is_banned INTEGER NOT NULL DEFAULT 0,
		ban_expiration DATETIME,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS contacts (
		user_id TEXT NOT NULL,
		contact_id TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		PRIMARY KEY (user_id, contact_id),
		FOREIGN KEY (user_id) REFERENCES users(id),
		FOREIGN KEY (contact_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sender_id TEXT NOT NULL,
		recipient_id TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		is_read INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (sender_id) REFERENCES users(id),
		FOREIGN KEY (recipient_id) REFERENCES users(id)
	);

	CREATE INDEX IF NOT EXISTS idx_messages_recipient_sender
		ON messages(recipient_id, sender_id, is_read);
	`
	_, err := db.Exec(sqlStmt)
	return err
}
