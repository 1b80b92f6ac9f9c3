// Package dbtest opens an in-memory SQLite database carrying the outreach
// schema, for repository and service tests.
package dbtest

import (
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

var schema = []string{
	`CREATE TABLE sales_contacts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		company TEXT NOT NULL DEFAULT '',
		linkedin_url TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL DEFAULT 'manual',
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE sales_campaigns (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		product_name TEXT NOT NULL,
		aipm_project_id TEXT,
		demex_card_id TEXT,
		pitch_headline TEXT NOT NULL DEFAULT '',
		pitch_body TEXT NOT NULL DEFAULT '',
		target_segment TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'draft',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE sales_campaign_contacts (
		id TEXT PRIMARY KEY,
		campaign_id TEXT NOT NULL REFERENCES sales_campaigns(id) ON DELETE CASCADE,
		contact_id TEXT NOT NULL REFERENCES sales_contacts(id) ON DELETE CASCADE,
		status TEXT NOT NULL DEFAULT 'pending',
		current_step INTEGER NOT NULL DEFAULT 0,
		added_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		UNIQUE (campaign_id, contact_id)
	)`,
	`CREATE TABLE sales_touchpoints (
		id TEXT PRIMARY KEY,
		campaign_contact_id TEXT NOT NULL REFERENCES sales_campaign_contacts(id) ON DELETE CASCADE,
		channel TEXT NOT NULL,
		step INTEGER NOT NULL,
		scheduled_at TIMESTAMP NOT NULL,
		sent_at TIMESTAMP,
		content TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE sales_responses (
		id TEXT PRIMARY KEY,
		touchpoint_id TEXT REFERENCES sales_touchpoints(id) ON DELETE CASCADE,
		campaign_contact_id TEXT NOT NULL REFERENCES sales_campaign_contacts(id) ON DELETE CASCADE,
		content TEXT NOT NULL DEFAULT '',
		sentiment TEXT NOT NULL DEFAULT 'neutral',
		action TEXT NOT NULL DEFAULT 'none',
		received_at TIMESTAMP NOT NULL
	)`,
}

var counter atomic.Int64

// Open returns a fresh database with all tables created. Each call gets its
// own named in-memory database so parallel tests do not share rows.
func Open(t testing.TB) *sql.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:outreach%d?mode=memory&cache=shared&_fk=1", counter.Add(1))
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// A shared-cache memory database lives as long as one connection does.
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	for _, stmt := range schema {
		if _, err := conn.Exec(stmt); err != nil {
			t.Fatalf("failed to apply schema: %v", err)
		}
	}
	return conn
}
