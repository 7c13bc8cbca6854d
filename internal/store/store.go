// Package store provides SQLite-backed persistence for the search
// subsystem: the ngram index tables, the pending-value queue, search group
// configuration, custom field weights, and usage records.
//
// Uses ncruces/go-sqlite3/driver, which provides a database/sql interface.
package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/charliedev/reliquary/model"
)

// schema defines all tables owned by the search subsystem. Element content
// itself lives with the host application; only ids are referenced here.
const schema = `
-- Pending raw values awaiting normalization and indexing.
CREATE TABLE IF NOT EXISTS reliquary_indexqueue (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	elementId INTEGER NOT NULL,
	siteId INTEGER NOT NULL,
	fieldId INTEGER,
	attribute TEXT,
	value TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_indexqueue_element ON reliquary_indexqueue(elementId, siteId);

-- One row per (element, site, field-or-attribute) with indexed text.
-- Ids are client-generated UUIDs, stable across re-index passes.
CREATE TABLE IF NOT EXISTS reliquary_ngramindex (
	id TEXT PRIMARY KEY,
	elementId INTEGER NOT NULL,
	siteId INTEGER NOT NULL,
	fieldId INTEGER,
	attribute TEXT,
	ngrams INTEGER NOT NULL DEFAULT 0
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_ngramindex_unique ON reliquary_ngramindex(elementId, siteId, fieldId, attribute);

-- The inverted index: one row per (index entry, position) pair.
CREATE TABLE IF NOT EXISTS reliquary_ngramdata (
	indexId TEXT NOT NULL,
	"offset" INTEGER NOT NULL,
	"key" TEXT NOT NULL,
	PRIMARY KEY (indexId, "offset")
);
CREATE INDEX IF NOT EXISTS idx_ngramdata_key ON reliquary_ngramdata("key");

CREATE TABLE IF NOT EXISTS reliquary_searchgroups (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	siteId INTEGER NOT NULL,
	handle TEXT NOT NULL,
	name TEXT NOT NULL,
	template TEXT NOT NULL DEFAULT '',
	pageSize INTEGER NOT NULL,
	searchOrder TEXT NOT NULL,
	sortOrder INTEGER NOT NULL,
	dateCreated TEXT NOT NULL,
	dateUpdated TEXT NOT NULL,
	uid TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_searchgroups_handle ON reliquary_searchgroups(handle);

CREATE TABLE IF NOT EXISTS reliquary_searchgroupelements (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	groupId INTEGER NOT NULL REFERENCES reliquary_searchgroups(id) ON DELETE CASCADE,
	elementType TEXT NOT NULL,
	elementTypeId INTEGER,
	sortOrder INTEGER NOT NULL,
	dateCreated TEXT NOT NULL,
	dateUpdated TEXT NOT NULL,
	uid TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS reliquary_searchgroupfilters (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	groupId INTEGER NOT NULL REFERENCES reliquary_searchgroups(id) ON DELETE CASCADE,
	fieldId INTEGER,
	attribute TEXT,
	handle TEXT NOT NULL,
	name TEXT NOT NULL,
	sortOrder INTEGER NOT NULL,
	dateCreated TEXT NOT NULL,
	dateUpdated TEXT NOT NULL,
	uid TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_searchgroupfilters_target ON reliquary_searchgroupfilters(groupId, fieldId, attribute);
CREATE UNIQUE INDEX IF NOT EXISTS idx_searchgroupfilters_handle ON reliquary_searchgroupfilters(groupId, handle);

CREATE TABLE IF NOT EXISTS reliquary_customfieldweights (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	fieldId INTEGER,
	attribute TEXT,
	elementType TEXT NOT NULL,
	elementTypeId INTEGER,
	multiplier REAL NOT NULL,
	dateCreated TEXT NOT NULL,
	dateUpdated TEXT NOT NULL,
	uid TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_customfieldweights_scope ON reliquary_customfieldweights(fieldId, attribute, elementType, elementTypeId);

-- Usage statistics, best-effort.
CREATE TABLE IF NOT EXISTS reliquary_searchrecord (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	subjectId TEXT NOT NULL,
	time TEXT NOT NULL,
	term TEXT,
	filters TEXT
);
CREATE INDEX IF NOT EXISTS idx_searchrecord_subject ON reliquary_searchrecord(subjectId);
CREATE INDEX IF NOT EXISTS idx_searchrecord_term ON reliquary_searchrecord(term);
`

// timeFormat is how timestamps are persisted.
const timeFormat = time.RFC3339Nano

// Store is the SQLite-backed data store. Configuration reads go through
// small in-process caches invalidated by the corresponding writes; index
// and queue operations always hit the database.
type Store struct {
	db *sql.DB

	mu              sync.RWMutex
	groupsByID      map[int64]*model.SearchGroup
	groupsByHandle  map[string]*model.SearchGroup
	elementsByGroup map[int64][]*model.SearchGroupElement
	filtersByGroup  map[int64][]*model.SearchGroupFilter
	filtersByID     map[int64]*model.SearchGroupFilter
}

// Open creates a store backed by the database at the given path. Use
// ":memory:" for an ephemeral database (tests).
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	s := &Store{db: db}
	s.resetCaches()
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for transactional callers (the index
// writer runs its whole pass in one transaction).
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) resetCaches() {
	s.groupsByID = make(map[int64]*model.SearchGroup)
	s.groupsByHandle = make(map[string]*model.SearchGroup)
	s.elementsByGroup = make(map[int64][]*model.SearchGroupElement)
	s.filtersByGroup = make(map[int64][]*model.SearchGroupFilter)
	s.filtersByID = make(map[int64]*model.SearchGroupFilter)
}

// nullInt64 converts an optional int64 for binding.
func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

// nullString converts an optional string for binding.
func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	str := v.String
	return &str
}

func parseTime(v string) time.Time {
	t, err := time.Parse(timeFormat, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

func formatTime(t time.Time) string {
	return t.Format(timeFormat)
}
