package casedb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/stix-triage/internal/match"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS data_sources (
	id            INTEGER PRIMARY KEY,
	name          TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS files (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	data_source_id  INTEGER NOT NULL DEFAULT 1,
	name            TEXT NOT NULL,
	parent_path     TEXT NOT NULL DEFAULT '/',
	size            INTEGER NOT NULL DEFAULT 0,
	crtime          INTEGER NOT NULL DEFAULT 0,
	mtime           INTEGER NOT NULL DEFAULT 0,
	atime           INTEGER NOT NULL DEFAULT 0,
	md5             TEXT,
	sha256          TEXT,
	mime_type       TEXT,
	allocated       INTEGER NOT NULL DEFAULT 1,
	local_path      TEXT
);

CREATE TABLE IF NOT EXISTS artifacts (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	obj_id        INTEGER NOT NULL,
	type          TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS attributes (
	artifact_id   INTEGER NOT NULL,
	type          TEXT NOT NULL,
	value         TEXT NOT NULL,
	FOREIGN KEY (artifact_id) REFERENCES artifacts(id)
);

CREATE TABLE IF NOT EXISTS interesting_items (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	obj_id        INTEGER NOT NULL,
	set_name      TEXT NOT NULL,
	title         TEXT NOT NULL,
	category      TEXT NOT NULL,
	run_id        TEXT,
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS evaluation_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT NOT NULL,
	document      TEXT,
	indicator_id  TEXT,
	label         TEXT NOT NULL,
	verdict       TEXT NOT NULL,
	artifacts     INTEGER NOT NULL DEFAULT 0,
	capped        INTEGER NOT NULL DEFAULT 0,
	description   TEXT,
	created_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_artifacts_type ON artifacts(type);
CREATE INDEX IF NOT EXISTS idx_artifacts_obj ON artifacts(obj_id, type);
CREATE INDEX IF NOT EXISTS idx_attributes_artifact ON attributes(artifact_id);
`
// #endregion schema

// #region store-struct
// Store is the SQLite case datastore. Reads are safe for concurrent use; the
// only engine write is CreateInterestingItem.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite case database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if dbPath == ":memory:" {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return nil, fmt.Errorf("pragma busy: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}
// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}
// #endregion db-accessor

// #region find-files
const fileColumns = `id, data_source_id, name, parent_path, size, crtime, mtime, atime,
	md5, sha256, mime_type, allocated, local_path`

// FindFiles returns the files matching clause, ordered by ID.
func (s *Store) FindFiles(ctx context.Context, clause match.Clause) ([]File, error) {
	where := clause.SQL
	if where == "" {
		where = "1=1"
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+fileColumns+` FROM files WHERE `+where+` ORDER BY id`, clause.Args...)
	if err != nil {
		return nil, fmt.Errorf("find files: %w", err)
	}
	defer rows.Close()
	return scanFiles(rows)
}

// File returns one file by ID.
func (s *Store) File(ctx context.Context, id int64) (File, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+fileColumns+` FROM files WHERE id = ?`, id)
	if err != nil {
		return File{}, fmt.Errorf("get file %d: %w", id, err)
	}
	defer rows.Close()
	files, err := scanFiles(rows)
	if err != nil {
		return File{}, err
	}
	if len(files) == 0 {
		return File{}, fmt.Errorf("get file %d: %w", id, ErrNotFound)
	}
	return files[0], nil
}

// RegistryHiveFiles returns allocated registry hives: every ntuser.dat plus the
// system, software, security and sam hives under system32/config, skipping
// RegBack copies.
func (s *Store) RegistryHiveFiles(ctx context.Context) ([]File, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+fileColumns+` FROM files
		 WHERE allocated = 1
		   AND (lower(name) = 'ntuser.dat'
		        OR (lower(name) IN ('system', 'software', 'security', 'sam')
		            AND lower(parent_path) LIKE '%/system32/config/%'))
		   AND lower(parent_path) NOT LIKE '%regback%'
		 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list hives: %w", err)
	}
	defer rows.Close()
	return scanFiles(rows)
}

func scanFiles(rows *sql.Rows) ([]File, error) {
	var files []File
	for rows.Next() {
		var f File
		var md5, sha, mime, local sql.NullString
		var allocated int
		if err := rows.Scan(&f.ID, &f.DataSourceID, &f.Name, &f.ParentPath, &f.Size,
			&f.Crtime, &f.Mtime, &f.Atime, &md5, &sha, &mime, &allocated, &local); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		f.MD5, f.SHA256, f.MIMEType, f.LocalPath = md5.String, sha.String, mime.String, local.String
		f.Allocated = allocated != 0
		files = append(files, f)
	}
	return files, rows.Err()
}
// #endregion find-files

// #region artifacts
// ArtifactsOfType returns every artifact of type t with its attributes.
func (s *Store) ArtifactsOfType(ctx context.Context, t ArtifactType) ([]Artifact, error) {
	arts, err := s.queryArtifacts(ctx, `a.type = ?`, string(t))
	if err != nil {
		return nil, fmt.Errorf("artifacts of type %s: %w", t, err)
	}
	return arts, nil
}

// ArtifactsByAttributeSubstring returns artifacts of type t whose attribute
// attr contains substr, case-insensitively.
func (s *Store) ArtifactsByAttributeSubstring(ctx context.Context, t ArtifactType, attr AttributeType, substr string) ([]Artifact, error) {
	arts, err := s.queryArtifacts(ctx,
		`a.type = ? AND EXISTS (
			SELECT 1 FROM attributes x
			WHERE x.artifact_id = a.id AND x.type = ? AND instr(lower(x.value), ?) > 0)`,
		string(t), string(attr), strings.ToLower(substr))
	if err != nil {
		return nil, fmt.Errorf("artifacts of type %s with %s containing %q: %w", t, attr, substr, err)
	}
	return arts, nil
}

// HasArtifact reports whether object objID carries an artifact of type t.
func (s *Store) HasArtifact(ctx context.Context, objID int64, t ArtifactType) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM artifacts WHERE obj_id = ? AND type = ?`, objID, string(t)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count artifacts on %d: %w", objID, err)
	}
	return n > 0, nil
}

func (s *Store) queryArtifacts(ctx context.Context, where string, args ...any) ([]Artifact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.id, a.obj_id, a.type, t.type, t.value
		 FROM artifacts a LEFT JOIN attributes t ON t.artifact_id = a.id
		 WHERE a.id IN (SELECT a.id FROM artifacts a WHERE `+where+`)
		 ORDER BY a.id, t.rowid`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var arts []Artifact
	for rows.Next() {
		var id, objID int64
		var artType string
		var attrType, attrValue sql.NullString
		if err := rows.Scan(&id, &objID, &artType, &attrType, &attrValue); err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		if len(arts) == 0 || arts[len(arts)-1].ID != id {
			arts = append(arts, Artifact{ID: id, ObjID: objID, Type: ArtifactType(artType)})
		}
		if attrType.Valid {
			last := &arts[len(arts)-1]
			last.Attributes = append(last.Attributes, Attribute{Type: AttributeType(attrType.String), Value: attrValue.String})
		}
	}
	return arts, rows.Err()
}
// #endregion artifacts

// #region interesting-items
// CreateInterestingItem records an interesting-item hit against a case object.
func (s *Store) CreateInterestingItem(ctx context.Context, item InterestingItem) (int64, error) {
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO interesting_items (obj_id, set_name, title, category, run_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		item.ObjID, item.SetName, item.Title, item.Category, nullIfEmpty(item.RunID),
		item.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert interesting item: %w", err)
	}
	return res.LastInsertId()
}

// InterestingItems lists recorded hits, newest first, optionally for one run.
func (s *Store) InterestingItems(ctx context.Context, runID string, limit int) ([]InterestingItem, error) {
	q := `SELECT id, obj_id, set_name, title, category, run_id, created_at FROM interesting_items`
	var args []any
	if runID != "" {
		q += ` WHERE run_id = ?`
		args = append(args, runID)
	}
	q += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list interesting items: %w", err)
	}
	defer rows.Close()

	var items []InterestingItem
	for rows.Next() {
		var it InterestingItem
		var run sql.NullString
		var created string
		if err := rows.Scan(&it.ID, &it.ObjID, &it.SetName, &it.Title, &it.Category, &run, &created); err != nil {
			return nil, fmt.Errorf("scan interesting item: %w", err)
		}
		it.RunID = run.String
		it.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		items = append(items, it)
	}
	return items, rows.Err()
}
// #endregion interesting-items

// #region helpers
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
// #endregion helpers
