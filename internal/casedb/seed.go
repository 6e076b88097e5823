package casedb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// #region seed-types
// Seed is a YAML description of case contents, used to build fixture cases.
type Seed struct {
	DataSources []SeedDataSource `yaml:"data_sources"`
	Files       []SeedFile       `yaml:"files"`
	Artifacts   []SeedArtifact   `yaml:"artifacts"`
}

type SeedDataSource struct {
	ID   int64  `yaml:"id"`
	Name string `yaml:"name"`
}

// SeedFile describes one file. Times are RFC 3339. Ref names the file for
// artifacts declared in the same seed.
type SeedFile struct {
	Ref          string `yaml:"ref"`
	DataSourceID int64  `yaml:"data_source_id"`
	Name         string `yaml:"name"`
	ParentPath   string `yaml:"parent_path"`
	Size         int64  `yaml:"size"`
	Created      string `yaml:"created"`
	Modified     string `yaml:"modified"`
	Accessed     string `yaml:"accessed"`
	MD5          string `yaml:"md5"`
	SHA256       string `yaml:"sha256"`
	MIMEType     string `yaml:"mime_type"`
	Unallocated  bool   `yaml:"unallocated"`
	LocalPath    string `yaml:"local_path"`
}

// SeedArtifact attaches an artifact to the file named by File.
type SeedArtifact struct {
	Type       string            `yaml:"type"`
	File       string            `yaml:"file"`
	Attributes map[string]string `yaml:"attributes"`
}
// #endregion seed-types

// #region load-seed
// LoadSeed reads a seed file.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse seed %q: %w", path, err)
	}
	return &s, nil
}
// #endregion load-seed

// #region apply-seed
// ApplySeed inserts the seed's contents in one transaction and returns the
// file IDs keyed by Ref.
func (s *Store) ApplySeed(ctx context.Context, seed *Seed) (map[string]int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, ds := range seed.DataSources {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO data_sources (id, name) VALUES (?, ?)`, ds.ID, ds.Name); err != nil {
			return nil, fmt.Errorf("insert data source %d: %w", ds.ID, err)
		}
	}

	refs := make(map[string]int64)
	for _, sf := range seed.Files {
		f, err := sf.toFile()
		if err != nil {
			return nil, err
		}
		id, err := insertFile(ctx, tx, f)
		if err != nil {
			return nil, err
		}
		if sf.Ref != "" {
			refs[sf.Ref] = id
		}
	}

	for i, sa := range seed.Artifacts {
		objID, ok := refs[sa.File]
		if !ok {
			return nil, fmt.Errorf("artifact %d: unknown file ref %q", i, sa.File)
		}
		art := Artifact{ObjID: objID, Type: ArtifactType(sa.Type)}
		keys := make([]string, 0, len(sa.Attributes))
		for k := range sa.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			art.Attributes = append(art.Attributes, Attribute{Type: AttributeType(k), Value: sa.Attributes[k]})
		}
		if _, err := insertArtifact(ctx, tx, art); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return refs, nil
}

func (sf SeedFile) toFile() (File, error) {
	f := File{
		DataSourceID: sf.DataSourceID,
		Name:         sf.Name,
		ParentPath:   sf.ParentPath,
		Size:         sf.Size,
		MD5:          sf.MD5,
		SHA256:       sf.SHA256,
		MIMEType:     sf.MIMEType,
		Allocated:    !sf.Unallocated,
		LocalPath:    sf.LocalPath,
	}
	var err error
	if f.Crtime, err = unixOrZero(sf.Created); err != nil {
		return File{}, fmt.Errorf("file %q created: %w", sf.Name, err)
	}
	if f.Mtime, err = unixOrZero(sf.Modified); err != nil {
		return File{}, fmt.Errorf("file %q modified: %w", sf.Name, err)
	}
	if f.Atime, err = unixOrZero(sf.Accessed); err != nil {
		return File{}, fmt.Errorf("file %q accessed: %w", sf.Name, err)
	}
	return f, nil
}

func unixOrZero(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0, err
	}
	return t.Unix(), nil
}
// #endregion apply-seed

// #region add
// AddFile inserts a file and returns its ID.
func (s *Store) AddFile(ctx context.Context, f File) (int64, error) {
	return insertFile(ctx, s.db, f)
}

// AddArtifact inserts an artifact with its attributes and returns its ID.
func (s *Store) AddArtifact(ctx context.Context, a Artifact) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()
	id, err := insertArtifact(ctx, tx, a)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertFile(ctx context.Context, db execer, f File) (int64, error) {
	if f.DataSourceID == 0 {
		f.DataSourceID = 1
	}
	if f.ParentPath == "" {
		f.ParentPath = "/"
	}
	allocated := 0
	if f.Allocated {
		allocated = 1
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO files (data_source_id, name, parent_path, size, crtime, mtime, atime,
		                    md5, sha256, mime_type, allocated, local_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.DataSourceID, f.Name, f.ParentPath, f.Size, f.Crtime, f.Mtime, f.Atime,
		nullIfEmpty(f.MD5), nullIfEmpty(f.SHA256), nullIfEmpty(f.MIMEType), allocated, nullIfEmpty(f.LocalPath),
	)
	if err != nil {
		return 0, fmt.Errorf("insert file %q: %w", f.Name, err)
	}
	return res.LastInsertId()
}

func insertArtifact(ctx context.Context, db execer, a Artifact) (int64, error) {
	res, err := db.ExecContext(ctx,
		`INSERT INTO artifacts (obj_id, type) VALUES (?, ?)`, a.ObjID, string(a.Type))
	if err != nil {
		return 0, fmt.Errorf("insert artifact: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("artifact id: %w", err)
	}
	for _, at := range a.Attributes {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO attributes (artifact_id, type, value) VALUES (?, ?, ?)`,
			id, string(at.Type), at.Value); err != nil {
			return 0, fmt.Errorf("insert attribute %s: %w", at.Type, err)
		}
	}
	return id, nil
}
// #endregion add
