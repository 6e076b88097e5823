package evaluator

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/stix-triage/internal/casedb"
	"github.com/danielpatrickdp/stix-triage/internal/match"
)

func newCase(t *testing.T) *casedb.Store {
	t.Helper()
	s, err := casedb.NewStore(filepath.Join(t.TempDir(), "case.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func addFile(t *testing.T, s *casedb.Store, f casedb.File) int64 {
	t.Helper()
	f.Allocated = true
	id, err := s.AddFile(context.Background(), f)
	if err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	return id
}

func addArtifact(t *testing.T, s *casedb.Store, objID int64, typ casedb.ArtifactType, attrs ...casedb.Attribute) int64 {
	t.Helper()
	id, err := s.AddArtifact(context.Background(), casedb.Artifact{ObjID: objID, Type: typ, Attributes: attrs})
	if err != nil {
		t.Fatalf("AddArtifact: %v", err)
	}
	return id
}

func attr(t casedb.AttributeType, v string) casedb.Attribute {
	return casedb.Attribute{Type: t, Value: v}
}

// brokenStore fails every query.
type brokenStore struct{}

var errBroken = errors.New("database is locked")

func (brokenStore) FindFiles(context.Context, match.Clause) ([]casedb.File, error) {
	return nil, errBroken
}

func (brokenStore) HasArtifact(context.Context, int64, casedb.ArtifactType) (bool, error) {
	return false, errBroken
}

func (brokenStore) ArtifactsOfType(context.Context, casedb.ArtifactType) ([]casedb.Artifact, error) {
	return nil, errBroken
}

func (brokenStore) ArtifactsByAttributeSubstring(context.Context, casedb.ArtifactType, casedb.AttributeType, string) ([]casedb.Artifact, error) {
	return nil, errBroken
}
