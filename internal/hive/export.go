package hive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/danielpatrickdp/stix-triage/internal/casedb"
)

// #region source
// Source lists the registry hive files of a case.
type Source interface {
	RegistryHiveFiles(ctx context.Context) ([]casedb.File, error)
}
// #endregion source

// #region scratch-locks
// scratchLocks holds one mutex per cleaned absolute scratch directory.
var scratchLocks sync.Map

func scratchLock(dir string) *sync.Mutex {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	mu, _ := scratchLocks.LoadOrStore(filepath.Clean(dir), &sync.Mutex{})
	return mu.(*sync.Mutex)
}
// #endregion scratch-locks

// #region exporter
// Exporter copies allocated hive files into <ScratchDir>/STIX. Export holds the
// scratch directory's mutex for the whole copy, so exporters sharing a scratch
// directory never interleave writes to it.
type Exporter struct {
	source     Source
	scratchDir string
	log        *slog.Logger
}

// NewExporter creates an exporter writing under scratchDir.
func NewExporter(source Source, scratchDir string, log *slog.Logger) *Exporter {
	if log == nil {
		log = slog.Default()
	}
	return &Exporter{source: source, scratchDir: scratchDir, log: log}
}

// Dir returns the directory hive copies are written to.
func (e *Exporter) Dir() string {
	return filepath.Join(e.scratchDir, "STIX")
}

// Export copies every hive to <dir>/<name>_<index>. Files that cannot be copied
// are logged and skipped.
func (e *Exporter) Export(ctx context.Context) ([]Hive, error) {
	mu := scratchLock(e.scratchDir)
	mu.Lock()
	defer mu.Unlock()

	files, err := e.source.RegistryHiveFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list hives: %w", err)
	}
	dir := e.Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}

	var hives []Hive
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return hives, err
		}
		if !f.Allocated {
			continue
		}
		if f.LocalPath == "" {
			e.log.Warn("hive has no content", "file_id", f.ID, "name", f.Name)
			continue
		}
		dst := filepath.Join(dir, fmt.Sprintf("%s_%d", f.Name, i))
		if err := copyFile(f.LocalPath, dst); err != nil {
			e.log.Warn("copy hive", "file_id", f.ID, "name", f.Name, "error", err)
			continue
		}
		hives = append(hives, Hive{File: f, Path: dst})
	}
	e.log.Info("exported hives", "count", len(hives), "dir", dir)
	return hives, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create copy: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy: %w", err)
	}
	return out.Close()
}
// #endregion exporter
