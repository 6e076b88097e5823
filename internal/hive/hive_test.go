package hive

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/stix-triage/internal/casedb"
)

func softwareTree() *MemKey {
	return NewMemKey("ROOT",
		NewMemKey("Software",
			NewMemKey("Foo",
				NewMemKey("Bar").WithValues(Value{Name: "Path", Type: RegSZ, Text: `C:\evil.exe`}),
			),
		),
	)
}

func TestFindKey(t *testing.T) {
	root := softwareTree()

	k, ok := FindKey(root, SplitKeyPath(`Software\Foo\Bar`))
	require.True(t, ok)
	assert.Equal(t, "Bar", k.Name())
	assert.Len(t, k.Values(), 1)

	_, ok = FindKey(root, SplitKeyPath(`Software\Foo\Baz`))
	assert.False(t, ok)

	k, ok = FindKey(root, SplitKeyPath(`software\FOO\bar\`))
	require.True(t, ok, "lookup is case-insensitive and ignores empty components")
	assert.Equal(t, "Bar", k.Name())
}

func TestLookupRetriesWithoutHiveComponent(t *testing.T) {
	root := NewMemKey("ROOT", NewMemKey("Microsoft", NewMemKey("Windows")))

	_, ok := Lookup(root, `SOFTWARE\Microsoft\Windows`, "")
	assert.False(t, ok)

	k, ok := Lookup(root, `SOFTWARE\Microsoft\Windows`, "HKEY_LOCAL_MACHINE")
	require.True(t, ok)
	assert.Equal(t, "Windows", k.Name())

	_, ok = Lookup(root, `Software\Foo`, "HKEY_CURRENT_USER")
	assert.False(t, ok)
}

func TestSelect(t *testing.T) {
	system := Hive{File: casedb.File{Name: "SOFTWARE", ParentPath: "/Windows/System32/config/"}, Path: "/scratch/STIX/SOFTWARE_0"}
	user := Hive{File: casedb.File{Name: "NTUSER.DAT", ParentPath: "/Users/bob/"}, Path: "/scratch/STIX/NTUSER.DAT_1"}
	hives := []Hive{system, user}

	assert.Equal(t, hives, Select(hives, ""))
	assert.Equal(t, []Hive{system}, Select(hives, "HKEY_LOCAL_MACHINE"))
	assert.Equal(t, []Hive{user}, Select(hives, "HKEY_CURRENT_USER"))
	assert.Equal(t, []Hive{user}, Select(hives, "ntuser.dat"))
	assert.Equal(t, hives, Select(hives, "SAM"), "no named match falls back to all hives")
	assert.Empty(t, Select(nil, "HKEY_LOCAL_MACHINE"))
}

type fakeSource struct {
	files []casedb.File
	err   error
}

func (f fakeSource) RegistryHiveFiles(context.Context) ([]casedb.File, error) {
	return f.files, f.err
}

func TestExporterCopiesAllocatedHives(t *testing.T) {
	src := t.TempDir()
	content := filepath.Join(src, "ntuser")
	require.NoError(t, os.WriteFile(content, []byte("regf"), 0o644))

	files := []casedb.File{
		{ID: 1, Name: "NTUSER.DAT", Allocated: true, LocalPath: content},
		{ID: 2, Name: "SAM", Allocated: false, LocalPath: content},
		{ID: 3, Name: "SYSTEM", Allocated: true},
		{ID: 4, Name: "SOFTWARE", Allocated: true, LocalPath: filepath.Join(src, "missing")},
	}
	scratch := t.TempDir()
	e := NewExporter(fakeSource{files: files}, scratch, nil)

	hives, err := e.Export(context.Background())
	require.NoError(t, err)
	require.Len(t, hives, 1)
	assert.Equal(t, filepath.Join(scratch, "STIX", "NTUSER.DAT_0"), hives[0].Path)
	assert.Equal(t, int64(1), hives[0].File.ID)

	got, err := os.ReadFile(hives[0].Path)
	require.NoError(t, err)
	assert.Equal(t, "regf", string(got))
}

func TestExporterSourceError(t *testing.T) {
	e := NewExporter(fakeSource{err: errors.New("db down")}, t.TempDir(), nil)
	_, err := e.Export(context.Background())
	assert.ErrorContains(t, err, "db down")
}

// overlapSource records the peak number of concurrent listings.
type overlapSource struct {
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (o *overlapSource) RegistryHiveFiles(context.Context) ([]casedb.File, error) {
	n := o.inFlight.Add(1)
	defer o.inFlight.Add(-1)
	for {
		p := o.peak.Load()
		if n <= p || o.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(20 * time.Millisecond)
	return nil, nil
}

func TestExportersShareScratchLock(t *testing.T) {
	scratch := t.TempDir()
	src := &overlapSource{}

	var wg sync.WaitGroup
	for _, dir := range []string{scratch, scratch + string(filepath.Separator), filepath.Join(scratch, ".")} {
		e := NewExporter(src, dir, nil)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.Export(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), src.peak.Load(), "exports into one scratch dir must not overlap")
	assert.Same(t, scratchLock(scratch), scratchLock(filepath.Join(scratch, ".")))
	assert.NotSame(t, scratchLock(scratch), scratchLock(t.TempDir()))
}

func TestOpenFileRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad")
	require.NoError(t, os.WriteFile(path, []byte("not a hive"), 0o644))
	_, _, err := OpenFile(path)
	assert.Error(t, err)

	_, _, err = OpenFile(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestOpenFileWalksRealHive(t *testing.T) {
	root, closer, err := OpenFile(filepath.Join("testdata", "SOFTWARE"))
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, "ROOT", root.Name())
	_, ok := root.Subkey("Classes")
	assert.True(t, ok)
	_, ok = root.Subkey("Policies")
	assert.False(t, ok)

	key, ok := Lookup(root, `SOFTWARE\microsoft\WINDOWS`, "HKEY_LOCAL_MACHINE")
	require.True(t, ok)
	assert.Equal(t, "Windows", key.Name())

	want := []Value{
		{Name: "ProductName", Type: RegSZ, Text: "Windows 10 Pro"},
		{Name: "InstallDate", Type: RegDWORD, Number: 1600000000},
		{Name: "Stamp", Type: RegQWORD, Number: 1 << 63},
	}
	assert.Equal(t, want, key.Values())
	assert.Empty(t, root.Values())
}

func TestMemOpener(t *testing.T) {
	open := MemOpener(map[string]Key{"a": softwareTree()})
	root, closer, err := open("a")
	require.NoError(t, err)
	assert.NoError(t, closer.Close())
	assert.Equal(t, "ROOT", root.Name())

	_, _, err = open("b")
	assert.Error(t, err)
}

func TestValueTypes(t *testing.T) {
	assert.Equal(t, "REG_SZ", RegSZ.String())
	assert.Equal(t, "REG_TYPE_99", ValueType(99).String())
	assert.True(t, RegExpandSZ.IsString())
	assert.True(t, RegQWORD.IsInteger())
	assert.False(t, RegBinary.IsInteger())
	assert.False(t, RegMultiSZ.IsString())
}
