package hive

import (
	"fmt"
	"io"
	"strings"
)

// #region mem-key
// MemKey is an in-memory key tree, used for fixtures and tests.
type MemKey struct {
	KeyName  string
	Children []*MemKey
	Vals     []Value
}

// NewMemKey builds a key with the given children.
func NewMemKey(name string, children ...*MemKey) *MemKey {
	return &MemKey{KeyName: name, Children: children}
}

// WithValues appends values to k and returns it.
func (k *MemKey) WithValues(vals ...Value) *MemKey {
	k.Vals = append(k.Vals, vals...)
	return k
}

func (k *MemKey) Name() string { return k.KeyName }

func (k *MemKey) Subkey(name string) (Key, bool) {
	for _, c := range k.Children {
		if strings.EqualFold(c.KeyName, name) {
			return c, true
		}
	}
	return nil, false
}

func (k *MemKey) Values() []Value { return k.Vals }
// #endregion mem-key

// #region mem-opener
// MemOpener serves roots from a map keyed by hive path.
func MemOpener(roots map[string]Key) Opener {
	return func(path string) (Key, io.Closer, error) {
		root, ok := roots[path]
		if !ok {
			return nil, nil, fmt.Errorf("open hive %s: not found", path)
		}
		return root, nopCloser{}, nil
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
// #endregion mem-opener
