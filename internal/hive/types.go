package hive

import (
	"fmt"
	"io"

	"github.com/danielpatrickdp/stix-triage/internal/casedb"
)

// #region value-type
// ValueType is a registry value type code.
type ValueType uint32

const (
	RegNone           ValueType = 0
	RegSZ             ValueType = 1
	RegExpandSZ       ValueType = 2
	RegBinary         ValueType = 3
	RegDWORD          ValueType = 4
	RegDWORDBigEndian ValueType = 5
	RegLink           ValueType = 6
	RegMultiSZ        ValueType = 7
	RegQWORD          ValueType = 11
)

func (t ValueType) String() string {
	switch t {
	case RegNone:
		return "REG_NONE"
	case RegSZ:
		return "REG_SZ"
	case RegExpandSZ:
		return "REG_EXPAND_SZ"
	case RegBinary:
		return "REG_BINARY"
	case RegDWORD:
		return "REG_DWORD"
	case RegDWORDBigEndian:
		return "REG_DWORD_BIG_ENDIAN"
	case RegLink:
		return "REG_LINK"
	case RegMultiSZ:
		return "REG_MULTI_SZ"
	case RegQWORD:
		return "REG_QWORD"
	default:
		return fmt.Sprintf("REG_TYPE_%d", uint32(t))
	}
}

// IsString reports whether values of this type are compared as text.
func (t ValueType) IsString() bool { return t == RegSZ || t == RegExpandSZ }

// IsInteger reports whether values of this type are fixed-width integers.
func (t ValueType) IsInteger() bool {
	return t == RegDWORD || t == RegDWORDBigEndian || t == RegQWORD
}
// #endregion value-type

// #region key
// Value is one registry value. Text holds string data, Number integer data.
type Value struct {
	Name   string
	Type   ValueType
	Text   string
	Number uint64
}

// Key is a node in a hive's key tree.
type Key interface {
	Name() string
	// Subkey finds a direct child by name, case-insensitively.
	Subkey(name string) (Key, bool)
	Values() []Value
}

// Opener opens the hive at path and returns its root key.
type Opener func(path string) (Key, io.Closer, error)
// #endregion key

// #region hive
// Hive is an exported copy of a registry hive file.
type Hive struct {
	File casedb.File
	Path string // scratch copy
}
// #endregion hive
