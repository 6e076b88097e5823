package hive

import (
	"fmt"
	"io"
	"os"
	"strings"

	"www.velocidex.com/golang/regparser"
)

// #region open-file
// OpenFile parses the hive at path with regparser. Parser panics on corrupt
// hives are returned as errors.
func OpenFile(path string) (root Key, closer io.Closer, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open hive: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			f.Close()
			root, closer, err = nil, nil, fmt.Errorf("parse hive %s: %v", path, r)
		}
	}()

	magic := make([]byte, 4)
	if _, err := f.ReadAt(magic, 0); err != nil || string(magic) != "regf" {
		f.Close()
		return nil, nil, fmt.Errorf("parse hive %s: missing regf signature", path)
	}

	reg, err := regparser.NewRegistry(f)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("parse hive %s: %w", path, err)
	}
	node := reg.OpenKey("")
	if node == nil {
		f.Close()
		return nil, nil, fmt.Errorf("parse hive %s: no root key", path)
	}
	return &regKey{node: node}, f, nil
}
// #endregion open-file

// #region reg-key
type regKey struct {
	node *regparser.CM_KEY_NODE
}

func (k *regKey) Name() string { return k.node.Name() }

func (k *regKey) Subkey(name string) (Key, bool) {
	for _, sk := range k.node.Subkeys() {
		if strings.EqualFold(sk.Name(), name) {
			return &regKey{node: sk}, true
		}
	}
	return nil, false
}

func (k *regKey) Values() []Value {
	var out []Value
	for _, v := range k.node.Values() {
		data := v.ValueData()
		if data == nil || data.Error != nil {
			continue
		}
		out = append(out, Value{
			Name:   v.ValueName(),
			Type:   ValueType(data.Type),
			Text:   strings.TrimRight(data.String, "\x00"),
			Number: data.Uint64,
		})
	}
	return out
}
// #endregion reg-key
