// Package jsonutil provides JSON helpers that keep document order, which
// encoding/json maps lose.
package jsonutil

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/bytedance/sonic/ast"
)

// ErrInvalidJSON is returned when the document is not well-formed JSON.
var ErrInvalidJSON = errors.New("invalid JSON")

// Field is one member of a JSON object, with its value left undecoded.
type Field struct {
	Key string
	Raw string
}

// Decode unmarshals the raw field value into v.
func (f Field) Decode(v any) error {
	return sonic.UnmarshalString(f.Raw, v)
}

// ObjectFields returns the members of the object found at key in data, in
// document order. A repeated member keeps the position of its first
// occurrence and the value of its last. A missing key yields no fields and
// no error; a value at key that is not an object also yields no fields.
func ObjectFields(data []byte, key string) ([]Field, error) {
	if !sonic.Valid(data) {
		return nil, ErrInvalidJSON
	}

	node, err := sonic.Get(data, key)
	if err != nil {
		if errors.Is(err, ast.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to locate %q: %w", key, err)
	}
	if node.TypeSafe() != ast.V_OBJECT {
		return nil, nil
	}

	var fields []Field
	index := make(map[string]int)
	var rawErr error
	err = node.ForEach(func(path ast.Sequence, value *ast.Node) bool {
		if path.Key == nil {
			return true
		}
		raw, err := value.Raw()
		if err != nil {
			rawErr = fmt.Errorf("failed to read %q.%q: %w", key, *path.Key, err)
			return false
		}
		if i, ok := index[*path.Key]; ok {
			fields[i].Raw = raw
			return true
		}
		index[*path.Key] = len(fields)
		fields = append(fields, Field{Key: *path.Key, Raw: raw})
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate %q: %w", key, err)
	}
	if rawErr != nil {
		return nil, rawErr
	}
	return fields, nil
}
