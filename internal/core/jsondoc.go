// AngelaMos | 2026
// jsondoc.go

package core

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONDocument is an opaque JSON object stored in a TEXT or JSONB column.
// A nil document maps to SQL NULL and to JSON null.
type JSONDocument []byte

func NewJSONDocument(v any) (JSONDocument, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode json document: %w", err)
	}
	return JSONDocument(b), nil
}

func (d *JSONDocument) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = nil
	case []byte:
		*d = bytes.Clone(v)
	case string:
		*d = JSONDocument(v)
	default:
		return fmt.Errorf("scan json document: unsupported type %T", src)
	}
	return nil
}

func (d JSONDocument) Value() (driver.Value, error) {
	if len(d) == 0 {
		return nil, nil
	}
	return string(d), nil
}

func (d JSONDocument) MarshalJSON() ([]byte, error) {
	if len(d) == 0 {
		return []byte("null"), nil
	}
	return d, nil
}

func (d *JSONDocument) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*d = nil
		return nil
	}
	*d = bytes.Clone(b)
	return nil
}

func (d JSONDocument) IsNull() bool {
	return len(d) == 0
}
