package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON stores any JSON-encodable value in a jsonb (Postgres) or text (SQLite) column.
type JSON[T any] struct {
	Data T
}

// NewJSON wraps value for persistence.
func NewJSON[T any](value T) JSON[T] {
	return JSON[T]{Data: value}
}

func (j *JSON[T]) Scan(src any) error {
	var zero T
	if src == nil {
		j.Data = zero
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("JSON: unsupported Scan type %T", src)
	}
	if len(raw) == 0 {
		j.Data = zero
		return nil
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("JSON: decode: %w", err)
	}
	j.Data = out
	return nil
}

func (j JSON[T]) Value() (driver.Value, error) {
	raw, err := json.Marshal(j.Data)
	if err != nil {
		return nil, fmt.Errorf("JSON: encode: %w", err)
	}
	return string(raw), nil
}
