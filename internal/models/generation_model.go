package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Labels stored on records produced by edit mode.
const (
	EditModeTopic = "Morph Synthesis"
	EditModeStyle = "Neural Morph"
)

// JSONMap is a JSONB column value.
type JSONMap map[string]interface{}

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*m = JSONMap{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("models.JSONMap: cannot scan %T", src)
	}
	out := JSONMap{}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("models.JSONMap: %w", err)
	}
	*m = out
	return nil
}

// Generation is an immutable record of one successful image generation.
type Generation struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Topic     string    `json:"topic" db:"topic"`
	ImageURL  string    `json:"image_url" db:"image_url"`
	Config    JSONMap   `json:"config" db:"config"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
