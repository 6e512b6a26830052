package models

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/google/uuid"
)

func jsonbValue(v interface{}) (driver.Value, error) {
	return json.Marshal(v)
}

func jsonbScan(dst interface{}, value interface{}) error {
	if value == nil {
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, dst)
}

// JSONBStringArray is a custom type for handling string arrays in JSONB
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	return jsonbValue(a)
}

// Scan implements the sql.Scanner interface
func (a *JSONBStringArray) Scan(value interface{}) error {
	if value == nil {
		*a = JSONBStringArray{}
		return nil
	}
	return jsonbScan(a, value)
}

// UUIDSet is a JSONB-backed set of user or recipe identifiers. Membership
// mutations are idempotent.
type UUIDSet []uuid.UUID

// Value implements the driver.Valuer interface
func (s UUIDSet) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	return jsonbValue(s)
}

// Scan implements the sql.Scanner interface
func (s *UUIDSet) Scan(value interface{}) error {
	if value == nil {
		*s = UUIDSet{}
		return nil
	}
	return jsonbScan(s, value)
}

// Contains reports whether id is a member of the set.
func (s UUIDSet) Contains(id uuid.UUID) bool {
	for _, member := range s {
		if member == id {
			return true
		}
	}
	return false
}

// Add inserts id and returns the resulting set; adding an existing member is
// a no-op.
func (s UUIDSet) Add(id uuid.UUID) UUIDSet {
	if s.Contains(id) {
		return s
	}
	return append(s, id)
}

// Remove deletes id and returns the resulting set; removing an absent member
// is a no-op.
func (s UUIDSet) Remove(id uuid.UUID) UUIDSet {
	for i, member := range s {
		if member == id {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

// Toggle flips membership of id and reports the new membership state.
func (s *UUIDSet) Toggle(id uuid.UUID) bool {
	if s.Contains(id) {
		*s = s.Remove(id)
		return false
	}
	*s = s.Add(id)
	return true
}
