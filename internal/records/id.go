package records

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidID is returned by ParseID for identifiers that cannot be placed
// in a backend path.
var ErrInvalidID = errors.New("records: invalid id")

// ID identifies a persisted record. The backend may hand it out as a JSON
// number or as a string; an empty ID marks a record that was never saved.
type ID string

// IsZero reports whether the record is new.
func (id ID) IsZero() bool {
	return id == ""
}

// ParseID validates an identifier taken from a url segment. Only letters,
// digits, '-' and '_' are accepted.
func ParseID(raw string) (ID, error) {
	if raw == "" || len(raw) > 64 {
		return "", ErrInvalidID
	}
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '-', r == '_':
		default:
			return "", ErrInvalidID
		}
	}
	return ID(raw), nil
}

func (id ID) String() string {
	return string(id)
}

// MarshalJSON emits canonical unsigned integers as JSON numbers and every
// other identifier, such as "007", as a string.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return []byte("null"), nil
	}
	if id.isCanonicalNumber() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) isCanonicalNumber() bool {
	s := string(id)
	if len(s) > 1 && s[0] == '0' {
		return false
	}
	_, err := strconv.ParseUint(s, 10, 64)
	return err == nil
}

// UnmarshalJSON accepts numbers, strings and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("records: invalid id %s", data)
	}
	*id = ID(n.String())
	return nil
}
