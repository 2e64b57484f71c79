package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// StringList decodes from either a single JSON string or an array of strings, so
// legacy documents with one image or one size still load.
type StringList []string

// UnmarshalJSON accepts null, a string, or an array of strings.
func (s *StringList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		*s = nil
		return nil
	case trimmed[0] == '[':
		var values []string
		if err := json.Unmarshal(trimmed, &values); err != nil {
			return err
		}
		*s = values
		return nil
	case trimmed[0] == '"':
		var value string
		if err := json.Unmarshal(trimmed, &value); err != nil {
			return err
		}
		value = strings.TrimSpace(value)
		if value == "" {
			*s = StringList{}
			return nil
		}
		*s = StringList{value}
		return nil
	default:
		return fmt.Errorf("cannot decode %s into StringList", string(trimmed))
	}
}

// MarshalJSON always writes an array, never null.
func (s StringList) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}

// First returns the first element or "".
func (s StringList) First() string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}
