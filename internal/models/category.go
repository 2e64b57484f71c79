package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Category decodes from a bare name or from a {name} object.
type Category struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

func (c *Category) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var name string
		if err := json.Unmarshal(trimmed, &name); err != nil {
			return err
		}
		*c = Category{Name: strings.TrimSpace(name)}
		return nil
	}
	type plain Category
	var out plain
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return err
	}
	*c = Category(out)
	return nil
}
