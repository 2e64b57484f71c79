package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ProductRef is either a bare product id or an embedded product document.
type ProductRef struct {
	ID      string
	Product *Product
}

func (r *ProductRef) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*r = ProductRef{}
		return nil
	}
	if trimmed[0] == '"' {
		var id string
		if err := json.Unmarshal(trimmed, &id); err != nil {
			return err
		}
		*r = ProductRef{ID: id}
		return nil
	}
	if trimmed[0] != '{' {
		return fmt.Errorf("cannot decode %s into ProductRef", string(trimmed))
	}
	var p Product
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return err
	}
	*r = ProductRef{ID: p.ID, Product: &p}
	return nil
}

// MarshalJSON writes the id only; requests reference products by id.
func (r ProductRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ID)
}

// Title returns the embedded product title when present.
func (r ProductRef) Title() string {
	if r.Product == nil {
		return ""
	}
	return r.Product.Title
}

// Ref is a loosely typed reference to a user or other document: an id string or an
// object carrying id plus a display name.
type Ref struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

func (r *Ref) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*r = Ref{}
		return nil
	}
	if trimmed[0] == '"' {
		var id string
		if err := json.Unmarshal(trimmed, &id); err != nil {
			return err
		}
		*r = Ref{ID: id}
		return nil
	}
	type plain Ref
	var out plain
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return err
	}
	*r = Ref(out)
	return nil
}
