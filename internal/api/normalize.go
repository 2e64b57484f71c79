package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"storefront/internal/models"
)

// productListKeys are the envelopes the catalog endpoint has been seen to use. A bare
// array is accepted too.
var productListKeys = []string{"cloths", "products", "data"}

// normalizeProducts converts every known listing shape into a bare slice. An object
// without any known field yields an empty slice, never nil.
func normalizeProducts(raw []byte) ([]models.Product, error) {
	return unwrapList[models.Product](raw, productListKeys...)
}

// unwrapList decodes a bare JSON array, or the first present field among keys of an
// object. A missing field yields an empty slice.
func unwrapList[T any](raw []byte, keys ...string) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	out := []T{}
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return out, nil
	}

	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, fmt.Errorf("decoding list: %w", err)
		}
	case '{':
		field, ok, err := envelopeField(trimmed, keys)
		if err != nil || !ok {
			return out, err
		}
		if err := json.Unmarshal(field, &out); err != nil {
			return nil, fmt.Errorf("decoding list: %w", err)
		}
	default:
		return nil, fmt.Errorf("decoding list: unexpected body %.32q", trimmed)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// unwrapOne decodes the first present field among keys of an object, or the whole
// body when none is present.
func unwrapOne[T any](raw []byte, keys ...string) (*T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	body := trimmed
	if trimmed[0] == '{' {
		field, ok, err := envelopeField(trimmed, keys)
		if err != nil {
			return nil, err
		}
		if ok {
			body = field
		}
	}

	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &out, nil
}

func envelopeField(object []byte, keys []string) (json.RawMessage, bool, error) {
	if len(keys) == 0 {
		return nil, false, nil
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(object, &envelope); err != nil {
		return nil, false, fmt.Errorf("decoding envelope: %w", err)
	}
	for _, key := range keys {
		field, ok := envelope[key]
		if ok && !bytes.Equal(bytes.TrimSpace(field), []byte("null")) {
			return field, true, nil
		}
	}
	return nil, false, nil
}
