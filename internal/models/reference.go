package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedReference is returned when a reference field is neither a
// bare id string, an object carrying an id key, nor null.
var ErrMalformedReference = errors.New("malformed reference")

// Reference is a normalized pointer to another entity. The backend is
// inconsistent about embedded entities: the same field may arrive as a
// bare id string or as an expanded object, depending on the endpoint.
// Equality is by ID; DisplayName is best-effort and may be empty.
type Reference struct {
	ID          string
	DisplayName string
}

// decodeReference absorbs both wire shapes into one Reference.
// displayKey selects the object key holding the label ("name" or "title").
// JSON null yields a zero Reference and no error.
func decodeReference(data []byte, displayKey string) (Reference, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return Reference{}, nil
	}

	switch data[0] {
	case '"':
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return Reference{}, fmt.Errorf("%w: %v", ErrMalformedReference, err)
		}
		return Reference{ID: id}, nil
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			return Reference{}, fmt.Errorf("%w: %v", ErrMalformedReference, err)
		}

		raw, ok := fields["_id"]
		if !ok {
			raw, ok = fields["id"]
		}
		if !ok {
			return Reference{}, fmt.Errorf("%w: object without id key", ErrMalformedReference)
		}

		var ref Reference
		if err := json.Unmarshal(raw, &ref.ID); err != nil {
			return Reference{}, fmt.Errorf("%w: non-string id", ErrMalformedReference)
		}
		if raw, ok := fields[displayKey]; ok {
			// Label is optional; a null or non-string label is ignored.
			_ = json.Unmarshal(raw, &ref.DisplayName)
		}
		return ref, nil
	}

	return Reference{}, fmt.Errorf("%w: unexpected token %q", ErrMalformedReference, data[0])
}

// NamedReference is a Reference whose expanded wire form labels the
// entity with a "name" key (customers and providers).
type NamedReference struct {
	Reference
}

func (r *NamedReference) UnmarshalJSON(data []byte) error {
	ref, err := decodeReference(data, "name")
	if err != nil {
		return err
	}
	r.Reference = ref
	return nil
}

// MarshalJSON always writes the bare id string, which is what the
// backend expects on create and update requests.
func (r NamedReference) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ID)
}

// TitledReference is a Reference whose expanded wire form labels the
// entity with a "title" key (services).
type TitledReference struct {
	Reference
}

func (r *TitledReference) UnmarshalJSON(data []byte) error {
	ref, err := decodeReference(data, "title")
	if err != nil {
		return err
	}
	r.Reference = ref
	return nil
}

func (r TitledReference) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ID)
}

// Label returns the display name or a placeholder when the backend only
// sent the bare id.
func (r Reference) Label(placeholder string) string {
	if r.DisplayName != "" {
		return r.DisplayName
	}
	return placeholder
}
