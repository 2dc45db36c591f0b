package drug

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no drug matches the requested code.
	ErrNotFound = errors.New("drug not found")
	// ErrInvalidQuery is returned for malformed pagination input in strict mode.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrFixture is returned when the seed fixture cannot be read or decoded.
	ErrFixture = errors.New("invalid fixture")
)

// Known JSON keys. Everything else lands in Drug.Attributes.
const (
	fieldID         = "id"
	fieldCode       = "code"
	fieldCompany    = "company"
	fieldLaunchDate = "launchDate"

	// fieldSourceID keeps a fixture id that is not a UUID, such as a numeric or ObjectId key.
	fieldSourceID = "sourceId"
)

// Drug is a pharmaceutical record. Code is the lookup key but is not unique.
type Drug struct {
	ID         string
	Code       string
	Company    string
	LaunchDate time.Time
	// Attributes holds the descriptive fields stored opaquely next to the known ones.
	Attributes map[string]json.RawMessage
}

// Query defines the filter and window for listing drugs. Limit 0 means no limit.
type Query struct {
	Company string
	Limit   int
	Offset  int
}

// Page is the paginated list response.
type Page struct {
	Data []Drug   `json:"data"`
	Meta PageMeta `json:"meta"`
}

// PageMeta describes the window returned in a Page.
type PageMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// MarshalJSON writes the known fields and the attributes as one flat object.
// encoding/json sorts map keys, so the output is stable for equal records.
func (d Drug) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(d.Attributes)+4)
	for k, v := range d.Attributes {
		out[k] = v
	}

	put := func(key string, v any) error {
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		out[key] = b
		return nil
	}
	if d.ID != "" {
		if err := put(fieldID, d.ID); err != nil {
			return nil, err
		}
	}
	if err := put(fieldCode, d.Code); err != nil {
		return nil, err
	}
	if err := put(fieldCompany, d.Company); err != nil {
		return nil, err
	}
	if err := put(fieldLaunchDate, d.LaunchDate.UTC().Format(time.RFC3339Nano)); err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts a flat object and splits it into known fields and attributes.
func (d *Drug) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return errors.New("drug must be a JSON object")
	}

	var out Drug
	out.ID = splitSourceID(raw)
	if err := decodeString(raw, fieldCode, &out.Code); err != nil {
		return err
	}
	if err := decodeString(raw, fieldCompany, &out.Company); err != nil {
		return err
	}

	var launch string
	if err := decodeString(raw, fieldLaunchDate, &launch); err != nil {
		return err
	}
	if launch != "" {
		t, err := ParseLaunchDate(launch)
		if err != nil {
			return err
		}
		out.LaunchDate = t
	}

	for _, k := range []string{fieldID, fieldCode, fieldCompany, fieldLaunchDate} {
		delete(raw, k)
	}
	if len(raw) > 0 {
		out.Attributes = make(map[string]json.RawMessage, len(raw))
		for k, v := range raw {
			var buf bytes.Buffer
			if err := json.Compact(&buf, v); err != nil {
				return fmt.Errorf("attribute %q: %w", k, err)
			}
			out.Attributes[k] = buf.Bytes()
		}
	}

	*d = out
	return nil
}

// splitSourceID returns the id in canonical form when it is a UUID string. Any other non-null id
// moves to the sourceId attribute unless the record already carries one.
func splitSourceID(raw map[string]json.RawMessage) string {
	v, ok := raw[fieldID]
	if !ok || string(v) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		if id, err := uuid.Parse(s); err == nil {
			return id.String()
		}
	}
	if _, taken := raw[fieldSourceID]; !taken {
		raw[fieldSourceID] = v
	}
	return ""
}

func decodeString(raw map[string]json.RawMessage, key string, dst *string) error {
	v, ok := raw[key]
	if !ok || string(v) == "null" {
		return nil
	}
	if err := json.Unmarshal(v, dst); err != nil {
		return fmt.Errorf("field %q must be a string: %w", key, err)
	}
	return nil
}

var launchDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseLaunchDate parses the timestamp formats found in fixtures and returns it in UTC.
func ParseLaunchDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range launchDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("launchDate %q is not a valid timestamp", s)
}

// AttributesJSON encodes the attributes as a JSON object, "{}" when empty.
func (d Drug) AttributesJSON() ([]byte, error) {
	if len(d.Attributes) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(d.Attributes)
}

// SetAttributesJSON decodes a stored JSON object into Attributes.
func (d *Drug) SetAttributesJSON(b []byte) error {
	if len(b) == 0 {
		d.Attributes = nil
		return nil
	}
	var attrs map[string]json.RawMessage
	if err := json.Unmarshal(b, &attrs); err != nil {
		return fmt.Errorf("decode attributes: %w", err)
	}
	for _, k := range []string{fieldID, fieldCode, fieldCompany, fieldLaunchDate} {
		delete(attrs, k)
	}
	if len(attrs) == 0 {
		attrs = nil
	}
	d.Attributes = attrs
	return nil
}
