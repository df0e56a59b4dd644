package network

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID identifies a node. Numeric identifiers are formatted in decimal, so 7
// and "7" name the same node.
type ID string

// IntID formats a numeric identifier.
func IntID(v int) ID { return ID(strconv.Itoa(v)) }

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("node id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// NodeRecord is one node of the construction input.
type NodeRecord struct {
	ID     ID
	Record Record
}

// Record holds the optional attributes of a node. Unrecognized properties
// are kept in Attributes.
type Record struct {
	Position     *Vec3
	Color        *Vec3
	OutlineColor *Vec3
	Size         *float32
	OutlineWidth *float32
	Attributes   map[string]any
}

// EdgeRecord is one edge of the construction input.
type EdgeRecord struct {
	Source ID `json:"source"`
	Target ID `json:"target"`
}

// UnmarshalJSON decodes a record, splitting known keys from extra properties.
func (r *Record) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	known := []struct {
		key string
		vec **Vec3
		num **float32
	}{
		{key: "position", vec: &r.Position},
		{key: "color", vec: &r.Color},
		{key: "outlineColor", vec: &r.OutlineColor},
		{key: "size", num: &r.Size},
		{key: "outlineWidth", num: &r.OutlineWidth},
	}
	for _, k := range known {
		msg, ok := raw[k.key]
		if !ok {
			continue
		}
		delete(raw, k.key)
		if k.vec != nil {
			var v Vec3
			if err := json.Unmarshal(msg, &v); err != nil {
				return fmt.Errorf("%s: %w", k.key, err)
			}
			*k.vec = &v
		} else {
			var v float32
			if err := json.Unmarshal(msg, &v); err != nil {
				return fmt.Errorf("%s: %w", k.key, err)
			}
			*k.num = &v
		}
	}

	if len(raw) == 0 {
		return nil
	}
	r.Attributes = make(map[string]any, len(raw))
	for key, msg := range raw {
		var v any
		if err := json.Unmarshal(msg, &v); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		r.Attributes[key] = v
	}
	return nil
}
