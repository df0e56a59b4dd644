package network

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// ReadJSON decodes the construction input:
//
//	{"nodes": {"<id>": {record}, ...}, "edges": [{"source": id, "target": id}, ...]}
//
// Node keys are read in document order, which fixes the node indices. The
// nodes member may also be an array of records carrying an "id" property.
func ReadJSON(r io.Reader) ([]NodeRecord, []EdgeRecord, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := expectDelim(dec, '{'); err != nil {
		return nil, nil, err
	}

	var nodes []NodeRecord
	var edges []EdgeRecord
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("reading key: %w", err)
		}
		key, _ := tok.(string)
		switch key {
		case "nodes":
			if nodes, err = readNodes(dec); err != nil {
				return nil, nil, fmt.Errorf("nodes: %w", err)
			}
		case "edges":
			if err := dec.Decode(&edges); err != nil {
				return nil, nil, fmt.Errorf("edges: %w", err)
			}
		default:
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, nil, fmt.Errorf("%s: %w", key, err)
			}
		}
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, nil, err
	}
	return nodes, edges, nil
}

// DecodeJSON reads the construction input and builds the model.
func DecodeJSON(r io.Reader, opts Options) (*Model, error) {
	nodes, edges, err := ReadJSON(r)
	if err != nil {
		return nil, fmt.Errorf("decoding network: %w", err)
	}
	return New(nodes, edges, opts)
}

// LoadFile builds a model from a JSON file.
func LoadFile(path string, opts Options) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening network: %w", err)
	}
	defer f.Close()
	return DecodeJSON(f, opts)
}

func readNodes(dec *json.Decoder) ([]NodeRecord, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return nil, fmt.Errorf("expected object or array, got %v", tok)
	}

	var nodes []NodeRecord
	switch delim {
	case '{':
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, _ := keyTok.(string)
			var rec Record
			if err := dec.Decode(&rec); err != nil {
				return nil, fmt.Errorf("node %q: %w", key, err)
			}
			nodes = append(nodes, NodeRecord{ID: ID(key), Record: rec})
		}
		if err := expectDelim(dec, '}'); err != nil {
			return nil, err
		}
	case '[':
		for i := 0; dec.More(); i++ {
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return nil, fmt.Errorf("node %d: %w", i, err)
			}
			var head struct {
				ID *ID `json:"id"`
			}
			if err := json.Unmarshal(raw, &head); err != nil {
				return nil, fmt.Errorf("node %d: %w", i, err)
			}
			if head.ID == nil {
				return nil, fmt.Errorf("node %d: %w", i, errMissingID)
			}
			var rec Record
			if err := json.Unmarshal(raw, &rec); err != nil {
				return nil, fmt.Errorf("node %q: %w", *head.ID, err)
			}
			delete(rec.Attributes, "id")
			nodes = append(nodes, NodeRecord{ID: *head.ID, Record: rec})
		}
		if err := expectDelim(dec, ']'); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unexpected %v", delim)
	}
	return nodes, nil
}

var errMissingID = errors.New("missing id")

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("expected %v: %w", want, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %v, got %v", want, tok)
	}
	return nil
}
