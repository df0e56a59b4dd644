// Package protocol defines the messages exchanged between the layout
// coordinator and its worker, and their byte encoding.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/golang/snappy"

	"github.com/Faultbox/netviz/internal/network"
)

// Type distinguishes messages.
type Type string

const (
	TypeInit       Type = "init"
	TypeStop       Type = "stop"
	TypeRestart    Type = "restart"
	TypeLayoutStep Type = "layoutStep"
)

var (
	// ErrInvalidMessage is returned when a frame does not decode to a known message.
	ErrInvalidMessage = errors.New("invalid layout message")
	// ErrNonFinite is returned for coordinates that are NaN or infinite. It
	// matches ErrInvalidMessage.
	ErrNonFinite = fmt.Errorf("%w: non-finite coordinate", ErrInvalidMessage)
)

// Snapshot is a copy of the network topology and positions.
type Snapshot struct {
	Nodes     int       `json:"nodes"`
	Positions []float32 `json:"positions"`
	Edges     []uint32  `json:"edges"`
}

// Message is one coordinator/worker message. Network and Use2D are set on
// init, Positions on layoutStep.
type Message struct {
	Type      Type      `json:"type"`
	Network   *Snapshot `json:"network,omitempty"`
	Use2D     bool      `json:"use2D,omitempty"`
	Positions []float32 `json:"positions,omitempty"`
}

// Init builds the init message.
func Init(snap *Snapshot, use2D bool) Message {
	return Message{Type: TypeInit, Network: snap, Use2D: use2D}
}

// Stop builds the stop message.
func Stop() Message { return Message{Type: TypeStop} }

// Restart builds the restart message.
func Restart() Message { return Message{Type: TypeRestart} }

// LayoutStep builds a layoutStep message carrying a copy of positions.
func LayoutStep(positions []float32) Message {
	return Message{Type: TypeLayoutStep, Positions: append([]float32(nil), positions...)}
}

// SnapshotOf copies the topology and current positions of a model.
func SnapshotOf(m *network.Model) *Snapshot {
	return &Snapshot{
		Nodes:     m.Len(),
		Positions: append([]float32(nil), m.Positions...),
		Edges:     append([]uint32(nil), m.IndexedEdges...),
	}
}

// Validate checks the shape of a message.
func (m Message) Validate() error {
	switch m.Type {
	case TypeInit:
		if m.Network == nil {
			return fmt.Errorf("%w: init without network", ErrInvalidMessage)
		}
		if len(m.Network.Positions) != m.Network.Nodes*3 {
			return fmt.Errorf("%w: init with %d coordinates for %d nodes",
				ErrInvalidMessage, len(m.Network.Positions), m.Network.Nodes)
		}
		if len(m.Network.Edges)%2 != 0 {
			return fmt.Errorf("%w: odd edge index count", ErrInvalidMessage)
		}
		for _, e := range m.Network.Edges {
			if int(e) >= m.Network.Nodes {
				return fmt.Errorf("%w: edge index %d out of range", ErrInvalidMessage, e)
			}
		}
		if i := NonFinite(m.Network.Positions); i >= 0 {
			return fmt.Errorf("%w at %d", ErrNonFinite, i)
		}
	case TypeLayoutStep:
		if i := NonFinite(m.Positions); i >= 0 {
			return fmt.Errorf("%w at %d", ErrNonFinite, i)
		}
	case TypeStop, TypeRestart:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidMessage, m.Type)
	}
	return nil
}

// NonFinite returns the index of the first NaN or infinite value in
// positions, or -1.
func NonFinite(positions []float32) int {
	for i, v := range positions {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return i
		}
	}
	return -1
}

// Marshal encodes a message as snappy-compressed JSON.
func Marshal(m Message) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding %s message: %w", m.Type, err)
	}
	return snappy.Encode(nil, data), nil
}

// Unmarshal decodes and validates a frame produced by Marshal.
func Unmarshal(frame []byte) (Message, error) {
	var m Message
	data, err := snappy.Decode(nil, frame)
	if err != nil {
		return m, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if err := m.Validate(); err != nil {
		return m, err
	}
	return m, nil
}
