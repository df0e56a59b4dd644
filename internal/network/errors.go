package network

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownNodeReference is returned when an edge names a missing node.
	ErrUnknownNodeReference = errors.New("unknown node reference")

	// ErrUnknownNode is returned by single-node setters for a missing id.
	ErrUnknownNode = errors.New("unknown node")
)

// ConstructionError identifies the edge that failed model construction.
type ConstructionError struct {
	Edge     int
	Endpoint string
	ID       ID
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("edge %d: %s %q: %v", e.Edge, e.Endpoint, e.ID, ErrUnknownNodeReference)
}

func (e *ConstructionError) Unwrap() error {
	return ErrUnknownNodeReference
}

func unknownNode(id ID) error {
	return fmt.Errorf("node %q: %w", id, ErrUnknownNode)
}
