// Package transport carries layout protocol messages between the
// coordinator and a worker, in process or over a mangos socket.
package transport

import (
	"context"
	"errors"

	"github.com/Faultbox/netviz/internal/layout/protocol"
)

// DefaultAddress is where cmd/netviz-layout listens when none is configured.
const DefaultAddress = "tcp://127.0.0.1:7655"

// DefaultBuffer is the inbound queue length used when none is given.
const DefaultBuffer = 8

// ErrClosed is returned by Send after Close.
var ErrClosed = errors.New("transport closed")

// Transport is one end of a message channel. Inbound is closed once the
// transport is closed or the peer goes away.
type Transport interface {
	Send(ctx context.Context, m protocol.Message) error
	Inbound() <-chan protocol.Message
	Close() error
}
