package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pair"
	"go.uber.org/zap"

	"github.com/Faultbox/netviz/internal/layout/protocol"
	"github.com/Faultbox/netviz/internal/logger"
	"github.com/Faultbox/netviz/internal/metrics"

	// Register all transports
	_ "go.nanomsg.org/mangos/v3/transport/all"
)

// DefaultSendTimeout bounds a Send when the peer is not draining.
const DefaultSendTimeout = 2 * time.Second

// Options configures a socket transport.
type Options struct {
	Buffer      int
	SendTimeout time.Duration
	Metrics     *metrics.Registry
}

// Socket is a Transport over a mangos PAIR socket.
type Socket struct {
	sock mangos.Socket
	addr string
	in   chan protocol.Message
	done chan struct{}
	once sync.Once
	opts Options
	log  *zap.Logger
}

// Listen binds a PAIR socket to addr (e.g. tcp://127.0.0.1:7655 or
// ipc:///tmp/netviz.sock) and waits for one peer.
func Listen(addr string, opts Options) (*Socket, error) {
	s, err := newSocket(addr, opts)
	if err != nil {
		return nil, err
	}
	if err := s.sock.Listen(addr); err != nil {
		s.sock.Close()
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}
	s.log.Info("layout socket listening", zap.String("addr", addr))
	go s.recvLoop()
	return s, nil
}

// Dial connects a PAIR socket to a listening peer. Reconnection after the
// peer restarts is handled by mangos.
func Dial(addr string, opts Options) (*Socket, error) {
	s, err := newSocket(addr, opts)
	if err != nil {
		return nil, err
	}
	if err := s.sock.DialOptions(addr, map[string]any{mangos.OptionDialAsynch: true}); err != nil {
		s.sock.Close()
		return nil, fmt.Errorf("dialing %s: %w", addr, err)
	}
	s.log.Info("layout socket dialed", zap.String("addr", addr))
	go s.recvLoop()
	return s, nil
}

func newSocket(addr string, opts Options) (*Socket, error) {
	if opts.Buffer <= 0 {
		opts.Buffer = DefaultBuffer
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = DefaultSendTimeout
	}
	sock, err := pair.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("creating pair socket: %w", err)
	}
	if err := sock.SetOption(mangos.OptionSendDeadline, opts.SendTimeout); err != nil {
		sock.Close()
		return nil, fmt.Errorf("setting send deadline: %w", err)
	}
	return &Socket{
		sock: sock,
		addr: addr,
		in:   make(chan protocol.Message, opts.Buffer),
		done: make(chan struct{}),
		opts: opts,
		log:  logger.Named("transport"),
	}, nil
}

// Send encodes and sends a message.
func (s *Socket) Send(ctx context.Context, m protocol.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	frame, err := protocol.Marshal(m)
	if err != nil {
		return err
	}
	if err := s.sock.Send(frame); err != nil {
		if errors.Is(err, mangos.ErrClosed) {
			return ErrClosed
		}
		return fmt.Errorf("sending %s to %s: %w", m.Type, s.addr, err)
	}
	return nil
}

// Inbound returns decoded messages from the peer.
func (s *Socket) Inbound() <-chan protocol.Message {
	return s.in
}

// Close closes the socket; Inbound is closed once the receive loop exits.
func (s *Socket) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.sock.Close()
	})
	return err
}

func (s *Socket) recvLoop() {
	defer close(s.in)
	for {
		frame, err := s.sock.Recv()
		if err != nil {
			if errors.Is(err, mangos.ErrClosed) {
				return
			}
			s.log.Warn("receive failed", zap.Error(err))
			continue
		}

		m, err := protocol.Unmarshal(frame)
		if err != nil {
			s.log.Warn("dropping undecodable frame", zap.Int("bytes", len(frame)), zap.Error(err))
			s.opts.Metrics.RecordMalformed("decode")
			continue
		}

		select {
		case s.in <- m:
		case <-s.done:
			return
		}
	}
}
