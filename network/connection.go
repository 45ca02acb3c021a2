package network

import (
	"context"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrPeerClosed reports an orderly close by the peer (zero-byte read)
var ErrPeerClosed = errors.New("peer closed the connection")

// Setup stages reported by SetupError
const (
	StageAddress = "address"
	StageResolve = "resolve"
	StageConnect = "connect"
)

// SetupError is returned by Dial when the session could not be established
type SetupError struct {
	Stage string
	Addr  string
	Err   error
}

func (e *SetupError) Error() string {
	return e.Stage + " " + e.Addr + ": " + e.Err.Error()
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// Refused reports whether nothing was listening on the endpoint
func (e *SetupError) Refused() bool {
	return errors.Is(e.Err, syscall.ECONNREFUSED)
}

// ConnState represents connection lifecycle state
type ConnState uint8

const (
	StateDisconnected ConnState = iota
	StateConnected
	StateClosed
)

// Conn is the single session with the command peer
type Conn struct {
	Addr  string
	State atomic.Uint32 // ConnState

	conn net.Conn
	buf  []byte
	log  *logrus.Entry

	closeOnce sync.Once
	closeErr  error
}

// Dial resolves and connects to cfg's endpoint. No retry is attempted.
func Dial(ctx context.Context, cfg *Config, log *logrus.Entry) (*Conn, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	addr := cfg.Address()
	if err := cfg.Validate(); err != nil {
		return nil, &SetupError{Stage: StageAddress, Addr: addr, Err: err}
	}

	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, &SetupError{Stage: StageResolve, Addr: addr, Err: err}
	}

	log.WithField("addr", tcpAddr.String()).Debug("dialing")

	conn, err := dial(ctx, tcpAddr.String(), cfg)
	if err != nil {
		return nil, &SetupError{Stage: StageConnect, Addr: addr, Err: err}
	}

	c := newConn(conn, cfg.ReadBufferSize, log)
	log.WithField("local", conn.LocalAddr().String()).Info("connected")
	return c, nil
}

// newConn wraps an established connection
func newConn(conn net.Conn, bufSize int, log *logrus.Entry) *Conn {
	c := &Conn{
		Addr: conn.RemoteAddr().String(),
		conn: conn,
		buf:  make([]byte, bufSize),
		log:  log.WithField("peer", conn.RemoteAddr().String()),
	}
	c.State.Store(uint32(StateConnected))
	return c
}

// Send writes one command token in a single write
func (c *Conn) Send(token string) error {
	payload, err := EncodeToken(token)
	if err != nil {
		return errors.Wrap(err, "send")
	}

	n, err := c.conn.Write(payload)
	if err != nil {
		return errors.Wrapf(err, "send %s", token)
	}
	if n != len(payload) {
		return errors.Wrapf(io.ErrShortWrite, "send %s: wrote %d of %d bytes", token, n, len(payload))
	}

	c.log.WithField("token", token).Debug("sent")
	return nil
}

// Receive performs exactly one read for the reply to the last sent token.
// The returned slice is only valid until the next Receive.
func (c *Conn) Receive() ([]byte, error) {
	n, err := c.conn.Read(c.buf[:len(c.buf)-1])
	if n > 0 {
		c.log.WithField("bytes", n).Debug("received")
		return c.buf[:n], nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return nil, ErrPeerClosed
	}
	return nil, errors.Wrap(err, "receive")
}

// Close closes the socket; later calls return the first result
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.State.Store(uint32(StateClosed))
		c.closeErr = c.conn.Close()
		c.log.Debug("connection closed")
	})
	return c.closeErr
}

// dial establishes the TCP connection, honouring ctx and the optional timeout
func dial(ctx context.Context, addr string, cfg *Config) (net.Conn, error) {
	dialer := &net.Dialer{
		Timeout: cfg.ConnectTimeout,
	}
	return dialer.DialContext(ctx, "tcp", addr)
}
