package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/espressif/openthread/pkg/log"
)

// DefaultConnectTimeout bounds dialing plus the TLS handshake when the
// caller's context carries no deadline.
const DefaultConnectTimeout = 30 * time.Second

// ErrConnectionClosed is returned by operations on a closed connection.
var ErrConnectionClosed = errors.New("connection closed")

// ClientConfig configures a TCAT commissioner client.
type ClientConfig struct {
	// TLSConfig contains TLS settings.
	TLSConfig *TLSConfig

	// ConnectTimeout is the connection timeout (default: 30s).
	ConnectTimeout time.Duration

	// Logger for protocol capture (optional).
	Logger log.Logger
}

// Client connects to TCAT devices.
type Client struct {
	config  ClientConfig
	tlsConf *tls.Config
}

// NewClient creates a new client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = DefaultConnectTimeout
	}

	tlsConf, err := NewClientTLSConfig(config.TLSConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create TLS config: %w", err)
	}

	return &Client{
		config:  config,
		tlsConf: tlsConf,
	}, nil
}

// Connect dials address, completes the TLS handshake and verifies the device
// certificate. The connection is closed on any failure.
func (c *Client) Connect(ctx context.Context, address string) (*Conn, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.ConnectTimeout)
		defer cancel()
	}

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}

	tlsConn := tls.Client(conn, c.tlsConf)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("TLS handshake failed: %w", err)
	}

	state := tlsConn.ConnectionState()
	peerKey, err := PeerPublicKey(state)
	if err != nil {
		tlsConn.Close()
		return nil, fmt.Errorf("connection verification failed: %w", err)
	}

	connID := uuid.New().String()
	reader := NewRecordReader(tlsConn)
	writer := NewRecordWriter(tlsConn)
	if c.config.Logger != nil {
		reader.SetLogger(c.config.Logger, connID, log.RoleCommissioner)
		writer.SetLogger(c.config.Logger, connID, log.RoleCommissioner)
	}

	cc := &Conn{
		conn:     tlsConn,
		reader:   reader,
		writer:   writer,
		tlsState: state,
		peerKey:  peerKey,
		connID:   connID,
		logger:   c.config.Logger,
		closeCh:  make(chan struct{}),
	}
	logState(cc.logger, connID, log.RoleCommissioner, tlsConn.RemoteAddr(), "", "CONNECTED", "")

	return cc, nil
}

// Conn is the commissioner end of a secure stream. It implements
// session.SecureStream.
type Conn struct {
	conn     *tls.Conn
	reader   *RecordReader
	writer   *RecordWriter
	tlsState tls.ConnectionState
	peerKey  []byte
	connID   string
	logger   log.Logger
	closeCh  chan struct{}

	closeOnce sync.Once
	mu        sync.Mutex
}

// TLSState returns the TLS connection state.
func (c *Conn) TLSState() tls.ConnectionState {
	return c.tlsState
}

// RemoteAddr returns the remote network address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// ConnID returns the capture connection identifier.
func (c *Conn) ConnID() string {
	return c.connID
}

// PeerPublicKey returns the device's public key as bound into credential
// proofs.
func (c *Conn) PeerPublicKey() []byte {
	return c.peerKey
}

// SendWithResponse writes one encoded TLV record and reads one record back.
// ctx bounds both directions. A peer that closes the stream instead of
// answering yields a nil response and no error.
//
// Any failure after the request was handed to the socket closes the
// connection: an unread late reply would otherwise pair with the next
// request.
func (c *Conn) SendWithResponse(ctx context.Context, request []byte) ([]byte, error) {
	if len(request) == 0 {
		return nil, ErrMessageEmpty
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.closeCh:
		return nil, ErrConnectionClosed
	default:
	}

	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetDeadline(deadline)
	}
	fired := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		defer close(fired)
		c.conn.SetDeadline(time.Now())
	})
	defer func() {
		if !stop() {
			<-fired
		}
		c.conn.SetDeadline(time.Time{})
	}()

	if err := c.writer.WriteRecord(request); err != nil {
		err = c.wrapError(ctx, err)
		c.abandon(err.Error())
		return nil, err
	}

	resp, err := c.reader.ReadRecord()
	if err != nil {
		if errors.Is(err, io.EOF) {
			c.abandon("peer closed")
			return nil, nil
		}
		err = c.wrapError(ctx, err)
		c.abandon(err.Error())
		return nil, err
	}
	return resp, nil
}

// abandon records why the session ended and closes the connection.
func (c *Conn) abandon(reason string) {
	if c.logger != nil {
		c.logger.Log(log.Event{
			Timestamp:    time.Now(),
			ConnectionID: c.connID,
			Layer:        log.LayerSession,
			Category:     log.CategoryState,
			LocalRole:    log.RoleCommissioner,
			RemoteAddr:   c.conn.RemoteAddr().String(),
			StateChange: &log.StateChangeEvent{
				Entity:   log.StateEntitySession,
				OldState: "ACTIVE",
				NewState: "ABANDONED",
				Reason:   reason,
			},
		})
	}
	c.Close()
}

// wrapError reports context expiry in preference to the deadline error it
// provoked on the socket.
func (c *Conn) wrapError(ctx context.Context, err error) error {
	ctxErr := ctx.Err()
	if ctxErr == nil && errors.Is(err, os.ErrDeadlineExceeded) {
		if _, ok := ctx.Deadline(); ok {
			ctxErr = context.DeadlineExceeded
		}
	}
	if ctxErr != nil {
		err = fmt.Errorf("%w: %v", ctxErr, err)
	}
	if c.logger != nil {
		c.logger.Log(log.Event{
			Timestamp:    time.Now(),
			ConnectionID: c.connID,
			Layer:        log.LayerTransport,
			Category:     log.CategoryError,
			LocalRole:    log.RoleCommissioner,
			RemoteAddr:   c.conn.RemoteAddr().String(),
			Error: &log.ErrorEventData{
				Layer:   log.LayerTransport,
				Message: err.Error(),
				Context: "send with response",
			},
		})
	}
	return err
}

// Close closes the connection. It is safe to call more than once.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closeCh)
		err = c.conn.Close()
		logState(c.logger, c.connID, log.RoleCommissioner, c.conn.RemoteAddr(), "CONNECTED", "DISCONNECTED", "")
	})
	return err
}

func logState(logger log.Logger, connID string, role log.Role, remote net.Addr, oldState, newState, reason string) {
	if logger == nil {
		return
	}
	event := log.Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Layer:        log.LayerTransport,
		Category:     log.CategoryState,
		LocalRole:    role,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityConnection,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	}
	if remote != nil {
		event.RemoteAddr = remote.String()
	}
	logger.Log(event)
}
