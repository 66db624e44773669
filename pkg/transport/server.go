package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/espressif/openthread/pkg/log"
	"github.com/espressif/openthread/pkg/tlv"
)

// DefaultAddress is the listen address used when none is configured.
const DefaultAddress = ":12345"

// ServerConfig configures a TCAT device listener.
type ServerConfig struct {
	// TLSConfig contains TLS settings.
	TLSConfig *TLSConfig

	// Address to listen on (e.g., ":12345" or "127.0.0.1:0").
	Address string

	// Logger for protocol capture (optional).
	Logger log.Logger

	// OnConnect is called when a commissioner has completed the handshake.
	OnConnect func(conn *ServerConn)

	// OnDisconnect is called when a connection is closed.
	OnDisconnect func(conn *ServerConn)

	// OnMessage is called for every TLV record received. Records on one
	// connection are delivered in order from a single goroutine.
	OnMessage func(conn *ServerConn, rec tlv.TLV)

	// OnError is called when an error occurs.
	OnError func(conn *ServerConn, err error)
}

// Server accepts secure streams from commissioners.
type Server struct {
	config   ServerConfig
	tlsConf  *tls.Config
	listener net.Listener

	// Active connections
	conns   map[*ServerConn]struct{}
	connsMu sync.RWMutex

	// State
	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewServer creates a new server.
func NewServer(config ServerConfig) (*Server, error) {
	if config.Address == "" {
		config.Address = DefaultAddress
	}

	tlsConf, err := NewServerTLSConfig(config.TLSConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create TLS config: %w", err)
	}

	return &Server{
		config:  config,
		tlsConf: tlsConf,
		conns:   make(map[*ServerConn]struct{}),
	}, nil
}

// Start starts the server and begins accepting connections.
func (s *Server) Start(ctx context.Context) error {
	if s.running.Load() {
		return fmt.Errorf("server already running")
	}

	s.ctx, s.cancel = context.WithCancel(ctx)

	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		s.cancel()
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.listener = listener

	s.running.Store(true)

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// Stop stops the server and closes all connections.
func (s *Server) Stop() error {
	if !s.running.Load() {
		return nil
	}

	s.running.Store(false)
	s.cancel()

	if s.listener != nil {
		s.listener.Close()
	}

	s.connsMu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.connsMu.Unlock()

	s.wg.Wait()

	return nil
}

// Addr returns the server's listen address.
func (s *Server) Addr() net.Addr {
	if s.listener != nil {
		return s.listener.Addr()
	}
	return nil
}

// ConnectionCount returns the number of active connections.
func (s *Server) ConnectionCount() int {
	s.connsMu.RLock()
	defer s.connsMu.RUnlock()
	return len(s.conns)
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for s.running.Load() {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.running.Load() && s.config.OnError != nil {
				s.config.OnError(nil, fmt.Errorf("accept error: %w", err))
			}
			continue
		}

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()

	tlsConn := tls.Server(conn, s.tlsConf)
	if err := tlsConn.HandshakeContext(s.ctx); err != nil {
		conn.Close()
		if s.config.OnError != nil {
			s.config.OnError(nil, fmt.Errorf("TLS handshake failed: %w", err))
		}
		return
	}

	state := tlsConn.ConnectionState()
	peerKey, err := PeerPublicKey(state)
	if err != nil {
		tlsConn.Close()
		if s.config.OnError != nil {
			s.config.OnError(nil, err)
		}
		return
	}

	connID := uuid.New().String()
	reader := NewRecordReader(tlsConn)
	writer := NewRecordWriter(tlsConn)
	if s.config.Logger != nil {
		reader.SetLogger(s.config.Logger, connID, log.RoleDevice)
		writer.SetLogger(s.config.Logger, connID, log.RoleDevice)
	}

	sconn := &ServerConn{
		conn:       tlsConn,
		reader:     reader,
		writer:     writer,
		tlsState:   state,
		peerKey:    peerKey,
		server:     s,
		closeCh:    make(chan struct{}),
		remoteAddr: conn.RemoteAddr(),
		connID:     connID,
	}

	logState(s.config.Logger, connID, log.RoleDevice, conn.RemoteAddr(), "", "CONNECTED", "")

	s.connsMu.Lock()
	s.conns[sconn] = struct{}{}
	s.connsMu.Unlock()

	if s.config.OnConnect != nil {
		s.config.OnConnect(sconn)
	}

	sconn.readLoop()
	sconn.Close()

	s.connsMu.Lock()
	delete(s.conns, sconn)
	s.connsMu.Unlock()

	logState(s.config.Logger, connID, log.RoleDevice, conn.RemoteAddr(), "CONNECTED", "DISCONNECTED", "")

	if s.config.OnDisconnect != nil {
		s.config.OnDisconnect(sconn)
	}
}

// ServerConn is the device end of a secure stream.
type ServerConn struct {
	conn       *tls.Conn
	reader     *RecordReader
	writer     *RecordWriter
	tlsState   tls.ConnectionState
	peerKey    []byte
	server     *Server
	closeCh    chan struct{}
	closeOnce  sync.Once
	remoteAddr net.Addr
	connID     string
}

// RemoteAddr returns the remote address of the commissioner.
func (c *ServerConn) RemoteAddr() net.Addr {
	return c.remoteAddr
}

// ConnID returns the unique connection identifier.
func (c *ServerConn) ConnID() string {
	return c.connID
}

// TLSState returns the TLS connection state.
func (c *ServerConn) TLSState() tls.ConnectionState {
	return c.tlsState
}

// PeerPublicKey returns the commissioner's public key bytes.
func (c *ServerConn) PeerPublicKey() []byte {
	return c.peerKey
}

// Send writes one encoded TLV record to the commissioner.
func (c *ServerConn) Send(record []byte) error {
	select {
	case <-c.closeCh:
		return ErrConnectionClosed
	default:
	}
	return c.writer.WriteRecord(record)
}

// Close closes the connection.
func (c *ServerConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closeCh)
		err = c.conn.Close()
	})
	return err
}

func (c *ServerConn) readLoop() {
	for {
		select {
		case <-c.closeCh:
			return
		case <-c.server.ctx.Done():
			return
		default:
		}

		data, err := c.reader.ReadRecord()
		if err != nil {
			if !errors.Is(err, io.EOF) && c.server.config.OnError != nil && c.server.running.Load() {
				select {
				case <-c.closeCh:
				default:
					c.server.config.OnError(c, err)
				}
			}
			return
		}

		rec, _, err := tlv.Decode(data)
		if err != nil {
			continue
		}
		if c.server.config.OnMessage != nil {
			c.server.config.OnMessage(c, rec)
		}
	}
}
