package transport

import (
	"context"
	"net"

	"github.com/espressif/openthread/pkg/session"
)

// ServerConnection represents a server-side connection to a commissioner.
// Implemented by ServerConn.
type ServerConnection interface {
	// ConnID returns the capture connection identifier.
	ConnID() string

	// RemoteAddr returns the remote network address of the commissioner.
	RemoteAddr() net.Addr

	// PeerPublicKey returns the commissioner's public key bytes.
	PeerPublicKey() []byte

	// Send writes one encoded TLV record.
	Send(record []byte) error

	// Close closes the connection.
	Close() error
}

// TransportServer represents a TCAT device listener.
// Implemented by Server.
type TransportServer interface {
	// Start begins accepting connections.
	Start(ctx context.Context) error

	// Stop closes the listener and all connections.
	Stop() error

	// Addr returns the listener address.
	Addr() net.Addr
}

var (
	_ session.SecureStream = (*Conn)(nil)
	_ ServerConnection     = (*ServerConn)(nil)
	_ TransportServer      = (*Server)(nil)
)
