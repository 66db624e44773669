package transport

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/espressif/openthread/pkg/cert"
	"github.com/espressif/openthread/pkg/log"
	"github.com/espressif/openthread/pkg/session"
)

// Connector opens secure streams using the credentials found in a directory.
// It satisfies command.Connector.
type Connector struct {
	// Capture receives protocol events (optional).
	Capture log.Logger

	// Logger receives operational messages (optional).
	Logger *slog.Logger
}

// Connect loads credentials from certDir and connects to addr.
func (c *Connector) Connect(ctx context.Context, addr, certDir string) (session.SecureStream, error) {
	creds, err := cert.LoadDir(certDir)
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}

	client, err := NewClient(ClientConfig{
		TLSConfig: NewTLSConfig(creds),
		Logger:    c.Capture,
	})
	if err != nil {
		return nil, err
	}

	conn, err := client.Connect(ctx, addr)
	if err != nil {
		if c.Logger != nil {
			c.Logger.Debug("connect failed", "addr", addr, "error", err)
		}
		return nil, err
	}
	if c.Logger != nil {
		c.Logger.Debug("secure channel established",
			"addr", addr,
			"conn_id", conn.ConnID(),
			"tls_version", conn.TLSState().Version,
		)
	}
	return conn, nil
}
