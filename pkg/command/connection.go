package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/espressif/openthread/pkg/discovery"
	"github.com/espressif/openthread/pkg/session"
)

// Connector establishes a secure stream to a device using the commissioner
// credentials stored in certDir. On failure no connection is left open.
type Connector interface {
	Connect(ctx context.Context, addr, certDir string) (session.SecureStream, error)
}

// ConnectorFunc adapts a function to a Connector.
type ConnectorFunc func(ctx context.Context, addr, certDir string) (session.SecureStream, error)

func (f ConnectorFunc) Connect(ctx context.Context, addr, certDir string) (session.SecureStream, error) {
	return f(ctx, addr, certDir)
}

// ScanCommand browses for TCAT devices, lets the user choose one and
// connects to it.
type ScanCommand struct {
	Browser   discovery.Browser
	Selector  discovery.Selector
	Connector Connector
}

func (c *ScanCommand) Help() string { return "Perform scan for TCAT devices." }

func (c *ScanCommand) Execute(ctx context.Context, args []string, sess *session.Session) Result {
	if c.Browser == nil || c.Selector == nil || c.Connector == nil {
		fmt.Fprintln(sess.Out, "Device discovery not available.")
		return NoResult{}
	}
	if sess.Connected() {
		if err := sess.Detach(); err != nil {
			sess.Logger.Debug("close previous session", "error", err)
		}
	}

	devices, err := c.Browser.Browse(ctx)
	if errors.Is(err, discovery.ErrNoDevices) || (err == nil && len(devices) == 0) {
		fmt.Fprintln(sess.Out, "No TCAT devices found.")
		return NoResult{}
	}
	if err != nil {
		fmt.Fprintf(sess.Out, "Command failed: %v\n", err)
		return NoResult{}
	}

	device, ok := c.Selector.Select(devices)
	if !ok {
		return NoResult{}
	}
	establish(ctx, c.Connector, device.String(), device.Address(), sess)
	return NoResult{}
}

// ConnectCommand connects to a device at a known address.
type ConnectCommand struct {
	Connector Connector
}

func (c *ConnectCommand) Help() string {
	return "Connect to a TCAT device directly. Usage: connect <host:port>"
}

func (c *ConnectCommand) Execute(ctx context.Context, args []string, sess *session.Session) Result {
	if len(args) == 0 {
		fmt.Fprintf(sess.Out, "Command failed: %v\n", notPrepared("missing device address"))
		return NoResult{}
	}
	if c.Connector == nil {
		fmt.Fprintln(sess.Out, "Secure channel not available.")
		return NoResult{}
	}
	if sess.Connected() {
		if err := sess.Detach(); err != nil {
			sess.Logger.Debug("close previous session", "error", err)
		}
	}
	establish(ctx, c.Connector, args[0], args[0], sess)
	return NoResult{}
}

func establish(ctx context.Context, connector Connector, label, addr string, sess *session.Session) {
	fmt.Fprintf(sess.Out, "Connecting to %s\n", label)
	fmt.Fprintln(sess.Out, "Setting up secure channel...")

	cctx, cancel := sess.RequestContext(ctx)
	defer cancel()

	stream, err := connector.Connect(cctx, addr, sess.Options.CertDir)
	if err != nil {
		fmt.Fprintln(sess.Out, "Secure channel not established.")
		sess.Logger.Warn("connect failed", "addr", addr, "error", err)
		return
	}
	sess.Attach(stream)
	sess.Logger.Info("connected", "addr", addr)
	fmt.Fprintln(sess.Out, "Done")
}

// DisconnectCommand closes the active session.
type DisconnectCommand struct{}

func (DisconnectCommand) Help() string { return "Disconnect client from TCAT device" }

func (DisconnectCommand) Execute(ctx context.Context, args []string, sess *session.Session) Result {
	if !sess.Connected() {
		fmt.Fprintln(sess.Out, "TCAT device not connected.")
		return NoResult{}
	}
	if err := sess.Detach(); err != nil {
		sess.Logger.Debug("close session", "error", err)
	}
	fmt.Fprintln(sess.Out, "Disconnected.")
	return NoResult{}
}
