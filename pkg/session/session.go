// Package session holds the state shared by TCAT commands across invocations:
// the active secure stream, the commissioning dataset, user options and the
// peer credential material used by the proof exchange.
//
// A Session has no internal locking. The dispatcher runs one command at a
// time and that command owns the session for the duration of the call.
package session

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/espressif/openthread/pkg/dataset"
)

// Defaults for Options.
const (
	DefaultCertDir        = "auth"
	DefaultRequestTimeout = 10 * time.Second
)

// SecureStream is an authenticated, encrypted request/response channel to a
// TCAT device.
type SecureStream interface {
	// SendWithResponse sends one request and waits for one response. A nil
	// response with a nil error means the peer closed without replying.
	SendWithResponse(ctx context.Context, data []byte) ([]byte, error)

	// PeerPublicKey returns the public key of the peer certificate presented
	// during the handshake.
	PeerPublicKey() []byte

	// Close releases the underlying transport.
	Close() error
}

// Options are user supplied settings that commands consult.
type Options struct {
	// CertDir is the directory holding the commissioner credentials.
	CertDir string

	// RequestTimeout bounds a single round trip. Zero disables the bound.
	RequestTimeout time.Duration
}

// DefaultOptions returns Options with default values.
func DefaultOptions() Options {
	return Options{
		CertDir:        DefaultCertDir,
		RequestTimeout: DefaultRequestTimeout,
	}
}

// Session is the state threaded through command invocations.
type Session struct {
	// Stream is the active secure stream. Nil means not connected.
	Stream SecureStream

	// Dataset is the commissioning dataset sent by commission.
	Dataset *dataset.Dataset

	Options Options

	// PeerPublicKey is set once per connection from the handshake.
	PeerPublicKey []byte

	// PeerChallenge is set only by a successful challenge retrieval.
	PeerChallenge []byte

	// Out receives user facing command output.
	Out io.Writer

	Logger *slog.Logger
}

// New creates a session that writes command output to out.
func New(out io.Writer, opts Options, logger *slog.Logger) *Session {
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.CertDir == "" {
		opts.CertDir = DefaultCertDir
	}
	return &Session{
		Dataset: &dataset.Dataset{},
		Options: opts,
		Out:     out,
		Logger:  logger,
	}
}

// Connected reports whether a secure stream is attached.
func (s *Session) Connected() bool {
	return s.Stream != nil
}

// Attach makes stream the active stream. The peer public key is taken from
// the stream and any challenge from a previous connection is dropped.
func (s *Session) Attach(stream SecureStream) {
	s.Stream = stream
	s.PeerPublicKey = stream.PeerPublicKey()
	s.PeerChallenge = nil
}

// Detach closes the active stream, if any, and clears the peer state.
func (s *Session) Detach() error {
	stream := s.Stream
	s.Stream = nil
	s.PeerPublicKey = nil
	s.PeerChallenge = nil
	if stream == nil {
		return nil
	}
	return stream.Close()
}

// RequestContext derives a context bounded by Options.RequestTimeout.
func (s *Session) RequestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Options.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Options.RequestTimeout)
}
