package transport

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"

	"github.com/espressif/openthread/pkg/cert"
)

// ErrNoPeerCertificate indicates a handshake that completed without a peer
// certificate.
var ErrNoPeerCertificate = errors.New("peer certificate not present")

// TLSConfig holds the material for a TCAT TLS endpoint.
type TLSConfig struct {
	// Certificate is the TLS certificate for this endpoint.
	Certificate tls.Certificate

	// CA is the authority the peer certificate must chain to.
	CA *x509.Certificate

	// MinVersion is the lowest accepted TLS version (default: TLS 1.2).
	MinVersion uint16
}

// NewTLSConfig builds a TLSConfig from loaded credentials.
func NewTLSConfig(creds *cert.Credentials) *TLSConfig {
	return &TLSConfig{
		Certificate: creds.Certificate,
		CA:          creds.CA,
	}
}

func (c *TLSConfig) validate() error {
	if c == nil {
		return fmt.Errorf("TLSConfig is required")
	}
	if len(c.Certificate.Certificate) == 0 {
		return fmt.Errorf("certificate is required")
	}
	if c.CA == nil {
		return fmt.Errorf("CA certificate is required")
	}
	return nil
}

func (c *TLSConfig) minVersion() uint16 {
	if c.MinVersion == 0 {
		return tls.VersionTLS12
	}
	return c.MinVersion
}

// NewClientTLSConfig creates a TLS configuration for the commissioner.
//
// Go's built-in verification is skipped because it insists on a host name;
// the chain is checked by cert.VerifyPeerCertificate instead.
func NewClientTLSConfig(cfg *TLSConfig) (*tls.Config, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &tls.Config{
		MinVersion: cfg.minVersion(),
		MaxVersion: tls.VersionTLS13,

		Certificates: []tls.Certificate{cfg.Certificate},

		CurvePreferences: []tls.CurveID{
			tls.X25519,
			tls.CurveP256,
		},

		// No resumption
		SessionTicketsDisabled: true,

		InsecureSkipVerify:    true,
		VerifyPeerCertificate: cert.VerifyPeerCertificate(cfg.CA),
	}, nil
}

// NewServerTLSConfig creates a TLS configuration for a device. Commissioners
// must present a certificate chaining to the CA.
func NewServerTLSConfig(cfg *TLSConfig) (*tls.Config, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &tls.Config{
		MinVersion: cfg.minVersion(),
		MaxVersion: tls.VersionTLS13,

		ClientAuth:   tls.RequireAnyClientCert,
		Certificates: []tls.Certificate{cfg.Certificate},

		CurvePreferences: []tls.CurveID{
			tls.X25519,
			tls.CurveP256,
		},

		SessionTicketsDisabled: true,

		VerifyPeerCertificate: cert.VerifyPeerCertificate(cfg.CA),
	}, nil
}

// PeerPublicKey extracts the public key of the peer leaf certificate from a
// completed handshake.
func PeerPublicKey(state tls.ConnectionState) ([]byte, error) {
	if len(state.PeerCertificates) == 0 {
		return nil, ErrNoPeerCertificate
	}
	return cert.PublicKeyBytes(state.PeerCertificates[0])
}
