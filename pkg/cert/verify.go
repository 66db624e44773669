package cert

import (
	"crypto/ecdsa"
	"crypto/x509"
	"errors"
	"fmt"
	"time"
)

// Verification errors.
var (
	ErrInvalidCert     = errors.New("invalid certificate")
	ErrCertExpired     = errors.New("certificate has expired")
	ErrCertNotYetValid = errors.New("certificate is not yet valid")
	ErrInvalidChain    = errors.New("invalid certificate chain")
)

// VerifyChain checks that cert is currently valid and was issued by ca.
// Host names are not checked.
func VerifyChain(cert, ca *x509.Certificate) error {
	if cert == nil {
		return ErrInvalidCert
	}
	if ca == nil {
		return fmt.Errorf("%w: CA certificate required", ErrInvalidChain)
	}

	now := time.Now()
	if now.Before(cert.NotBefore) {
		return ErrCertNotYetValid
	}
	if now.After(cert.NotAfter) {
		return ErrCertExpired
	}

	roots := x509.NewCertPool()
	roots.AddCert(ca)
	opts := x509.VerifyOptions{
		Roots:       roots,
		CurrentTime: now,
		KeyUsages:   []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	}
	if _, err := cert.Verify(opts); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidChain, err)
	}
	return nil
}

// VerifyPeerCertificate returns a tls.Config.VerifyPeerCertificate callback
// that accepts a peer whose leaf certificate chains to ca.
func VerifyPeerCertificate(ca *x509.Certificate) func(rawCerts [][]byte, verifiedChains [][]*x509.Certificate) error {
	return func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
		if len(rawCerts) == 0 {
			return fmt.Errorf("%w: no peer certificate", ErrInvalidCert)
		}
		peer, err := x509.ParseCertificate(rawCerts[0])
		if err != nil {
			return fmt.Errorf("parse peer certificate: %w", err)
		}
		return VerifyChain(peer, ca)
	}
}

// PublicKeyBytes returns the certificate public key in the form bound into
// credential proofs: the uncompressed point for EC keys, PKIX DER otherwise.
func PublicKeyBytes(cert *x509.Certificate) ([]byte, error) {
	if cert == nil {
		return nil, ErrInvalidCert
	}
	if pub, ok := cert.PublicKey.(*ecdsa.PublicKey); ok {
		ecdhKey, err := pub.ECDH()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		return ecdhKey.Bytes(), nil
	}
	return x509.MarshalPKIXPublicKey(cert.PublicKey)
}
