// Package cert loads and generates the X.509 material used to secure a TCAT
// session: the commissioner certificate and key presented to the device, and
// the CA certificate the device certificate must chain to.
package cert

import (
	"crypto/ecdsa"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"path/filepath"
)

// File names inside a credentials directory.
const (
	CertFile = "commissioner_cert.pem"
	KeyFile  = "commissioner_key.pem"
	CAFile   = "ca_cert.pem"
)

// Credentials are the materials loaded from a credentials directory.
type Credentials struct {
	// Certificate is the local certificate and private key.
	Certificate tls.Certificate

	// CA is the certificate authority the peer must chain to.
	CA *x509.Certificate
}

// CAPool returns a pool holding only the CA certificate.
func (c *Credentials) CAPool() *x509.CertPool {
	pool := x509.NewCertPool()
	pool.AddCert(c.CA)
	return pool
}

// LoadDir loads commissioner_cert.pem, commissioner_key.pem and ca_cert.pem
// from dir.
func LoadDir(dir string) (*Credentials, error) {
	return LoadFiles(
		filepath.Join(dir, CertFile),
		filepath.Join(dir, KeyFile),
		filepath.Join(dir, CAFile),
	)
}

// LoadFiles loads credentials from explicit paths.
func LoadFiles(certPath, keyPath, caPath string) (*Credentials, error) {
	leaf, err := ReadCertFile(certPath)
	if err != nil {
		return nil, fmt.Errorf("load certificate %s: %w", certPath, err)
	}
	key, err := ReadKeyFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("load key %s: %w", keyPath, err)
	}
	ca, err := ReadCertFile(caPath)
	if err != nil {
		return nil, fmt.Errorf("load CA %s: %w", caPath, err)
	}
	return &Credentials{
		Certificate: tls.Certificate{
			Certificate: [][]byte{leaf.Raw},
			PrivateKey:  key,
			Leaf:        leaf,
		},
		CA: ca,
	}, nil
}

// WriteDir stores a certificate, its key and the CA certificate in dir using
// the standard file names.
func WriteDir(dir string, leaf *x509.Certificate, key *ecdsa.PrivateKey, ca *x509.Certificate) error {
	if err := WriteCertFile(filepath.Join(dir, CertFile), leaf); err != nil {
		return err
	}
	if err := WriteKeyFile(filepath.Join(dir, KeyFile), key); err != nil {
		return err
	}
	return WriteCertFile(filepath.Join(dir, CAFile), ca)
}
