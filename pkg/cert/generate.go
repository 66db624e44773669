package cert

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"time"
)

// Authority is a certificate authority able to issue leaf certificates.
type Authority struct {
	Certificate *x509.Certificate
	Key         *ecdsa.PrivateKey
}

// Issued is a leaf certificate together with its private key.
type Issued struct {
	Certificate *x509.Certificate
	Key         *ecdsa.PrivateKey
}

// GenerateKeyPair creates a new P-256 key pair.
func GenerateKeyPair() (*ecdsa.PrivateKey, error) {
	return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
}

func serialNumber() (*big.Int, error) {
	return rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 127))
}

// GenerateCA creates a self-signed CA valid for the given duration.
func GenerateCA(commonName string, validity time.Duration) (*Authority, error) {
	key, err := GenerateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("generate CA key: %w", err)
	}
	serial, err := serialNumber()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: commonName},
		NotBefore:             now.Add(-time.Minute),
		NotAfter:              now.Add(validity),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
		MaxPathLenZero:        true,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("create CA certificate: %w", err)
	}
	c, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, err
	}
	return &Authority{Certificate: c, Key: key}, nil
}

// Issue signs a new leaf certificate usable for both TLS client and server
// authentication.
func (a *Authority) Issue(commonName string, validity time.Duration) (*Issued, error) {
	key, err := GenerateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	serial, err := serialNumber()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: commonName},
		NotBefore:             now.Add(-time.Minute),
		NotAfter:              now.Add(validity),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, a.Certificate, &key.PublicKey, a.Key)
	if err != nil {
		return nil, fmt.Errorf("create certificate: %w", err)
	}
	c, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, err
	}
	return &Issued{Certificate: c, Key: key}, nil
}

// WriteDir stores the issued certificate, its key and the authority
// certificate in dir.
func (i *Issued) WriteDir(dir string, ca *Authority) error {
	return WriteDir(dir, i.Certificate, i.Key, ca.Certificate)
}

// TestPKI is a CA with one commissioner and one device certificate, used for
// local development and tests.
type TestPKI struct {
	CA           *Authority
	Commissioner *Issued
	Device       *Issued
}

// GenerateTestPKI creates a fresh TestPKI valid for one day.
func GenerateTestPKI() (*TestPKI, error) {
	ca, err := GenerateCA("TCAT Test CA", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	commissioner, err := ca.Issue("TCAT Commissioner", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	device, err := ca.Issue("TCAT Device", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	return &TestPKI{CA: ca, Commissioner: commissioner, Device: device}, nil
}
