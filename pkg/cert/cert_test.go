package cert

import (
	"crypto/ecdsa"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTestPKI(t *testing.T) {
	pki, err := GenerateTestPKI()
	require.NoError(t, err)

	assert.True(t, pki.CA.Certificate.IsCA)
	assert.NoError(t, VerifyChain(pki.Commissioner.Certificate, pki.CA.Certificate))
	assert.NoError(t, VerifyChain(pki.Device.Certificate, pki.CA.Certificate))
}

func TestVerifyChainForeignCA(t *testing.T) {
	pki, err := GenerateTestPKI()
	require.NoError(t, err)
	other, err := GenerateCA("Other CA", time.Hour)
	require.NoError(t, err)

	err = VerifyChain(pki.Device.Certificate, other.Certificate)
	assert.ErrorIs(t, err, ErrInvalidChain)

	verify := VerifyPeerCertificate(other.Certificate)
	assert.ErrorIs(t, verify([][]byte{pki.Device.Certificate.Raw}, nil), ErrInvalidChain)
	assert.ErrorIs(t, verify(nil, nil), ErrInvalidCert)
	assert.NoError(t, VerifyPeerCertificate(pki.CA.Certificate)([][]byte{pki.Device.Certificate.Raw}, nil))
}

func TestVerifyChainExpired(t *testing.T) {
	ca, err := GenerateCA("CA", time.Hour)
	require.NoError(t, err)
	leaf, err := ca.Issue("short", -time.Second)
	require.NoError(t, err)

	assert.ErrorIs(t, VerifyChain(leaf.Certificate, ca.Certificate), ErrCertExpired)
}

func TestWriteAndLoadDir(t *testing.T) {
	pki, err := GenerateTestPKI()
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, pki.Commissioner.WriteDir(dir, pki.CA))

	info, err := os.Stat(filepath.Join(dir, KeyFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	creds, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, pki.Commissioner.Certificate.Raw, creds.Certificate.Leaf.Raw)
	assert.Equal(t, pki.CA.Certificate.Raw, creds.CA.Raw)
	require.IsType(t, &ecdsa.PrivateKey{}, creds.Certificate.PrivateKey)
	assert.True(t, pki.Commissioner.Key.Equal(creds.Certificate.PrivateKey))
	assert.NotNil(t, creds.CAPool())
}

func TestLoadDirMissingFiles(t *testing.T) {
	_, err := LoadDir(t.TempDir())
	assert.Error(t, err)
}

func TestDecodeInvalidPEM(t *testing.T) {
	_, err := DecodeCertPEM([]byte("not pem"))
	assert.ErrorIs(t, err, ErrInvalidPEM)
	_, err = DecodeKeyPEM([]byte("-----BEGIN FOO-----\nAAAA\n-----END FOO-----\n"))
	assert.ErrorIs(t, err, ErrInvalidPEM)
}

func TestPublicKeyBytesUncompressedPoint(t *testing.T) {
	pki, err := GenerateTestPKI()
	require.NoError(t, err)

	pub, err := PublicKeyBytes(pki.Device.Certificate)
	require.NoError(t, err)
	assert.Len(t, pub, 65)
	assert.Equal(t, byte(0x04), pub[0])
}
