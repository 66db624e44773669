package session_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/espressif/openthread/pkg/session"
	"github.com/espressif/openthread/pkg/session/mocks"
)

func TestNewDefaults(t *testing.T) {
	s := session.New(nil, session.Options{}, nil)

	assert.Equal(t, session.DefaultCertDir, s.Options.CertDir)
	assert.False(t, s.Connected())
	assert.True(t, s.Dataset.Empty())
	require.NotNil(t, s.Out)
	require.NotNil(t, s.Logger)
}

func TestAttachDetach(t *testing.T) {
	stream := mocks.NewMockSecureStream(t)
	stream.EXPECT().PeerPublicKey().Return([]byte{0x04, 0x01}).Once()
	stream.EXPECT().Close().Return(nil).Once()

	s := session.New(&bytes.Buffer{}, session.DefaultOptions(), nil)
	s.PeerChallenge = []byte("stale!!!")

	s.Attach(stream)
	assert.True(t, s.Connected())
	assert.Equal(t, []byte{0x04, 0x01}, s.PeerPublicKey)
	assert.Nil(t, s.PeerChallenge)

	s.PeerChallenge = []byte("01234567")
	require.NoError(t, s.Detach())
	assert.False(t, s.Connected())
	assert.Nil(t, s.PeerPublicKey)
	assert.Nil(t, s.PeerChallenge)

	// Second detach must not close again.
	require.NoError(t, s.Detach())
}

func TestRequestContext(t *testing.T) {
	s := session.New(nil, session.Options{RequestTimeout: time.Minute}, nil)
	ctx, cancel := s.RequestContext(context.Background())
	defer cancel()
	_, ok := ctx.Deadline()
	assert.True(t, ok)

	s.Options.RequestTimeout = 0
	ctx2, cancel2 := s.RequestContext(context.Background())
	defer cancel2()
	_, ok = ctx2.Deadline()
	assert.False(t, ok)
}
