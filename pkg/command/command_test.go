package command

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/espressif/openthread/pkg/dataset"
	"github.com/espressif/openthread/pkg/session"
	"github.com/espressif/openthread/pkg/session/mocks"
	"github.com/espressif/openthread/pkg/tcat"
	"github.com/espressif/openthread/pkg/tlv"
)

var testPeerKey = []byte{0x04, 0xAA, 0xBB, 0xCC, 0xDD}

// connected returns a session attached to a mock stream and its output buffer.
func connected(t *testing.T) (*session.Session, *mocks.MockSecureStream, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	sess := session.New(out, session.DefaultOptions(), nil)
	stream := mocks.NewMockSecureStream(t)
	sess.Stream = stream
	sess.PeerPublicKey = testPeerKey
	return sess, stream, out
}

func respond(t *testing.T, typ tcat.Type, value []byte) []byte {
	t.Helper()
	b, err := tlv.Encode(uint8(typ), value)
	require.NoError(t, err)
	return b
}

func run(sess *session.Session, kind Kind, args ...string) Result {
	return NewTransportCommand(kind).Execute(context.Background(), args, sess)
}

func TestExecuteNotConnected(t *testing.T) {
	out := &bytes.Buffer{}
	sess := session.New(out, session.DefaultOptions(), nil)

	res := run(sess, KindHello)

	assert.Equal(t, NoResult{}, res)
	assert.Equal(t, "TCAT device not connected.\n", out.String())
}

func TestHello(t *testing.T) {
	sess, stream, out := connected(t)
	want := respond(t, tcat.VendorApplication, []byte("Hello world!"))
	stream.EXPECT().SendWithResponse(mock.Anything, want).
		Return(respond(t, tcat.ResponseWithPayload, []byte("Hello world!")), nil).Once()

	res := run(sess, KindHello)

	require.IsType(t, TLVResult{}, res)
	assert.Equal(t, uint8(tcat.ResponseWithPayload), res.(TLVResult).TLV.Type)
	assert.Contains(t, out.String(), "Sending hello world...")
	assert.Contains(t, out.String(), "Text: Hello world!")
}

func TestStatusResponseReported(t *testing.T) {
	sess, stream, out := connected(t)
	stream.EXPECT().SendWithResponse(mock.Anything, respond(t, tcat.Decommission, nil)).
		Return(respond(t, tcat.ResponseWithStatus, []byte{byte(tcat.StatusUnauthorized)}), nil).Once()

	run(sess, KindDecommission)

	assert.Contains(t, out.String(), "Status: unauthorized")
}

func TestNoResponseIsNoResult(t *testing.T) {
	sess, stream, _ := connected(t)
	stream.EXPECT().SendWithResponse(mock.Anything, mock.Anything).Return(nil, nil).Once()
	stream.EXPECT().Close().Return(nil).Once()

	assert.Equal(t, NoResult{}, run(sess, KindGetDeviceID))
	assert.False(t, sess.Connected())
}

func TestSendErrorIsReported(t *testing.T) {
	sess, stream, out := connected(t)
	stream.EXPECT().SendWithResponse(mock.Anything, mock.Anything).
		Return(nil, errors.New("connection reset")).Once()
	stream.EXPECT().Close().Return(nil).Once()

	assert.Equal(t, NoResult{}, run(sess, KindGetNetworkName))
	assert.Contains(t, out.String(), "Command failed: connection reset")
	assert.Contains(t, out.String(), "TCAT device disconnected.")
	assert.False(t, sess.Connected())
}

func TestMalformedResponse(t *testing.T) {
	sess, stream, out := connected(t)
	stream.EXPECT().SendWithResponse(mock.Anything, mock.Anything).
		Return([]byte{0x02, 0x00, 0x09, 0x01}, nil).Once()

	assert.Equal(t, NoResult{}, run(sess, KindGetExtPanID))
	assert.Contains(t, out.String(), tlv.ErrMalformedRecord.Error())
}

func TestRequestTimeout(t *testing.T) {
	sess, stream, out := connected(t)
	sess.Options.RequestTimeout = 20 * time.Millisecond
	stream.EXPECT().SendWithResponse(mock.Anything, mock.Anything).
		RunAndReturn(func(ctx context.Context, _ []byte) ([]byte, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}).Once()
	stream.EXPECT().Close().Return(nil).Once()

	assert.Equal(t, NoResult{}, run(sess, KindGetProvisioningURL))
	assert.Contains(t, out.String(), context.DeadlineExceeded.Error())
}

func TestTimedOutStreamIsNotReused(t *testing.T) {
	sess, stream, out := connected(t)
	sess.Options.RequestTimeout = 20 * time.Millisecond
	stream.EXPECT().SendWithResponse(mock.Anything, mock.Anything).
		RunAndReturn(func(ctx context.Context, _ []byte) ([]byte, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}).Once()
	stream.EXPECT().Close().Return(nil).Once()

	run(sess, KindRandomChallenge)
	require.False(t, sess.Connected())
	assert.Nil(t, sess.PeerChallenge)

	out.Reset()
	assert.Equal(t, NoResult{}, run(sess, KindPing))
	assert.Equal(t, "TCAT device not connected.\n", out.String())
}

func TestApplicationDataHexArgument(t *testing.T) {
	sess, stream, out := connected(t)
	stream.EXPECT().SendWithResponse(mock.Anything, respond(t, tcat.ApplicationData2, []byte{0xDE, 0xAD})).
		Return(respond(t, tcat.ResponseWithStatus, []byte{0}), nil).Once()

	run(sess, KindApplicationData2, "dead")
	assert.Contains(t, out.String(), "Status: success")

	out.Reset()
	assert.Equal(t, NoResult{}, run(sess, KindApplicationData2, "xyz"))
	assert.Contains(t, out.String(), "Command failed")

	out.Reset()
	assert.Equal(t, NoResult{}, run(sess, KindVendorData))
	assert.Contains(t, out.String(), "missing hex encoded argument")
}

func TestCommission(t *testing.T) {
	sess, stream, out := connected(t)

	// Empty dataset never reaches the stream.
	assert.Equal(t, NoResult{}, run(sess, KindCommission))
	assert.Contains(t, out.String(), "commissioning dataset is empty")

	ds, err := dataset.FromHex("0102face")
	require.NoError(t, err)
	sess.Dataset = ds
	stream.EXPECT().SendWithResponse(mock.Anything, respond(t, tcat.ActiveDataset, ds.Bytes())).
		Return(respond(t, tcat.ResponseWithStatus, []byte{0}), nil).Once()

	assert.IsType(t, TLVResult{}, run(sess, KindCommission))
}

func TestExtractDataset(t *testing.T) {
	sess, stream, out := connected(t)
	raw := []byte{0x03, 0x02, 'o', 't'}
	stream.EXPECT().SendWithResponse(mock.Anything, respond(t, tcat.GetActiveDataset, nil)).
		Return(respond(t, tcat.ResponseWithPayload, raw), nil).Once()

	run(sess, KindExtractDataset)

	assert.Equal(t, raw, sess.Dataset.Bytes())
	assert.Contains(t, out.String(), "Network Name: 6f74")
}

func TestExtractDatasetError(t *testing.T) {
	sess, stream, out := connected(t)
	stream.EXPECT().SendWithResponse(mock.Anything, mock.Anything).
		Return(respond(t, tcat.ResponseWithStatus, []byte{byte(tcat.StatusGeneralError)}), nil).Once()

	res := run(sess, KindExtractDataset)

	assert.IsType(t, TLVResult{}, res)
	assert.Contains(t, out.String(), "Dataset extraction error.")
	assert.True(t, sess.Dataset.Empty())
}

func TestGetApplicationLayers(t *testing.T) {
	sess, stream, out := connected(t)
	payload, err := tlv.EncodeAll(
		tlv.New(uint8(tcat.ServiceNameUDP), []byte("coap")),
		tlv.New(uint8(tcat.ServiceNameTCP), []byte("http")),
		tlv.New(0x7F, []byte{1}),
	)
	require.NoError(t, err)
	stream.EXPECT().SendWithResponse(mock.Anything, respond(t, tcat.GetApplicationLayers, nil)).
		Return(respond(t, tcat.ResponseWithPayload, payload), nil).Once()

	run(sess, KindGetApplicationLayers)

	assert.Contains(t, out.String(), "Service names:\n"+
		"\tApplication 1 is UDP service: coap\n"+
		"\tApplication 2 is TCP service: http\n"+
		"\tUnknown service type.\n")
}

func TestGetApplicationLayersError(t *testing.T) {
	sess, stream, out := connected(t)
	stream.EXPECT().SendWithResponse(mock.Anything, mock.Anything).
		Return(respond(t, tcat.ResponseWithStatus, []byte{1}), nil).Once()

	run(sess, KindGetApplicationLayers)
	assert.Contains(t, out.String(), "Application layers request error.")
}

func TestPing(t *testing.T) {
	sess, stream, out := connected(t)
	var sent []byte
	stream.EXPECT().SendWithResponse(mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, data []byte) ([]byte, error) {
			req, _, err := tlv.Decode(data)
			require.NoError(t, err)
			sent = req.Value
			return tlv.Encode(uint8(tcat.ResponseWithPayload), req.Value)
		}).Once()

	res := run(sess, KindPing)

	require.IsType(t, TLVResult{}, res)
	assert.Len(t, sent, DefaultPingPayload)
	assert.NotContains(t, out.String(), "Received malformed response.")
	assert.Contains(t, out.String(), "Roundtrip time:")
}

func TestPingMismatch(t *testing.T) {
	sess, stream, out := connected(t)
	stream.EXPECT().SendWithResponse(mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, data []byte) ([]byte, error) {
			req, _, _ := tlv.Decode(data)
			echo := append([]byte(nil), req.Value...)
			echo[len(echo)-1] ^= 0x01
			return tlv.Encode(uint8(tcat.ResponseWithPayload), echo)
		}).Once()

	res := run(sess, KindPing, "32")

	assert.IsType(t, TLVResult{}, res)
	assert.Contains(t, out.String(), "Received "+ErrMalformedResponse.Error()+".")
	assert.Contains(t, out.String(), "Roundtrip time:")
}

func TestPingTooLarge(t *testing.T) {
	sess, _, out := connected(t)

	assert.Equal(t, NoResult{}, run(sess, KindPing, "1000"))
	assert.Contains(t, out.String(), "maximum supported value is 512")
}

func TestDiagnosticTlvs(t *testing.T) {
	sess, stream, _ := connected(t)
	stream.EXPECT().SendWithResponse(mock.Anything, []byte{0x26, 0x00, 0x02, 0x05, 0x00}).
		Return(respond(t, tcat.ResponseWithPayload, []byte{5, 0}), nil).Once()

	assert.IsType(t, TLVResult{}, run(sess, KindDiagnosticTlvs, "5", "ext_address"))
}

func TestDiagnosticTlvsUnknownName(t *testing.T) {
	sess, _, out := connected(t)

	res := run(sess, KindDiagnosticTlvs, "5", "bad")

	assert.Equal(t, NoResult{}, res)
	assert.Contains(t, out.String(), "Please provide a list of diagnostic TLV types as names or numbers\nTLV Types:\n")
	assert.Contains(t, out.String(), "EXT_ADDRESS = 0,\n")
	assert.Contains(t, out.String(), "VENDOR_APP_URL = 35,\n")
}

func TestRawTLVSend(t *testing.T) {
	sess, stream, out := connected(t)
	stream.EXPECT().SendWithResponse(mock.Anything, []byte{0x0B, 0x00, 0x01, 0xFF}).
		Return(respond(t, tcat.ResponseWithPayload, []byte{0x01}), nil).Once()

	run(sess, KindRawTLV, "0x0b", "ff")
	assert.Contains(t, out.String(), "TLV(type=0x02, len=1, value=01)")
}

func TestGroupWithoutSubcommand(t *testing.T) {
	sess, _, out := connected(t)

	res := newThreadGroup().Execute(context.Background(), nil, sess)

	assert.Equal(t, NoResult{}, res)
	assert.Equal(t, "Invalid usage. Provide a subcommand.\n", out.String())
}

func TestThreadStart(t *testing.T) {
	sess, stream, _ := connected(t)
	stream.EXPECT().SendWithResponse(mock.Anything, []byte{0x27, 0x00, 0x00}).
		Return(respond(t, tcat.ResponseWithStatus, []byte{0}), nil).Once()

	res := newThreadGroup().Execute(context.Background(), []string{"start"}, sess)
	assert.IsType(t, TLVResult{}, res)
}

func TestComputeProofMatchesHMAC(t *testing.T) {
	credential := []byte("J01NME")
	challenge := []byte{1, 2, 3, 4, 5, 6, 7, 8}

	mac := hmac.New(sha256.New, credential)
	mac.Write(append(append([]byte(nil), challenge...), testPeerKey...))
	want := mac.Sum(nil)

	assert.Equal(t, want, ComputeProof(credential, challenge, testPeerKey))
	assert.Equal(t, ComputeProof(credential, challenge, testPeerKey), ComputeProof(credential, challenge, testPeerKey))
	assert.NotEqual(t, want, ComputeProof(credential, challenge, []byte{0x04}))
}
