package command

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/espressif/openthread/pkg/discovery"
	discoverymocks "github.com/espressif/openthread/pkg/discovery/mocks"
	"github.com/espressif/openthread/pkg/session"
	"github.com/espressif/openthread/pkg/session/mocks"
)

func TestRegistryCatalogue(t *testing.T) {
	r := NewRegistry(Deps{})
	want := []string{
		"help", "hello", "get_apps", "appdata1", "appdata2", "appdata3", "appdata4",
		"vendor_data", "commission", "decommission", "disconnect", "device_id",
		"ext_panid", "provisioning_url", "network_name", "ping", "dataset",
		"get_dataset", "thread", "scan", "connect", "random_challenge",
		"present_hash", "peer_pskd_hash", "tlv", "get_comm_cert", "diagnostic_tlvs",
	}
	assert.Equal(t, want, r.Names())
	for _, name := range want {
		cmd, ok := r.Lookup(name)
		require.True(t, ok, name)
		assert.NotEmpty(t, cmd.Help(), name)
	}
}

func TestRegistryExecute(t *testing.T) {
	r := NewRegistry(Deps{})
	sess := session.New(&bytes.Buffer{}, session.DefaultOptions(), nil)

	res, err := r.Execute(context.Background(), nil, sess)
	require.NoError(t, err)
	assert.Equal(t, NoResult{}, res)

	_, err = r.Execute(context.Background(), []string{"frobnicate"}, sess)
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestHelpListsSubcommands(t *testing.T) {
	r := NewRegistry(Deps{})
	out := &bytes.Buffer{}
	sess := session.New(out, session.DefaultOptions(), nil)

	_, err := r.Execute(context.Background(), []string{"help"}, sess)
	require.NoError(t, err)

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "help\n\tDisplay help and return.\n"))
	assert.Contains(t, text, "thread\n\tManipulate state of the Thread interface of the connected device.\n\tstart\n\t\tEnable thread interface.\n")
}

func TestComplete(t *testing.T) {
	r := NewRegistry(Deps{})

	assert.Equal(t, []string{"get_apps", "get_dataset", "get_comm_cert"}, r.Complete(nil, "get_"))
	assert.Equal(t, []string{"start", "stop"}, r.Complete([]string{"thread"}, "st"))
	assert.Equal(t, []string{"decode"}, r.Complete([]string{"tlv"}, "d"))
	assert.Nil(t, r.Complete([]string{"hello"}, ""))
	assert.Nil(t, r.Complete([]string{"nope"}, ""))
	assert.Nil(t, r.Complete([]string{"thread", "start"}, ""))
}

func TestDatasetCommand(t *testing.T) {
	r := NewRegistry(Deps{})
	out := &bytes.Buffer{}
	sess := session.New(out, session.DefaultOptions(), nil)
	ctx := context.Background()

	_, _ = r.Execute(ctx, []string{"dataset", "set", "0102face"}, sess)
	assert.Equal(t, "0102face", sess.Dataset.Hex())

	out.Reset()
	_, _ = r.Execute(ctx, []string{"dataset"}, sess)
	assert.Contains(t, out.String(), "PAN ID: face")

	out.Reset()
	_, _ = r.Execute(ctx, []string{"dataset", "set", "0105"}, sess)
	assert.Contains(t, out.String(), "Command failed")
	assert.Equal(t, "0102face", sess.Dataset.Hex())

	_, _ = r.Execute(ctx, []string{"dataset", "clear"}, sess)
	assert.True(t, sess.Dataset.Empty())
}

func TestTLVDecodeCommand(t *testing.T) {
	r := NewRegistry(Deps{})
	out := &bytes.Buffer{}
	sess := session.New(out, session.DefaultOptions(), nil)

	res, err := r.Execute(context.Background(), []string{"tlv", "decode", "010002", "6869", "0900 00"}, sess)
	require.NoError(t, err)

	require.IsType(t, TLVResult{}, res)
	assert.Equal(t, []byte("hi"), res.(TLVResult).TLV.Value)
	assert.Contains(t, out.String(), "RESPONSE_W_STATUS TLV(type=0x01, len=2, value=6869)\n")
	assert.Contains(t, out.String(), "DISCONNECT TLV(type=0x09, len=0, value=)\n")
}

func TestScanConnects(t *testing.T) {
	browser := discoverymocks.NewMockBrowser(t)
	stream := mocks.NewMockSecureStream(t)
	devices := []discovery.Device{
		{Instance: "a", Port: 1, Addresses: []string{"10.0.0.1"}},
		{Instance: "b", Port: 2, Addresses: []string{"10.0.0.2"}},
	}
	browser.EXPECT().Browse(mock.Anything).Return(devices, nil).Once()
	stream.EXPECT().PeerPublicKey().Return(testPeerKey).Once()

	var dialed, certDir string
	cmd := &ScanCommand{
		Browser: browser,
		Selector: discovery.SelectorFunc(func(d []discovery.Device) (discovery.Device, bool) {
			return d[1], true
		}),
		Connector: ConnectorFunc(func(_ context.Context, addr, dir string) (session.SecureStream, error) {
			dialed, certDir = addr, dir
			return stream, nil
		}),
	}
	out := &bytes.Buffer{}
	sess := session.New(out, session.Options{CertDir: "creds"}, nil)

	assert.Equal(t, NoResult{}, cmd.Execute(context.Background(), nil, sess))

	assert.Equal(t, "10.0.0.2:2", dialed)
	assert.Equal(t, "creds", certDir)
	assert.True(t, sess.Connected())
	assert.Equal(t, testPeerKey, sess.PeerPublicKey)
	assert.Equal(t, "Connecting to b (10.0.0.2:2)\nSetting up secure channel...\nDone\n", out.String())
}

func TestScanClosesPreviousSessionAndHandlesFailure(t *testing.T) {
	browser := discoverymocks.NewMockBrowser(t)
	old := mocks.NewMockSecureStream(t)
	old.EXPECT().Close().Return(nil).Once()
	browser.EXPECT().Browse(mock.Anything).Return([]discovery.Device{{Instance: "a", Port: 1}}, nil).Once()

	cmd := &ScanCommand{
		Browser:  browser,
		Selector: discovery.SelectorFunc(func(d []discovery.Device) (discovery.Device, bool) { return d[0], true }),
		Connector: ConnectorFunc(func(context.Context, string, string) (session.SecureStream, error) {
			return nil, errors.New("handshake failed")
		}),
	}
	out := &bytes.Buffer{}
	sess := session.New(out, session.DefaultOptions(), nil)
	sess.Stream = old
	sess.PeerChallenge = []byte("12345678")

	cmd.Execute(context.Background(), nil, sess)

	assert.False(t, sess.Connected())
	assert.Nil(t, sess.PeerChallenge)
	assert.Contains(t, out.String(), "Secure channel not established.")
}

func TestScanNoDevicesOrSelection(t *testing.T) {
	browser := discoverymocks.NewMockBrowser(t)
	browser.EXPECT().Browse(mock.Anything).Return(nil, discovery.ErrNoDevices).Once()
	browser.EXPECT().Browse(mock.Anything).Return([]discovery.Device{{Instance: "a"}}, nil).Once()

	cmd := &ScanCommand{
		Browser:  browser,
		Selector: discovery.SelectorFunc(func([]discovery.Device) (discovery.Device, bool) { return discovery.Device{}, false }),
		Connector: ConnectorFunc(func(context.Context, string, string) (session.SecureStream, error) {
			t.Fatal("connector must not be called")
			return nil, nil
		}),
	}
	out := &bytes.Buffer{}
	sess := session.New(out, session.DefaultOptions(), nil)

	cmd.Execute(context.Background(), nil, sess)
	assert.Contains(t, out.String(), "No TCAT devices found.")

	out.Reset()
	assert.Equal(t, NoResult{}, cmd.Execute(context.Background(), nil, sess))
	assert.Empty(t, out.String())
}

func TestConnectAndDisconnect(t *testing.T) {
	stream := mocks.NewMockSecureStream(t)
	stream.EXPECT().PeerPublicKey().Return(testPeerKey).Once()
	stream.EXPECT().Close().Return(nil).Once()

	r := NewRegistry(Deps{Connector: ConnectorFunc(func(_ context.Context, addr, _ string) (session.SecureStream, error) {
		assert.Equal(t, "127.0.0.1:5684", addr)
		return stream, nil
	})})
	out := &bytes.Buffer{}
	sess := session.New(out, session.DefaultOptions(), nil)
	ctx := context.Background()

	_, _ = r.Execute(ctx, []string{"connect"}, sess)
	assert.Contains(t, out.String(), "missing device address")
	assert.False(t, sess.Connected())

	_, _ = r.Execute(ctx, []string{"connect", "127.0.0.1:5684"}, sess)
	assert.True(t, sess.Connected())

	out.Reset()
	_, _ = r.Execute(ctx, []string{"disconnect"}, sess)
	assert.False(t, sess.Connected())
	assert.Equal(t, "Disconnected.\n", out.String())

	out.Reset()
	_, _ = r.Execute(ctx, []string{"disconnect"}, sess)
	assert.Equal(t, "TCAT device not connected.\n", out.String())
}

func TestConnectionCommandsWithoutDependencies(t *testing.T) {
	r := NewRegistry(Deps{})
	out := &bytes.Buffer{}
	sess := session.New(out, session.DefaultOptions(), nil)

	_, err := r.Execute(context.Background(), []string{"scan"}, sess)
	require.NoError(t, err)
	assert.Equal(t, "Device discovery not available.\n", out.String())

	out.Reset()
	_, err = r.Execute(context.Background(), []string{"connect", "127.0.0.1:12345"}, sess)
	require.NoError(t, err)
	assert.Equal(t, "Secure channel not available.\n", out.String())
	assert.False(t, sess.Connected())
}
