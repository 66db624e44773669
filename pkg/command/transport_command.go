package command

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/espressif/openthread/pkg/session"
	"github.com/espressif/openthread/pkg/tcat"
	"github.com/espressif/openthread/pkg/tlv"
)

// Kind identifies a device operation.
type Kind uint8

const (
	KindHello Kind = iota
	KindGetApplicationLayers
	KindApplicationData1
	KindApplicationData2
	KindApplicationData3
	KindApplicationData4
	KindVendorData
	KindCommission
	KindDecommission
	KindExtractDataset
	KindGetCommissionerCertificate
	KindGetDeviceID
	KindGetExtPanID
	KindGetProvisioningURL
	KindGetNetworkName
	KindRandomChallenge
	KindPresentHash
	KindPeerPskdHash
	KindPing
	KindDiagnosticTlvs
	KindThreadStart
	KindThreadStop
	KindRawTLV
)

type kindInfo struct {
	name   string
	help   string
	banner string
	typ    tcat.Type
}

var kinds = map[Kind]kindInfo{
	KindHello:                      {"hello", `Send round trip "Hello world!" message.`, "Sending hello world...", tcat.VendorApplication},
	KindGetApplicationLayers:       {"get_apps", "Get supported application layer service names from device.", "Getting application layers....", tcat.GetApplicationLayers},
	KindApplicationData1:           {"appdata1", "Send hex encoded data to application layer 1.", "Sending data to application layer 1....", tcat.ApplicationData1},
	KindApplicationData2:           {"appdata2", "Send hex encoded data to application layer 2.", "Sending data to application layer 2....", tcat.ApplicationData2},
	KindApplicationData3:           {"appdata3", "Send hex encoded data to application layer 3.", "Sending data to application layer 3....", tcat.ApplicationData3},
	KindApplicationData4:           {"appdata4", "Send hex encoded data to application layer 4.", "Sending data to application layer 4....", tcat.ApplicationData4},
	KindVendorData:                 {"vendor_data", "Send hex encoded data to vendor specific application layer.", "Sending data to vendor specific application layer....", tcat.VendorApplication},
	KindCommission:                 {"commission", "Update the connected device with current dataset.", "Commissioning...", tcat.ActiveDataset},
	KindDecommission:               {"decommission", "Stop Thread interface and decommission device from current network.", "Disabling Thread and decommissioning device...", tcat.Decommission},
	KindExtractDataset:             {"get_dataset", "Get active dataset from device.", "Getting active dataset.", tcat.GetActiveDataset},
	KindGetCommissionerCertificate: {"get_comm_cert", "Get commissioner certificate from device.", "Getting commissioner certificate.", tcat.GetCommissionerCertificate},
	KindGetDeviceID:                {"device_id", "Get unique identifier for the TCAT device.", "Retrieving device id.", tcat.GetDeviceID},
	KindGetExtPanID:                {"ext_panid", "Get extended PAN ID that is commissioned in the active dataset.", "Retrieving extended PAN ID.", tcat.GetExtPanID},
	KindGetProvisioningURL:         {"provisioning_url", "Get a URL for an application suited to commission the TCAT device.", "Retrieving provisioning url.", tcat.GetProvisioningURL},
	KindGetNetworkName:             {"network_name", "Get the Thread network name that is commissioned in the active dataset.", "Retrieving network name.", tcat.GetNetworkName},
	KindRandomChallenge:            {"random_challenge", "Get the device random number challenge.", "Retrieving random challenge.", tcat.GetRandomNumberChallenge},
	KindPresentHash:                {"present_hash", "Present calculated hash. Usage: present_hash <pskd|pskc|install> <value>", "Presenting hash.", tcat.PresentPskdHash},
	KindPeerPskdHash:               {"peer_pskd_hash", "Get calculated PSKd hash. Usage: peer_pskd_hash <pskd>", "Retrieving peer PSKd hash.", tcat.GetPskdHash},
	KindPing:                       {"ping", "Send echo request to TCAT device. Usage: ping [size]", "Sending echo request...", tcat.Ping},
	KindDiagnosticTlvs:             {"diagnostic_tlvs", "Get diagnostic TLVs from the TCAT device.", "Retrieving diagnostic information.", tcat.GetDiagnosticTlvs},
	KindThreadStart:                {"start", "Enable thread interface.", "Enabling Thread...", tcat.ThreadStart},
	KindThreadStop:                 {"stop", "Disable thread interface.", "Disabling Thread...", tcat.ThreadStop},
	KindRawTLV:                     {"tlv_send", "Send a raw TLV. Usage: tlv send <type> [hex value]", "Sending TLV...", 0},
}

// String returns the command name associated with the kind.
func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

const (
	// DefaultPingPayload is the echo payload size used when none is given.
	DefaultPingPayload = 10
	// MaxPingPayload is the largest echo payload accepted.
	MaxPingPayload = 512
)

// request is the outcome of prepare. Everything process needs from the
// request phase travels here rather than on the command.
type request struct {
	data           []byte
	expectedDigest []byte
	payload        []byte
	elapsed        time.Duration
}

// TransportCommand is a command that sends one TLV to the device and
// processes its response.
type TransportCommand struct {
	Kind Kind
}

// NewTransportCommand returns the transport command for kind.
func NewTransportCommand(kind Kind) *TransportCommand {
	return &TransportCommand{Kind: kind}
}

func (c *TransportCommand) Help() string {
	return kinds[c.Kind].help
}

func (c *TransportCommand) Execute(ctx context.Context, args []string, sess *session.Session) Result {
	if sess.Stream == nil {
		fmt.Fprintln(sess.Out, "TCAT device not connected.")
		return NoResult{}
	}
	fmt.Fprintln(sess.Out, kinds[c.Kind].banner)

	req, err := prepare(c.Kind, args, sess)
	if err != nil {
		fmt.Fprintf(sess.Out, "Command failed: %v\n", err)
		sess.Logger.Debug("request not prepared", "command", c.Kind, "error", err)
		return NoResult{}
	}

	rctx, cancel := sess.RequestContext(ctx)
	defer cancel()

	start := time.Now()
	raw, err := sess.Stream.SendWithResponse(rctx, req.data)
	if err != nil {
		fmt.Fprintf(sess.Out, "Command failed: %v\n", err)
		sess.Logger.Warn("request failed", "command", c.Kind, "error", err)
		// The stream may still hold a late reply and cannot be reused.
		dropStream(sess)
		return NoResult{}
	}
	if raw == nil {
		sess.Logger.Debug("no response", "command", c.Kind)
		dropStream(sess)
		return NoResult{}
	}

	resp, _, err := tlv.Decode(raw)
	if err != nil {
		fmt.Fprintf(sess.Out, "Command failed: %v\n", err)
		return NoResult{}
	}
	req.elapsed = time.Since(start)
	sess.Logger.Debug("response received", "command", c.Kind, "type", tcat.Type(resp.Type), "len", resp.Len())

	process(c.Kind, resp, req, sess)
	return TLVResult{TLV: resp}
}

func dropStream(sess *session.Session) {
	if err := sess.Detach(); err != nil {
		sess.Logger.Debug("close session", "error", err)
	}
	fmt.Fprintln(sess.Out, "TCAT device disconnected.")
}

func prepare(kind Kind, args []string, sess *session.Session) (request, error) {
	info := kinds[kind]
	switch kind {
	case KindHello:
		return encodeRequest(info.typ, []byte("Hello world!"))

	case KindApplicationData1, KindApplicationData2, KindApplicationData3,
		KindApplicationData4, KindVendorData:
		payload, err := hexArg(args, 0)
		if err != nil {
			return request{}, err
		}
		return encodeRequest(info.typ, payload)

	case KindCommission:
		if sess.Dataset.Empty() {
			return request{}, notPrepared("commissioning dataset is empty")
		}
		return encodeRequest(info.typ, sess.Dataset.Bytes())

	case KindPresentHash:
		return preparePresentHash(args, sess)

	case KindPeerPskdHash:
		return preparePeerPskdHash(args, sess)

	case KindPing:
		return preparePing(args)

	case KindDiagnosticTlvs:
		types, err := tcat.ParseDiagnosticTypes(args)
		if err != nil {
			printDiagnosticUsage(sess)
			return request{}, notPrepared("%v", err)
		}
		return encodeRequest(info.typ, types)

	case KindRawTLV:
		return prepareRawTLV(args)

	default:
		return encodeRequest(info.typ, nil)
	}
}

func process(kind Kind, resp tlv.TLV, req request, sess *session.Session) {
	switch kind {
	case KindGetApplicationLayers:
		processApplicationLayers(resp, sess)
	case KindExtractDataset:
		processDataset(resp, sess)
	case KindGetCommissionerCertificate:
		processCommissionerCertificate(resp, sess)
	case KindRandomChallenge:
		processChallenge(resp, sess)
	case KindPeerPskdHash:
		processPeerPskdHash(resp, req, sess)
	case KindPing:
		processPing(resp, req, sess)
	case KindRawTLV:
		fmt.Fprintln(sess.Out, resp)
	default:
		reportResponse(sess.Out, resp)
	}
}

func encodeRequest(typ tcat.Type, value []byte) (request, error) {
	data, err := tlv.Encode(uint8(typ), value)
	if err != nil {
		return request{}, notPrepared("%v", err)
	}
	return request{data: data}, nil
}

func hexArg(args []string, i int) ([]byte, error) {
	if len(args) <= i {
		return nil, notPrepared("missing hex encoded argument")
	}
	b, err := hex.DecodeString(args[i])
	if err != nil {
		return nil, notPrepared("invalid hex %q", args[i])
	}
	return b, nil
}

func preparePing(args []string) (request, error) {
	size := DefaultPingPayload
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return request{}, notPrepared("invalid payload size %q", args[0])
		}
		if n > MaxPingPayload {
			return request{}, notPrepared("payload size too large, maximum supported value is %d", MaxPingPayload)
		}
		size = n
	}
	payload := make([]byte, size)
	if _, err := rand.Read(payload); err != nil {
		return request{}, notPrepared("generate payload: %v", err)
	}
	req, err := encodeRequest(tcat.Ping, payload)
	req.payload = payload
	return req, err
}

func prepareRawTLV(args []string) (request, error) {
	if len(args) == 0 {
		return request{}, notPrepared("missing TLV type")
	}
	typ, err := strconv.ParseUint(args[0], 0, 8)
	if err != nil {
		return request{}, notPrepared("invalid TLV type %q", args[0])
	}
	var value []byte
	if len(args) > 1 {
		if value, err = hexArg(args, 1); err != nil {
			return request{}, err
		}
	}
	return encodeRequest(tcat.Type(typ), value)
}

func printDiagnosticUsage(sess *session.Session) {
	fmt.Fprintln(sess.Out, "Please provide a list of diagnostic TLV types as names or numbers")
	fmt.Fprintln(sess.Out, "TLV Types:")
	for _, n := range tcat.DiagnosticNames() {
		fmt.Fprintf(sess.Out, "%s = %d,\n", n.Name, n.Type)
	}
}
