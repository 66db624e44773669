package devicesim

import (
	"crypto/hmac"
	"crypto/rand"

	"golang.org/x/crypto/cryptobyte"

	"github.com/espressif/openthread/pkg/command"
	"github.com/espressif/openthread/pkg/tcat"
	"github.com/espressif/openthread/pkg/tlv"
)

// connState is the per-commissioner state of a device.
type connState struct {
	peerKey  []byte
	peerCert []byte

	// challenge is the last random number handed to the commissioner.
	challenge []byte

	// authorized is set once a credential proof has been verified.
	authorized bool
}

// handle answers one request. closeConn asks the caller to drop the stream
// without a response.
func (d *Device) handle(st *connState, rec tlv.TLV) (resp []byte, closeConn bool) {
	switch typ := tcat.Type(rec.Type); typ {
	case tcat.Disconnect:
		return nil, true

	case tcat.Ping:
		return payload(rec.Value), false

	case tcat.GetNetworkName:
		return payload([]byte(d.config.NetworkName)), false
	case tcat.GetDeviceID:
		return payload(d.config.DeviceID), false
	case tcat.GetExtPanID:
		return payload(d.config.ExtPanID), false
	case tcat.GetProvisioningURL:
		return payload([]byte(d.config.ProvisioningURL)), false

	case tcat.GetRandomNumberChallenge:
		challenge := make([]byte, command.ChallengeSize)
		if _, err := rand.Read(challenge); err != nil {
			return status(tcat.StatusGeneralError), false
		}
		st.challenge = challenge
		return payload(challenge), false

	case tcat.PresentPskdHash:
		return d.verifyProof(st, []byte(d.config.PSKd), rec.Value), false
	case tcat.PresentPskcHash:
		return d.verifyProof(st, d.config.PSKc, rec.Value), false
	case tcat.PresentInstallCodeHash:
		return d.verifyProof(st, []byte(d.config.InstallCode), rec.Value), false

	case tcat.GetPskdHash:
		if len(rec.Value) == 0 {
			return status(tcat.StatusValueError), false
		}
		return payload(command.ComputeProof([]byte(d.config.PSKd), rec.Value, d.ownKey)), false

	case tcat.GetCommissionerCertificate:
		if st.peerCert == nil {
			return status(tcat.StatusGeneralError), false
		}
		return payload(st.peerCert), false

	case tcat.GetApplicationLayers:
		return d.applicationLayers(), false

	case tcat.GetDiagnosticTlvs:
		return d.diagnostics(rec.Value), false

	case tcat.ApplicationData1, tcat.ApplicationData2, tcat.ApplicationData3,
		tcat.ApplicationData4, tcat.VendorApplication:
		return status(tcat.StatusSuccess), false

	case tcat.GetActiveDataset:
		d.mu.Lock()
		defer d.mu.Unlock()
		if len(d.dataset) == 0 {
			return status(tcat.StatusGeneralError), false
		}
		return payload(d.dataset), false

	case tcat.ActiveDataset:
		if !d.permitted(st) {
			return status(tcat.StatusUnauthorized), false
		}
		if len(rec.Value) == 0 {
			return status(tcat.StatusValueError), false
		}
		d.mu.Lock()
		d.dataset = append([]byte(nil), rec.Value...)
		d.mu.Unlock()
		return status(tcat.StatusSuccess), false

	case tcat.Decommission:
		if !d.permitted(st) {
			return status(tcat.StatusUnauthorized), false
		}
		d.mu.Lock()
		d.dataset = nil
		d.thread = false
		d.mu.Unlock()
		return status(tcat.StatusSuccess), false

	case tcat.ThreadStart:
		if !d.permitted(st) {
			return status(tcat.StatusUnauthorized), false
		}
		d.mu.Lock()
		defer d.mu.Unlock()
		if len(d.dataset) == 0 {
			return status(tcat.StatusGeneralError), false
		}
		d.thread = true
		return status(tcat.StatusSuccess), false

	case tcat.ThreadStop:
		if !d.permitted(st) {
			return status(tcat.StatusUnauthorized), false
		}
		d.mu.Lock()
		d.thread = false
		d.mu.Unlock()
		return status(tcat.StatusSuccess), false

	default:
		return status(tcat.StatusUnsupported), false
	}
}

func (d *Device) permitted(st *connState) bool {
	return !d.config.RequireProof || st.authorized
}

// verifyProof checks HMAC(credential, challenge || own public key). The
// challenge is single use.
func (d *Device) verifyProof(st *connState, credential, proof []byte) []byte {
	if st.challenge == nil {
		return status(tcat.StatusUndefined)
	}
	expected := command.ComputeProof(credential, st.challenge, d.ownKey)
	st.challenge = nil
	if !hmac.Equal(expected, proof) {
		return status(tcat.StatusHashError)
	}
	st.authorized = true
	return status(tcat.StatusSuccess)
}

func (d *Device) applicationLayers() []byte {
	var recs []tlv.TLV
	for _, app := range d.config.Applications {
		typ := tcat.ServiceNameUDP
		if app.TCP {
			typ = tcat.ServiceNameTCP
		}
		recs = append(recs, tlv.New(uint8(typ), []byte(app.Name)))
	}
	value, err := tlv.EncodeAll(recs...)
	if err != nil {
		return status(tcat.StatusGeneralError)
	}
	return payload(value)
}

// diagnostics answers with the requested diagnostic TLVs in network
// diagnostic encoding (1-byte length). Unknown types are skipped.
func (d *Device) diagnostics(types []byte) []byte {
	if len(types) == 0 {
		return status(tcat.StatusValueError)
	}
	b := cryptobyte.NewBuilder(nil)
	for _, t := range types {
		value, ok := d.config.Diagnostics[tcat.DiagnosticType(t)]
		if !ok || len(value) > 0xfe {
			continue
		}
		b.AddUint8(t)
		b.AddUint8LengthPrefixed(func(b *cryptobyte.Builder) {
			b.AddBytes(value)
		})
	}
	out, err := b.Bytes()
	if err != nil {
		return status(tcat.StatusGeneralError)
	}
	return payload(out)
}

func status(s tcat.Status) []byte {
	return tlv.MustEncode(uint8(tcat.ResponseWithStatus), []byte{uint8(s)})
}

func payload(value []byte) []byte {
	return tlv.MustEncode(uint8(tcat.ResponseWithPayload), value)
}
