package tcat

import "fmt"

// Type is a TCAT TLV type code.
type Type uint8

// General command class.
const (
	ResponseWithStatus       Type = 0x01
	ResponseWithPayload      Type = 0x02
	ResponseEvent            Type = 0x03
	GetNetworkName           Type = 0x08
	Disconnect               Type = 0x09
	Ping                     Type = 0x0A
	GetDeviceID              Type = 0x0B
	GetExtPanID              Type = 0x0C
	GetProvisioningURL       Type = 0x0D
	PresentPskdHash          Type = 0x10
	PresentPskcHash          Type = 0x11
	PresentInstallCodeHash   Type = 0x12
	GetRandomNumberChallenge Type = 0x13
	GetPskdHash              Type = 0x14
)

// Commissioning command class.
const (
	ActiveDataset              Type = 0x20
	GetCommissionerCertificate Type = 0x25
	GetDiagnosticTlvs          Type = 0x26
	ThreadStart                Type = 0x27
	ThreadStop                 Type = 0x28
	GetActiveDataset           Type = 0x40
)

// Extraction and application command classes.
const (
	Decommission         Type = 0x60
	GetApplicationLayers Type = 0x61
	ServiceNameUDP       Type = 0x80
	ServiceNameTCP       Type = 0x81
	ApplicationData1     Type = 0x82
	ApplicationData2     Type = 0x83
	ApplicationData3     Type = 0x84
	ApplicationData4     Type = 0x85
	VendorApplication    Type = 0x9F
)

var typeNames = map[Type]string{
	ResponseWithStatus:         "RESPONSE_W_STATUS",
	ResponseWithPayload:        "RESPONSE_W_PAYLOAD",
	ResponseEvent:              "RESPONSE_EVENT",
	GetNetworkName:             "GET_NETWORK_NAME",
	Disconnect:                 "DISCONNECT",
	Ping:                       "PING",
	GetDeviceID:                "GET_DEVICE_ID",
	GetExtPanID:                "GET_EXT_PAN_ID",
	GetProvisioningURL:         "GET_PROVISIONING_URL",
	PresentPskdHash:            "PRESENT_PSKD_HASH",
	PresentPskcHash:            "PRESENT_PSKC_HASH",
	PresentInstallCodeHash:     "PRESENT_INSTALL_CODE_HASH",
	GetRandomNumberChallenge:   "GET_RANDOM_NUMBER_CHALLENGE",
	GetPskdHash:                "GET_PSKD_HASH",
	ActiveDataset:              "ACTIVE_DATASET",
	GetCommissionerCertificate: "GET_COMMISSIONER_CERTIFICATE",
	GetDiagnosticTlvs:          "GET_DIAGNOSTIC_TLVS",
	ThreadStart:                "THREAD_START",
	ThreadStop:                 "THREAD_STOP",
	GetActiveDataset:           "GET_ACTIVE_DATASET",
	Decommission:               "DECOMMISSION",
	GetApplicationLayers:       "GET_APPLICATION_LAYERS",
	ServiceNameUDP:             "SERVICE_NAME_UDP",
	ServiceNameTCP:             "SERVICE_NAME_TCP",
	ApplicationData1:           "APPLICATION_DATA_1",
	ApplicationData2:           "APPLICATION_DATA_2",
	ApplicationData3:           "APPLICATION_DATA_3",
	ApplicationData4:           "APPLICATION_DATA_4",
	VendorApplication:          "VENDOR_APPLICATION",
}

// String returns the protocol name of the type.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(0x%02x)", uint8(t))
}

// IsResponse reports whether t is one of the response types a device sends.
func (t Type) IsResponse() bool {
	return t == ResponseWithStatus || t == ResponseWithPayload || t == ResponseEvent
}
