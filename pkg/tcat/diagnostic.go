package tcat

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrUnknownDiagnostic is returned when a diagnostic TLV name or number
// cannot be resolved.
var ErrUnknownDiagnostic = errors.New("unknown diagnostic TLV")

// DiagnosticType is a Thread network diagnostic TLV type.
type DiagnosticType uint8

// Diagnostic TLV types that a TCAT device may report.
const (
	DiagExtAddress           DiagnosticType = 0
	DiagShortAddress         DiagnosticType = 1
	DiagMode                 DiagnosticType = 2
	DiagTimeout              DiagnosticType = 3
	DiagConnectivity         DiagnosticType = 4
	DiagRoute64              DiagnosticType = 5
	DiagLeaderData           DiagnosticType = 6
	DiagNetworkData          DiagnosticType = 7
	DiagIPv6AddressList      DiagnosticType = 8
	DiagMACCounters          DiagnosticType = 9
	DiagBatteryLevel         DiagnosticType = 14
	DiagSupplyVoltage        DiagnosticType = 15
	DiagChildTable           DiagnosticType = 16
	DiagChannelPages         DiagnosticType = 17
	DiagTypeList             DiagnosticType = 18
	DiagMaxChildTimeout      DiagnosticType = 19
	DiagEUI64                DiagnosticType = 23
	DiagVersion              DiagnosticType = 24
	DiagVendorName           DiagnosticType = 25
	DiagVendorModel          DiagnosticType = 26
	DiagVendorSWVersion      DiagnosticType = 27
	DiagThreadStackVersion   DiagnosticType = 28
	DiagChild                DiagnosticType = 29
	DiagChildIPv6AddressList DiagnosticType = 30
	DiagRouterNeighbor       DiagnosticType = 31
	DiagAnswer               DiagnosticType = 32
	DiagQueryID              DiagnosticType = 33
	DiagMLECounters          DiagnosticType = 34
	DiagVendorAppURL         DiagnosticType = 35
)

var diagnosticNames = map[string]DiagnosticType{
	"EXT_ADDRESS":             DiagExtAddress,
	"SHORT_ADDRESS":           DiagShortAddress,
	"MODE":                    DiagMode,
	"TIMEOUT":                 DiagTimeout,
	"CONNECTIVITY":            DiagConnectivity,
	"ROUTE64":                 DiagRoute64,
	"LEADER_DATA":             DiagLeaderData,
	"NETWORK_DATA":            DiagNetworkData,
	"IPV6_ADDRESS_LIST":       DiagIPv6AddressList,
	"MAC_COUNTERS":            DiagMACCounters,
	"BATTERY_LEVEL":           DiagBatteryLevel,
	"SUPPLY_VOLTAGE":          DiagSupplyVoltage,
	"CHILD_TABLE":             DiagChildTable,
	"CHANNEL_PAGES":           DiagChannelPages,
	"TYPE_LIST":               DiagTypeList,
	"MAX_CHILD_TIMEOUT":       DiagMaxChildTimeout,
	"EUI64":                   DiagEUI64,
	"VERSION":                 DiagVersion,
	"VENDOR_NAME":             DiagVendorName,
	"VENDOR_MODEL":            DiagVendorModel,
	"VENDOR_SW_VERSION":       DiagVendorSWVersion,
	"THREAD_STACK_VERSION":    DiagThreadStackVersion,
	"CHILD":                   DiagChild,
	"CHILD_IPV6_ADDRESS_LIST": DiagChildIPv6AddressList,
	"ROUTER_NEIGHBOR":         DiagRouterNeighbor,
	"ANSWER":                  DiagAnswer,
	"QUERY_ID":                DiagQueryID,
	"MLE_COUNTERS":            DiagMLECounters,
	"VENDOR_APP_URL":          DiagVendorAppURL,
}

// DiagnosticName pairs a diagnostic TLV name with its type code.
type DiagnosticName struct {
	Name string
	Type DiagnosticType
}

// DiagnosticNames returns all known diagnostic TLV names ordered by code.
func DiagnosticNames() []DiagnosticName {
	out := make([]DiagnosticName, 0, len(diagnosticNames))
	for name, typ := range diagnosticNames {
		out = append(out, DiagnosticName{Name: name, Type: typ})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// LookupDiagnostic resolves a diagnostic TLV by name (case-insensitive) or by
// a decimal or 0x-prefixed numeric literal in the range 0..255.
func LookupDiagnostic(s string) (DiagnosticType, error) {
	if typ, ok := diagnosticNames[strings.ToUpper(s)]; ok {
		return typ, nil
	}
	n, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownDiagnostic, s)
	}
	return DiagnosticType(n), nil
}

// ParseDiagnosticTypes resolves every argument and returns the type codes as
// a byte sequence ready to be sent. An empty argument list is an error.
func ParseDiagnosticTypes(args []string) ([]byte, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: no types given", ErrUnknownDiagnostic)
	}
	out := make([]byte, 0, len(args))
	for _, a := range args {
		typ, err := LookupDiagnostic(a)
		if err != nil {
			return nil, err
		}
		out = append(out, byte(typ))
	}
	return out, nil
}
