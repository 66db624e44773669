package discovery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"
)

const (
	// ServiceType is the DNS-SD service type of TCAT devices.
	ServiceType = "_tcat._tcp"

	// Domain is the mDNS domain.
	Domain = "local."

	// BrowseTimeout is the default duration of a scan.
	BrowseTimeout = 5 * time.Second
)

// ErrNoDevices is returned when a scan finds nothing.
var ErrNoDevices = errors.New("no TCAT devices found")

// Device is a discovered TCAT device.
type Device struct {
	Instance  string
	Host      string
	Port      int
	Addresses []string
	TXT       map[string]string
}

// Address returns host:port for dialing the device. IPv4 addresses are
// preferred over IPv6, and the host name is used when no address resolved.
func (d Device) Address() string {
	host := strings.TrimSuffix(d.Host, ".")
	var v6 string
	for _, a := range d.Addresses {
		ip := net.ParseIP(a)
		if ip == nil {
			continue
		}
		if ip.To4() != nil {
			host = a
			v6 = ""
			break
		}
		if v6 == "" {
			v6 = a
		}
	}
	if v6 != "" {
		host = v6
	}
	return net.JoinHostPort(host, strconv.Itoa(d.Port))
}

func (d Device) String() string {
	return fmt.Sprintf("%s (%s)", d.Instance, d.Address())
}

// Browser finds TCAT devices.
type Browser interface {
	// Browse scans for devices until the scan period or ctx ends and returns
	// what was found. An empty result is reported as ErrNoDevices.
	Browse(ctx context.Context) ([]Device, error)
}

// Selector picks one device out of a scan result. It returns false when
// nothing was chosen.
type Selector interface {
	Select(devices []Device) (Device, bool)
}

// SelectorFunc adapts a function to a Selector.
type SelectorFunc func(devices []Device) (Device, bool)

func (f SelectorFunc) Select(devices []Device) (Device, bool) { return f(devices) }

// PrintDevices writes a numbered device list, starting at 1.
func PrintDevices(w io.Writer, devices []Device) {
	fmt.Fprintln(w, "Found TCAT devices:")
	for i, d := range devices {
		fmt.Fprintf(w, "%d: %s\n", i+1, d)
	}
}

// SelectByIndex resolves a 1-based index typed by the user. An empty or out
// of range answer selects nothing.
func SelectByIndex(devices []Device, answer string) (Device, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil || n < 1 || n > len(devices) {
		return Device{}, false
	}
	return devices[n-1], true
}

// parseTXT converts key=value TXT strings into a map. Keys without a value
// map to the empty string.
func parseTXT(txt []string) map[string]string {
	m := make(map[string]string, len(txt))
	for _, kv := range txt {
		if kv == "" {
			continue
		}
		k, v, _ := strings.Cut(kv, "=")
		m[k] = v
	}
	return m
}

// encodeTXT is the inverse of parseTXT with keys in map iteration order.
func encodeTXT(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+"="+v)
	}
	return out
}
