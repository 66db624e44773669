package discovery

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/enbility/zeroconf/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeResolver replays a fixed set of entries.
type fakeResolver struct {
	entries []*zeroconf.ServiceEntry
	err     error

	service string
	domain  string
}

func (f *fakeResolver) Browse(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error {
	f.service, f.domain = service, domain
	for _, e := range f.entries {
		select {
		case entries <- e:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return f.err
}

func entry(instance string, port int, txt []string, ips ...string) *zeroconf.ServiceEntry {
	e := &zeroconf.ServiceEntry{
		ServiceRecord: zeroconf.ServiceRecord{
			Instance: instance,
			Service:  ServiceType,
			Domain:   Domain,
		},
		HostName: instance + ".local.",
		Port:     port,
		Text:     txt,
	}
	for _, s := range ips {
		ip := net.ParseIP(s)
		if ip.To4() != nil {
			e.AddrIPv4 = append(e.AddrIPv4, ip)
		} else {
			e.AddrIPv6 = append(e.AddrIPv6, ip)
		}
	}
	return e
}

func TestMDNSBrowserMergesInstances(t *testing.T) {
	resolver := &fakeResolver{entries: []*zeroconf.ServiceEntry{
		entry("thermostat", 5684, []string{"vn=Acme", "flag"}, "192.168.1.20"),
		entry("bulb", 5684, nil, "fe80::1"),
		entry("thermostat", 5684, nil, "fd00::20", "192.168.1.20"),
	}}
	b := NewMDNSBrowser(BrowserConfig{Resolver: resolver, Timeout: time.Second})

	devices, err := b.Browse(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 2)

	assert.Equal(t, "bulb", devices[0].Instance)
	assert.Equal(t, "[fe80::1]:5684", devices[0].Address())

	th := devices[1]
	assert.Equal(t, "thermostat", th.Instance)
	assert.Equal(t, []string{"192.168.1.20", "fd00::20"}, th.Addresses)
	assert.Equal(t, "192.168.1.20:5684", th.Address())
	assert.Equal(t, map[string]string{"vn": "Acme", "flag": ""}, th.TXT)

	assert.Equal(t, ServiceType, resolver.service)
	assert.Equal(t, Domain, resolver.domain)
}

func TestMDNSBrowserNoDevices(t *testing.T) {
	b := NewMDNSBrowser(BrowserConfig{Resolver: &fakeResolver{}, Timeout: 50 * time.Millisecond})
	_, err := b.Browse(context.Background())
	assert.ErrorIs(t, err, ErrNoDevices)
}

func TestMDNSBrowserResolverError(t *testing.T) {
	boom := errors.New("socket closed")
	b := NewMDNSBrowser(BrowserConfig{Resolver: &fakeResolver{err: boom}, Timeout: time.Second})
	_, err := b.Browse(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestDeviceAddressFallsBackToHost(t *testing.T) {
	d := Device{Instance: "x", Host: "x.local.", Port: 12}
	assert.Equal(t, "x.local:12", d.Address())
}

func TestSelectByIndex(t *testing.T) {
	devices := []Device{{Instance: "a"}, {Instance: "b"}}

	d, ok := SelectByIndex(devices, " 2 ")
	require.True(t, ok)
	assert.Equal(t, "b", d.Instance)

	for _, answer := range []string{"", "0", "3", "x"} {
		_, ok := SelectByIndex(devices, answer)
		assert.False(t, ok, "answer %q", answer)
	}
}
