package discovery

import (
	"context"
	"net"
	"sort"
	"time"

	"github.com/enbility/zeroconf/v3"
)

// Resolver streams DNS-SD browse results for a service type until ctx ends.
type Resolver interface {
	Browse(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error
}

// BrowserConfig configures an MDNSBrowser.
type BrowserConfig struct {
	// Service is the DNS-SD service type. Default: ServiceType.
	Service string

	// Domain is the mDNS domain. Default: Domain.
	Domain string

	// Timeout is how long a scan collects answers. Default: BrowseTimeout.
	Timeout time.Duration

	// Interface restricts browsing to one network interface.
	// Empty string means all interfaces.
	Interface string

	// Resolver overrides the zeroconf resolver. Set this in tests.
	Resolver Resolver
}

// MDNSBrowser implements Browser using zeroconf.
type MDNSBrowser struct {
	config BrowserConfig
}

// NewMDNSBrowser creates a browser, filling unset config fields with defaults.
func NewMDNSBrowser(config BrowserConfig) *MDNSBrowser {
	if config.Service == "" {
		config.Service = ServiceType
	}
	if config.Domain == "" {
		config.Domain = Domain
	}
	if config.Timeout <= 0 {
		config.Timeout = BrowseTimeout
	}
	if config.Resolver == nil {
		config.Resolver = &zeroconfResolver{opts: clientOptions(config.Interface)}
	}
	return &MDNSBrowser{config: config}
}

// Browse collects devices for the configured timeout. Answers for the same
// instance from several interfaces are merged into one Device.
func (b *MDNSBrowser) Browse(ctx context.Context) ([]Device, error) {
	ctx, cancel := context.WithTimeout(ctx, b.config.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	errc := make(chan error, 1)
	go func() {
		errc <- b.config.Resolver.Browse(ctx, b.config.Service, b.config.Domain, entries)
	}()

	found := make(map[string]*Device)
	var order []string
collect:
	for {
		select {
		case entry := <-entries:
			d := entryToDevice(entry)
			if existing, ok := found[d.Instance]; ok {
				existing.Addresses = mergeAddresses(existing.Addresses, d.Addresses)
				continue
			}
			found[d.Instance] = &d
			order = append(order, d.Instance)
		case err := <-errc:
			if err != nil && ctx.Err() == nil {
				return nil, err
			}
			break collect
		case <-ctx.Done():
			break collect
		}
	}

	if len(order) == 0 {
		return nil, ErrNoDevices
	}
	sort.Strings(order)
	devices := make([]Device, 0, len(order))
	for _, name := range order {
		devices = append(devices, *found[name])
	}
	return devices, nil
}

func entryToDevice(entry *zeroconf.ServiceEntry) Device {
	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}
	return Device{
		Instance:  entry.Instance,
		Host:      entry.HostName,
		Port:      entry.Port,
		Addresses: addrs,
		TXT:       parseTXT(entry.Text),
	}
}

// mergeAddresses adds new addresses to existing list, avoiding duplicates.
func mergeAddresses(existing, added []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, addr := range existing {
		seen[addr] = true
	}
	for _, addr := range added {
		if !seen[addr] {
			existing = append(existing, addr)
			seen[addr] = true
		}
	}
	return existing
}

func clientOptions(ifaceName string) []zeroconf.ClientOption {
	if ifaceName == "" {
		return nil
	}
	iface, err := net.InterfaceByName(ifaceName)
	if err != nil {
		return nil
	}
	return []zeroconf.ClientOption{zeroconf.SelectIfaces([]net.Interface{*iface})}
}

// zeroconfResolver browses the network.
type zeroconfResolver struct {
	opts []zeroconf.ClientOption
}

func (r *zeroconfResolver) Browse(ctx context.Context, service, domain string, out chan<- *zeroconf.ServiceEntry) error {
	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)
	errc := make(chan error, 1)
	go func() {
		errc <- zeroconf.Browse(ctx, service, domain, entries, removed, r.opts...)
	}()

	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				return nil
			}
			select {
			case out <- entry:
			case <-ctx.Done():
				return nil
			}
		case <-removed:
		case err := <-errc:
			if err != nil {
				return err
			}
			errc = nil
		case <-ctx.Done():
			return nil
		}
	}
}

var _ Browser = (*MDNSBrowser)(nil)
