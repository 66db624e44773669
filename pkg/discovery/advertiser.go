package discovery

import (
	"fmt"
	"net"

	"github.com/enbility/zeroconf/v3"
)

// AdvertiseInfo describes a TCAT service to publish.
type AdvertiseInfo struct {
	Instance  string
	Port      int
	TXT       map[string]string
	Interface string
}

// Advertisement is a published service. Shutdown withdraws it.
type Advertisement struct {
	server *zeroconf.Server
}

// Advertise publishes a TCAT service on the local network.
func Advertise(info AdvertiseInfo) (*Advertisement, error) {
	var ifaces []net.Interface
	if info.Interface != "" {
		iface, err := net.InterfaceByName(info.Interface)
		if err != nil {
			return nil, fmt.Errorf("interface %s: %w", info.Interface, err)
		}
		ifaces = []net.Interface{*iface}
	}

	server, err := zeroconf.Register(
		info.Instance,
		ServiceType,
		Domain,
		info.Port,
		encodeTXT(info.TXT),
		ifaces,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register TCAT service: %w", err)
	}
	return &Advertisement{server: server}, nil
}

// Shutdown withdraws the advertisement.
func (a *Advertisement) Shutdown() {
	if a != nil && a.server != nil {
		a.server.Shutdown()
	}
}
