// Package devicesim implements a simulated TCAT device. It accepts secure
// streams from a commissioner, answers every TCAT request type and verifies
// credential proofs against configured PSKd, PSKc and install code values.
package devicesim

import (
	"context"
	"crypto/x509"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"

	"github.com/espressif/openthread/pkg/cert"
	"github.com/espressif/openthread/pkg/discovery"
	"github.com/espressif/openthread/pkg/log"
	"github.com/espressif/openthread/pkg/tcat"
	"github.com/espressif/openthread/pkg/tlv"
	"github.com/espressif/openthread/pkg/transport"
)

// Application is a service advertised in the application layer list.
type Application struct {
	// TCP selects ServiceNameTCP; otherwise ServiceNameUDP.
	TCP  bool
	Name string
}

// Config configures a simulated device.
type Config struct {
	// Address to listen on. Default: transport.DefaultAddress.
	Address string

	// TLS holds the device certificate and the CA commissioners chain to.
	TLS *transport.TLSConfig

	// Credentials checked by present hash requests. PSKc is raw bytes.
	PSKd        string
	PSKc        []byte
	InstallCode string

	NetworkName     string
	DeviceID        []byte
	ExtPanID        []byte
	ProvisioningURL string

	// ActiveDataset is the dataset the device starts with (may be empty).
	ActiveDataset []byte

	Applications []Application

	// Diagnostics holds the values returned for diagnostic TLV requests.
	Diagnostics map[tcat.DiagnosticType][]byte

	// RequireProof restricts commissioning and Thread control requests to
	// commissioners that presented a valid credential proof.
	RequireProof bool

	// Advertise publishes the device via mDNS under Instance.
	Advertise bool
	Instance  string

	Logger  *slog.Logger
	Capture log.Logger
}

// DefaultConfig returns a device with sample identity values.
func DefaultConfig() Config {
	return Config{
		PSKd:            "J01NME",
		PSKc:            []byte{0x44, 0x86, 0x1a, 0xd0, 0x1c, 0x87, 0x5d, 0x2e, 0x9a, 0x8c, 0x41, 0x04, 0x6c, 0x7c, 0x83, 0x3a},
		InstallCode:     "INSTALL01",
		NetworkName:     "OpenThread-sim",
		DeviceID:        []byte{0x18, 0xb4, 0x30, 0x00, 0x00, 0x00, 0x00, 0x01},
		ExtPanID:        []byte{0xde, 0xad, 0x00, 0xbe, 0xef, 0x00, 0xca, 0xfe},
		ProvisioningURL: "https://example.com/provision",
		Applications: []Application{
			{Name: "_coap._udp"},
			{TCP: true, Name: "_http._tcp"},
		},
		Diagnostics: map[tcat.DiagnosticType][]byte{
			tcat.DiagExtAddress:         {0x18, 0xb4, 0x30, 0x00, 0x00, 0x00, 0x00, 0x01},
			tcat.DiagShortAddress:       {0x04, 0x00},
			tcat.DiagVersion:            {0x00, 0x05},
			tcat.DiagVendorName:         []byte("OpenThread"),
			tcat.DiagVendorModel:        []byte("Simulator"),
			tcat.DiagThreadStackVersion: []byte("sim/1.0"),
		},
		Instance: "TCAT Simulator",
	}
}

// Device is a running simulated device.
type Device struct {
	config Config
	logger *slog.Logger
	server *transport.Server
	adv    *discovery.Advertisement
	ownKey []byte

	mu      sync.Mutex
	dataset []byte
	thread  bool
	conns   map[*transport.ServerConn]*connState
}

// New creates a device. Call Start to accept connections.
func New(config Config) (*Device, error) {
	if config.TLS == nil || len(config.TLS.Certificate.Certificate) == 0 {
		return nil, fmt.Errorf("device certificate is required")
	}
	leaf, err := x509.ParseCertificate(config.TLS.Certificate.Certificate[0])
	if err != nil {
		return nil, fmt.Errorf("parse device certificate: %w", err)
	}
	ownKey, err := cert.PublicKeyBytes(leaf)
	if err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	d := &Device{
		config:  config,
		logger:  logger,
		ownKey:  ownKey,
		dataset: append([]byte(nil), config.ActiveDataset...),
		conns:   make(map[*transport.ServerConn]*connState),
	}

	server, err := transport.NewServer(transport.ServerConfig{
		TLSConfig:    config.TLS,
		Address:      config.Address,
		Logger:       config.Capture,
		OnConnect:    d.onConnect,
		OnDisconnect: d.onDisconnect,
		OnMessage:    d.onMessage,
		OnError: func(_ *transport.ServerConn, err error) {
			logger.Debug("transport error", "error", err)
		},
	})
	if err != nil {
		return nil, err
	}
	d.server = server
	return d, nil
}

// Start begins accepting commissioners and, if configured, advertises the
// device.
func (d *Device) Start(ctx context.Context) error {
	if err := d.server.Start(ctx); err != nil {
		return err
	}
	d.logger.Info("TCAT device listening", "addr", d.server.Addr())

	if d.config.Advertise {
		port := 0
		if tcpAddr, ok := d.server.Addr().(*net.TCPAddr); ok {
			port = tcpAddr.Port
		}
		adv, err := discovery.Advertise(discovery.AdvertiseInfo{
			Instance: d.config.Instance,
			Port:     port,
			TXT: map[string]string{
				"rv": "1",
				"dn": d.config.NetworkName,
				"id": strconv.Itoa(port),
			},
		})
		if err != nil {
			d.server.Stop()
			return err
		}
		d.adv = adv
	}
	return nil
}

// Stop withdraws the advertisement and closes all connections.
func (d *Device) Stop() error {
	d.adv.Shutdown()
	return d.server.Stop()
}

// Addr returns the listen address.
func (d *Device) Addr() net.Addr {
	return d.server.Addr()
}

// ActiveDataset returns a copy of the current dataset.
func (d *Device) ActiveDataset() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]byte(nil), d.dataset...)
}

// ThreadRunning reports whether the simulated Thread interface is up.
func (d *Device) ThreadRunning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.thread
}

func (d *Device) onConnect(conn *transport.ServerConn) {
	st := &connState{peerKey: conn.PeerPublicKey()}
	if certs := conn.TLSState().PeerCertificates; len(certs) > 0 {
		st.peerCert = certs[0].Raw
	}
	d.mu.Lock()
	d.conns[conn] = st
	d.mu.Unlock()
	d.logger.Info("commissioner connected", "conn_id", conn.ConnID(), "remote", conn.RemoteAddr())
}

func (d *Device) onDisconnect(conn *transport.ServerConn) {
	d.mu.Lock()
	delete(d.conns, conn)
	d.mu.Unlock()
	d.logger.Info("commissioner disconnected", "conn_id", conn.ConnID())
}

func (d *Device) onMessage(conn *transport.ServerConn, rec tlv.TLV) {
	d.mu.Lock()
	st := d.conns[conn]
	d.mu.Unlock()
	if st == nil {
		return
	}

	resp, closeConn := d.handle(st, rec)
	d.logger.Debug("request", "conn_id", conn.ConnID(), "type", tcat.Type(rec.Type), "len", len(rec.Value))
	if closeConn {
		conn.Close()
		return
	}
	if err := conn.Send(resp); err != nil {
		d.logger.Debug("send failed", "conn_id", conn.ConnID(), "error", err)
	}
}
