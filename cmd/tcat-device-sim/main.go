// Command tcat-device-sim runs a simulated TCAT device for development and
// manual testing of tcat-client.
//
// Usage:
//
//	tcat-device-sim [flags]
//
// Examples:
//
//	# Generate a throwaway PKI, writing the commissioner side to ./auth
//	tcat-device-sim --generate-pki auth
//
//	# Serve with existing device credentials and advertise over mDNS
//	tcat-device-sim --cert device_cert.pem --key device_key.pem --ca ca_cert.pem --advertise
package main

import (
	"context"
	"crypto/tls"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/espressif/openthread/internal/devicesim"
	"github.com/espressif/openthread/pkg/cert"
	"github.com/espressif/openthread/pkg/log"
	"github.com/espressif/openthread/pkg/transport"
)

type options struct {
	address     string
	certFile    string
	keyFile     string
	caFile      string
	generatePKI string
	pskd        string
	pskc        string
	installCode string
	networkName string
	dataset     string
	requireAuth bool
	advertise   bool
	instance    string
	logLevel    string
	capture     string
}

func main() {
	if err := run(); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	defaults := devicesim.DefaultConfig()
	var opts options

	fs := pflag.NewFlagSet("tcat-device-sim", pflag.ContinueOnError)
	fs.StringVar(&opts.address, "listen", transport.DefaultAddress, "listen address")
	fs.StringVar(&opts.certFile, "cert", "", "device certificate (PEM)")
	fs.StringVar(&opts.keyFile, "key", "", "device private key (PEM)")
	fs.StringVar(&opts.caFile, "ca", "", "CA certificate commissioners must chain to (PEM)")
	fs.StringVar(&opts.generatePKI, "generate-pki", "", "generate a test PKI and write the commissioner credentials to this directory")
	fs.StringVar(&opts.pskd, "pskd", defaults.PSKd, "joining device credential")
	fs.StringVar(&opts.pskc, "pskc", hex.EncodeToString(defaults.PSKc), "network key credential (hex)")
	fs.StringVar(&opts.installCode, "install-code", defaults.InstallCode, "install code")
	fs.StringVar(&opts.networkName, "network-name", defaults.NetworkName, "Thread network name")
	fs.StringVar(&opts.dataset, "dataset", "", "initial active dataset (hex)")
	fs.BoolVar(&opts.requireAuth, "require-proof", false, "require a credential proof before commissioning")
	fs.BoolVar(&opts.advertise, "advertise", false, "advertise the device over mDNS")
	fs.StringVar(&opts.instance, "instance", defaults.Instance, "mDNS instance name")
	fs.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	fs.StringVar(&opts.capture, "capture", "", "write protocol capture to this .tlog file")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(opts.logLevel)); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	tlsConfig, err := loadTLS(opts, logger)
	if err != nil {
		return err
	}

	cfg := defaults
	cfg.Address = opts.address
	cfg.TLS = tlsConfig
	cfg.PSKd = opts.pskd
	cfg.InstallCode = opts.installCode
	cfg.NetworkName = opts.networkName
	cfg.RequireProof = opts.requireAuth
	cfg.Advertise = opts.advertise
	cfg.Instance = opts.instance
	cfg.Logger = logger
	if cfg.PSKc, err = hex.DecodeString(opts.pskc); err != nil {
		return fmt.Errorf("invalid pskc: %w", err)
	}
	if opts.dataset != "" {
		if cfg.ActiveDataset, err = hex.DecodeString(opts.dataset); err != nil {
			return fmt.Errorf("invalid dataset: %w", err)
		}
	}

	if opts.capture != "" {
		fl, err := log.NewFileLogger(opts.capture)
		if err != nil {
			return fmt.Errorf("open capture file: %w", err)
		}
		defer fl.Close()
		cfg.Capture = fl
	}

	device, err := devicesim.New(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := device.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	logger.Info("shutting down")
	return device.Stop()
}

// loadTLS reads the device credentials or, with --generate-pki, creates a
// fresh PKI and stores the commissioner half for tcat-client.
func loadTLS(opts options, logger *slog.Logger) (*transport.TLSConfig, error) {
	if opts.generatePKI != "" {
		pki, err := cert.GenerateTestPKI()
		if err != nil {
			return nil, err
		}
		if err := pki.Commissioner.WriteDir(opts.generatePKI, pki.CA); err != nil {
			return nil, err
		}
		logger.Info("wrote commissioner credentials", "dir", opts.generatePKI)
		return &transport.TLSConfig{
			Certificate: tls.Certificate{
				Certificate: [][]byte{pki.Device.Certificate.Raw},
				PrivateKey:  pki.Device.Key,
				Leaf:        pki.Device.Certificate,
			},
			CA: pki.CA.Certificate,
		}, nil
	}

	if opts.certFile == "" || opts.keyFile == "" || opts.caFile == "" {
		return nil, errors.New("--cert, --key and --ca are required unless --generate-pki is given")
	}
	creds, err := cert.LoadFiles(opts.certFile, opts.keyFile, opts.caFile)
	if err != nil {
		return nil, err
	}
	return transport.NewTLSConfig(creds), nil
}
