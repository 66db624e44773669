// Command tcat-client is an interactive TCAT commissioner.
//
// It discovers TCAT devices over mDNS, opens a certificate authenticated
// secure stream to one of them and sends TCAT requests typed at the prompt.
//
// Usage:
//
//	tcat-client [flags]
//
// Flags:
//
//	--config string        YAML configuration file
//	--cert-path string     Directory with commissioner_cert.pem, commissioner_key.pem, ca_cert.pem (default "auth")
//	--timeout duration     Request/response timeout, 0 disables (default 10s)
//	--log-level string     Log level: debug, info, warn, error (default "info")
//	--capture string       Write protocol capture to this .tlog file
//	--history string       REPL history file
//	--dataset string       Initial commissioning dataset (hex)
//	--connect string       Connect to host:port at start-up
//
// Examples:
//
//	# Scan for devices, then commission one with a prepared dataset
//	tcat-client --dataset 0e080000000000010000...
//	tcat> scan
//	tcat> commission
//
//	# Talk to a local simulator and record the session
//	tcat-client --cert-path auth --connect 127.0.0.1:12345 --capture session.tlog
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/espressif/openthread/pkg/command"
	"github.com/espressif/openthread/pkg/config"
	"github.com/espressif/openthread/pkg/dataset"
	"github.com/espressif/openthread/pkg/discovery"
	"github.com/espressif/openthread/pkg/log"
	"github.com/espressif/openthread/pkg/session"
	"github.com/espressif/openthread/pkg/transport"
)

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
	fs := pflag.NewFlagSet("tcat-client", pflag.ContinueOnError)
	cfg, err := config.Load(fs, os.Args[1:])
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer cancel()

	repl, err := NewREPL(cfg.HistoryFile)
	if err != nil {
		return err
	}
	defer repl.Close()

	// Log through readline so log lines do not tear the prompt.
	logger := slog.New(slog.NewTextHandler(repl.Stderr(), &slog.HandlerOptions{Level: cfg.Level()}))

	capture, closeCapture, err := openCapture(cfg, logger)
	if err != nil {
		return err
	}
	defer closeCapture()

	reg := command.NewRegistry(command.Deps{
		Browser:   discovery.NewMDNSBrowser(cfg.BrowserConfig()),
		Selector:  repl,
		Connector: &transport.Connector{Capture: capture, Logger: logger},
	})

	sess := session.New(repl.Stdout(), cfg.SessionOptions(), logger)
	if cfg.Dataset != "" {
		ds, err := dataset.FromHex(cfg.Dataset)
		if err != nil {
			return err
		}
		sess.Dataset = ds
	}

	fmt.Fprintln(sess.Out, "TCAT commissioning client. Type 'help' for a list of commands.")
	if cfg.Connect != "" {
		dispatch(ctx, reg, sess, []string{"connect", cfg.Connect})
	}

	repl.Run(ctx, reg, sess)

	if sess.Connected() {
		if err := sess.Detach(); err != nil {
			logger.Debug("close secure stream", "error", err)
		}
	}
	return nil
}

// openCapture builds the capture logger: a file when configured, plus the
// operational log at debug level.
func openCapture(cfg *config.Config, logger *slog.Logger) (log.Logger, func(), error) {
	adapter := log.NewSlogAdapter(logger)
	if cfg.CaptureFile == "" {
		return adapter, func() {}, nil
	}

	path := cfg.CaptureFile
	if !strings.HasSuffix(path, log.FileExtension) {
		logger.Warn("capture file does not use the usual extension", "path", path, "want", log.FileExtension)
	}
	fl, err := log.NewFileLogger(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open capture file: %w", err)
	}
	logger.Info("capturing protocol events", "path", path)
	return log.NewMultiLogger(adapter, fl), func() { fl.Close() }, nil
}
