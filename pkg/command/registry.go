package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/espressif/openthread/pkg/discovery"
	"github.com/espressif/openthread/pkg/session"
)

// Deps are the collaborators of the session commands.
type Deps struct {
	Browser   discovery.Browser
	Selector  discovery.Selector
	Connector Connector
}

// Registry maps command names to commands, preserving registration order.
type Registry struct {
	names []string
	cmds  map[string]Command
}

// NewRegistry returns the full TCAT client command catalogue.
func NewRegistry(deps Deps) *Registry {
	r := &Registry{cmds: make(map[string]Command)}

	r.Register("help", &HelpCommand{Registry: r})
	r.Register("hello", NewTransportCommand(KindHello))
	r.Register("get_apps", NewTransportCommand(KindGetApplicationLayers))
	r.Register("appdata1", NewTransportCommand(KindApplicationData1))
	r.Register("appdata2", NewTransportCommand(KindApplicationData2))
	r.Register("appdata3", NewTransportCommand(KindApplicationData3))
	r.Register("appdata4", NewTransportCommand(KindApplicationData4))
	r.Register("vendor_data", NewTransportCommand(KindVendorData))
	r.Register("commission", NewTransportCommand(KindCommission))
	r.Register("decommission", NewTransportCommand(KindDecommission))
	r.Register("disconnect", DisconnectCommand{})
	r.Register("device_id", NewTransportCommand(KindGetDeviceID))
	r.Register("ext_panid", NewTransportCommand(KindGetExtPanID))
	r.Register("provisioning_url", NewTransportCommand(KindGetProvisioningURL))
	r.Register("network_name", NewTransportCommand(KindGetNetworkName))
	r.Register("ping", NewTransportCommand(KindPing))
	r.Register("dataset", newDatasetGroup())
	r.Register("get_dataset", NewTransportCommand(KindExtractDataset))
	r.Register("thread", newThreadGroup())
	r.Register("scan", &ScanCommand{Browser: deps.Browser, Selector: deps.Selector, Connector: deps.Connector})
	r.Register("connect", &ConnectCommand{Connector: deps.Connector})
	r.Register("random_challenge", NewTransportCommand(KindRandomChallenge))
	r.Register("present_hash", NewTransportCommand(KindPresentHash))
	r.Register("peer_pskd_hash", NewTransportCommand(KindPeerPskdHash))
	r.Register("tlv", newTLVGroup())
	r.Register("get_comm_cert", NewTransportCommand(KindGetCommissionerCertificate))
	r.Register("diagnostic_tlvs", NewTransportCommand(KindDiagnosticTlvs))

	return r
}

// Register adds or replaces a command.
func (r *Registry) Register(name string, cmd Command) {
	if _, ok := r.cmds[name]; !ok {
		r.names = append(r.names, name)
	}
	r.cmds[name] = cmd
}

// Lookup returns the command registered under name.
func (r *Registry) Lookup(name string) (Command, bool) {
	cmd, ok := r.cmds[name]
	return cmd, ok
}

// Names returns the command names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Execute runs the command named by argv[0] with the remaining arguments.
// An empty argv is a no-op.
func (r *Registry) Execute(ctx context.Context, argv []string, sess *session.Session) (Result, error) {
	if len(argv) == 0 {
		return NoResult{}, nil
	}
	cmd, ok := r.cmds[argv[0]]
	if !ok {
		return NoResult{}, fmt.Errorf("%w: %s", ErrUnknownCommand, argv[0])
	}
	return cmd.Execute(ctx, argv[1:], sess), nil
}

// Complete returns the candidate words for the word being typed, given the
// words already completed before it.
func (r *Registry) Complete(words []string, prefix string) []string {
	var pool []string
	if len(words) == 0 {
		pool = r.names
	} else {
		cmd, ok := r.cmds[words[0]]
		if !ok {
			return nil
		}
		for _, w := range words[1:] {
			p, ok := cmd.(Parent)
			if !ok {
				return nil
			}
			if cmd, ok = p.Subcommand(w); !ok {
				return nil
			}
		}
		p, ok := cmd.(Parent)
		if !ok {
			return nil
		}
		pool = p.Subcommands()
	}
	var out []string
	for _, name := range pool {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	return out
}
