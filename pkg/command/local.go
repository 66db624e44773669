package command

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/espressif/openthread/pkg/dataset"
	"github.com/espressif/openthread/pkg/session"
	"github.com/espressif/openthread/pkg/tcat"
	"github.com/espressif/openthread/pkg/tlv"
)

// HelpCommand lists every registered command.
type HelpCommand struct {
	Registry *Registry
}

func (h *HelpCommand) Help() string { return "Display help and return." }

func (h *HelpCommand) Execute(ctx context.Context, args []string, sess *session.Session) Result {
	for _, name := range h.Registry.Names() {
		cmd, _ := h.Registry.Lookup(name)
		fmt.Fprintln(sess.Out, name)
		printHelp(sess.Out, cmd, 1)
	}
	return NoResult{}
}

func printHelp(w io.Writer, cmd Command, indent int) {
	pad := strings.Repeat("\t", indent)
	fmt.Fprintf(w, "%s%s\n", pad, cmd.Help())
	p, ok := cmd.(Parent)
	if !ok {
		return
	}
	for _, name := range p.Subcommands() {
		sub, _ := p.Subcommand(name)
		fmt.Fprintf(w, "%s%s\n", pad, name)
		printHelp(w, sub, indent+1)
	}
}

func newDatasetGroup() *Group {
	show := &Func{
		HelpText: "Print the current dataset.",
		Run: func(_ context.Context, _ []string, sess *session.Session) Result {
			sess.Dataset.Print(sess.Out)
			if !sess.Dataset.Empty() {
				fmt.Fprintf(sess.Out, "Hex: %s\n", sess.Dataset.Hex())
			}
			return NoResult{}
		},
	}
	g := NewGroup("View and manipulate the current dataset.")
	g.Default = show
	g.Add("show", show)
	g.Add("set", &Func{
		HelpText: "Replace the dataset. Usage: dataset set <hex>",
		Run: func(_ context.Context, args []string, sess *session.Session) Result {
			if len(args) == 0 {
				fmt.Fprintf(sess.Out, "Command failed: %v\n", notPrepared("missing dataset hex"))
				return NoResult{}
			}
			ds, err := dataset.FromHex(args[0])
			if err != nil {
				fmt.Fprintf(sess.Out, "Command failed: %v\n", err)
				return NoResult{}
			}
			sess.Dataset = ds
			fmt.Fprintln(sess.Out, "Dataset updated.")
			return NoResult{}
		},
	})
	g.Add("clear", &Func{
		HelpText: "Remove all dataset content.",
		Run: func(_ context.Context, _ []string, sess *session.Session) Result {
			if sess.Dataset == nil {
				sess.Dataset = &dataset.Dataset{}
			}
			sess.Dataset.Clear()
			fmt.Fprintln(sess.Out, "Dataset cleared.")
			return NoResult{}
		},
	})
	return g
}

func newTLVGroup() *Group {
	g := NewGroup("Send or decode raw TLVs.")
	g.Add("send", NewTransportCommand(KindRawTLV))
	g.Add("decode", &Func{
		HelpText: "Decode hex encoded TLVs. Usage: tlv decode <hex>",
		Run: func(_ context.Context, args []string, sess *session.Session) Result {
			if len(args) == 0 {
				fmt.Fprintf(sess.Out, "Command failed: %v\n", notPrepared("missing hex encoded argument"))
				return NoResult{}
			}
			buf, err := hex.DecodeString(strings.Join(strings.Fields(strings.Join(args, " ")), ""))
			if err != nil {
				fmt.Fprintf(sess.Out, "Command failed: %v\n", notPrepared("invalid hex"))
				return NoResult{}
			}
			it := tlv.NewIterator(buf)
			var first tlv.TLV
			n := 0
			for rec, ok := it.Next(); ok; rec, ok = it.Next() {
				if n == 0 {
					first = rec
				}
				n++
				fmt.Fprintf(sess.Out, "%s %s\n", tcat.Type(rec.Type), rec)
			}
			if err := it.Err(); err != nil {
				fmt.Fprintf(sess.Out, "Command failed: %v\n", err)
			}
			if n == 0 {
				return NoResult{}
			}
			return TLVResult{TLV: first}
		},
	})
	return g
}

func newThreadGroup() *Group {
	return NewGroup("Manipulate state of the Thread interface of the connected device.").
		Add("start", NewTransportCommand(KindThreadStart)).
		Add("stop", NewTransportCommand(KindThreadStop))
}
