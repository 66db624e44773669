package command

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/espressif/openthread/pkg/session"
	"github.com/espressif/openthread/pkg/tlv"
)

var (
	// ErrPreconditionNotMet is returned when a request cannot be built:
	// missing session state or an invalid argument.
	ErrPreconditionNotMet = errors.New("data not prepared")

	// ErrMalformedResponse is reported when a response does not have the
	// expected shape.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrUnknownCommand is returned by Registry.Execute for unregistered names.
	ErrUnknownCommand = errors.New("invalid command")
)

func notPrepared(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPreconditionNotMet, fmt.Sprintf(format, args...))
}

// Command is a named client operation.
type Command interface {
	Help() string
	Execute(ctx context.Context, args []string, sess *session.Session) Result
}

// Result is the outcome of a command. It is either NoResult or TLVResult.
type Result interface {
	isResult()
}

// NoResult is returned by informational commands and by failures.
type NoResult struct{}

// TLVResult carries the decoded device response.
type TLVResult struct {
	TLV tlv.TLV
}

func (NoResult) isResult()  {}
func (TLVResult) isResult() {}

// Parent is implemented by commands that dispatch to named subcommands.
type Parent interface {
	Subcommands() []string
	Subcommand(name string) (Command, bool)
}

// Group dispatches its first argument to a subcommand. Without arguments it
// runs the default command, if one is set.
type Group struct {
	help    string
	subs    map[string]Command
	Default Command
}

// NewGroup creates an empty command group.
func NewGroup(help string) *Group {
	return &Group{help: help, subs: make(map[string]Command)}
}

// Add registers a subcommand and returns the group.
func (g *Group) Add(name string, cmd Command) *Group {
	g.subs[name] = cmd
	return g
}

func (g *Group) Help() string { return g.help }

func (g *Group) Execute(ctx context.Context, args []string, sess *session.Session) Result {
	if len(args) > 0 {
		if sub, ok := g.subs[args[0]]; ok {
			return sub.Execute(ctx, args[1:], sess)
		}
	}
	if g.Default != nil {
		return g.Default.Execute(ctx, args, sess)
	}
	fmt.Fprintln(sess.Out, "Invalid usage. Provide a subcommand.")
	return NoResult{}
}

// Subcommands returns the subcommand names in lexical order.
func (g *Group) Subcommands() []string {
	names := make([]string, 0, len(g.subs))
	for name := range g.subs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (g *Group) Subcommand(name string) (Command, bool) {
	cmd, ok := g.subs[name]
	return cmd, ok
}

// Func adapts a function to a Command that runs locally.
type Func struct {
	HelpText string
	Run      func(ctx context.Context, args []string, sess *session.Session) Result
}

func (f *Func) Help() string { return f.HelpText }

func (f *Func) Execute(ctx context.Context, args []string, sess *session.Session) Result {
	return f.Run(ctx, args, sess)
}
