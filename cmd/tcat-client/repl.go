package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/shlex"

	"github.com/espressif/openthread/pkg/command"
	"github.com/espressif/openthread/pkg/discovery"
	"github.com/espressif/openthread/pkg/session"
)

const prompt = "tcat> "

// REPL reads command lines and dispatches them to a registry.
type REPL struct {
	rl   *readline.Instance
	comp *completer
}

// NewREPL creates a REPL with optional history. Completion starts working
// once Run is given a registry.
func NewREPL(historyFile string) (*REPL, error) {
	comp := &completer{}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       historyFile,
		AutoComplete:      comp,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &REPL{rl: rl, comp: comp}, nil
}

// Stdout returns a writer that coordinates with the input line.
func (r *REPL) Stdout() io.Writer {
	return r.rl.Stdout()
}

// Stderr returns a writer that coordinates with the input line.
func (r *REPL) Stderr() io.Writer {
	return r.rl.Stderr()
}

// Close releases the terminal.
func (r *REPL) Close() error {
	return r.rl.Close()
}

// Run reads lines until EOF, quit or ctx is done.
func (r *REPL) Run(ctx context.Context, reg *command.Registry, sess *session.Session) {
	r.comp.reg = reg
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			return
		}

		argv, err := tokenize(line)
		if err != nil {
			fmt.Fprintf(r.rl.Stdout(), "Invalid input: %v\n", err)
			continue
		}
		if len(argv) == 0 {
			continue
		}
		if argv[0] == "quit" || argv[0] == "exit" {
			return
		}

		dispatch(ctx, reg, sess, argv)
	}
}

// Select implements discovery.Selector by prompting for a device number.
func (r *REPL) Select(devices []discovery.Device) (discovery.Device, bool) {
	discovery.PrintDevices(r.rl.Stdout(), devices)
	r.rl.SetPrompt("Select device number: ")
	defer r.rl.SetPrompt(prompt)

	line, err := r.rl.Readline()
	if err != nil {
		return discovery.Device{}, false
	}
	return discovery.SelectByIndex(devices, line)
}

// dispatch executes argv, reporting unknown commands.
func dispatch(ctx context.Context, reg *command.Registry, sess *session.Session, argv []string) {
	if _, err := reg.Execute(ctx, argv, sess); err != nil {
		if errors.Is(err, command.ErrUnknownCommand) {
			fmt.Fprintf(sess.Out, "Invalid command: %s. Type 'help' for a list of commands.\n", argv[0])
			return
		}
		fmt.Fprintf(sess.Out, "Command failed: %v\n", err)
	}
}

// tokenize splits a command line the way a POSIX shell would, honouring
// quotes and backslash escapes.
func tokenize(line string) ([]string, error) {
	return shlex.Split(line)
}

// completer completes command and subcommand names.
type completer struct {
	reg *command.Registry
}

// Do implements readline.AutoCompleter. It returns the suffixes that extend
// the word under the cursor and the length of that word.
func (c *completer) Do(line []rune, pos int) ([][]rune, int) {
	if c.reg == nil {
		return nil, 0
	}
	head := string(line[:pos])
	words := strings.Fields(head)

	prefix := ""
	if len(words) > 0 && !strings.HasSuffix(head, " ") {
		prefix = words[len(words)-1]
		words = words[:len(words)-1]
	}

	var out [][]rune
	for _, cand := range c.reg.Complete(words, prefix) {
		out = append(out, []rune(cand[len(prefix):]+" "))
	}
	return out, len([]rune(prefix))
}

var (
	_ readline.AutoCompleter = (*completer)(nil)
	_ discovery.Selector     = (*REPL)(nil)
)
