// SPDX-License-Identifier: MPL-2.0

package argsh

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/jonasehrlich/argparse-shell/pkg/literal"
)

type (
	// Interactive is the line-oriented shell over a bound namespace. Instead
	// of one generated method per command it keeps a handler table, looked
	// up per input line with a dash/underscore translation fallback.
	Interactive struct {
		prompt   string
		intro    string
		handlers map[string]*handler
		order    []string
		stdin    io.Reader
		stdout   io.Writer
		stderr   io.Writer
		terminal io.ReadWriter // non-nil forces line editing over this stream
		logger   *log.Logger
	}

	handler struct {
		cmd *Command
	}
)

// newInteractive builds the shell's handler table from a namespace.
func newInteractive(ns *Namespace, cfg *config) *Interactive {
	i := &Interactive{
		prompt:   cfg.prompt,
		intro:    cfg.intro,
		handlers: make(map[string]*handler, ns.Len()),
		order:    ns.Names(),
		stdin:    cfg.stdin,
		stdout:   cfg.stdout,
		stderr:   cfg.stderr,
		logger:   cfg.logger,
	}
	for _, name := range i.order {
		cmd, _ := ns.Get(name)
		i.handlers[name] = &handler{cmd: cmd}
	}
	return i
}

// Run reads and executes lines until a loop-terminating command, end of
// input, or an interrupt (reported as ErrInterrupted). Errors returned by a
// command propagate unmodified; parse and binding errors are reported to the
// user and the loop continues.
func (i *Interactive) Run(ctx context.Context) error {
	read, cleanup, err := i.lineSource()
	if err != nil {
		return err
	}
	defer cleanup()
	return i.loop(ctx, read)
}

// lineSource picks the input mechanism: a line editor when stdin is a
// terminal (or an explicit terminal stream was configured), a plain scanner
// otherwise.
func (i *Interactive) lineSource() (func() (string, error), func(), error) {
	if i.terminal != nil {
		t := term.NewTerminal(i.terminal, i.prompt)
		return t.ReadLine, func() {}, nil
	}
	if f, ok := i.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		oldState, err := term.MakeRaw(int(f.Fd()))
		if err != nil {
			return nil, nil, fmt.Errorf("cannot enter raw mode: %w", err)
		}
		restore := func() { _ = term.Restore(int(f.Fd()), oldState) }
		rw := struct {
			io.Reader
			io.Writer
		}{interruptReader{f}, i.stdout}
		t := term.NewTerminal(rw, i.prompt)
		return t.ReadLine, restore, nil
	}
	sc := newScannerSource(i.stdin, i.stdout, i.prompt)
	return sc.readLine, func() {}, nil
}

func (i *Interactive) loop(ctx context.Context, read func() (string, error)) error {
	if i.intro != "" {
		fmt.Fprintln(i.stdout, i.intro)
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := read()
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(i.stdout)
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			// An empty line is a no-op, never a repeat of the previous
			// command.
			continue
		}
		name, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)
		switch name {
		case "exit", "quit":
			return nil
		case "help", "?":
			i.printHelp(rest)
			continue
		}
		h := i.lookup(name)
		if h == nil {
			fmt.Fprintf(i.stdout, "*** Unknown syntax: %s\n", line)
			continue
		}
		if err := i.dispatch(ctx, h, rest); err != nil {
			return err
		}
	}
}

// lookup resolves a typed command name against the handler table, falling
// back to a dash/underscore translation in both directions.
func (i *Interactive) lookup(name string) *handler {
	if h, ok := i.handlers[name]; ok {
		return h
	}
	if h, ok := i.handlers[strings.ReplaceAll(name, "_", "-")]; ok {
		return h
	}
	if h, ok := i.handlers[strings.ReplaceAll(name, "-", "_")]; ok {
		return h
	}
	return nil
}

// dispatch parses the trailing argument string, invokes the command and
// pretty-prints its result. Parse and binding errors are user errors: they
// are reported and the loop continues. Command errors propagate.
func (i *Interactive) dispatch(ctx context.Context, h *handler, argString string) error {
	args, kwargs, err := literal.ParseArgString(argString)
	if err != nil {
		fmt.Fprintln(i.stderr, errorStyle.Render("*** "+err.Error()))
		return nil
	}
	i.logger.Debug("executing command", "command", h.cmd.Name(), "args", len(args), "kwargs", len(kwargs))
	result, err := h.cmd.Call(ctx, args, kwargs)
	var bindErr *BindError
	if errors.As(err, &bindErr) {
		fmt.Fprintln(i.stderr, errorStyle.Render("*** "+bindErr.Error()))
		return nil
	}
	if err != nil {
		return err
	}
	printResult(i.stdout, result)
	return nil
}

// printHelp prints the command listing, or the generated help block for one
// command: its name, signature and description.
func (i *Interactive) printHelp(topic string) {
	if topic == "" {
		fmt.Fprintln(i.stdout, "Available commands:")
		for _, name := range i.order {
			h := i.handlers[name]
			fmt.Fprintf(i.stdout, "  %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-18s", name)), h.cmd.ShortDescription())
		}
		fmt.Fprintln(i.stdout, "\nType 'help <command>' for details, 'exit' to leave.")
		return
	}
	h := i.lookup(topic)
	if h == nil {
		fmt.Fprintf(i.stdout, "*** No help on %s\n", topic)
		return
	}
	name := h.cmd.Name()
	fmt.Fprintf(i.stdout, "\n%s\n%s\n\n%s\n\n%s\n\n",
		titleStyle.Render(name),
		strings.Repeat("-", len(name)),
		mutedStyle.Render(h.cmd.Signature().String()),
		h.cmd.Description())
}

// interruptReader surfaces a raw-mode Ctrl-C (ETX) as ErrInterrupted, since
// raw terminals do not deliver SIGINT.
type interruptReader struct {
	r io.Reader
}

func (ir interruptReader) Read(p []byte) (int, error) {
	n, err := ir.r.Read(p)
	for _, b := range p[:n] {
		if b == 0x03 {
			return 0, ErrInterrupted
		}
	}
	return n, err
}

// scannerSource reads cooked-mode lines, printing the prompt itself.
type scannerSource struct {
	sc     *bufio.Scanner
	out    io.Writer
	prompt string
}

func newScannerSource(in io.Reader, out io.Writer, prompt string) *scannerSource {
	return &scannerSource{sc: bufio.NewScanner(in), out: out, prompt: prompt}
}

func (s *scannerSource) readLine() (string, error) {
	fmt.Fprint(s.out, s.prompt)
	if !s.sc.Scan() {
		if err := s.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.sc.Text(), nil
}
