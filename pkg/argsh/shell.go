// SPDX-License-Identifier: MPL-2.0

package argsh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jonasehrlich/argparse-shell/internal/remote"
)

type (
	// Shell combines the two interfaces generated from one command table: a
	// single-shot CLI and a persistent interactive loop. Argv that names a
	// known subcommand runs through the CLI; anything else drops into the
	// interactive shell.
	Shell struct {
		program     string
		ns          *Namespace
		root        *cobra.Command
		interactive *Interactive
		cfg         config
	}

	// Option configures a Shell.
	Option func(*config)

	config struct {
		program     string
		description string
		prompt      string
		intro       string
		version     string
		stdin       io.Reader
		stdout      io.Writer
		stderr      io.Writer
		logger      *log.Logger
		globalFlags *pflag.FlagSet
		scanOpts    []ScanOption
	}
)

// WithPrompt sets the interactive prompt string.
func WithPrompt(prompt string) Option {
	return func(c *config) { c.prompt = prompt }
}

// WithIntro sets the banner printed once on entering the interactive loop.
func WithIntro(intro string) Option {
	return func(c *config) { c.intro = intro }
}

// WithDescription sets the program description shown in CLI help.
func WithDescription(description string) Option {
	return func(c *config) { c.description = description }
}

// WithVersion sets the version string reported by the CLI.
func WithVersion(version string) Option {
	return func(c *config) { c.version = version }
}

// WithIO redirects the shell's streams, primarily for tests and embedding.
func WithIO(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(c *config) {
		c.stdin, c.stdout, c.stderr = stdin, stdout, stderr
	}
}

// WithLogger routes the shell's debug logging to the given logger. The
// default logger discards everything.
func WithLogger(logger *log.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithGlobalFlags layers caller-defined flags onto the root CLI command.
// Unknown top-level flags are tolerated, so these may also be parsed by an
// outer flag set.
func WithGlobalFlags(fs *pflag.FlagSet) Option {
	return func(c *config) { c.globalFlags = fs }
}

// WithScan forwards options to the namespace scan, such as nested namespaces
// and member annotations.
func WithScan(opts ...ScanOption) Option {
	return func(c *config) { c.scanOpts = append(c.scanOpts, opts...) }
}

// New builds a shell from an arbitrary object: the object's eligible members
// become the command table, projected onto both interfaces. The namespace is
// built fresh per invocation and holds no state beyond the object itself.
func New(program string, obj any, opts ...Option) (*Shell, error) {
	cfg := config{
		program: program,
		prompt:  program + "> ",
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	scanOpts := append([]ScanOption{WithScanLogger(cfg.logger)}, cfg.scanOpts...)
	ns, err := NamespaceFromObject(obj, scanOpts...)
	if err != nil {
		return nil, fmt.Errorf("building namespace for %q: %w", program, err)
	}

	return &Shell{
		program:     program,
		ns:          ns,
		root:        buildCLI(ns, &cfg),
		interactive: newInteractive(ns, &cfg),
		cfg:         cfg,
	}, nil
}

// Namespace returns the bound command table backing both interfaces.
func (s *Shell) Namespace() *Namespace { return s.ns }

// Run dispatches one invocation: argv naming a known subcommand (or asking
// for help or version) executes through the CLI and returns its outcome;
// otherwise the interactive loop runs until terminated. An interrupted loop
// returns ErrInterrupted after reporting the abort.
func (s *Shell) Run(ctx context.Context, argv []string) error {
	if s.matchesCLI(argv) {
		s.root.SetArgs(argv)
		opts := []fang.Option{fang.WithNotifySignal(os.Interrupt)}
		if s.cfg.version != "" {
			opts = append(opts, fang.WithVersion(s.cfg.version))
		}
		return fang.Execute(ctx, s.root, opts...)
	}
	err := s.interactive.Run(ctx)
	if errors.Is(err, ErrInterrupted) {
		fmt.Fprintln(s.cfg.stderr, "\nAborted!")
	}
	return err
}

// Main runs the shell against os.Args and exits the process: zero on
// success, non-zero on usage errors, command errors, or an interrupted
// interactive loop.
func (s *Shell) Main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		fmt.Fprintln(s.cfg.stderr, "\nAborted!")
		os.Exit(1)
	}()

	if err := s.Run(ctx, os.Args[1:]); err != nil {
		if !errors.Is(err, ErrInterrupted) {
			// fang already rendered CLI errors; interactive command errors
			// surface here.
			if !s.matchesCLI(os.Args[1:]) {
				fmt.Fprintln(s.cfg.stderr, errorStyle.Render("Error: "+err.Error()))
			}
		}
		os.Exit(1)
	}
}

// ServeSSH serves the interactive shell to SSH clients until the context is
// canceled. Every session gets its own loop over the shared target object;
// commands still execute one at a time per session, synchronously.
func (s *Shell) ServeSSH(ctx context.Context, addr, hostKeyPath string) error {
	srv, err := remote.NewServer(remote.Config{
		Addr:        addr,
		HostKeyPath: hostKeyPath,
		Logger:      s.cfg.logger,
	}, func(ctx context.Context, rw io.ReadWriter) error {
		session := *s.interactive
		session.terminal = rw
		session.stdin = rw
		session.stdout = rw
		session.stderr = rw
		return session.Run(ctx)
	})
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx)
}

// matchesCLI reports whether argv should be handled by the CLI: a help or
// version request, or a first non-flag token naming a known command.
func (s *Shell) matchesCLI(argv []string) bool {
	for _, arg := range argv {
		switch arg {
		case "-h", "--help", "--version":
			return true
		}
		if strings.HasPrefix(arg, "-") {
			continue
		}
		if arg == "help" || arg == "completion" {
			return true
		}
		_, ok := s.ns.Get(arg)
		return ok
	}
	return false
}
