// SPDX-License-Identifier: MPL-2.0

package argsh_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jonasehrlich/argparse-shell/pkg/argsh"
)

func newTestShell(t *testing.T, out *bytes.Buffer, opts ...argsh.Option) *argsh.Shell {
	t.Helper()
	base := []argsh.Option{
		argsh.WithIO(strings.NewReader(""), out, out),
		argsh.WithScan(argsh.WithAnnotation("Greet", argsh.Annotation{Params: []string{"name"}})),
	}
	sh, err := argsh.New("calc", newCalculator(), append(base, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return sh
}

func TestShell_CLI(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	sh := newTestShell(t, &out)

	if err := sh.Run(context.Background(), []string{"add", "1", "5"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "6" {
		t.Errorf("output = %q, want %q", got, "6")
	}
}

func TestShell_CLIKeywordFlag(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	sh := newTestShell(t, &out)

	if err := sh.Run(context.Background(), []string{"greet", "bob", "--shout=true"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "HELLO, BOB") {
		t.Errorf("output = %q, want it to contain HELLO, BOB", out.String())
	}
}

func TestShell_CLICommandError(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	sh := newTestShell(t, &out)

	if err := sh.Run(context.Background(), []string{"div", "1", "0"}); err == nil {
		t.Error("Run() = nil, want the command's error")
	}
}

func TestShell_CLICompositeResult(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	sh := newTestShell(t, &out)

	if err := sh.Run(context.Background(), []string{"echo", "1", "two"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), `"two"`) {
		t.Errorf("output = %q, want a JSON rendering containing %q", out.String(), `"two"`)
	}
}

func TestShell_UnknownArgvFallsBackToInteractive(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	sh := newTestShell(t, &out)

	// No known subcommand in argv: the interactive loop runs, and EOF on the
	// empty stdin ends it cleanly.
	if err := sh.Run(context.Background(), []string{"--verbose"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestShell_ScriptCommand(t *testing.T) {
	t.Parallel()

	sh := newTestShell(t, &bytes.Buffer{})
	out, err := sh.Script(context.Background(), "add 1 2", "exit")
	if err != nil {
		t.Fatalf("Script() error = %v", err)
	}
	if !strings.Contains(out, "3") {
		t.Errorf("output = %q, want it to contain 3", out)
	}
}

func TestShell_ScriptEmptyLineIsNoOp(t *testing.T) {
	t.Parallel()

	sh := newTestShell(t, &bytes.Buffer{})
	out, err := sh.Script(context.Background(), "", "   ", "add 2 2")
	if err != nil {
		t.Fatalf("Script() error = %v", err)
	}
	if !strings.Contains(out, "4") {
		t.Errorf("output = %q, want it to contain 4", out)
	}
	if strings.Contains(out, "Unknown syntax") {
		t.Errorf("output = %q, empty lines must not be dispatched", out)
	}
}

func TestShell_ScriptUnknownSyntax(t *testing.T) {
	t.Parallel()

	sh := newTestShell(t, &bytes.Buffer{})
	out, err := sh.Script(context.Background(), "frobnicate 1")
	if err != nil {
		t.Fatalf("Script() error = %v", err)
	}
	if !strings.Contains(out, "*** Unknown syntax: frobnicate 1") {
		t.Errorf("output = %q, want an unknown syntax report", out)
	}
}

func TestShell_ScriptHelp(t *testing.T) {
	t.Parallel()

	sh := newTestShell(t, &bytes.Buffer{})
	out, err := sh.Script(context.Background(), "help")
	if err != nil {
		t.Fatalf("Script() error = %v", err)
	}
	if !strings.Contains(out, "Available commands:") {
		t.Errorf("output = %q, want the command listing", out)
	}
	for _, name := range []string{"add", "div", "greet"} {
		if !strings.Contains(out, name) {
			t.Errorf("output = %q, want it to list %q", out, name)
		}
	}
}

func TestShell_ScriptHelpTopic(t *testing.T) {
	t.Parallel()

	sh := newTestShell(t, &bytes.Buffer{})
	out, err := sh.Script(context.Background(), "help greet")
	if err != nil {
		t.Fatalf("Script() error = %v", err)
	}
	if !strings.Contains(out, "greet") || !strings.Contains(out, "name: string") {
		t.Errorf("output = %q, want the greet help block with its signature", out)
	}
}

func TestShell_ScriptDashUnderscoreLookup(t *testing.T) {
	t.Parallel()

	sh := newTestShell(t, &bytes.Buffer{})
	out, err := sh.Script(context.Background(), "do_twice 4")
	if err != nil {
		t.Fatalf("Script() error = %v", err)
	}
	if !strings.Contains(out, "8") {
		t.Errorf("output = %q, want it to contain 8", out)
	}
}

func TestShell_ScriptAccessor(t *testing.T) {
	t.Parallel()

	sh := newTestShell(t, &bytes.Buffer{})
	out, err := sh.Script(context.Background(), "depth 3.5", "depth")
	if err != nil {
		t.Fatalf("Script() error = %v", err)
	}
	if !strings.Contains(out, "3.5") {
		t.Errorf("output = %q, want it to contain 3.5", out)
	}
}

func TestShell_ScriptKeywordArguments(t *testing.T) {
	t.Parallel()

	sh := newTestShell(t, &bytes.Buffer{})
	out, err := sh.Script(context.Background(), "greet bob shout=True")
	if err != nil {
		t.Fatalf("Script() error = %v", err)
	}
	if !strings.Contains(out, "HELLO, BOB") {
		t.Errorf("output = %q, want it to contain HELLO, BOB", out)
	}
}

func TestShell_ScriptBindErrorContinuesLoop(t *testing.T) {
	t.Parallel()

	sh := newTestShell(t, &bytes.Buffer{})
	out, err := sh.Script(context.Background(), "add 1", "add 1 2")
	if err != nil {
		t.Fatalf("Script() error = %v", err)
	}
	if !strings.Contains(out, "***") {
		t.Errorf("output = %q, want a reported binding error", out)
	}
	if !strings.Contains(out, "3") {
		t.Errorf("output = %q, the loop must continue after a binding error", out)
	}
}

func TestShell_ScriptCommandErrorTerminatesLoop(t *testing.T) {
	t.Parallel()

	sh := newTestShell(t, &bytes.Buffer{})
	_, err := sh.Script(context.Background(), "div 1 0", "add 1 2")
	if err == nil || err.Error() != "division by zero" {
		t.Fatalf("Script() error = %v, want division by zero", err)
	}
}

func TestShell_ScriptIntro(t *testing.T) {
	t.Parallel()

	sh := newTestShell(t, &bytes.Buffer{}, argsh.WithIntro("Welcome to calc."))
	out, err := sh.Script(context.Background(), "exit")
	if err != nil {
		t.Fatalf("Script() error = %v", err)
	}
	if !strings.Contains(out, "Welcome to calc.") {
		t.Errorf("output = %q, want the intro banner", out)
	}
}

// interruptedInput simulates an interrupted terminal read, the cooked-mode
// analog of a raw-mode Ctrl-C.
type interruptedInput struct{}

func (interruptedInput) Read([]byte) (int, error) { return 0, argsh.ErrInterrupted }

func TestShell_RunInterruptedPrintsAborted(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	sh, err := argsh.New("calc", newCalculator(), argsh.WithIO(interruptedInput{}, &out, &out))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	err = sh.Run(context.Background(), nil)
	if !errors.Is(err, argsh.ErrInterrupted) {
		t.Fatalf("Run() error = %v, want ErrInterrupted", err)
	}
	if !strings.Contains(out.String(), "Aborted!") {
		t.Errorf("output = %q, want the abort message", out.String())
	}
}

func TestShell_CLINegativeLiteralAfterDashDash(t *testing.T) {
	t.Parallel()

	// A leading dash makes a negative number look like a flag; the standard
	// "--" separator turns the remaining tokens back into positionals.
	var out bytes.Buffer
	sh := newTestShell(t, &out)

	if err := sh.Run(context.Background(), []string{"div", "--", "10", "-2"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "-5" {
		t.Errorf("output = %q, want %q", got, "-5")
	}
}

func TestShell_ScriptNegativeLiteral(t *testing.T) {
	t.Parallel()

	sh := newTestShell(t, &bytes.Buffer{})
	out, err := sh.Script(context.Background(), "div 10 -2")
	if err != nil {
		t.Fatalf("Script() error = %v", err)
	}
	if !strings.Contains(out, "-5") {
		t.Errorf("output = %q, want it to contain -5", out)
	}
}

func TestShell_Namespace(t *testing.T) {
	t.Parallel()

	sh := newTestShell(t, &bytes.Buffer{})
	if _, ok := sh.Namespace().Get("add"); !ok {
		t.Error("Namespace() does not expose the scanned commands")
	}
}
