// SPDX-License-Identifier: MPL-2.0

package argsh

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jonasehrlich/argparse-shell/pkg/literal"
)

// buildCLI projects a bound namespace onto a cobra command tree: one
// subcommand per namespace entry, one positional argument per positional
// parameter and one flag per keyword parameter. Positional tokens and flag
// values undergo the same literal coercion as interactive arguments.
func buildCLI(ns *Namespace, cfg *config) *cobra.Command {
	root := &cobra.Command{
		Use:   cfg.program,
		Short: cfg.description,
		// Only known flags are consumed at the top level so callers can
		// layer additional global flags.
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
	}
	root.SetOut(cfg.stdout)
	root.SetErr(cfg.stderr)
	if cfg.globalFlags != nil {
		root.PersistentFlags().AddFlagSet(cfg.globalFlags)
	}
	for _, name := range ns.Names() {
		cmd, _ := ns.Get(name)
		root.AddCommand(subcommandFor(cmd, cfg.stdout))
	}
	return root
}

func subcommandFor(c *Command, out io.Writer) *cobra.Command {
	sig := c.Signature()
	min, max := sig.PositionalRange()

	validator := cobra.RangeArgs(min, max)
	if max < 0 {
		validator = cobra.MinimumNArgs(min)
	}

	sub := &cobra.Command{
		Use:   usageLine(c.Name(), sig),
		Short: c.ShortDescription(),
		Long:  c.Description(),
		Args:  validator,
		RunE: func(cc *cobra.Command, argv []string) error {
			args := make([]any, 0, len(argv))
			for _, raw := range argv {
				v, err := literal.Eval(raw)
				if err != nil {
					return err
				}
				args = append(args, v)
			}
			kwargs := make(map[string]any)
			cc.Flags().Visit(func(f *pflag.Flag) {
				if lv, ok := f.Value.(*literalValue); ok {
					kwargs[f.Name] = lv.value
				}
			})
			result, err := c.Call(cc.Context(), args, kwargs)
			if err != nil {
				return err
			}
			printResult(out, result)
			return nil
		},
	}
	for _, p := range sig.Params {
		if p.Kind != Keyword {
			continue
		}
		sub.Flags().Var(&literalValue{value: p.Default}, p.Name, paramHelp(p))
	}
	return sub
}

// usageLine renders the one-line usage for a subcommand, e.g.
// "add <a> <b>" or "echo [value]...".
func usageLine(name string, sig Signature) string {
	parts := []string{name}
	for _, p := range sig.Params {
		switch {
		case p.Kind == VarPositional:
			parts = append(parts, fmt.Sprintf("[%s]...", p.Name))
		case p.Kind == Positional && p.HasDefault:
			parts = append(parts, fmt.Sprintf("[%s]", p.Name))
		case p.Kind == Positional:
			parts = append(parts, fmt.Sprintf("<%s>", p.Name))
		}
	}
	return strings.Join(parts, " ")
}

// paramHelp is the flag/argument help text: the documented description, or a
// generated "name: kind" fallback.
func paramHelp(p Param) string {
	if p.Doc != "" {
		return p.Doc
	}
	return fmt.Sprintf("%s: %s", p.Name, typeName(p.Type))
}

// literalValue is a pflag.Value that parses flag text through the literal
// evaluator, so CLI keyword arguments and interactive keyword arguments
// coerce identically.
type literalValue struct {
	value any
	set   bool
}

func (l *literalValue) String() string {
	if l.value == nil {
		return ""
	}
	return fmt.Sprintf("%v", l.value)
}

func (l *literalValue) Set(s string) error {
	v, err := literal.Eval(s)
	if err != nil {
		return err
	}
	l.value = v
	l.set = true
	return nil
}

func (l *literalValue) Type() string { return "literal" }
