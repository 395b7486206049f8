// SPDX-License-Identifier: MPL-2.0

// Package literal parses raw interactive argument strings into typed
// positional and keyword argument values.
//
// A raw string such as
//
//	1 2 name=myvalue [1, 2] {'a': 1}
//
// is split on whitespace outside of bracket pairs and quoted spans, and every
// token is evaluated as a literal value: numbers (decimal, hex, octal,
// binary), quoted strings, booleans, null, and list/tuple/set/dict literals
// with literal contents. Evaluation is backed by the HCL expression syntax;
// tokens are normalized first so that common literal spellings from other
// shells (single quotes, parenthesized tuples, True/False/None) evaluate as
// expected. A token that fails strict evaluation is retried as a plain
// string, so a bare word like myvalue becomes the string "myvalue".
package literal

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// ParseError reports a token that could not be parsed as a literal value.
type ParseError struct {
	// Token is the offending token, verbatim from the input.
	Token string
	// Reason is a short human-readable description of the failure.
	Reason string
	// Err is the underlying evaluation error, if any.
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot parse argument %q: %s: %v", e.Token, e.Reason, e.Err)
	}
	return fmt.Sprintf("cannot parse argument %q: %s", e.Token, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseArgString parses a raw argument string into positional arguments and
// keyword arguments. Tokens containing a single top-level "=" outside of
// brackets and quotes contribute a keyword argument; all other tokens are
// positional. A later keyword assignment to the same key overwrites the
// earlier one.
func ParseArgString(s string) ([]any, map[string]any, error) {
	tokens, err := Split(s)
	if err != nil {
		return nil, nil, err
	}
	var args []any
	kwargs := make(map[string]any)
	for _, tok := range tokens {
		key, valueText, isKeyword, err := splitKeyValue(tok)
		if err != nil {
			return nil, nil, err
		}
		if isKeyword {
			v, err := Eval(valueText)
			if err != nil {
				return nil, nil, err
			}
			kwargs[key] = v
			continue
		}
		v, err := Eval(tok)
		if err != nil {
			return nil, nil, err
		}
		args = append(args, v)
	}
	return args, kwargs, nil
}

// Split splits an argument string on whitespace at bracket depth zero and
// outside of quoted spans. A token like "[1, 2]" or "{'a': 1}" therefore
// stays intact even though it contains spaces. Unbalanced brackets and
// unterminated quotes are parse errors.
func Split(s string) ([]string, error) {
	var (
		tokens  []string
		current strings.Builder
		stack   []rune
		quote   rune
		escaped bool
	)
	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	for _, r := range s {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case quote != 0:
			current.WriteRune(r)
			if r == '\\' {
				escaped = true
			} else if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
			current.WriteRune(r)
		case r == '(' || r == '[' || r == '{':
			stack = append(stack, r)
			current.WriteRune(r)
		case r == ')' || r == ']' || r == '}':
			if len(stack) == 0 || stack[len(stack)-1] != openingFor(r) {
				return nil, &ParseError{Token: s, Reason: fmt.Sprintf("unbalanced %q", r)}
			}
			stack = stack[:len(stack)-1]
			current.WriteRune(r)
		case len(stack) == 0 && unicode.IsSpace(r):
			flush()
		default:
			current.WriteRune(r)
		}
	}
	if quote != 0 {
		return nil, &ParseError{Token: s, Reason: "unterminated quote"}
	}
	if len(stack) > 0 {
		return nil, &ParseError{Token: s, Reason: fmt.Sprintf("unclosed %q", stack[len(stack)-1])}
	}
	flush()
	return tokens, nil
}

func openingFor(closing rune) rune {
	switch closing {
	case ')':
		return '('
	case ']':
		return '['
	default:
		return '{'
	}
}

// splitKeyValue splits a token at its top-level "=", if it has exactly one.
// A token with no top-level "=" is positional. An empty key, an empty value,
// or more than one top-level "=" is a parse error.
func splitKeyValue(token string) (key, valueText string, isKeyword bool, err error) {
	positions := topLevelEquals(token)
	switch len(positions) {
	case 0:
		return "", "", false, nil
	case 1:
		i := positions[0]
		key, valueText = token[:i], token[i+1:]
		if key == "" {
			return "", "", false, &ParseError{Token: token, Reason: "empty keyword name"}
		}
		if valueText == "" {
			return "", "", false, &ParseError{Token: token, Reason: "empty keyword value"}
		}
		return key, valueText, true, nil
	default:
		return "", "", false, &ParseError{Token: token, Reason: "multiple '=' in keyword argument"}
	}
}

// topLevelEquals returns the byte offsets of every "=" in token that sits
// outside brackets and quotes.
func topLevelEquals(token string) []int {
	var (
		positions []int
		depth     int
		quote     rune
		escaped   bool
	)
	for i, r := range token {
		switch {
		case escaped:
			escaped = false
		case quote != 0:
			if r == '\\' {
				escaped = true
			} else if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '(' || r == '[' || r == '{':
			depth++
		case r == ')' || r == ']' || r == '}':
			depth--
		case r == '=' && depth == 0:
			positions = append(positions, i)
		}
	}
	return positions
}

// Eval evaluates a single token as a literal value. Strict evaluation is
// attempted first; if it fails and the token contains no quote characters,
// the token is retried as a plain string, turning bare words into string
// values. Integral numbers evaluate to int64, other numbers to float64,
// dict/object literals to map[string]any, and list/tuple/set literals to
// []any.
func Eval(token string) (any, error) {
	t := strings.TrimSpace(token)
	if t == "" {
		return nil, &ParseError{Token: token, Reason: "empty token"}
	}
	if v, ok := evalScalar(t); ok {
		return v, nil
	}
	v, err := evalExpression(t)
	if err == nil {
		return v, nil
	}
	if !strings.ContainsAny(t, `"'`) {
		// Bare word, treat the raw text as a string literal.
		return t, nil
	}
	return nil, &ParseError{Token: token, Reason: "not a literal value", Err: err}
}

// evalScalar handles the scalar fast path: integers in any base understood
// by strconv (0x, 0o, 0b prefixes and plain decimal), floats, booleans and
// null spellings.
func evalScalar(t string) (any, bool) {
	if i, err := strconv.ParseInt(t, 0, 64); err == nil {
		return i, true
	}
	if f, err := strconv.ParseFloat(t, 64); err == nil {
		return f, true
	}
	switch t {
	case "true", "True":
		return true, true
	case "false", "False":
		return false, true
	case "null", "None", "nil":
		return nil, true
	}
	return nil, false
}

// evalExpression evaluates a token as an HCL expression with no variable
// scope, after normalizing alternate literal spellings.
func evalExpression(t string) (any, error) {
	normalized, err := normalize(t)
	if err != nil {
		return nil, err
	}
	expr, diags := hclsyntax.ParseExpression([]byte(normalized), "argument", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, diags
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	if !val.IsWhollyKnown() {
		return nil, fmt.Errorf("expression is not a constant literal")
	}
	return fromCty(val)
}

// normalize rewrites a token into HCL expression syntax: single-quoted
// strings become double-quoted, parenthesized tuples become lists, brace
// literals without key separators (sets) become lists, and the True/False/
// None spellings become true/false/null. Quoted span contents are preserved.
func normalize(s string) (string, error) {
	var (
		out    strings.Builder
		closes []rune // pending closing runes for rewritten brackets
		word   strings.Builder
	)
	flushWord := func() {
		if word.Len() == 0 {
			return
		}
		switch w := word.String(); w {
		case "True":
			out.WriteString("true")
		case "False":
			out.WriteString("false")
		case "None":
			out.WriteString("null")
		default:
			out.WriteString(w)
		}
		word.Reset()
	}
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\'' || r == '"' {
			flushWord()
			consumed, err := normalizeQuoted(runes[i:], &out)
			if err != nil {
				return "", err
			}
			i += consumed - 1
			continue
		}
		if unicode.IsLetter(r) || r == '_' || (word.Len() > 0 && unicode.IsDigit(r)) {
			word.WriteRune(r)
			continue
		}
		flushWord()
		switch r {
		case '(':
			out.WriteRune('[')
			closes = append(closes, ']')
		case '{':
			if braceIsObject(runes[i:]) {
				out.WriteRune('{')
				closes = append(closes, '}')
			} else {
				out.WriteRune('[')
				closes = append(closes, ']')
			}
		case '[':
			out.WriteRune('[')
			closes = append(closes, ']')
		case ')', ']', '}':
			if len(closes) == 0 {
				return "", &ParseError{Token: s, Reason: fmt.Sprintf("unbalanced %q", r)}
			}
			out.WriteRune(closes[len(closes)-1])
			closes = stackPop(closes)
		default:
			out.WriteRune(r)
		}
	}
	flushWord()
	if len(closes) > 0 {
		return "", &ParseError{Token: s, Reason: "unclosed bracket"}
	}
	return out.String(), nil
}

func stackPop(s []rune) []rune { return s[:len(s)-1] }

// normalizeQuoted writes the quoted span starting at runes[0] as a
// double-quoted HCL string and reports the number of runes consumed.
func normalizeQuoted(runes []rune, out *strings.Builder) (int, error) {
	quote := runes[0]
	out.WriteRune('"')
	escaped := false
	for i := 1; i < len(runes); i++ {
		r := runes[i]
		if escaped {
			if r == '\'' {
				// \' only has meaning inside single quotes.
				out.WriteRune('\'')
			} else {
				out.WriteRune('\\')
				out.WriteRune(r)
			}
			escaped = false
			continue
		}
		switch r {
		case '\\':
			escaped = true
		case quote:
			out.WriteRune('"')
			return i + 1, nil
		case '"':
			out.WriteString(`\"`)
		default:
			out.WriteRune(r)
		}
	}
	return 0, &ParseError{Token: string(runes), Reason: "unterminated quote"}
}

// braceIsObject reports whether the brace literal starting at runes[0]
// contains a key separator (":" or "=") at its own nesting depth, which
// distinguishes a dict/object literal from a set literal.
func braceIsObject(runes []rune) bool {
	depth := 0
	var quote rune
	escaped := false
	for _, r := range runes {
		switch {
		case escaped:
			escaped = false
		case quote != 0:
			if r == '\\' {
				escaped = true
			} else if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '(' || r == '[' || r == '{':
			depth++
		case r == ')' || r == ']' || r == '}':
			depth--
			if depth == 0 {
				return false
			}
		case (r == ':' || r == '=') && depth == 1:
			return true
		}
	}
	return false
}

// fromCty converts an evaluated cty value to its natural Go representation.
func fromCty(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return i, nil
			}
		}
		f, _ := bf.Float64()
		return f, nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		slice := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			nv, err := fromCty(ev)
			if err != nil {
				return nil, err
			}
			slice = append(slice, nv)
		}
		return slice, nil
	case ty.IsObjectType() || ty.IsMapType():
		m := make(map[string]any, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			nv, err := fromCty(ev)
			if err != nil {
				return nil, fmt.Errorf("in attribute %q: %w", k.AsString(), err)
			}
			m[k.AsString()] = nv
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported literal type %s", ty.FriendlyName())
	}
}
