// SPDX-License-Identifier: MPL-2.0

package literal_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/jonasehrlich/argparse-shell/pkg/literal"
)

func TestSplit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "plain tokens",
			input: "1 2 name=myvalue",
			want:  []string{"1", "2", "name=myvalue"},
		},
		{
			name:  "bracketed literals keep their spaces",
			input: "[1, 2] {'a': 1} flag=True",
			want:  []string{"[1, 2]", "{'a': 1}", "flag=True"},
		},
		{
			name:  "quoted span keeps its spaces",
			input: `"hello world" rest`,
			want:  []string{`"hello world"`, "rest"},
		},
		{
			name:  "nested brackets",
			input: "[[1, 2], (3, 4)] x",
			want:  []string{"[[1, 2], (3, 4)]", "x"},
		},
		{
			name:  "leading and trailing whitespace",
			input: "   a\t b  ",
			want:  []string{"a", "b"},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := literal.Split(tt.input)
			if err != nil {
				t.Fatalf("Split(%q) error = %v", tt.input, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Split(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSplit_Errors(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"[1, 2", "'abc", "a]b", "{'a': 1"} {
		t.Run(input, func(t *testing.T) {
			t.Parallel()

			_, err := literal.Split(input)
			var perr *literal.ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("Split(%q) error = %v, want *ParseError", input, err)
			}
		})
	}
}

func TestParseArgString(t *testing.T) {
	t.Parallel()

	args, kwargs, err := literal.ParseArgString("1 2 name=myvalue")
	if err != nil {
		t.Fatalf("ParseArgString() error = %v", err)
	}
	wantArgs := []any{int64(1), int64(2)}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Errorf("args = %#v, want %#v", args, wantArgs)
	}
	wantKwargs := map[string]any{"name": "myvalue"}
	if !reflect.DeepEqual(kwargs, wantKwargs) {
		t.Errorf("kwargs = %#v, want %#v", kwargs, wantKwargs)
	}
}

func TestParseArgString_ContainerLiterals(t *testing.T) {
	t.Parallel()

	args, kwargs, err := literal.ParseArgString("[1, 2] {'a': 1} flag=True")
	if err != nil {
		t.Fatalf("ParseArgString() error = %v", err)
	}
	wantArgs := []any{
		[]any{int64(1), int64(2)},
		map[string]any{"a": int64(1)},
	}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Errorf("args = %#v, want %#v", args, wantArgs)
	}
	wantKwargs := map[string]any{"flag": true}
	if !reflect.DeepEqual(kwargs, wantKwargs) {
		t.Errorf("kwargs = %#v, want %#v", kwargs, wantKwargs)
	}
}

func TestParseArgString_LaterKeywordWins(t *testing.T) {
	t.Parallel()

	_, kwargs, err := literal.ParseArgString("k=1 k=2")
	if err != nil {
		t.Fatalf("ParseArgString() error = %v", err)
	}
	if got := kwargs["k"]; got != int64(2) {
		t.Errorf("kwargs[k] = %v, want 2", got)
	}
}

func TestParseArgString_Errors(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"name=", "=value", "a=b=c"} {
		t.Run(input, func(t *testing.T) {
			t.Parallel()

			_, _, err := literal.ParseArgString(input)
			var perr *literal.ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("ParseArgString(%q) error = %v, want *ParseError", input, err)
			}
		})
	}
}

func TestEval(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		token string
		want  any
	}{
		{name: "decimal int", token: "42", want: int64(42)},
		{name: "negative int", token: "-3", want: int64(-3)},
		{name: "hex int", token: "0x1F", want: int64(31)},
		{name: "octal int", token: "0o17", want: int64(15)},
		{name: "binary int", token: "0b101", want: int64(5)},
		{name: "float", token: "1.5", want: 1.5},
		{name: "exponent float", token: "1e3", want: 1000.0},
		{name: "bool lower", token: "true", want: true},
		{name: "bool capitalized", token: "False", want: false},
		{name: "null", token: "null", want: nil},
		{name: "none", token: "None", want: nil},
		{name: "double quoted string", token: `"hi"`, want: "hi"},
		{name: "single quoted string", token: "'hi'", want: "hi"},
		{name: "escaped quote", token: `'it\'s'`, want: "it's"},
		{name: "bare word", token: "myvalue", want: "myvalue"},
		{name: "bare word with dash", token: "my-value", want: "my-value"},
		{name: "list", token: "[1, 2]", want: []any{int64(1), int64(2)}},
		{name: "tuple", token: "(1, 'two')", want: []any{int64(1), "two"}},
		{name: "set", token: "{1, 2}", want: []any{int64(1), int64(2)}},
		{name: "dict", token: "{'a': 1}", want: map[string]any{"a": int64(1)}},
		{
			name:  "nested dict",
			token: "{'a': [1, 2], 'b': {'c': True}}",
			want: map[string]any{
				"a": []any{int64(1), int64(2)},
				"b": map[string]any{"c": true},
			},
		},
		{name: "list of floats", token: "[1.5, 2.5]", want: []any{1.5, 2.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := literal.Eval(tt.token)
			if err != nil {
				t.Fatalf("Eval(%q) error = %v", tt.token, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Eval(%q) = %#v, want %#v", tt.token, got, tt.want)
			}
		})
	}
}

func TestEval_Errors(t *testing.T) {
	t.Parallel()

	for _, token := range []string{"", "'unterminated"} {
		t.Run(token, func(t *testing.T) {
			t.Parallel()

			_, err := literal.Eval(token)
			var perr *literal.ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("Eval(%q) error = %v, want *ParseError", token, err)
			}
		})
	}
}
