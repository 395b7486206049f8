// SPDX-License-Identifier: MPL-2.0

package argsh

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/jonasehrlich/argparse-shell/internal/docstring"
)

// ParamKind classifies a declared command parameter.
type ParamKind int

const (
	// Positional parameters are bound in declaration order, or by name when
	// supplied as keyword arguments.
	Positional ParamKind = iota
	// VarPositional is a variadic parameter collecting trailing positional
	// arguments.
	VarPositional
	// Keyword parameters come from the exported fields of a trailing options
	// struct. They always carry a default and bind by name only.
	Keyword
)

func (k ParamKind) String() string {
	switch k {
	case Positional:
		return "positional"
	case VarPositional:
		return "var-positional"
	default:
		return "keyword"
	}
}

type (
	// Param describes one declared parameter of a command.
	Param struct {
		// Name is the parameter name used for keyword binding and help text.
		Name string
		// Kind classifies the parameter.
		Kind ParamKind
		// Type is the parameter's Go type. For VarPositional it is the
		// element type.
		Type reflect.Type
		// Default is the value used when the parameter is not supplied.
		Default any
		// HasDefault reports whether the parameter is optional.
		HasDefault bool
		// Doc is the documented description, empty when undocumented.
		Doc string
	}

	// Signature is the ordered parameter list of a command, derived from the
	// wrapped function's type and the member's annotation.
	Signature struct {
		// Params lists positional parameters first, then the variadic
		// parameter if any, then keyword parameters.
		Params []Param

		takesContext bool
		kwStruct     reflect.Type
		kwFields     map[string]int
		variadic     bool
	}
)

var (
	ctxType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errType = reflect.TypeOf((*error)(nil)).Elem()
)

// signatureFromFunc derives a command signature from a func type.
// skipReceiver drops the first input, the unbound-method receiver; a leading
// context.Context parameter is injected by the adapter and never surfaces in
// the signature.
func signatureFromFunc(ft reflect.Type, skipReceiver bool, ann Annotation, doc docstring.Doc) Signature {
	sig := Signature{variadic: ft.IsVariadic()}

	var ins []reflect.Type
	for i := 0; i < ft.NumIn(); i++ {
		ins = append(ins, ft.In(i))
	}
	if skipReceiver && len(ins) > 0 {
		ins = ins[1:]
	}
	if len(ins) > 0 && ins[0] == ctxType {
		sig.takesContext = true
		ins = ins[1:]
	}

	if !sig.variadic && len(ins) > 0 {
		if last := ins[len(ins)-1]; isOptionsStruct(last) {
			sig.kwStruct = last
			ins = ins[:len(ins)-1]
		}
	}

	paramName := func(i int) string {
		if i < len(ann.Params) && ann.Params[i] != "" {
			return ann.Params[i]
		}
		return fmt.Sprintf("arg%d", i+1)
	}
	for i, t := range ins {
		if sig.variadic && i == len(ins)-1 {
			name := paramName(i)
			if i >= len(ann.Params) {
				name = "args"
			}
			sig.Params = append(sig.Params, Param{
				Name: name, Kind: VarPositional, Type: t.Elem(), Doc: doc.Params[name],
			})
			continue
		}
		name := paramName(i)
		sig.Params = append(sig.Params, Param{
			Name: name, Kind: Positional, Type: t, Doc: doc.Params[name],
		})
	}

	if sig.kwStruct != nil {
		sig.kwFields = make(map[string]int)
		for i := 0; i < sig.kwStruct.NumField(); i++ {
			f := sig.kwStruct.Field(i)
			if !f.IsExported() {
				continue
			}
			name := keywordName(f)
			if name == "" {
				continue
			}
			p := Param{
				Name:       name,
				Kind:       Keyword,
				Type:       f.Type,
				Default:    reflect.Zero(f.Type).Interface(),
				HasDefault: true,
				Doc:        f.Tag.Get("help"),
			}
			if p.Doc == "" {
				p.Doc = doc.Params[name]
			}
			sig.kwFields[name] = i
			sig.Params = append(sig.Params, p)
		}
	}
	return sig
}

// accessorSignature is the signature of a data-field accessor command: one
// optional value, get with zero arguments, set with one.
func accessorSignature(fieldType reflect.Type, doc docstring.Doc) Signature {
	return Signature{Params: []Param{{
		Name:       "value",
		Kind:       Positional,
		Type:       fieldType,
		HasDefault: true,
		Doc:        doc.Params["value"],
	}}}
}

// isOptionsStruct reports whether a trailing parameter type provides keyword
// parameters: a plain struct with at least one exported field.
func isOptionsStruct(t reflect.Type) bool {
	if t.Kind() != reflect.Struct {
		return false
	}
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).IsExported() {
			return true
		}
	}
	return false
}

// keywordName derives a keyword parameter name from a struct field: the
// shell tag when present ("-" hides the field), else the dashed field name.
func keywordName(f reflect.StructField) string {
	if tag, ok := f.Tag.Lookup("shell"); ok {
		tag = strings.Split(tag, ",")[0]
		if tag == "-" {
			return ""
		}
		if tag != "" {
			return tag
		}
	}
	return NameToDashed(f.Name)
}

// PositionalRange returns the minimum and maximum number of positional
// arguments the signature accepts. max is -1 for variadic signatures.
func (s Signature) PositionalRange() (min, max int) {
	for _, p := range s.Params {
		switch p.Kind {
		case Positional:
			max++
			if !p.HasDefault {
				min++
			}
		case VarPositional:
			return min, -1
		}
	}
	return min, max
}

// positionals returns the non-keyword parameters, with the variadic
// parameter (if any) last.
func (s Signature) positionals() (fixed []Param, variadic *Param) {
	for i, p := range s.Params {
		switch p.Kind {
		case Positional:
			fixed = append(fixed, p)
		case VarPositional:
			variadic = &s.Params[i]
		}
	}
	return fixed, variadic
}

// String renders the signature in a compact, help-oriented form, e.g.
// "(a: int, b: int, *files: string, [verbose: bool = false])".
func (s Signature) String() string {
	var parts []string
	for _, p := range s.Params {
		switch {
		case p.Kind == VarPositional:
			parts = append(parts, fmt.Sprintf("*%s: %s", p.Name, typeName(p.Type)))
		case p.Kind == Keyword || p.HasDefault:
			parts = append(parts, fmt.Sprintf("[%s: %s = %v]", p.Name, typeName(p.Type), p.Default))
		default:
			parts = append(parts, fmt.Sprintf("%s: %s", p.Name, typeName(p.Type)))
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "any"
	}
	if t.Kind() == reflect.Interface && t.NumMethod() == 0 {
		return "any"
	}
	return t.String()
}
