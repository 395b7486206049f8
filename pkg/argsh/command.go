// SPDX-License-Identifier: MPL-2.0

package argsh

import (
	"context"
	"fmt"
	"reflect"

	"github.com/jonasehrlich/argparse-shell/internal/docstring"
)

// memberKind classifies how a scanned member resolves into a callable.
type memberKind int

const (
	// memberMethod resolves a method by name on the bound target.
	memberMethod memberKind = iota
	// memberFunc is a func value: a func-typed struct field or a map entry.
	// Map entries are captured at scan time and need no binding work.
	memberFunc
	// memberAccessor exposes a data field as a get/set command.
	memberAccessor
)

type (
	// Command is a named, immediately callable unit exposed to both the CLI
	// and the interactive shell. Commands are created by binding an
	// UnboundCommand to a live object.
	Command struct {
		name string
		sig  Signature
		doc  docstring.Doc
		raw  string
		call func(ctx context.Context, args []any, kwargs map[string]any) (any, error)
	}

	// UnboundCommand wraps one scanned member together with the chain of
	// ancestor namespace attributes that lead to its target, outermost
	// first. It becomes callable through Bind.
	UnboundCommand struct {
		name      string
		goName    string
		kind      memberKind
		fnType    reflect.Type  // func type; includes the receiver for memberMethod
		fnValue   reflect.Value // pre-bound func value, invalid unless captured at scan time
		fieldType reflect.Type  // accessor value type
		ann       Annotation
		parents   []string
	}
)

// NewCommand wraps a bare function as a bound command. It is the explicit
// registration path for callers that do not want reflection-driven scanning.
func NewCommand(name string, fn any, ann Annotation) (*Command, error) {
	if err := validateCommandName(name); err != nil {
		return nil, err
	}
	fv := reflect.ValueOf(fn)
	if !fv.IsValid() || fv.Kind() != reflect.Func || fv.IsNil() {
		return nil, fmt.Errorf("%q: %T: %w", name, fn, ErrUnsupportedCommandType)
	}
	doc := docstring.Parse(ann.Doc)
	sig := signatureFromFunc(fv.Type(), false, ann, doc)
	return &Command{
		name: name,
		sig:  sig,
		doc:  doc,
		raw:  ann.Doc,
		call: funcInvoker(name, fv, sig),
	}, nil
}

// NewUnboundCommand wraps an arbitrary member value as an unbound command.
// Only func values are supported here; methods and accessors are produced by
// scanning.
func NewUnboundCommand(name string, member any) (*UnboundCommand, error) {
	fv := reflect.ValueOf(member)
	if !fv.IsValid() || fv.Kind() != reflect.Func || fv.IsNil() {
		return nil, fmt.Errorf("%q: %T: %w", name, member, ErrUnsupportedCommandType)
	}
	return &UnboundCommand{
		name:    name,
		kind:    memberFunc,
		fnType:  fv.Type(),
		fnValue: fv,
	}, nil
}

// Name returns the dashed command name.
func (c *Command) Name() string { return c.name }

// Doc returns the raw documentation text.
func (c *Command) Doc() string { return c.raw }

// ShortDescription returns the first documentation paragraph, or a generated
// fallback when the command is undocumented.
func (c *Command) ShortDescription() string {
	if c.doc.Short != "" {
		return c.doc.Short
	}
	return fmt.Sprintf("%s command", c.name)
}

// Description returns the documentation minus parameter sections.
func (c *Command) Description() string {
	if d := c.doc.Description(); d != "" {
		return d
	}
	return fmt.Sprintf("%s command", c.name)
}

// Signature returns the command's declared parameter list.
func (c *Command) Signature() Signature { return c.sig }

// Call invokes the command with positional and keyword arguments. Argument
// values that do not satisfy the signature produce a *BindError; errors from
// the command itself are returned unmodified.
func (c *Command) Call(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if kwargs == nil {
		kwargs = make(map[string]any)
	}
	return c.call(ctx, args, kwargs)
}

// Name returns the dashed command name, including any namespace prefixes.
func (u *UnboundCommand) Name() string { return u.name }

// ParentNamespaces returns the attribute names walked during binding,
// outermost first.
func (u *UnboundCommand) ParentNamespaces() []string {
	out := make([]string, len(u.parents))
	copy(out, u.parents)
	return out
}

// ForNamespace re-parents the command under the given attribute name: the
// command name gains the attribute's dashed prefix and the attribute is
// recorded at the front of the parent chain.
func (u *UnboundCommand) ForNamespace(attrName string) *UnboundCommand {
	clone := *u
	clone.name = NameToDashed(attrName) + "-" + u.name
	clone.parents = append([]string{attrName}, u.parents...)
	return &clone
}

// Signature returns the parameter list as it will appear after binding: the
// receiver of an unbound method is not part of the visible signature.
func (u *UnboundCommand) Signature() Signature {
	doc := docstring.Parse(u.ann.Doc)
	switch u.kind {
	case memberAccessor:
		return accessorSignature(u.fieldType, doc)
	case memberMethod:
		return signatureFromFunc(u.fnType, true, u.ann, doc)
	default:
		return signatureFromFunc(u.fnType, false, u.ann, doc)
	}
}

// Bind resolves the command against a live object: the parent namespace
// chain is walked as attribute lookups, then the member is resolved on the
// final target. Binding is a no-op for members captured at scan time, such
// as functions of a map target.
func (u *UnboundCommand) Bind(obj any) (*Command, error) {
	target := obj
	for _, attr := range u.parents {
		next, ok := lookupAttr(target, attr)
		if !ok {
			return nil, fmt.Errorf("command %q: cannot resolve namespace attribute %q on %T", u.name, attr, target)
		}
		target = next
	}

	doc := docstring.Parse(u.ann.Doc)
	cmd := &Command{name: u.name, doc: doc, raw: u.ann.Doc}

	switch u.kind {
	case memberFunc:
		fv := u.fnValue
		if !fv.IsValid() {
			raw, ok := lookupAttr(target, u.goName)
			if !ok {
				return nil, fmt.Errorf("command %q: member %q not found on %T", u.name, u.goName, target)
			}
			fv = reflect.ValueOf(raw)
			if !fv.IsValid() || fv.Kind() != reflect.Func || fv.IsNil() {
				return nil, fmt.Errorf("command %q: member %q is not a callable func", u.name, u.goName)
			}
		}
		cmd.sig = signatureFromFunc(fv.Type(), false, u.ann, doc)
		cmd.call = funcInvoker(u.name, fv, cmd.sig)

	case memberMethod:
		if target == nil {
			return nil, fmt.Errorf("command %q: cannot bind method %q to a nil target", u.name, u.goName)
		}
		mv := reflect.ValueOf(target).MethodByName(u.goName)
		if !mv.IsValid() {
			return nil, fmt.Errorf(
				"command %q: method %q not found on %T (pointer-receiver methods require a pointer target)",
				u.name, u.goName, target)
		}
		cmd.sig = signatureFromFunc(mv.Type(), false, u.ann, doc)
		cmd.call = funcInvoker(u.name, mv, cmd.sig)

	case memberAccessor:
		get, set, err := u.accessorFuncs(target)
		if err != nil {
			return nil, err
		}
		cmd.sig = accessorSignature(u.fieldType, doc)
		cmd.call = accessorInvoker(u.name, u.fieldType, get, set)
	}
	return cmd, nil
}

// accessorFuncs builds the get and set closures for a field accessor. set is
// nil when the target is not addressable, the getter-only case.
func (u *UnboundCommand) accessorFuncs(target any) (get func() any, set func(reflect.Value), err error) {
	tv := reflect.ValueOf(target)
	if !tv.IsValid() {
		return nil, nil, fmt.Errorf("command %q: cannot bind accessor %q to a nil target", u.name, u.goName)
	}
	if tv.Kind() == reflect.Pointer {
		if tv.IsNil() {
			return nil, nil, fmt.Errorf("command %q: cannot bind accessor %q to a nil target", u.name, u.goName)
		}
		tv = tv.Elem()
	}
	if tv.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("command %q: accessor target %T is not a struct", u.name, target)
	}
	fv := tv.FieldByName(u.goName)
	if !fv.IsValid() {
		return nil, nil, fmt.Errorf("command %q: field %q not found on %T", u.name, u.goName, target)
	}
	get = func() any { return fv.Interface() }
	if fv.CanSet() {
		set = fv.Set
	}
	return get, set, nil
}

// lookupAttr resolves an attribute by Go name: a map key on map targets, an
// exported field (including promoted fields of embedded structs) otherwise.
func lookupAttr(obj any, name string) (any, bool) {
	if obj == nil {
		return nil, false
	}
	if m, ok := obj.(map[string]any); ok {
		v, ok := m[name]
		return v, ok
	}
	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, false
	}
	f := v.FieldByName(name)
	if !f.IsValid() || !f.CanInterface() {
		return nil, false
	}
	if f.Kind() == reflect.Struct && f.CanAddr() {
		// Hand out a pointer so pointer-receiver methods of the nested
		// object stay reachable and accessors stay settable.
		return f.Addr().Interface(), true
	}
	return f.Interface(), true
}
