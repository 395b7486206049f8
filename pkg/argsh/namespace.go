// SPDX-License-Identifier: MPL-2.0

package argsh

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"

	"github.com/charmbracelet/log"
)

type (
	// Namespace is the insertion-ordered, name-unique table of bound
	// commands backing one interface instance.
	Namespace struct {
		names []string
		cmds  map[string]*Command
	}

	// UnboundNamespace is the class-shaped command table produced by
	// scanning; binding it to a live object yields a Namespace.
	UnboundNamespace struct {
		names []string
		cmds  map[string]*UnboundCommand
	}
)

// NewUnboundNamespace returns an empty unbound namespace.
func NewUnboundNamespace() *UnboundNamespace {
	return &UnboundNamespace{cmds: make(map[string]*UnboundCommand)}
}

// Add inserts a command. Inserting under a name that is already present is a
// hard error; the namespace keeps whatever was inserted before the failure.
func (n *UnboundNamespace) Add(cmd *UnboundCommand) error {
	if err := validateCommandName(cmd.Name()); err != nil {
		return err
	}
	if _, exists := n.cmds[cmd.Name()]; exists {
		return &DuplicateCommandError{Name: cmd.Name()}
	}
	n.cmds[cmd.Name()] = cmd
	n.names = append(n.names, cmd.Name())
	return nil
}

// Names returns the command names in insertion order.
func (n *UnboundNamespace) Names() []string {
	out := make([]string, len(n.names))
	copy(out, n.names)
	return out
}

// Get returns the command registered under name.
func (n *UnboundNamespace) Get(name string) (*UnboundCommand, bool) {
	cmd, ok := n.cmds[name]
	return cmd, ok
}

// Len returns the number of commands.
func (n *UnboundNamespace) Len() int { return len(n.names) }

// Bind binds every entry to the given object, preserving insertion order and
// re-checking the duplicate-name invariant.
func (n *UnboundNamespace) Bind(obj any) (*Namespace, error) {
	ns := &Namespace{cmds: make(map[string]*Command, len(n.names))}
	for _, name := range n.names {
		cmd, err := n.cmds[name].Bind(obj)
		if err != nil {
			return nil, err
		}
		if err := ns.add(cmd); err != nil {
			return nil, err
		}
	}
	return ns, nil
}

func (n *Namespace) add(cmd *Command) error {
	if err := validateCommandName(cmd.Name()); err != nil {
		return err
	}
	if _, exists := n.cmds[cmd.Name()]; exists {
		return &DuplicateCommandError{Name: cmd.Name()}
	}
	n.cmds[cmd.Name()] = cmd
	n.names = append(n.names, cmd.Name())
	return nil
}

// Names returns the command names in insertion order.
func (n *Namespace) Names() []string {
	out := make([]string, len(n.names))
	copy(out, n.names)
	return out
}

// Get returns the command registered under name.
func (n *Namespace) Get(name string) (*Command, bool) {
	cmd, ok := n.cmds[name]
	return cmd, ok
}

// Len returns the number of commands.
func (n *Namespace) Len() int { return len(n.names) }

// NamespaceFromObject scans an object and binds the result to it in one step.
func NamespaceFromObject(obj any, opts ...ScanOption) (*Namespace, error) {
	unbound, err := Scan(obj, opts...)
	if err != nil {
		return nil, err
	}
	return unbound.Bind(obj)
}

// member is one discoverable attribute of the scan target.
type member struct {
	kind      memberKind
	eligible  bool // attachment-only members can host nested namespaces
	fnType    reflect.Type
	fnValue   reflect.Value
	fieldType reflect.Type
	fixedName string // from the shell field tag
}

// Scan builds an unbound namespace from an object. Discovery is class-shaped:
// instances are introspected through their type, so instance state never
// affects which members are discovered. The target may be a struct value, a
// pointer to struct (required for pointer-receiver methods and settable
// accessors), a reflect.Type for pure class scans, or a map[string]any whose
// func values become commands.
//
// Member kinds: exported methods become commands (a leading context.Context
// parameter is injected at call time); func-typed exported fields and map
// func entries are commands needing no binding; exported data fields carrying
// a `shell` tag become get/set accessor commands. Anything else is not
// exposed. Nested namespaces declared through WithNested are spliced in under
// the matching attribute's dashed name instead of scanning the attribute.
func Scan(obj any, opts ...ScanOption) (*UnboundNamespace, error) {
	var cfg scanConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	pending := make(map[string]*UnboundNamespace, len(cfg.nested))
	for name, ns := range cfg.nested {
		pending[name] = ns
	}

	t, live, isMap := scanTarget(obj)
	if t == nil && !isMap {
		return nil, fmt.Errorf("cannot scan %T: %w", obj, ErrUnsupportedCommandType)
	}

	annotations := collectAnnotations(obj, cfg.annotations)

	var members map[string]member
	if isMap {
		members = mapMembers(live)
	} else {
		members = typeMembers(t)
	}

	ns := NewUnboundNamespace()
	for _, goName := range sortedKeys(members) {
		m := members[goName]
		ann := annotations[goName]
		if m.fixedName != "" && ann.Name == "" {
			ann.Name = m.fixedName
		}
		if ann.Exclude {
			continue
		}

		if nested, ok := pending[goName]; ok {
			if err := splice(ns, nested, goName); err != nil {
				return nil, err
			}
			delete(pending, goName)
			continue
		}
		if !m.eligible {
			continue
		}

		cmd := &UnboundCommand{
			name:      commandNameFor(goName, ann),
			goName:    goName,
			kind:      m.kind,
			fnType:    m.fnType,
			fnValue:   m.fnValue,
			fieldType: m.fieldType,
			ann:       ann,
		}
		if err := ns.Add(cmd); err != nil {
			var dup *DuplicateCommandError
			if errors.As(err, &dup) {
				return nil, err
			}
			// Wrapping failed for this member, it is simply not exposed.
			logger.Debug("skipping member", "member", goName, "err", err)
			continue
		}
		logger.Debug("registered command", "command", cmd.Name(), "member", goName)
	}

	// Best-effort resolution of remaining nested namespaces against the live
	// instance, covering attributes the class-shaped enumeration cannot see
	// (map keys, promoted fields of embedded structs).
	if len(pending) > 0 && live.IsValid() {
		for _, name := range sortedKeys(pending) {
			if _, ok := lookupAttr(live.Interface(), name); !ok {
				continue
			}
			if err := splice(ns, pending[name], name); err != nil {
				return nil, err
			}
			delete(pending, name)
		}
	}
	if len(pending) > 0 {
		return nil, &NestedNamespaceError{Names: sortedKeys(pending)}
	}
	return ns, nil
}

// splice re-parents every command of a nested namespace under the attribute
// name and inserts it, preserving the nested namespace's order.
func splice(ns *UnboundNamespace, nested *UnboundNamespace, attrName string) error {
	for _, cmdName := range nested.names {
		if err := ns.Add(nested.cmds[cmdName].ForNamespace(attrName)); err != nil {
			return err
		}
	}
	return nil
}

// scanTarget normalizes the scan input: a reflect.Type is a class scan, a
// map[string]any is a module-style scan over its live keys, anything else is
// introspected through its dynamic type.
func scanTarget(obj any) (t reflect.Type, live reflect.Value, isMap bool) {
	if rt, ok := obj.(reflect.Type); ok {
		return rt, reflect.Value{}, false
	}
	v := reflect.ValueOf(obj)
	if !v.IsValid() {
		return nil, reflect.Value{}, false
	}
	if _, ok := obj.(map[string]any); ok {
		return nil, v, true
	}
	return v.Type(), v, false
}

// typeMembers enumerates the members of a struct (or pointer-to-struct)
// type: its method set plus its exported fields.
func typeMembers(t reflect.Type) map[string]member {
	members := make(map[string]member)
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if !m.IsExported() {
			continue
		}
		members[m.Name] = member{kind: memberMethod, eligible: true, fnType: m.Type}
	}
	st := t
	for st.Kind() == reflect.Pointer {
		st = st.Elem()
	}
	if st.Kind() != reflect.Struct {
		return members
	}
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		if !f.IsExported() {
			continue
		}
		if _, taken := members[f.Name]; taken {
			continue
		}
		tag, tagged := f.Tag.Lookup("shell")
		switch {
		case tag == "-":
			// Explicitly opted out.
		case f.Type.Kind() == reflect.Func:
			members[f.Name] = member{kind: memberFunc, eligible: true, fnType: f.Type}
		case tagged:
			members[f.Name] = member{kind: memberAccessor, eligible: true, fieldType: f.Type, fixedName: tag}
		default:
			// Plain data attribute: not a command, but still a valid
			// attachment point for a nested namespace.
			members[f.Name] = member{eligible: false}
		}
	}
	return members
}

// mapMembers enumerates the live keys of a map target. Func values are
// commands, already bound; other values are attachment points only.
func mapMembers(v reflect.Value) map[string]member {
	members := make(map[string]member)
	for _, key := range v.MapKeys() {
		name := key.String()
		ev := v.MapIndex(key).Elem() // unwrap the interface value
		if ev.IsValid() && ev.Kind() == reflect.Func && !ev.IsNil() {
			members[name] = member{kind: memberFunc, eligible: true, fnType: ev.Type(), fnValue: ev}
			continue
		}
		members[name] = member{eligible: false}
	}
	return members
}

// collectAnnotations merges annotations from the Annotated interface with
// scan-option overrides, which win. The CommandAnnotations member itself is
// excluded from the shell.
func collectAnnotations(obj any, overrides map[string]Annotation) map[string]Annotation {
	merged := make(map[string]Annotation)
	if a, ok := obj.(Annotated); ok {
		for name, ann := range a.CommandAnnotations() {
			merged[name] = ann
		}
		merged["CommandAnnotations"] = Annotation{Exclude: true}
	}
	for name, ann := range overrides {
		merged[name] = ann
	}
	return merged
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
