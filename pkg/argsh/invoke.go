// SPDX-License-Identifier: MPL-2.0

package argsh

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"sort"
	"time"
)

// funcInvoker builds the call closure for a func-backed command. Binding
// mismatches surface as *BindError before the function runs; errors returned
// by the function itself pass through unmodified.
func funcInvoker(name string, fn reflect.Value, sig Signature) func(context.Context, []any, map[string]any) (any, error) {
	return func(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
		in, bindErr := bindArguments(name, sig, ctx, args, kwargs)
		if bindErr != nil {
			return nil, bindErr
		}
		return splitResults(fn.Call(in))
	}
}

// accessorInvoker builds the call closure for a field accessor: zero
// arguments reads the value, one argument writes it. set is nil for
// getter-only accessors.
func accessorInvoker(name string, fieldType reflect.Type, get func() any, set func(reflect.Value)) func(context.Context, []any, map[string]any) (any, error) {
	return func(_ context.Context, args []any, kwargs map[string]any) (any, error) {
		if len(kwargs) > 0 {
			return nil, &BindError{Command: name, Reason: fmt.Sprintf("unexpected keyword argument %q", firstKey(kwargs))}
		}
		switch len(args) {
		case 0:
			return get(), nil
		case 1:
			if set == nil {
				return nil, fmt.Errorf("%s: %w", name, ErrNotSettable)
			}
			cv, err := convertValue(args[0], fieldType)
			if err != nil {
				return nil, &BindError{Command: name, Reason: fmt.Sprintf("value: %v", err)}
			}
			set(cv)
			return nil, nil
		default:
			return nil, &BindError{Command: name, Reason: fmt.Sprintf("expected at most 1 argument, got %d", len(args))}
		}
	}
}

// bindArguments maps dynamic positional and keyword argument values onto the
// declared signature, producing the reflect call inputs.
func bindArguments(name string, sig Signature, ctx context.Context, args []any, kwargs map[string]any) ([]reflect.Value, *BindError) {
	remaining := make(map[string]any, len(kwargs))
	for k, v := range kwargs {
		remaining[k] = v
	}

	var in []reflect.Value
	if sig.takesContext {
		in = append(in, reflect.ValueOf(ctx))
	}

	fixed, variadic := sig.positionals()
	for i, p := range fixed {
		var value any
		switch {
		case i < len(args):
			value = args[i]
			if _, dup := remaining[p.Name]; dup {
				return nil, &BindError{Command: name, Reason: fmt.Sprintf("got multiple values for argument %q", p.Name)}
			}
		default:
			v, ok := remaining[p.Name]
			if !ok {
				if !p.HasDefault {
					return nil, &BindError{Command: name, Reason: fmt.Sprintf("missing required argument %q", p.Name)}
				}
				v = p.Default
			}
			delete(remaining, p.Name)
			value = v
		}
		cv, err := convertValue(value, p.Type)
		if err != nil {
			return nil, &BindError{Command: name, Reason: fmt.Sprintf("argument %q: %v", p.Name, err)}
		}
		in = append(in, cv)
	}

	extra := args
	if len(fixed) < len(extra) {
		extra = extra[len(fixed):]
	} else {
		extra = nil
	}
	switch {
	case variadic != nil:
		for _, v := range extra {
			cv, err := convertValue(v, variadic.Type)
			if err != nil {
				return nil, &BindError{Command: name, Reason: fmt.Sprintf("argument %q: %v", variadic.Name, err)}
			}
			in = append(in, cv)
		}
	case len(extra) > 0:
		return nil, &BindError{Command: name, Reason: fmt.Sprintf("expected at most %d positional arguments, got %d", len(fixed), len(args))}
	}

	if sig.kwStruct != nil {
		sv := reflect.New(sig.kwStruct).Elem()
		for k, v := range remaining {
			idx, ok := sig.kwFields[k]
			if !ok {
				return nil, &BindError{Command: name, Reason: fmt.Sprintf("unexpected keyword argument %q", k)}
			}
			cv, err := convertValue(v, sv.Field(idx).Type())
			if err != nil {
				return nil, &BindError{Command: name, Reason: fmt.Sprintf("argument %q: %v", k, err)}
			}
			sv.Field(idx).Set(cv)
		}
		in = append(in, sv)
	} else if len(remaining) > 0 {
		return nil, &BindError{Command: name, Reason: fmt.Sprintf("unexpected keyword argument %q", firstKey(remaining))}
	}
	return in, nil
}

// splitResults collapses reflect call outputs: a trailing error is separated
// out, a single value is returned as-is, multiple values become a slice.
func splitResults(out []reflect.Value) (any, error) {
	if n := len(out); n > 0 && out[n-1].Type() == errType {
		if e := out[n-1]; !e.IsNil() {
			return nil, e.Interface().(error)
		}
		out = out[:n-1]
	}
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0].Interface(), nil
	default:
		values := make([]any, len(out))
		for i, v := range out {
			values[i] = v.Interface()
		}
		return values, nil
	}
}

// convertValue coerces a dynamic literal value to the target parameter type.
// Values are parsed as dynamic literals, not statically checked, so this is
// mechanical conversion: numeric widening, slices and maps of literals, and
// duration strings. Anything else is a binding error.
func convertValue(v any, t reflect.Type) (reflect.Value, error) {
	if t.Kind() == reflect.Interface && t.NumMethod() == 0 {
		if v == nil {
			return reflect.Zero(t), nil
		}
		return reflect.ValueOf(v), nil
	}
	if v == nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface, reflect.Chan, reflect.Func:
			return reflect.Zero(t), nil
		default:
			return reflect.Value{}, fmt.Errorf("cannot use null as %s", typeName(t))
		}
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}

	switch {
	case isIntKind(rv.Kind()) && isNumericKind(t.Kind()):
		if isUintKind(t.Kind()) && isSignedIntKind(rv.Kind()) && rv.Int() < 0 {
			return reflect.Value{}, fmt.Errorf("cannot use %v as %s", v, typeName(t))
		}
		return rv.Convert(t), nil
	case isFloatKind(rv.Kind()) && isFloatKind(t.Kind()):
		return rv.Convert(t), nil
	case isFloatKind(rv.Kind()) && isIntKind(t.Kind()):
		f := rv.Float()
		if math.Trunc(f) != f || (isUintKind(t.Kind()) && f < 0) {
			return reflect.Value{}, fmt.Errorf("cannot use %v as %s", v, typeName(t))
		}
		return rv.Convert(t), nil
	case rv.Kind() == reflect.String && t == reflect.TypeOf(time.Duration(0)):
		d, err := time.ParseDuration(rv.String())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("cannot use %q as duration: %v", v, err)
		}
		return reflect.ValueOf(d), nil
	case rv.Kind() == reflect.String && t.Kind() == reflect.String:
		return rv.Convert(t), nil
	case rv.Kind() == reflect.Slice && t.Kind() == reflect.Slice:
		out := reflect.MakeSlice(t, rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			cv, err := convertValue(rv.Index(i).Interface(), t.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("element %d: %v", i, err)
			}
			out.Index(i).Set(cv)
		}
		return out, nil
	case rv.Kind() == reflect.Map && t.Kind() == reflect.Map && t.Key().Kind() == reflect.String:
		out := reflect.MakeMapWithSize(t, rv.Len())
		for _, key := range rv.MapKeys() {
			if key.Kind() != reflect.String {
				return reflect.Value{}, fmt.Errorf("map key %v is not a string", key.Interface())
			}
			cv, err := convertValue(rv.MapIndex(key).Interface(), t.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("key %q: %v", key.String(), err)
			}
			out.SetMapIndex(key.Convert(t.Key()), cv)
		}
		return out, nil
	case rv.Kind() == reflect.Map && t.Kind() == reflect.Struct:
		return convertStruct(rv, t)
	}
	return reflect.Value{}, fmt.Errorf("cannot convert %T to %s", v, typeName(t))
}

// convertStruct fills a struct from a map literal, matching keys against the
// dashed field names (or shell tags) of the target type.
func convertStruct(rv reflect.Value, t reflect.Type) (reflect.Value, error) {
	byName := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if name := keywordName(f); name != "" {
			byName[name] = i
		}
	}
	out := reflect.New(t).Elem()
	for _, key := range rv.MapKeys() {
		if key.Kind() != reflect.String {
			return reflect.Value{}, fmt.Errorf("map key %v is not a string", key.Interface())
		}
		idx, ok := byName[key.String()]
		if !ok {
			return reflect.Value{}, fmt.Errorf("unknown field %q for %s", key.String(), typeName(t))
		}
		cv, err := convertValue(rv.MapIndex(key).Interface(), t.Field(idx).Type)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("field %q: %v", key.String(), err)
		}
		out.Field(idx).Set(cv)
	}
	return out, nil
}

func isIntKind(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Uint64
}

func isSignedIntKind(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUintKind(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uint64
}

func isFloatKind(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isNumericKind(k reflect.Kind) bool {
	return isIntKind(k) || isFloatKind(k)
}

// firstKey returns the lexically first key, keeping error messages stable.
func firstKey(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys[0]
}
