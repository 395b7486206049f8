// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jonasehrlich/argparse-shell/pkg/argsh"
)

// Driver is the sample object exposed through the shell. Its exported
// methods become commands, the tagged Depth field becomes a get/set
// accessor, and the Store attribute hosts a nested namespace grafted in by
// main, yielding store-get, store-set and store-keys.
type Driver struct {
	// Depth is a tunable exposed as the "depth" accessor command.
	Depth float64 `shell:"depth"`

	// Store holds the nested key/value command group.
	Store *Store
}

// Store groups key/value commands nested under the driver.
type Store struct {
	values map[string]any
}

// NewDriver returns a driver with an empty store.
func NewDriver() *Driver {
	return &Driver{Store: &Store{values: make(map[string]any)}}
}

// Add returns the sum of two integers.
func (d *Driver) Add(a, b int) int { return a + b }

// Div divides a by b.
func (d *Driver) Div(a, b float64) (float64, error) {
	if b == 0 {
		return 0, fmt.Errorf("division by zero")
	}
	return a / b, nil
}

// Echo returns its arguments unchanged.
func (d *Driver) Echo(values ...any) []any { return values }

// Sleep blocks for the given duration; the shell injects the context and
// drives the call synchronously.
func (d *Driver) Sleep(ctx context.Context, duration time.Duration) error {
	select {
	case <-time.After(duration):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CommandAnnotations documents the driver's commands for generated help.
func (d *Driver) CommandAnnotations() map[string]argsh.Annotation {
	return map[string]argsh.Annotation{
		"Add": {
			Doc:    "Add two integers.\n\nArguments:\n  a: first addend\n  b: second addend",
			Params: []string{"a", "b"},
		},
		"Div": {
			Doc:    "Divide a by b.\n\nArguments:\n  a: dividend\n  b: divisor",
			Params: []string{"a", "b"},
		},
		"Echo": {
			Doc: "Return the given literal values unchanged.",
		},
		"Sleep": {
			Doc:    "Block for a duration, e.g. 500ms or 2s.",
			Params: []string{"duration"},
		},
	}
}

// Get returns the value stored under key.
func (s *Store) Get(key string) (any, error) {
	v, ok := s.values[key]
	if !ok {
		return nil, fmt.Errorf("no value for key %q", key)
	}
	return v, nil
}

// Set stores a value under key.
func (s *Store) Set(key string, value any) {
	s.values[key] = value
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
