// SPDX-License-Identifier: MPL-2.0

package argsh

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// acronymBoundary matches a run of uppercase letters followed by the
	// start of a capitalized word, e.g. the "PS" / "Er" boundary in
	// "HTTPServer".
	acronymBoundary = regexp.MustCompile(`([A-Z]+)([A-Z][a-z])`)
	// caseBoundary matches a lowercase letter or digit followed by an
	// uppercase letter, e.g. the "l/C" boundary in "CamelCase".
	caseBoundary = regexp.MustCompile(`([a-z\d])([A-Z])`)
)

// NameToDashed converts an identifier-style name into its dashed command
// form: CamelCase becomes camel-case, HTTPServer becomes http-server, and
// underscores become dashes. The result is lowercase.
func NameToDashed(name string) string {
	name = acronymBoundary.ReplaceAllString(name, "$1-$2")
	name = caseBoundary.ReplaceAllString(name, "$1-$2")
	name = strings.ReplaceAll(name, "_", "-")
	return strings.ToLower(name)
}

// validateCommandName enforces the namespace key invariant: dashed form only,
// non-empty, no underscores, no uppercase, no whitespace.
func validateCommandName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("command name must not be empty")
	case strings.ContainsAny(name, "_ \t\n"):
		return fmt.Errorf("command name %q must be in dashed form", name)
	case name != strings.ToLower(name):
		return fmt.Errorf("command name %q must be lowercase", name)
	}
	return nil
}

// commandNameFor derives the command name for a member: a fixed annotation
// name is used verbatim, otherwise the dashed form of the member's name.
func commandNameFor(goName string, ann Annotation) string {
	if ann.Name != "" {
		return ann.Name
	}
	return NameToDashed(goName)
}
