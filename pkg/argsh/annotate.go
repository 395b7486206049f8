// SPDX-License-Identifier: MPL-2.0

package argsh

import "github.com/charmbracelet/log"

type (
	// Annotation carries authoring-time command metadata for one member of a
	// target object, keyed by the member's Go name. Go has no runtime
	// docstrings or method attributes, so names, documentation and exclusion
	// markers are attached either through the Annotated interface or through
	// scan options.
	Annotation struct {
		// Exclude removes the member from the shell entirely.
		Exclude bool
		// Name fixes the command name, used verbatim instead of the derived
		// dashed name. It must already be in dashed form.
		Name string
		// Doc is the member's documentation text. The first paragraph is the
		// short description; a paragraph headed "Arguments:" documents
		// individual parameters.
		Doc string
		// Params names the member's positional parameters in declaration
		// order. Unnamed parameters fall back to generated argN names.
		Params []string
	}

	// Annotated is implemented by target objects that describe their own
	// members. The returned map is keyed by Go member name. The
	// CommandAnnotations member itself is never exposed as a command.
	Annotated interface {
		CommandAnnotations() map[string]Annotation
	}

	// ScanOption configures a namespace scan.
	ScanOption func(*scanConfig)

	scanConfig struct {
		nested      map[string]*UnboundNamespace
		annotations map[string]Annotation
		logger      *log.Logger
	}
)

// WithNested grafts a pre-scanned unbound namespace under the named attribute
// of the scanned object. Every grafted command is re-parented below the
// attribute's dashed name. The attribute must exist on the object; unresolved
// nested namespaces are a fatal configuration error.
func WithNested(attrName string, ns *UnboundNamespace) ScanOption {
	return func(cfg *scanConfig) {
		if cfg.nested == nil {
			cfg.nested = make(map[string]*UnboundNamespace)
		}
		cfg.nested[attrName] = ns
	}
}

// WithAnnotation attaches an annotation to the named member, overriding an
// annotation provided by the object itself.
func WithAnnotation(goName string, ann Annotation) ScanOption {
	return func(cfg *scanConfig) {
		if cfg.annotations == nil {
			cfg.annotations = make(map[string]Annotation)
		}
		cfg.annotations[goName] = ann
	}
}

// WithDoc attaches documentation text to the named member. It is shorthand
// for an annotation carrying only a Doc.
func WithDoc(goName, doc string) ScanOption {
	return func(cfg *scanConfig) {
		if cfg.annotations == nil {
			cfg.annotations = make(map[string]Annotation)
		}
		ann := cfg.annotations[goName]
		ann.Doc = doc
		cfg.annotations[goName] = ann
	}
}

// WithScanLogger routes scan-time debug logging to the given logger.
func WithScanLogger(logger *log.Logger) ScanOption {
	return func(cfg *scanConfig) { cfg.logger = logger }
}
