// SPDX-License-Identifier: MPL-2.0

// Package docstring extracts structured information from command doc text.
//
// The supported shape is intentionally small: paragraphs separated by blank
// lines, where a paragraph headed "Arguments:", "Args:" or "Parameters:"
// holds one "name: description" line per parameter. The first ordinary
// paragraph is the short description, the remaining ordinary paragraphs form
// the long description.
package docstring

import "strings"

// Doc is the parsed form of a command's documentation text.
type Doc struct {
	// Short is the first paragraph, joined to a single line.
	Short string
	// Long holds the remaining paragraphs, excluding parameter sections.
	Long string
	// Params maps a parameter name to its documented description.
	Params map[string]string
}

// Description returns the doc text without parameter sections.
func (d Doc) Description() string {
	if d.Long == "" {
		return d.Short
	}
	return d.Short + "\n\n" + d.Long
}

var sectionHeadings = []string{"arguments:", "args:", "parameters:"}

// Parse splits doc text into short/long descriptions and per-parameter
// descriptions.
func Parse(text string) Doc {
	doc := Doc{Params: make(map[string]string)}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var ordinary []string
	for _, para := range strings.Split(strings.TrimSpace(text), "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if isParamSection(para) {
			parseParamSection(para, doc.Params)
			continue
		}
		ordinary = append(ordinary, para)
	}
	if len(ordinary) > 0 {
		doc.Short = strings.Join(strings.Fields(ordinary[0]), " ")
	}
	if len(ordinary) > 1 {
		doc.Long = strings.Join(ordinary[1:], "\n\n")
	}
	return doc
}

func isParamSection(para string) bool {
	first := strings.ToLower(strings.TrimSpace(strings.SplitN(para, "\n", 2)[0]))
	for _, heading := range sectionHeadings {
		if first == heading {
			return true
		}
	}
	return false
}

// parseParamSection collects "name: description" lines. Continuation lines
// without a colon extend the previous description.
func parseParamSection(para string, params map[string]string) {
	lines := strings.Split(para, "\n")
	var last string
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, desc, ok := strings.Cut(line, ":")
		if !ok || strings.ContainsAny(strings.TrimSpace(name), " \t") {
			if last != "" {
				params[last] += " " + line
			}
			continue
		}
		last = strings.TrimSpace(name)
		params[last] = strings.TrimSpace(desc)
	}
}
