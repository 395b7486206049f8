// SPDX-License-Identifier: MPL-2.0

package argsh

import "github.com/charmbracelet/lipgloss"

// Color palette shared by the generated help and the interactive shell.
const (
	colorPrimary   = lipgloss.Color("#7C3AED")
	colorMuted     = lipgloss.Color("#6B7280")
	colorError     = lipgloss.Color("#EF4444")
	colorHighlight = lipgloss.Color("#3B82F6")
)

var (
	// titleStyle renders command names in generated help blocks.
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)

	// mutedStyle renders signatures and secondary text.
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)

	// errorStyle renders user-facing parse and binding errors.
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(colorError)

	// cmdStyle renders command names in listings.
	cmdStyle = lipgloss.NewStyle().Foreground(colorHighlight)
)
