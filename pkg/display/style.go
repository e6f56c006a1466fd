// Package display renders mutation-path and type-status output for a
// terminal, the same lipgloss-driven palette approach brp-mcp's CLI
// ancestor used for its interactive session views, scaled down to
// single-line badges suitable for piping alongside JSON.
package display

import "github.com/charmbracelet/lipgloss"

var (
	colorGreen  = lipgloss.Color("42")
	colorRed    = lipgloss.Color("196")
	colorYellow = lipgloss.Color("214")
	colorDim    = lipgloss.Color("240")
)

var (
	mutableStyle          = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	partiallyMutableStyle = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	notMutableStyle       = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	dimStyle              = lipgloss.NewStyle().Foreground(colorDim)
)

// MutabilityBadge renders a one-line colored status badge for a mutability
// string as reported in the §6.3-shaped output envelope ("mutable",
// "partially_mutable", "not_mutable").
func MutabilityBadge(mutability string) string {
	switch mutability {
	case "mutable":
		return mutableStyle.Render("● mutable")
	case "partially_mutable":
		return partiallyMutableStyle.Render("◐ partially_mutable")
	case "not_mutable":
		return notMutableStyle.Render("○ not_mutable")
	default:
		return dimStyle.Render(mutability)
	}
}

// TypeLine renders a dimmed "type_name (kind)" caption for a describe_type
// result, printed above the JSON body.
func TypeLine(typeName, kind string) string {
	return dimStyle.Render(typeName + " (" + kind + ")")
}
