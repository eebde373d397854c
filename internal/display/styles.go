// Package display prints topologies, traces, spectra and diagnoses to a
// terminal. Colors follow the writer's capabilities: output to a file or
// buffer is plain text.
package display

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles holds the palette used by a Printer.
type Styles struct {
	Healthy   lipgloss.Style
	Faulty    lipgloss.Style
	Link      lipgloss.Style
	Fault     lipgloss.Style
	Error     lipgloss.Style
	Failure   lipgloss.Style
	Inactive  lipgloss.Style
	Pass      lipgloss.Style
	Fail      lipgloss.Style
	Weight    lipgloss.Style
	Muted     lipgloss.Style
	Title     lipgloss.Style
	Highlight lipgloss.Style
}

// NewStyles builds the palette for the given renderer.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Healthy:   r.NewStyle().Foreground(lipgloss.Color("12")),
		Faulty:    r.NewStyle().Foreground(lipgloss.Color("9")),
		Link:      r.NewStyle().Foreground(lipgloss.Color("11")),
		Fault:     r.NewStyle().Foreground(lipgloss.Color("9")),
		Error:     r.NewStyle().Foreground(lipgloss.Color("14")),
		Failure:   r.NewStyle().Foreground(lipgloss.Color("13")),
		Inactive:  r.NewStyle().Foreground(lipgloss.Color("11")),
		Pass:      r.NewStyle().Foreground(lipgloss.Color("10")),
		Fail:      r.NewStyle().Foreground(lipgloss.Color("9")),
		Weight:    r.NewStyle().Foreground(lipgloss.Color("10")),
		Muted:     r.NewStyle().Foreground(lipgloss.Color("8")),
		Title:     r.NewStyle().Bold(true),
		Highlight: r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
}
