// Package tui is the terminal front end of the catalogue browser.
package tui

import (
	"os"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Color palette.
var (
	Primary     = lipgloss.Color("#0f4c81")
	Accent      = lipgloss.Color("#ffdd57")
	Muted       = lipgloss.Color("#8a8f98")
	Border      = lipgloss.Color("#3b4252")
	Destructive = lipgloss.Color("#e53935")
	Success     = lipgloss.Color("#48c774")
	Info        = lipgloss.Color("#3298dc")
)

// Styles holds all the styled components.
type Styles struct {
	// Layout
	Navbar     lipgloss.Style
	NavBrand   lipgloss.Style
	NavCrumb   lipgloss.Style
	Content    lipgloss.Style
	Footer     lipgloss.Style
	SearchBox  lipgloss.Style
	Pagination lipgloss.Style

	// Text
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Badge    lipgloss.Style

	// Buttons
	Button         lipgloss.Style
	ButtonDisabled lipgloss.Style

	Spinner lipgloss.Style
	Table   table.Styles

	// GlamourStyle names a glamour standard style; empty selects the style
	// from the terminal background.
	GlamourStyle string
}

// DefaultStyles returns the styles for the current terminal.
func DefaultStyles() Styles {
	s := Styles{
		Navbar: lipgloss.NewStyle().
			Background(Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1),
		NavBrand: lipgloss.NewStyle().
			Bold(true).
			Foreground(Accent),
		NavCrumb: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")),
		Content: lipgloss.NewStyle().
			Padding(1, 2),
		Footer: lipgloss.NewStyle().
			Foreground(Muted).
			Padding(0, 2),
		SearchBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 1),
		Pagination: lipgloss.NewStyle().
			MarginTop(1),

		Title: lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true),
		Subtitle: lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true),
		Muted: lipgloss.NewStyle().
			Foreground(Muted),
		Error: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),
		Badge: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(Accent).
			Padding(0, 1),

		Button: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(Info).
			Padding(0, 1),
		ButtonDisabled: lipgloss.NewStyle().
			Foreground(Muted).
			Background(Border).
			Padding(0, 1),

		Spinner: lipgloss.NewStyle().
			Foreground(Info),
	}

	s.Table = table.DefaultStyles()
	s.Table.Header = s.Table.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Border).
		BorderBottom(true).
		Bold(true)
	s.Table.Selected = s.Table.Selected.
		Foreground(lipgloss.Color("#ffffff")).
		Background(Primary)

	if os.Getenv("NO_COLOR") != "" {
		s.GlamourStyle = "notty"
	}

	return s
}

// PlainStyles returns styles without colors or borders, for tests and
// non-interactive output.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Navbar:         plain,
		NavBrand:       plain,
		NavCrumb:       plain,
		Content:        plain,
		Footer:         plain,
		SearchBox:      plain,
		Pagination:     plain,
		Title:          plain,
		Subtitle:       plain,
		Muted:          plain,
		Error:          plain,
		Badge:          plain,
		Button:         plain,
		ButtonDisabled: plain,
		Spinner:        plain,
		Table: table.Styles{
			Header:   plain,
			Cell:     plain,
			Selected: plain,
		},
		GlamourStyle: "notty",
	}
}
