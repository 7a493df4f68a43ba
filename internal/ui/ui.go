// Package ui holds terminal styling for the CLI. Styling degrades to
// plain text when stdout is not a TTY or the terminal reports no color
// support.
package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/feedbackpulse/pulse/internal/model"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	idStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	positiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	neutralStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	negativeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	criticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// Colorized reports whether styled output should be produced.
func Colorized() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return false
	}
	return termenv.ColorProfile() != termenv.Ascii
}

// Title renders a bold heading.
func Title(s string) string {
	if !Colorized() {
		return s
	}
	return titleStyle.Render(s)
}

// ID renders a record identifier.
func ID(s string) string {
	if !Colorized() {
		return s
	}
	return idStyle.Render(s)
}

// Dim renders secondary text such as timestamps and counts.
func Dim(s string) string {
	if !Colorized() {
		return s
	}
	return dimStyle.Render(s)
}

// SentimentBadge renders a sentiment value in its conventional color.
func SentimentBadge(s model.Sentiment) string {
	label := string(s)
	if !Colorized() {
		return label
	}
	switch s {
	case model.SentimentPositive:
		return positiveStyle.Render(label)
	case model.SentimentNeutral:
		return neutralStyle.Render(label)
	case model.SentimentNegative:
		return negativeStyle.Render(label)
	case model.SentimentCritical:
		return criticalStyle.Render(label)
	default:
		return label
	}
}

// Interactive reports whether both ends of the terminal are TTYs, i.e.
// whether prompting the user makes sense.
func Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// Countf formats a dimmed "(n items)" suffix.
func Countf(format string, args ...interface{}) string {
	return Dim(fmt.Sprintf(format, args...))
}
