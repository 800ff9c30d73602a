package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#1F4E79", Dark: "#7AB8F5"}).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#81C784"}).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#EF5350"}).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#757575", Dark: "#9E9E9E"})
)

// stdinIsTerminal reports whether prompting the user is possible
func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func printf(w io.Writer, style lipgloss.Style, format string, args ...interface{}) {
	fmt.Fprintln(w, style.Render(fmt.Sprintf(format, args...)))
}

// boolText renders an evaluation result
func boolText(b bool) string {
	if b {
		return successStyle.Render("true")
	}
	return errorStyle.Render("false")
}
