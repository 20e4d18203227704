package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorAccent  = lipgloss.Color("#7C3AED") // Purple
	colorSuccess = lipgloss.Color("#10B981") // Green
	colorWarning = lipgloss.Color("#F59E0B") // Yellow
	colorError   = lipgloss.Color("#EF4444") // Red
	colorMuted   = lipgloss.Color("#6B7280") // Gray

	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	styleAllow = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorSuccess)

	styleBlock = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorError)

	styleWarn = lipgloss.NewStyle().
			Foreground(colorWarning)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleCommand = lipgloss.NewStyle().
			Foreground(colorWarning).
			Italic(true)
)

const ruleWidth = 55

func printHeader(title string) {
	bar := strings.Repeat("═", ruleWidth)
	fmt.Println(styleMuted.Render(bar))
	fmt.Println("  " + styleTitle.Render(title))
	fmt.Println(styleMuted.Render(bar))
}

func printSection(title string) {
	pad := ruleWidth - len(title) - 5
	if pad < 3 {
		pad = 3
	}
	fmt.Println(styleMuted.Render("─── ") + styleTitle.Render(title) + " " + styleMuted.Render(strings.Repeat("─", pad)))
}

func decisionLabel(blocked bool) string {
	if blocked {
		return styleBlock.Render("BLOCK")
	}
	return styleAllow.Render("ALLOW")
}

func passMark(ok bool) string {
	if ok {
		return styleAllow.Render("✓")
	}
	return styleBlock.Render("✗")
}
