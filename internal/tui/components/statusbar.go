package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/fintrack/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Status is the right-hand context and the transient message shown in the
// status bar.
type Status struct {
	Backend string
	Message string
	IsError bool
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, st Status) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	msgColor := t.Good
	if st.IsError {
		msgColor = t.Danger
	}
	msgStyle := lipgloss.NewStyle().Foreground(msgColor).Background(t.Surface)

	left := base.Render(" [?]help  [t]ransaction  [h]ide balance  [q]uit")
	if st.Message != "" {
		left += base.Render("  ") + msgStyle.Render(st.Message)
	}

	right := ""
	if st.Backend != "" {
		right = base.Render(fmt.Sprintf("store: %s ", st.Backend))
	}

	padding := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return left + base.Render(strings.Repeat(" ", padding)) + right
}
