package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/config"
	"github.com/theirongolddev/fintrack/internal/tui/components"
	"github.com/theirongolddev/fintrack/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"go.uber.org/zap/zapcore"
)

const (
	settingsFieldName = iota
	settingsFieldTheme
	settingsFieldCurrency
	settingsFieldPrecision
	settingsFieldDueSoon
	settingsFieldLimit
	settingsFieldLogLevel
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool  // flash "saved" message briefly
	saveErr error // non-nil if last edit or save failed
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 64
	ti.Width = 40
	return ti
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	cfg := a.cfg
	a.settings.editing = true
	a.settings.saved = false

	ti := newSettingsInput()
	switch a.settings.cursor {
	case settingsFieldName:
		ti.Placeholder = "your name"
		ti.SetValue(cfg.General.Name)
	case settingsFieldTheme:
		ti.Placeholder = strings.Join(theme.Names(), ", ")
		ti.SetValue(cfg.Appearance.Theme)
	case settingsFieldCurrency:
		ti.Placeholder = "₹, $, €"
		ti.CharLimit = 8
		ti.SetValue(cfg.General.Currency)
	case settingsFieldPrecision:
		ti.Placeholder = "0-4 decimal places"
		ti.SetValue(strconv.Itoa(int(cfg.General.Precision)))
	case settingsFieldDueSoon:
		ti.Placeholder = "7"
		ti.SetValue(strconv.Itoa(cfg.General.DueSoonDays))
	case settingsFieldLimit:
		ti.Placeholder = "50000 (leave empty to clear)"
		if cfg.Budget.MonthlyLimit != nil {
			ti.SetValue(strconv.FormatFloat(*cfg.Budget.MonthlyLimit, 'f', -1, 64))
		}
	case settingsFieldLogLevel:
		ti.Placeholder = "debug, info, warn, error"
		ti.SetValue(cfg.Log.Level)
	}

	ti.Focus()
	a.settings.input = ti
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settingsSave()
		a.settings.editing = false
		a.settings.saved = a.settings.saveErr == nil
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsSave applies the edited value to the live config and writes it.
func (a *App) settingsSave() {
	cfg, err := applySetting(a.cfg, a.settings.cursor, strings.TrimSpace(a.settings.input.Value()))
	if err != nil {
		a.settings.saveErr = err
		return
	}
	a.cfg = cfg
	theme.SetActive(cfg.Appearance.Theme)
	a.recompute()
	a.settings.saveErr = config.Save(cfg)
}

// applySetting returns cfg with field set to val.
func applySetting(cfg config.Config, field int, val string) (config.Config, error) {
	switch field {
	case settingsFieldName:
		cfg.General.Name = val
	case settingsFieldTheme:
		if !theme.Valid(val) {
			return cfg, fmt.Errorf("unknown theme %q", val)
		}
		cfg.Appearance.Theme = val
	case settingsFieldCurrency:
		if val == "" {
			return cfg, fmt.Errorf("currency symbol is required")
		}
		cfg.General.Currency = val
	case settingsFieldPrecision:
		n, err := strconv.Atoi(val)
		if err != nil {
			return cfg, fmt.Errorf("precision must be a number")
		}
		cfg.General.Precision = int32(n)
	case settingsFieldDueSoon:
		n, err := strconv.Atoi(val)
		if err != nil {
			return cfg, fmt.Errorf("due-soon days must be a number")
		}
		cfg.General.DueSoonDays = n
	case settingsFieldLimit:
		if val == "" {
			cfg.Budget.MonthlyLimit = nil
			break
		}
		d, err := cli.ParseAmount(val)
		if err != nil {
			return cfg, err
		}
		f, _ := d.Float64()
		cfg.Budget.MonthlyLimit = &f
	case settingsFieldLogLevel:
		if _, err := zapcore.ParseLevel(val); err != nil {
			return cfg, fmt.Errorf("unknown log level %q", val)
		}
		cfg.Log.Level = val
	}
	return cfg, cfg.Validate()
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active
	cfg := a.cfg

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	goodStyle := lipgloss.NewStyle().Foreground(t.Good).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	type field struct {
		label string
		value string
	}

	name := cfg.General.Name
	if name == "" {
		name = "(not set)"
	}
	limit := "(not set)"
	if cfg.Budget.MonthlyLimit != nil {
		limit = a.money(decimal.NewFromFloat(*cfg.Budget.MonthlyLimit))
	}

	fields := []field{
		{"Name", name},
		{"Theme", cfg.Appearance.Theme},
		{"Currency", cfg.General.Currency},
		{"Precision", strconv.Itoa(int(cfg.General.Precision))},
		{"Due-soon days", strconv.Itoa(cfg.General.DueSoonDays)},
		{"Monthly limit", limit},
		{"Log level", cfg.Log.Level},
	}

	innerW := components.CardInnerWidth(cw)
	var formBody strings.Builder
	for i, f := range fields {
		if a.settings.editing && i == a.settings.cursor {
			formBody.WriteString(markerStyle.Render("▸ "))
			formBody.WriteString(accentStyle.Render(fmt.Sprintf("%-18s ", f.label)))
			formBody.WriteString(a.settings.input.View())
			formBody.WriteString("\n")
			continue
		}

		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			label := selectedLabelStyle.Render(fmt.Sprintf("%-18s ", f.label+":"))
			value := selectedStyle.Render(f.value)
			formBody.WriteString(marker + label + value)
			if pad := innerW - lipgloss.Width(marker) - lipgloss.Width(label) - lipgloss.Width(value); pad > 0 {
				formBody.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad)))
			}
		} else {
			formBody.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			formBody.WriteString(labelStyle.Render(fmt.Sprintf("%-18s ", f.label+":")))
			formBody.WriteString(valueStyle.Render(f.value))
		}
		formBody.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		warnStyle := lipgloss.NewStyle().Foreground(t.Warning).Background(t.Surface)
		formBody.WriteString("\n")
		formBody.WriteString(warnStyle.Render(fmt.Sprintf("Not saved: %s", a.settings.saveErr)))
	} else if a.settings.saved {
		formBody.WriteString("\n")
		formBody.WriteString(goodStyle.Render("Saved!"))
	}

	formBody.WriteString("\n")
	formBody.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	var infoBody strings.Builder
	infoBody.WriteString(labelStyle.Render("Storage backend: ") + valueStyle.Render(cfg.Storage.Backend) + "\n")
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		infoBody.WriteString(labelStyle.Render("Database:        ") + valueStyle.Render(cfg.Storage.DBPath()) + "\n")
	case config.BackendRedis:
		infoBody.WriteString(labelStyle.Render("Redis:           ") + valueStyle.Render(cfg.Storage.RedisAddr) + "\n")
	}
	infoBody.WriteString(labelStyle.Render("Log file:        ") + valueStyle.Render(cfg.Log.LogPath()) + "\n")
	infoBody.WriteString(labelStyle.Render("Transactions:    ") + valueStyle.Render(cli.FormatNumber(int64(len(a.state.Transactions)))) + "\n")
	infoBody.WriteString(labelStyle.Render("Config file:     ") + valueStyle.Render(config.Path()))

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", formBody.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("General", infoBody.String(), cw))
	return b.String()
}
