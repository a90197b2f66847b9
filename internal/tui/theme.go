package tui

import (
	"os"
	"strconv"
	"strings"

	"issuetrack/internal/model"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// The TUI must stay readable on light and dark backgrounds, so every color is
// adaptive and faint styling is only used on dark terminals.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted     = ac("240", "243")
	colorSurfaceFg = ac("235", "252")
	colorControlBg = ac("252", "235")
	colorInputBg   = ac("254", "234")
	colorAccent    = ac("27", "62")
	colorAccentFg  = ac("255", "235")
	colorSelectBg  = ac("#e9e9e9", "#262626")
	colorError     = ac("160", "203")
	colorWarn      = ac("166", "214")
	colorOK        = ac("28", "71")
)

var (
	titleStyle      = lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg)
	labelStyle      = lipgloss.NewStyle().Bold(true).Foreground(colorMuted)
	errorTextStyle  = lipgloss.NewStyle().Foreground(colorError)
	focusLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	badgeStyle      = lipgloss.NewStyle().Padding(0, 1).Bold(true)
	minibufferStyle = lipgloss.NewStyle().Foreground(colorSurfaceFg).Background(colorControlBg).Padding(0, 1)
	failureStyle    = lipgloss.NewStyle().Foreground(colorAccentFg).Background(colorError).Padding(0, 1)
	buttonStyle     = lipgloss.NewStyle().Padding(0, 2).Foreground(colorSurfaceFg).Background(colorControlBg)
	buttonFocus     = lipgloss.NewStyle().Padding(0, 2).Bold(true).Foreground(colorAccentFg).Background(colorAccent)
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func statusColor(s model.Status) lipgloss.TerminalColor {
	switch s {
	case model.StatusOpen:
		return colorAccent
	case model.StatusInProgress:
		return colorWarn
	case model.StatusClosed:
		return colorOK
	}
	return colorMuted
}

func priorityColor(p model.Priority) lipgloss.TerminalColor {
	switch p {
	case model.PriorityCritical:
		return colorError
	case model.PriorityHigh:
		return colorWarn
	case model.PriorityMedium:
		return colorAccent
	}
	return colorMuted
}

func statusBadge(s model.Status) string {
	return badgeStyle.Foreground(colorAccentFg).Background(statusColor(s)).Render(s.Label())
}

func priorityBadge(p model.Priority) string {
	return badgeStyle.Foreground(colorAccentFg).Background(priorityColor(p)).Render(p.Label())
}

// applyColorProfilePreference honors NO_COLOR and otherwise trusts TERM/COLORTERM
// over termenv's probe, which under-reports on some terminals.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	profile := termenv.ColorProfile()
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	switch {
	case strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit"):
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	case strings.Contains(term, "256color"):
		if profile == termenv.Ascii || profile == termenv.ANSI {
			profile = termenv.ANSI256
		}
	}
	lipgloss.SetColorProfile(profile)
}

// applyThemePreference picks light or dark, in order:
// ISSUETRACK_TUI_THEME=light|dark|auto, then the COLORFGBG "fg;bg" hint.
// Otherwise Lip Gloss's own detection stands.
func applyThemePreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ISSUETRACK_TUI_THEME"))) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
		return
	case "dark":
		lipgloss.SetHasDarkBackground(true)
		return
	}

	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			// xterm palette: 0-6 are dark, 7-15 light.
			lipgloss.SetHasDarkBackground(bg < 7)
		}
	}
}
