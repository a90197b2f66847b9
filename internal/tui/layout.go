package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// fitPane forces s to exactly width columns (ANSI-aware) and at most height lines.
// Long lines end in an ellipsis.
func fitPane(s string, width, height int) string {
	if width < 1 {
		width = 1
	}
	lines := strings.Split(s, "\n")
	if height > 0 && len(lines) > height {
		lines = lines[:height]
	}
	for i, ln := range lines {
		w := xansi.StringWidth(ln)
		if w > width {
			if width == 1 {
				ln = xansi.Cut(ln, 0, 1)
			} else {
				ln = xansi.Cut(ln, 0, width-1) + "…"
			}
			w = xansi.StringWidth(ln)
		}
		if w < width {
			ln += strings.Repeat(" ", width-w)
		}
		lines[i] = ln
	}
	return strings.Join(lines, "\n")
}

// renderInputLine keeps a text input on one visual line with the input background.
func renderInputLine(width int, inputView string) string {
	if width < 10 {
		width = 10
	}
	inputView = strings.NewReplacer("\n", " ", "\r", " ").Replace(inputView)
	line := lipgloss.PlaceHorizontal(
		width,
		lipgloss.Left,
		" "+inputView+" ",
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceBackground(colorInputBg),
	)
	if xansi.StringWidth(line) > width {
		// Reset styling so a cut sequence can't bleed into the next line.
		line = xansi.Cut(line, 0, width) + "\x1b[0m"
	}
	return line
}

// truncate cuts s to width display columns.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if xansi.StringWidth(s) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return xansi.Truncate(s, width, "…")
}

// formatTimestamp renders a server timestamp in local time. Timestamps without a
// zone are taken as UTC; unparseable values are shown as sent.
func formatTimestamp(s string) string {
	v := strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Local().Format("2006-01-02 15:04")
		}
	}
	return s
}

func emptyAsDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
