package tui

import (
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

var (
	mdRendererMu sync.Mutex
	// Keyed by style and wrap width. glamour.WithAutoStyle can block on terminal
	// queries, so the style is chosen up front.
	mdRenderers = map[string]*glamour.TermRenderer{}
)

// renderMarkdown renders an issue description. Anything glamour can't handle is
// shown as plain text.
func renderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}

	style := markdownStyle()
	key := style + ":" + strconv.Itoa(width)

	mdRendererMu.Lock()
	defer mdRendererMu.Unlock()
	r := mdRenderers[key]
	if r == nil {
		cfg := markdownStyleConfig(style)
		zero := uint(0)
		cfg.Document.Margin = &zero
		var err error
		r, err = glamour.NewTermRenderer(
			glamour.WithStyles(cfg),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		mdRenderers[key] = r
	}

	// TermRenderer reuses an internal buffer, so rendering stays under the lock.
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

func markdownStyle() string {
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}

func markdownStyleConfig(style string) ansi.StyleConfig {
	cfg := styles.DarkStyleConfig
	if style == "light" {
		cfg = styles.LightStyleConfig
	}

	text := mdColor(colorSurfaceFg, style)
	cfg.Text.Color = text
	cfg.Heading.Color = text
	cfg.H1.Color = text
	cfg.H2.Color = text
	cfg.H3.Color = text

	link := mdColor(colorAccent, style)
	cfg.Link.Color = link
	cfg.LinkText.Color = link
	cfg.Code.Color = text
	cfg.CodeBlock.Color = text
	cfg.BlockQuote.Faint = mdBoolPtr(false)
	return cfg
}

func mdColor(c lipgloss.AdaptiveColor, style string) *string {
	if style == "light" {
		return &c.Light
	}
	return &c.Dark
}

func mdBoolPtr(b bool) *bool { return &b }
