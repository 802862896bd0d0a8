package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	colorAccent = lipgloss.Color("#20B9B4")
	colorMuted  = lipgloss.Color("#6C7A80")
	colorOK     = lipgloss.Color("#2CD7C7")
)

// styles renders summary lines, plain when the output is not a terminal.
type styles struct {
	plain bool
	title lipgloss.Style
	key   lipgloss.Style
	ok    lipgloss.Style
}

func newStyles(w io.Writer) styles {
	plain := true
	if f, ok := w.(*os.File); ok {
		plain = !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())
	}
	return styles{
		plain: plain,
		title: lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		key:   lipgloss.NewStyle().Foreground(colorMuted).Width(12),
		ok:    lipgloss.NewStyle().Foreground(colorOK),
	}
}

func (s styles) render(st lipgloss.Style, text string) string {
	if s.plain {
		return text
	}
	return st.Render(text)
}

func (s styles) heading(w io.Writer, text string) {
	fmt.Fprintln(w, s.render(s.title, text))
}

func (s styles) field(w io.Writer, key string, value any) {
	if s.plain {
		fmt.Fprintf(w, "  %-12s%v\n", key, value)
		return
	}
	fmt.Fprintf(w, "  %s%v\n", s.key.Render(key), value)
}

func (s styles) done(w io.Writer, text string) {
	fmt.Fprintln(w, s.render(s.ok, "✓ "+text))
}
