package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"shop-cli/internal/model"
	"shop-cli/internal/reconcile"

	xansi "github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

type Options struct {
	Profile termenv.Profile
	// MaxWidth truncates each line to this many cells; 0 disables truncation.
	MaxWidth int
}

// ProfileFor picks the colour profile for w. "auto" asks the terminal (non-terminals get
// plain text); NO_COLOR is honoured by termenv.
func ProfileFor(w io.Writer, mode string) (termenv.Profile, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ColorAuto:
		return termenv.NewOutput(w).EnvColorProfile(), nil
	case ColorAlways:
		return termenv.TrueColor, nil
	case ColorNever:
		return termenv.Ascii, nil
	default:
		return termenv.Ascii, fmt.Errorf("unknown color mode: %q (want auto|always|never)", mode)
	}
}

type styles struct {
	plain bool
	r     *lipgloss.Renderer
	title lipgloss.Style
	muted lipgloss.Style
	index lipgloss.Style
}

func newStyles(w io.Writer, opt Options) styles {
	r := lipgloss.NewRenderer(w, termenv.WithProfile(opt.Profile))
	r.SetColorProfile(opt.Profile)
	return styles{
		plain: opt.Profile == termenv.Ascii,
		r:     r,
		title: r.NewStyle().Bold(true),
		muted: r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "243"}),
		index: r.NewStyle().Faint(true),
	}
}

// marker renders a category's short name on its colour. Plain output brackets it instead.
func (st styles) marker(def model.CategoryDefinition) string {
	if st.plain {
		return "[" + def.ShortName + "]"
	}
	fg := lipgloss.Color("#000000")
	if def.LightText {
		fg = lipgloss.Color("#ffffff")
	}
	return st.r.NewStyle().
		Background(lipgloss.Color(def.Color)).
		Foreground(fg).
		Padding(0, 1).
		Render(def.ShortName)
}

func indexWidth(n int) int {
	return len(strconv.Itoa(n))
}

// ListLines renders the title and one numbered line per item. Category references are
// resolved against defs; unknown ids render without a marker.
func ListLines(w io.Writer, list model.List, defs []model.CategoryDefinition, opt Options) []string {
	st := newStyles(w, opt)
	lines := []string{st.title.Render(list.Title)}
	if len(list.Items) == 0 {
		lines = append(lines, st.muted.Render("(empty)"))
		return truncate(lines, opt.MaxWidth)
	}
	width := indexWidth(len(list.Items))
	for i, it := range list.Items {
		var b strings.Builder
		b.WriteString(st.index.Render(fmt.Sprintf("%*d.", width, i+1)))
		b.WriteByte(' ')
		if def, ok := model.FindCategory(defs, it.CategoryID()); ok {
			b.WriteString(st.marker(def))
			b.WriteByte(' ')
		}
		b.WriteString(it.DisplayText())
		lines = append(lines, b.String())
	}
	return truncate(lines, opt.MaxWidth)
}

func CategoryLines(w io.Writer, defs []model.CategoryDefinition, opt Options) []string {
	st := newStyles(w, opt)
	if len(defs) == 0 {
		return truncate([]string{st.muted.Render("(no categories)")}, opt.MaxWidth)
	}
	width := indexWidth(len(defs))
	lines := make([]string, 0, len(defs))
	for i, def := range defs {
		lines = append(lines, fmt.Sprintf("%s %s %s %s",
			st.index.Render(fmt.Sprintf("%*d.", width, i+1)),
			st.marker(def),
			def.Name,
			st.muted.Render(def.Color),
		))
	}
	return truncate(lines, opt.MaxWidth)
}

func truncate(lines []string, maxWidth int) []string {
	if maxWidth <= 0 {
		return lines
	}
	for i, ln := range lines {
		if xansi.StringWidth(ln) > maxWidth {
			lines[i] = xansi.Truncate(ln, maxWidth, "…")
		}
	}
	return lines
}

func writeLines(w io.Writer, lines []string) error {
	for _, ln := range lines {
		if _, err := fmt.Fprintln(w, ln); err != nil {
			return err
		}
	}
	return nil
}

// List prints the working list of s.
func List(w io.Writer, s *reconcile.LocalState, opt Options) error {
	return writeLines(w, ListLines(w, s.Current, s.Categories, opt))
}

func Categories(w io.Writer, defs []model.CategoryDefinition, opt Options) error {
	return writeLines(w, CategoryLines(w, defs, opt))
}
