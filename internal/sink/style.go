package sink

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lumipallolabs/dirwatch/internal/format"
	"github.com/muesli/termenv"
)

// Marker colors
var (
	ColorCreated  = lipgloss.Color("#39FF14") // neon green
	ColorDeleted  = lipgloss.Color("#FF5555") // red
	ColorModified = lipgloss.Color("#FACC15") // yellow
	ColorRenamed  = lipgloss.Color("#00FFFF") // neon cyan
	ColorUnknown  = lipgloss.Color("#C084FC") // soft violet
	ColorDump     = lipgloss.Color("#4A5568") // muted
	ColorStamp    = lipgloss.Color("#9CA3AF") // dim gray
)

// ColorMode selects when markers are colored
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// Styler colors the markers at the start of lines. Paths and dumped content
// are left untouched.
type Styler struct {
	markers map[string]lipgloss.Style
	stamp   lipgloss.Style
}

// NewStyler returns a styler for output going to w, or nil when the mode and
// the destination call for plain text.
func NewStyler(w io.Writer, mode ColorMode) *Styler {
	if mode == ColorNever {
		return nil
	}

	r := lipgloss.NewRenderer(w)
	if mode == ColorAlways {
		r.SetColorProfile(termenv.ANSI256)
	}
	if r.ColorProfile() == termenv.Ascii {
		return nil
	}
	return RendererStyler(r)
}

// RendererStyler returns a styler that renders with r regardless of its
// color profile.
func RendererStyler(r *lipgloss.Renderer) *Styler {
	style := func(c lipgloss.Color) lipgloss.Style {
		return r.NewStyle().Foreground(c).Bold(true)
	}
	return &Styler{
		markers: map[string]lipgloss.Style{
			format.MarkerCreated:     style(ColorCreated),
			format.MarkerDeleted:     style(ColorDeleted),
			format.MarkerModified:    style(ColorModified),
			format.MarkerRenamedFrom: style(ColorRenamed),
			format.MarkerRenamedTo:   style(ColorRenamed),
			format.MarkerUnknown:     style(ColorUnknown),
			format.MarkerError:       style(ColorDeleted),
			format.MarkerDumpStart:   style(ColorDump),
			format.MarkerDumpEnd:     style(ColorDump),
		},
		stamp: r.NewStyle().Foreground(ColorStamp),
	}
}

// Style returns a copy of e with its markers colored
func (s *Styler) Style(e Entry) Entry {
	lines := make([]string, len(e.Lines))
	for i, line := range e.Lines {
		if e.Content > 0 && i == e.Content {
			lines[i] = line
			continue
		}
		lines[i] = s.styleLine(line)
	}
	return Entry{Path: e.Path, Lines: lines, Content: e.Content}
}

func (s *Styler) styleLine(line string) string {
	var prefix string
	// One-line entries start with the timestamp
	if strings.HasPrefix(line, "[") && len(line) >= len(format.TimestampLayout) &&
		line[len(format.TimestampLayout)-1] == ']' && line[5] == '/' {
		prefix = s.stamp.Render(line[:len(format.TimestampLayout)])
		line = line[len(format.TimestampLayout):]
		if line == "" {
			return prefix
		}
	}

	for marker, style := range s.markers {
		if strings.HasPrefix(line, marker) {
			trimmed := strings.TrimSuffix(marker, " ")
			return prefix + style.Render(trimmed) + " " + line[len(marker):]
		}
	}
	return prefix + line
}
