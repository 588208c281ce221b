package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lumipallolabs/dirwatch/internal/sink"
)

// maxEntries bounds the history kept in memory; the oldest entries go first
const maxEntries = 5000

// EventList is the scrollable list of event blocks
type EventList struct {
	entries []sink.Entry
	cursor  int
	offset  int
	follow  bool
	width   int
	height  int
	styler  *sink.Styler
}

// NewEventList creates an empty list that follows new events
func NewEventList() EventList {
	return EventList{
		follow: true,
		styler: sink.RendererStyler(lipgloss.DefaultRenderer()),
	}
}

// SetSize sets the panel dimensions including borders
func (l *EventList) SetSize(w, h int) {
	l.width = w
	l.height = h
	l.ensureVisible()
}

// Len returns the number of entries
func (l EventList) Len() int {
	return len(l.entries)
}

// Following reports whether the list jumps to new entries
func (l EventList) Following() bool {
	return l.follow
}

// Selected returns the entry under the cursor
func (l EventList) Selected() *sink.Entry {
	if l.cursor < 0 || l.cursor >= len(l.entries) {
		return nil
	}
	e := l.entries[l.cursor]
	return &e
}

// Append adds an entry at the bottom
func (l *EventList) Append(e sink.Entry) {
	// Style before splitting, while the dumped text is still one line
	if l.styler != nil {
		e = l.styler.Style(e)
	}
	l.entries = append(l.entries, splitLines(e))
	if over := len(l.entries) - maxEntries; over > 0 {
		l.entries = append(l.entries[:0], l.entries[over:]...)
		l.cursor = max(l.cursor-over, 0)
		l.offset = max(l.offset-over, 0)
	}
	if l.follow {
		l.cursor = len(l.entries) - 1
	}
	l.ensureVisible()
}

// Clear drops every entry
func (l *EventList) Clear() {
	l.entries = nil
	l.cursor = 0
	l.offset = 0
}

// ToggleFollow switches follow mode; turning it on jumps to the newest entry
func (l *EventList) ToggleFollow() {
	if l.follow {
		l.follow = false
		return
	}
	l.GoToBottom()
}

// MoveUp moves the cursor to the previous entry and stops following
func (l *EventList) MoveUp() {
	l.follow = false
	if l.cursor > 0 {
		l.cursor--
		l.ensureVisible()
	}
}

// MoveDown moves the cursor to the next entry
func (l *EventList) MoveDown() {
	if l.cursor < len(l.entries)-1 {
		l.cursor++
		l.ensureVisible()
	}
}

// PageUp moves the cursor up by quarter page
func (l *EventList) PageUp() {
	l.follow = false
	l.cursor = max(l.cursor-l.pageSize(), 0)
	l.ensureVisible()
}

// PageDown moves the cursor down by quarter page
func (l *EventList) PageDown() {
	l.cursor = max(min(l.cursor+l.pageSize(), len(l.entries)-1), 0)
	l.ensureVisible()
}

// GoToTop selects the oldest entry
func (l *EventList) GoToTop() {
	l.follow = false
	l.cursor = 0
	l.ensureVisible()
}

// GoToBottom selects the newest entry and follows new ones
func (l *EventList) GoToBottom() {
	l.follow = true
	l.cursor = max(len(l.entries)-1, 0)
	l.ensureVisible()
}

func (l EventList) pageSize() int {
	return max((l.innerHeight())/4, 1)
}

func (l EventList) innerHeight() int {
	return max(l.height-2, 1) // borders
}

// ensureVisible scrolls so the whole cursor entry fits when possible
func (l *EventList) ensureVisible() {
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	budget := l.innerHeight()
	for l.offset < l.cursor {
		used := 0
		for i := l.offset; i <= l.cursor; i++ {
			used += len(l.entries[i].Lines)
		}
		if used <= budget {
			break
		}
		l.offset++
	}
}

// View renders the panel
func (l EventList) View() string {
	style := ListPanelStyle.Width(max(l.width-2, 0)).Height(l.innerHeight())
	if len(l.entries) == 0 {
		return style.Render(EmptyListStyle.Render("Waiting for changes..."))
	}

	maxW := max(l.width-6, 1) // borders, padding and selection bar
	budget := l.innerHeight()
	var lines []string
	for i := l.offset; i < len(l.entries) && len(lines) < budget; i++ {
		e := l.entries[i]
		bar := "  "
		if i == l.cursor {
			bar = SelectedBar.Render("▌ ")
		}
		for _, line := range e.Lines {
			if len(lines) == budget {
				break
			}
			lines = append(lines, bar+lipgloss.NewStyle().MaxWidth(maxW).Render(line))
		}
	}
	return style.Render(strings.Join(lines, "\n"))
}

// splitLines breaks dumped file content into screen lines
func splitLines(e sink.Entry) sink.Entry {
	lines := make([]string, 0, len(e.Lines))
	for _, line := range e.Lines {
		line = strings.ReplaceAll(line, "\r\n", "\n")
		lines = append(lines, strings.Split(line, "\n")...)
	}
	return sink.Entry{Path: e.Path, Lines: lines}
}
