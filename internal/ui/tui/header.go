package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/lumipallolabs/dirwatch/internal/record"
	"github.com/lumipallolabs/dirwatch/internal/sink"
	"github.com/lumipallolabs/dirwatch/internal/stats"
)

// Header displays the watched roots and event counts (2 lines)
type Header struct {
	roots   []string
	snap    stats.Snapshot
	follow  bool
	started time.Time
	now     time.Time
	width   int
	version string
}

// NewHeader creates a new header component
func NewHeader(roots []string, version string) Header {
	now := time.Now()
	return Header{
		roots:   roots,
		follow:  true,
		started: now,
		now:     now,
		version: version,
	}
}

// SetSnapshot updates the counters shown
func (h *Header) SetSnapshot(snap stats.Snapshot, now time.Time) {
	h.snap = snap
	h.now = now
}

// SetFollow updates the follow indicator
func (h *Header) SetFollow(follow bool) {
	h.follow = follow
}

// SetWidth sets the header width
func (h *Header) SetWidth(w int) {
	h.width = w
}

var actionCounts = []struct {
	action record.Action
	symbol string
	color  lipgloss.Color
}{
	{record.ActionCreated, "+", sink.ColorCreated},
	{record.ActionDeleted, "-", sink.ColorDeleted},
	{record.ActionModified, "*", sink.ColorModified},
	{record.ActionRenamedFrom, ">", sink.ColorRenamed},
	{record.ActionRenamedTo, "<", sink.ColorRenamed},
}

// View renders the header
// Line 1: dirwatch 0.1.0                      Watching: 2/2 roots  up 3m02s
// Line 2: /path/one, /path/two           + 3  - 1  * 10  > 2  < 2  [follow]
func (h Header) View() string {
	nameStyle := lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	dimStyle := lipgloss.NewStyle().
		Foreground(ColorDim)

	// === LINE 1: App name (left) | watcher state (right) ===
	appName := nameStyle.Render("dirwatch") + dimStyle.Render(" "+h.version)

	watching := dimStyle.Render("Watching: ") +
		StatsStyle.Render(fmt.Sprintf("%d/%d", h.snap.Active, len(h.roots))) +
		dimStyle.Render(" roots  up ") +
		StatsStyle.Render(FormatUptime(h.now.Sub(h.started)))

	line1 := spread(appName, watching, h.width)

	// === LINE 2: roots (left) | counts and follow badge (right) ===
	var counts []string
	for _, c := range actionCounts {
		style := lipgloss.NewStyle().Foreground(c.color).Bold(true)
		counts = append(counts, style.Render(c.symbol)+" "+StatsStyle.Render(fmt.Sprint(h.snap.Events[c.action])))
	}
	badge := PausedBadge.Render("paused")
	if h.follow {
		badge = FollowBadge.Render("follow")
	}
	right := strings.Join(counts, "  ") + "  " + badge

	// Roots get whatever room the counts leave
	rootsWidth := h.width - lipgloss.Width(right) - 2
	roots := dimStyle.MaxWidth(max(rootsWidth, 0)).Render(strings.Join(h.roots, ", "))

	line2 := spread(roots, right, h.width)

	return lipgloss.JoinVertical(lipgloss.Left, line1, line2)
}

// spread places left and right at the edges of a line of the given width
func spread(left, right string, width int) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		gap = 2
	}
	return left + strings.Repeat(" ", gap) + right
}
