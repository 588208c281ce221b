// Package tui is the live terminal view. It shows the event stream as a
// scrollable list and is itself the sink the watchers write to.
package tui

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lumipallolabs/dirwatch/internal/logging"
	"github.com/lumipallolabs/dirwatch/internal/sink"
	"github.com/lumipallolabs/dirwatch/internal/stats"
)

// Message types for Bubble Tea
type (
	entryMsg      struct{ entry sink.Entry }
	feedClosedMsg struct{}
	statsTickMsg  time.Time
)

const statsTickInterval = 500 * time.Millisecond

// App is the main TUI application model
type App struct {
	feed  *Feed
	stats *stats.Counters

	// UI Components
	header  Header
	list    EventList
	help    HelpOverlay
	keys    KeyMap
	version string

	// UI state
	status string

	// Dimensions
	width  int
	height int
}

// NewApp creates the live view for the given roots, reading entries from
// feed. counters may be nil.
func NewApp(version string, roots []string, feed *Feed, counters *stats.Counters) App {
	return App{
		feed:    feed,
		stats:   counters,
		header:  NewHeader(roots, version),
		list:    NewEventList(),
		help:    NewHelpOverlay(version),
		keys:    DefaultKeyMap(),
		version: version,
	}
}

// Init implements tea.Model
func (a App) Init() tea.Cmd {
	return tea.Batch(a.listenForEntries(), statsTick())
}

// Update implements tea.Model
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.updateLayout()
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case entryMsg:
		a.list.Append(msg.entry)
		return a, a.listenForEntries()

	case feedClosedMsg:
		a.status = "Watchers stopped"
		return a, nil

	case statsTickMsg:
		if a.stats != nil {
			a.header.SetSnapshot(a.stats.Snapshot(), time.Time(msg))
		}
		return a, statsTick()
	}

	return a, nil
}

func statsTick() tea.Cmd {
	return tea.Tick(statsTickInterval, func(t time.Time) tea.Msg {
		return statsTickMsg(t)
	})
}

// listenForEntries creates a command that waits for the next entry
func (a App) listenForEntries() tea.Cmd {
	if a.feed == nil {
		return nil
	}
	feed := a.feed
	return func() tea.Msg {
		select {
		case e := <-feed.entries:
			return entryMsg{entry: e}
		case <-feed.done:
			return feedClosedMsg{}
		}
	}
}

// handleKey handles keyboard input
func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Help overlay - any key closes it
	if a.help.IsVisible() {
		a.help.SetVisible(false)
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Help):
		a.help.Toggle()
	case key.Matches(msg, a.keys.Up):
		a.list.MoveUp()
	case key.Matches(msg, a.keys.Down):
		a.list.MoveDown()
	case key.Matches(msg, a.keys.PageUp):
		a.list.PageUp()
	case key.Matches(msg, a.keys.PageDown):
		a.list.PageDown()
	case key.Matches(msg, a.keys.Top):
		a.list.GoToTop()
	case key.Matches(msg, a.keys.Bottom):
		a.list.GoToBottom()
	case key.Matches(msg, a.keys.Follow):
		a.list.ToggleFollow()
	case key.Matches(msg, a.keys.Clear):
		a.list.Clear()
	case key.Matches(msg, a.keys.OpenExplorer):
		return a, a.openInExplorer()
	case key.Matches(msg, a.keys.Preview):
		return a, a.openFile()
	}

	a.header.SetFollow(a.list.Following())
	return a, nil
}

// openInExplorer reveals the selected entry's path
func (a *App) openInExplorer() tea.Cmd {
	e := a.list.Selected()
	if e == nil || e.Path == "" {
		return nil
	}
	logging.Debug.Printf("openInExplorer: revealing %s", e.Path)
	if err := openInFileManager(e.Path); err != nil {
		logging.Debug.Printf("openInExplorer: error: %v", err)
		a.status = fmt.Sprintf("Cannot reveal %s: %v", e.Path, err)
	}
	return nil
}

// openFile opens the selected file with the default application
func (a *App) openFile() tea.Cmd {
	e := a.list.Selected()
	if e == nil || e.Path == "" {
		return nil
	}
	info, err := os.Stat(e.Path)
	if err != nil || info.IsDir() {
		a.status = fmt.Sprintf("Not a file: %s", e.Path)
		return nil
	}
	logging.Debug.Printf("openFile: opening %s", e.Path)
	if err := openWithDefaultApp(e.Path); err != nil {
		logging.Debug.Printf("openFile: error: %v", err)
		a.status = fmt.Sprintf("Cannot open %s: %v", e.Path, err)
	}
	return nil
}

// updateLayout calculates component sizes
func (a *App) updateLayout() {
	headerHeight := 2
	helpBarHeight := 1
	statusHeight := 1

	a.header.SetWidth(a.width)
	a.list.SetSize(a.width, max(a.height-headerHeight-helpBarHeight-statusHeight, 3))
	a.help.SetSize(a.width, a.height)
}

// View implements tea.Model
func (a App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Loading..."
	}

	if a.help.IsVisible() {
		return a.renderOverlay(a.help.View())
	}

	statusStyle := lipgloss.NewStyle().
		Foreground(ColorDim).
		Padding(0, 1)

	return lipgloss.JoinVertical(lipgloss.Left,
		a.header.View(),
		a.list.View(),
		statusStyle.MaxWidth(a.width).Render(a.status),
		HelpBar(a.width),
	)
}

// renderOverlay renders an overlay centered on screen
func (a App) renderOverlay(overlay string) string {
	return lipgloss.Place(
		a.width, a.height,
		lipgloss.Center, lipgloss.Center,
		overlay,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(ColorBackground),
	)
}
