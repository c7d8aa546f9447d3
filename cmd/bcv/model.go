package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/daviddao/bikecard_viewer/internal/datasource"
	"github.com/daviddao/bikecard_viewer/internal/names"
	"github.com/daviddao/bikecard_viewer/internal/snapshot"
	"github.com/daviddao/bikecard_viewer/internal/telemetry"
)

// --- Messages ---

type feedChangedMsg struct{}

type readingReadyMsg struct {
	reading *telemetry.Reading
	err     error
	at      time.Time
}

type tickMsg time.Time

// --- Key bindings ---

type keyMap struct {
	Quit    key.Binding
	Edit    key.Binding
	Commit  key.Binding
	Cancel  key.Binding
	Refresh key.Binding
	Help    key.Binding
}

var keys = keyMap{
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "rename bike")),
	Commit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save name")),
	Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload feed")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
}

// forceQuit works even while typing a name.
var forceQuit = key.NewBinding(key.WithKeys("ctrl+c"))

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Edit, k.Refresh, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Edit, k.Commit, k.Cancel},
		{k.Refresh, k.Help, k.Quit},
	}
}

// contextHelp returns help text for the current edit mode.
func contextHelp(mode names.Mode) string {
	if mode == names.Editing {
		return "enter: save | esc: cancel"
	}
	return "e: rename | r: reload | ?: help | q: quit"
}

// --- Model ---

type uiModel struct {
	feedPath string
	reading  *telemetry.Reading
	editor   *names.Editor
	log      *zap.Logger

	input textinput.Model

	// now is stamped by every tick so liveness decays without new readings.
	now         time.Time
	lastRefresh time.Time
	status      string // last error shown in the status bar

	width           int
	height          int
	refreshInterval time.Duration

	help     help.Model
	showHelp bool
}

func newModel(feedPath string, r *telemetry.Reading, e *names.Editor, log *zap.Logger) uiModel {
	if log == nil {
		log = zap.NewNop()
	}
	ti := textinput.New()
	ti.Placeholder = "Bike name"
	ti.Width = 24
	ti.Prompt = ""

	now := time.Now()
	return uiModel{
		feedPath:    feedPath,
		reading:     r,
		editor:      e,
		log:         log,
		input:       ti,
		now:         now,
		lastRefresh: now,
		help:        help.New(),
	}
}

func (m uiModel) Init() tea.Cmd {
	return tickEvery()
}

func tickEvery() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m uiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editor.Mode() == names.Editing {
			return m.updateEditing(msg)
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, keys.Edit):
			m.editor.Begin()
			m.input.SetValue(m.editor.Override())
			m.input.CursorEnd()
			return m, m.input.Focus()

		case key.Matches(msg, keys.Refresh):
			return m, m.reloadFeed()

		case key.Matches(msg, keys.Help):
			m.showHelp = !m.showHelp
		}

	case tea.BlurMsg:
		// Losing terminal focus commits like Enter.
		if m.editor.Mode() == names.Editing {
			m.commitEdit()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = max(24, msg.Width/2)

	case feedChangedMsg:
		return m, m.reloadFeed()

	case readingReadyMsg:
		if msg.err != nil {
			// Keep showing the previous reading.
			m.log.Warn("reload feed", zap.String("feed", m.feedPath), zap.Error(msg.err))
			m.status = "feed: " + msg.err.Error()
			return m, nil
		}
		m.status = ""
		m.lastRefresh = msg.at
		if msg.reading.Device != m.editor.Device() {
			m.log.Info("device changed",
				zap.String("from", m.editor.Device()),
				zap.String("to", msg.reading.Device))
			m.input.Blur()
			if err := m.editor.Load(msg.reading.Device); err != nil {
				m.log.Error("load name", zap.String("device", msg.reading.Device), zap.Error(err))
				m.status = "names: " + err.Error()
			}
		}
		m.reading = msg.reading

	case tickMsg:
		m.now = time.Time(msg)
		return m, tickEvery()
	}

	// Forward non-key messages (cursor blink) to the input while editing.
	if m.editor.Mode() == names.Editing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m uiModel) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, forceQuit):
		return m, tea.Quit

	case key.Matches(msg, keys.Commit):
		m.commitEdit()
		return m, nil

	case key.Matches(msg, keys.Cancel):
		m.input.Blur()
		if err := m.editor.Cancel(); err != nil {
			m.log.Error("reload name", zap.String("device", m.editor.Device()), zap.Error(err))
			m.status = "names: " + err.Error()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.editor.SetText(m.input.Value())
	return m, cmd
}

// commitEdit saves the edited name and returns to viewing. Must be called
// with a pointer to the model copy being returned from Update.
func (m *uiModel) commitEdit() {
	m.editor.SetText(m.input.Value())
	m.input.Blur()
	if err := m.editor.Commit(); err != nil {
		m.log.Error("save name", zap.String("device", m.editor.Device()), zap.Error(err))
		m.status = "name not saved: " + err.Error()
		return
	}
	m.status = ""
	m.log.Info("name saved",
		zap.String("device", m.editor.Device()),
		zap.String("name", m.editor.Override()))
}

func (m uiModel) reloadFeed() tea.Cmd {
	path := m.feedPath
	return func() tea.Msg {
		r, err := datasource.Load(path)
		return readingReadyMsg{reading: r, err: err, at: time.Now()}
	}
}

// card evaluates the current reading at the model's clock.
func (m uiModel) card() *snapshot.Card {
	return snapshot.Build(m.reading, m.editor.Override(), m.now)
}

// --- Styles ---

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Background(lipgloss.Color("#1E1E2E")).
			Padding(0, 1)

	cardActiveStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	cardInactiveStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#313244")).
				Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#CDD6F4"))

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A6E3A1"))

	inactiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C7086"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C7086"))

	valueActiveStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#89B4FA"))

	valueInactiveStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#6C7086"))

	tileStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#313244")).
			Padding(0, 1).
			Width(18)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F38BA8"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C7086"))

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CDD6F4")).
			Background(lipgloss.Color("#1E1E2E"))
)

// --- View rendering ---

func (m uiModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	c := m.card()

	var b strings.Builder
	b.WriteString(m.renderTitleBar())
	b.WriteString("\n\n")

	content := truncateLines(m.renderCard(c), m.width)
	b.WriteString(content)

	// Pad to fill screen.
	rendered := strings.Count(b.String(), "\n")
	for rendered < m.height-2 {
		b.WriteRune('\n')
		rendered++
	}

	if m.showHelp {
		b.WriteString(m.help.View(keys))
	} else {
		b.WriteString(m.renderStatusBar(c))
	}
	return b.String()
}

func (m uiModel) renderTitleBar() string {
	title := titleStyle.Render("bike card")
	src := dimStyle.Render(m.feedPath)
	gap := strings.Repeat(" ", max(0, m.width-lipgloss.Width(title)-lipgloss.Width(src)-2))
	return title + gap + src
}

func (m uiModel) renderCard(c *snapshot.Card) string {
	var b strings.Builder

	// Header: name (or the editor) and the liveness indicator.
	if m.editor.Mode() == names.Editing {
		b.WriteString(m.input.View())
	} else {
		b.WriteString(nameStyle.Render(c.Name))
	}
	b.WriteRune('\n')
	if c.Active {
		b.WriteString(activeStyle.Render("● active"))
	} else {
		b.WriteString(inactiveStyle.Render("○ inactive"))
	}
	b.WriteString("\n\n")

	// Primary tiles, two per row.
	var rows []string
	for i := 0; i < len(c.Primary); i += 2 {
		tiles := []string{renderTile(c.Primary[i], c.Active)}
		if i+1 < len(c.Primary) {
			tiles = append(tiles, renderTile(c.Primary[i+1], c.Active))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, tiles...))
	}
	b.WriteString(lipgloss.JoinVertical(lipgloss.Left, rows...))

	// Secondary row.
	if len(c.Secondary) > 0 {
		b.WriteRune('\n')
		parts := make([]string, 0, len(c.Secondary))
		for _, s := range c.Secondary {
			parts = append(parts, renderSmall(s, c.Active))
		}
		b.WriteString(strings.Join(parts, dimStyle.Render("  ·  ")))
	}

	style := cardInactiveStyle
	if c.Active {
		style = cardActiveStyle
	}
	return style.Render(b.String())
}

func renderTile(mt snapshot.Metric, active bool) string {
	vs := valueInactiveStyle
	if active {
		vs = valueActiveStyle
	}
	return tileStyle.Render(labelStyle.Render(mt.Label) + "\n" + vs.Render(mt.Value))
}

func renderSmall(mt snapshot.Metric, active bool) string {
	vs := valueInactiveStyle
	if active {
		vs = valueActiveStyle
	}
	s := labelStyle.Render(mt.Label+" ") + vs.Render(mt.Value)
	if mt.Unit != "" {
		s += labelStyle.Render(" " + mt.Unit)
	}
	return s
}

func (m uiModel) renderStatusBar(c *snapshot.Card) string {
	left := " " + contextHelp(m.editor.Mode())
	if m.status != "" {
		left = " " + errorStyle.Render(m.status)
	}
	right := lastSeen(c.LastUpdate, m.now) + " "
	gap := strings.Repeat(" ", max(0, m.width-lipgloss.Width(left)-lipgloss.Width(right)))
	return statusBarStyle.Render(left + gap + right)
}

// lastSeen describes when the last reading arrived relative to now.
func lastSeen(last *time.Time, now time.Time) string {
	if last == nil {
		return "no data yet"
	}
	return fmt.Sprintf("updated %s", humanize.RelTime(*last, now, "ago", "from now"))
}

// truncateLines truncates each line in content to at most width visible
// characters, preserving ANSI escape codes. This prevents terminal line
// wrapping when the window is resized narrower.
func truncateLines(content string, width int) string {
	if width <= 0 {
		return content
	}
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if lipgloss.Width(line) > width {
			lines[i] = ansi.Truncate(line, width, "")
		}
	}
	return strings.Join(lines, "\n")
}
