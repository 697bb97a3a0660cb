// Package scrollview is a bubbletea model that lays out sections in a
// bubbles viewport and reports their visibility through a scroll monitor.
package scrollview

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joeycumines/scroll-monitor/internal/scrollmonitor"
	"github.com/joeycumines/scroll-monitor/internal/termui/scrollbar"
	zone "github.com/lrstanley/bubblezone"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const defaultLogLines = 6

// Config configures a [Model].
type Config struct {
	Sections []Section
	// Offset is applied to both edges of every section.
	Offset float64
	// ResizeDebounce is the quiet period before a resize is measured.
	ResizeDebounce time.Duration
	// LogLines is the height of the event log. Defaults to 6.
	LogLines int
	Logger   *slog.Logger
}

// Model renders the sections with a scrollbar and an event log.
type Model struct {
	viewport  viewport.Model
	scrollbar scrollbar.Model
	zones     *zone.Manager
	scheduler *tickScheduler
	monitor   *scrollmonitor.Monitor
	logger    *slog.Logger

	sections []Section
	expanded []bool
	spans    []span
	watchers []*scrollmonitor.Watcher

	sized   bool
	onReady func()
	width   int
	height  int

	log      []string
	logLines int
	title    cases.Caser
}

var (
	headerStyle       = lipgloss.NewStyle().Bold(true)
	activeHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	lockedStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	statusStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	logStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// New builds the model. The monitor stays pending until the first
// tea.WindowSizeMsg sizes the viewport.
func New(cfg Config) (*Model, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := &Model{
		viewport:  viewport.New(0, 0),
		scrollbar: scrollbar.New(),
		zones:     zone.New(),
		scheduler: newTickScheduler(),
		logger:    logger,
		sections:  cfg.Sections,
		expanded:  make([]bool, len(cfg.Sections)),
		logLines:  cfg.LogLines,
		title:     cases.Title(language.English),
	}
	if m.logLines <= 0 {
		m.logLines = defaultLogLines
	}
	m.render()

	mon, err := scrollmonitor.New(geometry{m},
		scrollmonitor.WithLogger(logger),
		scrollmonitor.WithScheduler(m.scheduler),
		scrollmonitor.WithResizeDebounce(cfg.ResizeDebounce),
	)
	if err != nil {
		m.zones.Close()
		return nil, fmt.Errorf("scrollview: create monitor: %w", err)
	}
	m.monitor = mon

	for i := range m.sections {
		w, err := mon.Watch(scrollmonitor.ElementTarget(sectionElement{m: m, index: i}),
			scrollmonitor.WithUniformOffset(cfg.Offset))
		if err != nil {
			m.Close()
			return nil, fmt.Errorf("scrollview: watch section %d: %w", i, err)
		}
		for _, kind := range scrollmonitor.EventKinds() {
			if _, err := w.On(kind, m.record(i, kind)); err != nil {
				m.Close()
				return nil, err
			}
		}
		m.watchers = append(m.watchers, w)
	}
	// registration replays states measured against an unsized viewport
	m.log = nil
	return m, nil
}

// Monitor returns the monitor driving the model.
func (m *Model) Monitor() *scrollmonitor.Monitor { return m.monitor }

// Watchers returns the watcher of every section, in section order.
func (m *Model) Watchers() []*scrollmonitor.Watcher { return m.watchers }

// Log returns the event log, oldest first.
func (m *Model) Log() []string { return m.log }

// Close disposes the monitor and stops the zone manager.
func (m *Model) Close() {
	if m.monitor != nil {
		m.monitor.Dispose()
	}
	m.zones.Close()
}

func (m *Model) record(index int, kind scrollmonitor.EventKind) scrollmonitor.Callback {
	label := m.title.String(splitWords(kind.String()))
	return func(w *scrollmonitor.Watcher, event any) {
		entry := fmt.Sprintf("%s: %s", m.sections[index].Title, label)
		if _, ok := event.(tea.WindowSizeMsg); ok {
			entry += " (resize)"
		}
		m.log = append(m.log, entry)
		if over := len(m.log) - 200; over > 0 {
			m.log = m.log[over:]
		}
	}
}

// splitWords turns a camel case name into lower case words.
func splitWords(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte(' ')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// render lays out the sections and refreshes the viewport content.
func (m *Model) render() {
	var lines []string
	m.spans = m.spans[:0]
	for i, s := range m.sections {
		top := len(lines)
		lines = append(lines, m.zones.Mark(zoneID(i), m.header(i)))
		lines = append(lines, s.Body...)
		if m.expanded[i] {
			lines = append(lines, s.Extra...)
		}
		m.spans = append(m.spans, span{top: top, bottom: len(lines)})
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
}

func (m *Model) header(i int) string {
	style := headerStyle
	var flags string
	if i < len(m.watchers) {
		w := m.watchers[i]
		switch {
		case w.IsFullyInViewport():
			style = activeHeaderStyle
			flags = " [fully visible]"
		case w.IsInViewport():
			style = activeHeaderStyle
			flags = " [visible]"
		}
		if w.Locked() {
			flags += lockedStyle.Render(" [locked]")
		}
	}
	return style.Render("▸ "+m.sections[i].Title) + flags
}

func zoneID(i int) string {
	return fmt.Sprintf("section-%d", i)
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg)

	case settleMsg:
		m.scheduler.settle(msg.seq)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			m.monitor.RecalculateLocations()
		case "l":
			if i := m.firstVisible(); i >= 0 {
				m.ToggleLock(i)
			}
		case "e":
			if i := m.firstVisible(); i >= 0 {
				m.ToggleExpanded(i)
			}
		default:
			cmds = append(cmds, m.scroll(msg))
		}

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			for i := range m.sections {
				if z := m.zones.Get(zoneID(i)); z != nil && z.InBounds(msg) {
					m.ToggleLock(i)
					break
				}
			}
		}
		cmds = append(cmds, m.scroll(msg))
	}
	m.render()
	cmds = append(cmds, m.scheduler.drain()...)
	return m, tea.Batch(cmds...)
}

// scroll forwards msg to the viewport and notifies the monitor if the
// offset moved.
func (m *Model) scroll(msg tea.Msg) tea.Cmd {
	before := m.viewport.YOffset
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	if m.viewport.YOffset != before {
		m.monitor.HandleScroll(msg)
	}
	return cmd
}

func (m *Model) resize(msg tea.WindowSizeMsg) {
	m.width, m.height = msg.Width, msg.Height
	m.viewport.Width = max(msg.Width-1, 0)
	m.viewport.Height = max(msg.Height-m.logLines-1, 1)
	m.render()
	if !m.sized {
		m.sized = true
		if m.onReady != nil {
			m.onReady()
		}
		return
	}
	m.monitor.HandleResize(msg)
}

// ToggleLock locks or unlocks the bounds of section i.
func (m *Model) ToggleLock(i int) {
	w := m.watchers[i]
	if w.Locked() {
		w.Unlock()
	} else {
		w.Lock()
	}
	m.render()
	m.logger.Debug("scrollview: lock toggled", slog.String("section", m.sections[i].Title), slog.Bool("locked", w.Locked()))
}

// ToggleExpanded shows or hides the extra lines of section i. The content
// height changes, so every unlocked section is relocated.
func (m *Model) ToggleExpanded(i int) {
	m.expanded[i] = !m.expanded[i]
	m.render()
	m.monitor.Update()
}

func (m *Model) firstVisible() int {
	for i, w := range m.watchers {
		if w.IsInViewport() {
			return i
		}
	}
	return -1
}

// View implements tea.Model.
func (m *Model) View() string {
	if !m.sized {
		return ""
	}
	sb := m.scrollbar
	sb.Sync(m.monitor.Root())
	sb.SetMarkers(m.watchers)

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.viewport.View(), sb.View())
	status := statusStyle.Render(fmt.Sprintf("%3.f%%  ↑/↓ scroll · click header or l: lock · e: expand · r: recalculate · q: quit",
		m.viewport.ScrollPercent()*100))

	logs := m.log[max(len(m.log)-m.logLines, 0):]
	lines := make([]string, m.logLines)
	for i := range lines {
		if i < len(logs) {
			lines[i] = logStyle.Render(logs[i])
		}
	}
	return m.zones.Scan(lipgloss.JoinVertical(lipgloss.Left, body, status, strings.Join(lines, "\n")))
}
