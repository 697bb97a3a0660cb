// Package scrollbar renders a thin vertical scrollbar for a monitored
// container, with markers for the spans of watched items.
package scrollbar

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/joeycumines/scroll-monitor/internal/scrollmonitor"
)

// Marker is a span of content, in content rows, drawn on the track.
type Marker struct {
	Top    int
	Bottom int
	// Active markers are drawn with the active style, e.g. for items that are
	// currently in the viewport.
	Active bool
}

// Model defines the state of the scrollbar.
type Model struct {
	// ContentHeight is the total height of the scrollable content.
	ContentHeight int
	// ViewportHeight is the height of the visible window, and of the bar.
	ViewportHeight int
	// YOffset is the current vertical scroll position.
	YOffset int
	// Markers are projected onto the track proportionally.
	Markers []Marker

	ThumbStyle        lipgloss.Style
	TrackStyle        lipgloss.Style
	MarkerStyle       lipgloss.Style
	ActiveMarkerStyle lipgloss.Style

	ThumbChar  string
	TrackChar  string
	MarkerChar string
}

// Option is used to set options in New.
type Option func(*Model)

// New creates a new scrollbar model with default settings.
func New(opts ...Option) Model {
	m := Model{
		ThumbChar:  " ",
		TrackChar:  "│",
		MarkerChar: "┃",
		ThumbStyle: lipgloss.NewStyle().
			Background(lipgloss.Color("57")),
		TrackStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
		MarkerStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")),
		ActiveMarkerStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// WithStyles sets the styles for the thumb and track.
func WithStyles(thumb, track lipgloss.Style) Option {
	return func(m *Model) {
		m.ThumbStyle = thumb
		m.TrackStyle = track
	}
}

// WithMarkerStyles sets the styles for inactive and active markers.
func WithMarkerStyles(marker, active lipgloss.Style) Option {
	return func(m *Model) {
		m.MarkerStyle = marker
		m.ActiveMarkerStyle = active
	}
}

// WithChars sets the characters for the thumb, track and markers.
func WithChars(thumb, track, marker string) Option {
	return func(m *Model) {
		m.ThumbChar = thumb
		m.TrackChar = track
		m.MarkerChar = marker
	}
}

// Sync copies the cached geometry of c into the model. Fractional values
// are rounded to whole rows.
func (m *Model) Sync(c *scrollmonitor.Container) {
	m.ContentHeight = round(c.ContentHeight())
	m.ViewportHeight = round(c.ViewportHeight())
	m.YOffset = round(c.ViewportTop())
}

// SetMarkers replaces the markers with the bounds of watchers, marking those
// in the viewport as active.
func (m *Model) SetMarkers(watchers []*scrollmonitor.Watcher) {
	m.Markers = m.Markers[:0]
	for _, w := range watchers {
		m.Markers = append(m.Markers, Marker{
			Top:    round(w.Top()),
			Bottom: round(w.Bottom()),
			Active: w.IsInViewport(),
		})
	}
}

// thumb returns the first row and the number of rows covered by the thumb.
func (m Model) thumb() (top, height int) {
	viewportHeight := m.ViewportHeight
	contentHeight := max(m.ContentHeight, 0)

	// no scrollable range, full-height thumb
	if contentHeight == 0 || contentHeight <= viewportHeight {
		return 0, viewportHeight
	}

	maxOffset := contentHeight - viewportHeight
	yOffset := min(max(m.YOffset, 0), maxOffset)

	// thumbHeight ~= viewportHeight^2 / contentHeight
	windowHeightF := float64(viewportHeight)
	height = int(clamp(windowHeightF, 1, windowHeightF*(windowHeightF/float64(contentHeight))))

	maxTop := viewportHeight - height
	if maxTop > 0 {
		top = int(float64(yOffset) / float64(maxOffset) * float64(maxTop))
	}
	return min(max(top, 0), maxTop), height
}

// markerRows projects the markers onto the track. A row holds the marker
// state of the most prominent marker covering it.
func (m Model) markerRows() []markerState {
	rows := make([]markerState, m.ViewportHeight)
	if m.ContentHeight <= 0 {
		return rows
	}
	scale := float64(m.ViewportHeight) / float64(max(m.ContentHeight, m.ViewportHeight))
	for _, mk := range m.Markers {
		top, bottom := mk.Top, mk.Bottom
		if bottom < top {
			top, bottom = bottom, top
		}
		if bottom < 0 || top >= max(m.ContentHeight, m.ViewportHeight) {
			continue
		}
		first := int(math.Floor(float64(top) * scale))
		last := int(math.Ceil(float64(bottom)*scale)) - 1
		last = max(last, first)
		state := markerInactive
		if mk.Active {
			state = markerActive
		}
		for i := max(first, 0); i <= min(last, m.ViewportHeight-1); i++ {
			rows[i] = max(rows[i], state)
		}
	}
	return rows
}

type markerState uint8

const (
	markerNone markerState = iota
	markerInactive
	markerActive
)

// View renders the scrollbar. It returns a string exactly ViewportHeight
// tall.
func (m Model) View() string {
	if m.ViewportHeight <= 0 {
		return ""
	}
	thumbTop, thumbHeight := m.thumb()
	markers := m.markerRows()

	// lipgloss drops the escape sequences of plain spaces
	thumbChar := nbsp(m.ThumbChar)
	trackChar := nbsp(m.TrackChar)
	markerChar := nbsp(m.MarkerChar)

	var s strings.Builder
	for i := 0; i < m.ViewportHeight; i++ {
		isThumb := thumbTop <= i && i < thumbTop+thumbHeight
		switch {
		case markers[i] == markerActive:
			s.WriteString(m.ActiveMarkerStyle.Render(markerChar))
		case isThumb:
			s.WriteString(m.ThumbStyle.Render(thumbChar))
		case markers[i] == markerInactive:
			s.WriteString(m.MarkerStyle.Render(markerChar))
		default:
			s.WriteString(m.TrackStyle.Render(trackChar))
		}
		if i < m.ViewportHeight-1 {
			s.WriteRune('\n')
		}
	}
	return s.String()
}

func nbsp(s string) string {
	if s == " " {
		return "\u00A0"
	}
	return s
}

func round(f float64) int {
	return int(math.Round(f))
}

// clamp restricts x to be between low and high.
func clamp(high, low, x float64) float64 {
	switch {
	case high < x:
		return high
	case x < low:
		return low
	default:
		return x
	}
}
