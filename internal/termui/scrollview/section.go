package scrollview

import (
	"fmt"

	"github.com/joeycumines/scroll-monitor/internal/scrollmonitor"
)

// Section is one watched block of content: a header line followed by its
// body.
type Section struct {
	Title string
	Body  []string
	// Extra lines are appended to the body while the section is expanded.
	Extra []string
}

// DemoSections generates n sections of the given body length.
func DemoSections(n, lines int) []Section {
	sections := make([]Section, n)
	for i := range sections {
		body := make([]string, lines)
		for j := range body {
			body[j] = fmt.Sprintf("  section %d, line %d", i+1, j+1)
		}
		sections[i] = Section{
			Title: fmt.Sprintf("Section %d", i+1),
			Body:  body,
			Extra: []string{
				fmt.Sprintf("  section %d, expanded line 1", i+1),
				fmt.Sprintf("  section %d, expanded line 2", i+1),
				fmt.Sprintf("  section %d, expanded line 3", i+1),
			},
		}
	}
	return sections
}

// span is the line range [top, bottom) occupied by a section in the
// rendered content.
type span struct {
	top, bottom int
}

// sectionElement measures a section in the viewport. Rects are relative to
// the first visible line.
type sectionElement struct {
	m     *Model
	index int
}

var (
	_ scrollmonitor.Element = sectionElement{}
	_ scrollmonitor.Sizer   = sectionElement{}
)

func (e sectionElement) BoundingRect() scrollmonitor.Rect {
	s := e.m.spans[e.index]
	offset := e.m.viewport.YOffset
	return scrollmonitor.Rect{
		Top:    float64(s.top - offset),
		Bottom: float64(s.bottom - offset),
	}
}

func (e sectionElement) OffsetHeight() float64 {
	s := e.m.spans[e.index]
	return float64(s.bottom - s.top)
}

// geometry exposes the bubbles viewport as the root container. It is not
// measurable until the first window size arrives.
type geometry struct {
	m *Model
}

var _ scrollmonitor.ReadyNotifier = geometry{}

func (g geometry) ScrollTop() float64      { return float64(g.m.viewport.YOffset) }
func (g geometry) ViewportHeight() float64 { return float64(g.m.viewport.Height) }
func (g geometry) ContentHeight() float64  { return float64(g.m.viewport.TotalLineCount()) }
func (g geometry) Ready() bool             { return g.m.sized }
func (g geometry) OnReady(fn func())       { g.m.onReady = fn }
