package scrollview

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joeycumines/scroll-monitor/internal/scrollmonitor"
)

// settleMsg is delivered by a tick scheduled through tickScheduler.
type settleMsg struct {
	seq uint64
}

// tickScheduler schedules monitor callbacks as tea ticks, so they run inside
// Update like any other message. Scheduled commands are collected and
// returned by the next Update.
type tickScheduler struct {
	seq     uint64
	pending map[uint64]func()
	cmds    []tea.Cmd
}

var _ scrollmonitor.Scheduler = (*tickScheduler)(nil)

func newTickScheduler() *tickScheduler {
	return &tickScheduler{pending: make(map[uint64]func())}
}

func (s *tickScheduler) AfterFunc(d time.Duration, fn func()) scrollmonitor.Timer {
	s.seq++
	seq := s.seq
	s.pending[seq] = fn
	s.cmds = append(s.cmds, tea.Tick(d, func(time.Time) tea.Msg {
		return settleMsg{seq: seq}
	}))
	return tickTimer{s: s, seq: seq}
}

// settle runs the callback for seq, unless it was stopped.
func (s *tickScheduler) settle(seq uint64) {
	fn, ok := s.pending[seq]
	if !ok {
		return
	}
	delete(s.pending, seq)
	fn()
}

func (s *tickScheduler) drain() []tea.Cmd {
	cmds := s.cmds
	s.cmds = nil
	return cmds
}

type tickTimer struct {
	s   *tickScheduler
	seq uint64
}

func (t tickTimer) Stop() bool {
	_, ok := t.s.pending[t.seq]
	delete(t.s.pending, t.seq)
	return ok
}
