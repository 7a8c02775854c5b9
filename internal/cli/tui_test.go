package cli

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/propgraph/pkg/computer"
)

func TestComputeModelUpdate(t *testing.T) {
	var cancelled bool
	var m tea.Model = newComputeModel("pageRank", 6, func() { cancelled = true })

	for i, n := range []int{6, 12, 3} {
		m, _ = m.Update(superstepMsg(computer.Progress{
			Program:   "pageRank",
			Superstep: i + 1,
			Vertices:  6,
			Messages:  n,
			Duration:  time.Millisecond,
		}))
	}
	cm := m.(computeModel)
	if cm.last.Superstep != 3 || cm.peak != 12 {
		t.Errorf("last = %+v, peak = %d", cm.last, cm.peak)
	}
	if got := cm.sparkline(); got != "▄█▂" {
		t.Errorf("sparkline = %q", got)
	}

	view := cm.View()
	for _, want := range []string{"pageRank", "over 6 vertices", "superstep", "q to cancel"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if !cancelled || cmd == nil {
		t.Error("q should cancel the run and quit")
	}
	if m.View() != "" {
		t.Error("cancelled view should be empty")
	}
}

func TestComputeModelDone(t *testing.T) {
	m := newComputeModel("degree", 6, func() {})
	next, cmd := m.Update(doneMsg{})
	if cmd == nil {
		t.Error("done should quit the program")
	}
	if _, cmd := next.Update(tickMsg(time.Now())); cmd != nil {
		t.Error("ticks should stop once done")
	}
}

func TestSparklineWindow(t *testing.T) {
	m := newComputeModel("pageRank", 1, func() {})
	for i := 0; i < barWidth+10; i++ {
		m.history = append(m.history, 1)
	}
	m.peak = 1
	if got := len([]rune(m.sparkline())); got != barWidth {
		t.Errorf("sparkline width = %d, want %d", got, barWidth)
	}
}
