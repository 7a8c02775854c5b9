package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/propgraph/pkg/analytics"
	"github.com/matzehuels/propgraph/pkg/computer"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const barWidth = 24

type (
	superstepMsg computer.Progress
	tickMsg      time.Time
	doneMsg      struct {
		result *analytics.Result
		err    error
	}
)

// computeModel shows live superstep progress of a vertex program run.
type computeModel struct {
	program  string
	vertices int
	start    time.Time
	frame    int

	last      computer.Progress
	peak      int // most messages sent in one superstep
	history   []int
	done      bool
	cancelled bool
	cancel    context.CancelFunc
}

func newComputeModel(program string, vertices int, cancel context.CancelFunc) computeModel {
	return computeModel{
		program:  program,
		vertices: vertices,
		start:    time.Now(),
		cancel:   cancel,
	}
}

func tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m computeModel) Init() tea.Cmd {
	return tick()
}

func (m computeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.cancelled = true
			m.cancel()
			return m, tea.Quit
		}
	case tickMsg:
		if m.done {
			return m, nil
		}
		m.frame++
		return m, tick()
	case superstepMsg:
		m.last = computer.Progress(msg)
		m.history = append(m.history, msg.Messages)
		m.peak = max(m.peak, msg.Messages)
	case doneMsg:
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m computeModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	var b strings.Builder

	frame := spinnerFrames[m.frame%len(spinnerFrames)]
	fmt.Fprintf(&b, "%s %s %s\n", styleIconSpinner.Render(frame), StyleTitle.Render(m.program),
		StyleDim.Render(fmt.Sprintf("over %d vertices", m.vertices)))

	label := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Fprintf(&b, "  %s %s\n", label.Render("superstep"), StyleNumber.Render(fmt.Sprint(m.last.Superstep)))
	fmt.Fprintf(&b, "  %s %s %s\n", label.Render("messages"), StyleNumber.Render(fmt.Sprint(m.last.Messages)),
		StyleDim.Render(m.sparkline()))
	fmt.Fprintf(&b, "  %s %s\n", label.Render("last step"), StyleValue.Render(m.last.Duration.Round(time.Microsecond).String()))
	fmt.Fprintf(&b, "  %s %s\n", label.Render("elapsed"), StyleValue.Render(time.Since(m.start).Round(time.Millisecond).String()))
	b.WriteString(StyleDim.Render("  q to cancel"))
	return b.String()
}

// sparkline draws the message count of the latest supersteps relative to
// the peak.
func (m computeModel) sparkline() string {
	const levels = "▁▂▃▄▅▆▇█"
	bars := []rune(levels)
	recent := m.history
	if len(recent) > barWidth {
		recent = recent[len(recent)-barWidth:]
	}
	var b strings.Builder
	for _, n := range recent {
		i := 0
		if m.peak > 0 {
			i = n * (len(bars) - 1) / m.peak
		}
		b.WriteRune(bars[i])
	}
	return b.String()
}

// runWithProgress runs fn while a bubbletea program renders its superstep
// reports. Quitting the view cancels the run.
func runWithProgress(ctx context.Context, program string, vertices int,
	fn func(ctx context.Context, report func(computer.Progress)) (*analytics.Result, error),
) (*analytics.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newComputeModel(program, vertices, cancel), tea.WithOutput(os.Stderr))
	results := make(chan doneMsg, 1)
	go func() {
		res, err := fn(ctx, func(pr computer.Progress) { p.Send(superstepMsg(pr)) })
		d := doneMsg{result: res, err: err}
		results <- d
		p.Send(d)
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-results
		return nil, fmt.Errorf("progress view: %w", err)
	}
	d := <-results
	return d.result, d.err
}
