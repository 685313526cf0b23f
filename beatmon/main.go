package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	kclock "k8s.io/utils/clock"

	"github.com/elimuro/rglr-gnrtr-engine/config"
	"github.com/elimuro/rglr-gnrtr-engine/engine"
	"github.com/elimuro/rglr-gnrtr-engine/rhythm"
	"github.com/elimuro/rglr-gnrtr-engine/transport"
)

const (
	progressBarWidth  = 40
	progressFullChar  = "█"
	progressEmptyChar = "░"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

func main() {
	if err := tea.NewProgram(newModel()).Start(); err != nil {
		fmt.Println("Error running program:", err)
		os.Exit(1)
	}
}

type frameMsg time.Time

func frameTick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

type model struct {
	eng *engine.Engine
}

func newModel() model {
	cfg, _ := config.Load()
	return model{eng: engine.New(cfg, kclock.RealClock{})}
}

func (m model) Init() tea.Cmd {
	m.eng.Transport.Play()
	return frameTick()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.eng.Tick(time.Time(msg))
		return m, frameTick()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if m.eng.Transport.State().Mode == transport.ModePlaying {
				m.eng.Transport.Pause()
			} else {
				m.eng.Transport.Play()
			}
		case "s":
			m.eng.Transport.Stop()
		case "+", "=":
			m.eng.Transport.SetInternalBPM(m.eng.Transport.State().InternalBPM + 1)
		case "-":
			m.eng.Transport.SetInternalBPM(m.eng.Transport.State().InternalBPM - 1)
		case "d":
			m.eng.Transport.SetBeatDivision(nextDivision(m.eng.Transport.BeatDivision()))
		}
	}
	return m, nil
}

func nextDivision(d rhythm.Division) rhythm.Division {
	for i, v := range rhythm.Divisions {
		if v == d {
			return rhythm.Divisions[(i+1)%len(rhythm.Divisions)]
		}
	}
	return rhythm.Div4th
}

func (m model) View() string {
	st := m.eng.Transport.State()
	cs := m.eng.Transport.ClockState()

	var b strings.Builder
	b.WriteString(titleStyle.Render("rglr-gnrtr beat monitor"))
	b.WriteString("\n\n")

	mode := valueStyle
	if st.Mode == transport.ModePlaying {
		mode = activeStyle
	}
	b.WriteString(fmt.Sprintf("%s %s    %s %s    %s %.1f\n",
		labelStyle.Render("mode:"), mode.Render(string(st.Mode)),
		labelStyle.Render("sync:"), valueStyle.Render(string(st.SyncSource)),
		labelStyle.Render("bpm:"), st.CurrentBPM,
	))
	b.WriteString(fmt.Sprintf("%s %s    %s %s\n",
		labelStyle.Render("position:"), valueStyle.Render(cs.BeatPosition.String()),
		labelStyle.Render("division:"), valueStyle.Render(string(st.BeatDivision)),
	))
	b.WriteString("\n")
	b.WriteString(progressBar(m.eng.Transport.BeatProgress(st.BeatDivision)))
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("space play/pause · s stop · +/- tempo · d division · q quit"))
	b.WriteString("\n")
	return b.String()
}

func progressBar(phase float64) string {
	full := int(phase * progressBarWidth)
	if full > progressBarWidth {
		full = progressBarWidth
	}
	return activeStyle.Render(strings.Repeat(progressFullChar, full)) +
		strings.Repeat(progressEmptyChar, progressBarWidth-full)
}
