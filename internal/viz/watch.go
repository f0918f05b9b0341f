// Package viz is the terminal live view of a running scene.
package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/akmonengine/ogcsim/runner"
)

const historyCapacity = 240

type TickMsg time.Time

// Model steps the player on every tick while playing and draws the last frame
type Model struct {
	player    *runner.Player
	title     string
	frameRate int
	frame     runner.Frame
	selected  int
	heights   []float64
	showHelp  bool
}

func NewModel(player *runner.Player, title string, frameRate int) Model {
	if frameRate <= 0 {
		frameRate = 30
	}
	m := Model{
		player:    player,
		title:     title,
		frameRate: frameRate,
		frame:     player.Snapshot(),
		heights:   make([]float64, 0, historyCapacity),
	}
	m.selectDynamic()
	m.record()
	return m
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.frameRate), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if m.player.Playing() {
				m.player.Pause()
			} else {
				m.player.Start()
			}
			m.frame = m.player.Snapshot()
		case "s":
			m.frame = m.player.Step()
			m.record()
		case "r":
			m.frame = m.player.Reset()
			m.heights = m.heights[:0]
			m.record()
		case "x":
			m.frame = m.player.Stop()
			m.heights = m.heights[:0]
			m.record()
		case "tab":
			if len(m.frame.Bodies) > 0 {
				m.selected = (m.selected + 1) % len(m.frame.Bodies)
				m.heights = m.heights[:0]
				m.record()
			}
		case "?":
			m.showHelp = !m.showHelp
		}

	case TickMsg:
		if m.player.Playing() {
			m.frame = m.player.Step()
			m.record()
		}
		return m, m.tick()
	}

	return m, nil
}

// selectDynamic starts on the first moving body
func (m *Model) selectDynamic() {
	for i, body := range m.frame.Bodies {
		if body.Active {
			m.selected = i
			return
		}
	}
}

func (m *Model) record() {
	if m.selected >= len(m.frame.Bodies) {
		return
	}
	if len(m.heights) == historyCapacity {
		m.heights = append(m.heights[:0], m.heights[1:]...)
	}
	m.heights = append(m.heights, m.frame.Bodies[m.selected].Position.Y())
}

func (m Model) View() string {
	var b strings.Builder

	status := statusPaused.Render("PAUSED")
	if m.frame.Playing {
		status = statusPlaying.Render("PLAYING")
	}
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s  t=%.3fs  step %d", m.title, m.frame.Time, m.frame.Step)))
	b.WriteString("  " + status + "\n\n")

	var bodies strings.Builder
	for i, body := range m.frame.Bodies {
		line := fmt.Sprintf("%-16s (%7.3f, %7.3f, %7.3f)", body.Name, body.Position.X(), body.Position.Y(), body.Position.Z())
		switch {
		case i == m.selected:
			line = selectedStyle.Render("> " + line)
		case !body.Active:
			line = sleepingStyle.Render("  " + line)
		default:
			line = valueStyle.Render("  " + line)
		}
		bodies.WriteString(line + "\n")
	}

	stats := m.frame.Stats
	var panel strings.Builder
	for _, row := range []struct {
		label string
		value string
	}{
		{"bodies", fmt.Sprintf("%d (%d active)", stats.RigidBodyCount, stats.ActiveBodyCount)},
		{"constraints", fmt.Sprintf("%d (%d broken)", stats.ConstraintCount, stats.BrokenConstraintCount)},
		{"manifolds", fmt.Sprintf("%d base / %d ogc", stats.BaseManifoldCount, stats.ProximityManifoldCount)},
		{"contacts", fmt.Sprintf("%d", stats.ContactPointCount)},
		{"clamped", fmt.Sprintf("%d", stats.ClampedImpulseCount)},
		{"sub-steps", fmt.Sprintf("%d", stats.SubSteps)},
		{"step time", stats.SimulationTime.String()},
	} {
		panel.WriteString(labelStyle.Render(row.label) + valueStyle.Render(row.value) + "\n")
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, bodies.String(), "  ", statsPanel.Render(strings.TrimRight(panel.String(), "\n"))))
	b.WriteString("\n")

	if len(m.heights) > 1 && m.selected < len(m.frame.Bodies) {
		graph := asciigraph.Plot(m.heights,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption(m.frame.Bodies[m.selected].Name+" height"),
		)
		b.WriteString(graphStyle.Render(graph) + "\n")
	}

	for _, w := range m.frame.Warnings {
		b.WriteString(warningStyle.Render(fmt.Sprintf("! %s %s: %s", w.Kind, w.Subject, w.Message)) + "\n")
	}

	help := "space play/pause  s step  r reset  x stop  tab body  ? help  q quit"
	if m.showHelp {
		help = "space  toggle playback\n" +
			"s      advance one frame\n" +
			"r      back to the initial scene\n" +
			"x      pause and reset\n" +
			"tab    follow the next body\n" +
			"q      quit"
	}
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

// Run opens the live view until the user quits
func Run(player *runner.Player, title string, frameRate int) error {
	_, err := tea.NewProgram(NewModel(player, title, frameRate), tea.WithAltScreen()).Run()
	return err
}
