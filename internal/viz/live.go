package viz

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/fdsynth/internal/instruments"
	"github.com/san-kum/fdsynth/internal/sim"
)

const (
	width           = 60
	height          = 16
	frameRate       = 60
	historyCapacity = 300
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model runs a patch in real time and draws its body shape (or, for
// patches without one, the last frame of output) with a level history.
type Model struct {
	patch           instruments.Patch
	canvas          *Canvas
	theme           Theme
	styles          styles
	samplesPerFrame int
	muteThreshold   float64

	running, held bool
	frame         []float64
	levels        []float64
	t             float64
	peak          float64
	failures      int
	mutes         int
	scale         float64

	paramKeys []string
	selected  int
	status    string
	showHelp  bool
}

// NewModel wraps patch. speed scales simulated time per wall-clock second.
func NewModel(patch instruments.Patch, speed float64) Model {
	if speed <= 0 {
		speed = 1
	}
	keys := make([]string, 0)
	for k := range patch.Params() {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	theme := Themes[0]
	return Model{
		patch:           patch,
		canvas:          NewCanvas(width, height),
		theme:           theme,
		styles:          newStyles(theme),
		samplesPerFrame: max(1, int(patch.SampleRate()*speed/frameRate)),
		muteThreshold:   sim.DefaultMuteThreshold,
		running:         true,
		levels:          make([]float64, 0, historyCapacity),
		paramKeys:       keys,
	}
}

func (m Model) Init() tea.Cmd { return tick() }

// Update handles input events and advances the patch one frame per tick.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "enter", "p":
			m.trigger()
		case "r":
			m.release()
		case "0":
			m.reset()
		case "tab":
			m.cycleParam()
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(1 / 1.05)
		case "t":
			m.theme = NextTheme(m.theme)
			m.styles = newStyles(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		m.draw()
		return m, tick()
	}
	return m, nil
}

func (m *Model) trigger() {
	m.patch.Trigger()
	m.held = true
	m.status = "note on"
}

func (m *Model) release() {
	m.patch.Release()
	m.held = false
	m.status = "note off"
}

func (m *Model) reset() {
	m.patch.Reset()
	m.held = false
	m.t = 0
	m.peak = 0
	m.levels = m.levels[:0]
	m.frame = m.frame[:0]
	m.status = "reset"
}

func (m *Model) cycleParam() {
	if len(m.paramKeys) == 0 {
		return
	}
	m.selected = (m.selected + 1) % len(m.paramKeys)
}

func (m *Model) adjustParam(factor float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	val := m.patch.Params()[key]
	if val == 0 {
		val = 1e-3
	}
	if err := m.patch.SetParam(key, val*factor); err != nil {
		m.status = err.Error()
		return
	}
	m.status = fmt.Sprintf("%s = %.4g", key, val*factor)
}

// step advances the patch by one frame of samples.
func (m *Model) step() {
	m.frame = m.frame[:0]
	level := 0.0
	for i := 0; i < m.samplesPerFrame; i++ {
		v, err := m.patch.Process()
		if err != nil {
			m.failures++
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > m.muteThreshold {
			m.mutes++
			m.patch.Reset()
			m.held = false
			m.status = "muted unstable output"
			v = 0
		}
		m.frame = append(m.frame, v)
		level = math.Max(level, math.Abs(v))
	}
	m.t += float64(m.samplesPerFrame) / m.patch.SampleRate()
	m.peak = math.Max(m.peak, level)

	m.levels = append(m.levels, level)
	if len(m.levels) > historyCapacity {
		m.levels = m.levels[1:]
	}
}

// draw plots the body shape, autoscaled with a slowly decaying range.
func (m *Model) draw() {
	m.canvas.Clear()
	values := m.frame
	if s, ok := m.patch.(instruments.Shaper); ok {
		values = s.Shape()
	}

	extent := 0.0
	for _, v := range values {
		extent = math.Max(extent, math.Abs(v))
	}
	m.scale = math.Max(extent, m.scale*0.98)
	if m.scale < 1e-9 {
		m.scale = 1e-9
	}
	m.canvas.Plot(values, m.scale)
}

// View renders the canvas next to the stats panel.
func (m Model) View() string {
	st := m.styles
	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.patch.Name())) + "\n")

	state := "RUNNING"
	if !m.running {
		state = "PAUSED"
	}
	if m.held {
		state += "  ♪"
	}
	s.WriteString(state + "\n")

	if len(m.levels) > 1 {
		chart := asciigraph.Plot(m.levels, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Level"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	current := 0.0
	if n := len(m.levels); n > 0 {
		current = m.levels[n-1]
	}
	s.WriteString(st.label.Render("Time") + st.value.Render(fmt.Sprintf("%.2fs", m.t)) + "\n")
	s.WriteString(st.label.Render("Level") + st.value.Render(LevelBar(current/m.muteThreshold, 16)) + "\n")
	s.WriteString(st.label.Render("Peak") + st.value.Render(fmt.Sprintf("%.3f", m.peak)) + "\n")
	s.WriteString(st.label.Render("Solver") + st.value.Render(fmt.Sprintf("%d failures", m.failures)) + "\n")
	if m.mutes > 0 {
		s.WriteString(st.label.Render("Muted") + st.warn.Render(fmt.Sprintf("%d", m.mutes)) + "\n")
	}

	s.WriteString("\nPARAMETERS\n")
	params := m.patch.Params()
	for i, k := range m.paramKeys {
		line := fmt.Sprintf("%-16s %.4g", k, params[k])
		if i == m.selected {
			s.WriteString(st.active.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + st.label.Render(line) + "\n")
		}
	}
	if m.status != "" {
		s.WriteString("\n" + st.value.Render(m.status) + "\n")
	}
	s.WriteString(st.help.Render("ENTER:Note R:Release 0:Reset\nSP:Pause TAB/↑↓:Tune T:Theme ?:Help Q:Quit"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, st.canvas.Render(m.canvas.String()), st.stats.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + main
	}
	return main
}

const helpText = `
  enter/p   trigger a note
  r         release the note
  0         reset the patch to rest
  space     pause or resume
  tab       select parameter
  up/down   scale parameter by 5%
  t         cycle theme
  q         quit
`
