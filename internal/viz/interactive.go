package viz

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/fdsynth/internal/instruments"
)

const (
	stateMenu = iota
	stateLive
)

// App is a patch picker that opens the live view of the chosen patch.
type App struct {
	registry   *instruments.Registry
	sampleRate float64
	speed      float64
	patches    []string
	state      int
	cursor     int
	live       Model
	err        error
}

func NewApp(registry *instruments.Registry, sampleRate, speed float64) App {
	return App{
		registry:   registry,
		sampleRate: sampleRate,
		speed:      speed,
		patches:    registry.List(),
	}
}

func (a App) Init() tea.Cmd { return nil }

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		if a.state == stateMenu {
			return a.menuKey(key)
		}
		if key.String() == "esc" {
			a.state = stateMenu
			return a, nil
		}
	}
	if a.state == stateLive {
		if _, ok := msg.(TickMsg); ok || isKey(msg) {
			next, cmd := a.live.Update(msg)
			a.live = next.(Model)
			return a, cmd
		}
	}
	return a, nil
}

func isKey(msg tea.Msg) bool {
	_, ok := msg.(tea.KeyMsg)
	return ok
}

func (a App) menuKey(msg tea.KeyMsg) (App, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.patches)-1 {
			a.cursor++
		}
	case "enter", " ":
		if len(a.patches) == 0 {
			return a, nil
		}
		p, err := a.registry.Get(a.patches[a.cursor], a.sampleRate)
		if err != nil {
			a.err = err
			return a, nil
		}
		a.err = nil
		a.live = NewModel(p, a.speed)
		a.live.trigger()
		a.state = stateLive
		return a, a.live.Init()
	}
	return a, nil
}

func (a App) View() string {
	if a.state == stateLive {
		return a.live.View()
	}

	st := newStyles(Themes[0])
	var s strings.Builder
	s.WriteString(st.header.Render("FDSYNTH") + "\n")
	for i, name := range a.patches {
		desc := st.label.UnsetWidth().Render(a.registry.Describe(name))
		if i == a.cursor {
			s.WriteString(st.active.Render("> "+name) + "  " + desc + "\n")
		} else {
			s.WriteString("  " + st.menu.Render(name) + "  " + desc + "\n")
		}
	}
	if a.err != nil {
		s.WriteString("\n" + st.warn.Render(a.err.Error()) + "\n")
	}
	s.WriteString(st.help.Render("↑↓:Select ENTER:Play ESC:Back Q:Quit"))
	return s.String()
}
