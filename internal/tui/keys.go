package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/verte-zerg/tuiquiz/internal/model"
	"github.com/verte-zerg/tuiquiz/internal/quiz"
)

type keyMap struct {
	Start      key.Binding
	Option     key.Binding
	Up         key.Binding
	Down       key.Binding
	Choose     key.Binding
	Fullscreen key.Binding
	Leave      key.Binding
	Restart    key.Binding
	Quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Start: key.NewBinding(
			key.WithKeys("enter", "s"),
			key.WithHelp("enter", "start"),
		),
		Option: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "answer"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Choose: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "choose"),
		),
		Fullscreen: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "go fullscreen"),
		),
		Leave: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "leave fullscreen"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restart"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "quit"),
		),
	}
}

// bindingsFor lists the keys that do something on the given screen.
func (k keyMap) bindingsFor(v quiz.View) []key.Binding {
	switch {
	case v.Phase == model.PhaseActive && v.NeedsFullscreen:
		return []key.Binding{k.Fullscreen, k.Restart, k.Quit}
	case v.Phase == model.PhaseActive:
		return []key.Binding{k.Option, k.Up, k.Down, k.Choose, k.Leave, k.Restart, k.Quit}
	case v.Phase == model.PhaseCompleted:
		return []key.Binding{k.Start, k.Restart, k.Quit}
	default:
		return []key.Binding{k.Start, k.Quit}
	}
}
