package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Submit    key.Binding
	Back      key.Binding
	Retry     key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

var keys = keyMap{
	Up:        key.NewBinding(key.WithKeys("up", "shift+tab"), key.WithHelp("↑", "previous")),
	Down:      key.NewBinding(key.WithKeys("down", "tab"), key.WithHelp("↓", "next")),
	Left:      key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "")),
	Right:     key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "change")),
	Submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "analyze")),
	Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Retry:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "run again")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	ForceQuit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
}
