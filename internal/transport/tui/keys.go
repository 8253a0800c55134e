package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit        key.Binding
	ForceQuit   key.Binding
	NextFocus   key.Binding
	PrevFocus   key.Binding
	NextAccount key.Binding
	PrevAccount key.Binding
	Submit      key.Binding
	Refresh     key.Binding
	Export      key.Binding
}

var keys = keyMap{
	Quit:        key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	ForceQuit:   key.NewBinding(key.WithKeys("ctrl+c")),
	NextFocus:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
	PrevFocus:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
	NextAccount: key.NewBinding(key.WithKeys("right", "]"), key.WithHelp("→/]", "next client")),
	PrevAccount: key.NewBinding(key.WithKeys("left", "["), key.WithHelp("←/[", "prev client")),
	Submit:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add position")),
	Refresh:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Export:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PrevAccount, k.NextAccount, k.NextFocus, k.Submit, k.Refresh, k.Export, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
