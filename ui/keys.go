package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit      key.Binding
	SwitchTab key.Binding
	Next      key.Binding
	Prev      key.Binding
	Submit    key.Binding
	Reset     key.Binding
	Press     key.Binding
	Refresh   key.Binding
	More      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		SwitchTab: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "switch tab"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "submit"),
		),
		Reset: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "reset"),
		),
		Press: key.NewBinding(
			key.WithKeys("enter"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		More: key.NewBinding(
			key.WithKeys("m", "end"),
			key.WithHelp("m", "load more"),
		),
	}
}

func (k keyMap) formHelp() []key.Binding {
	return []key.Binding{k.Next, k.Submit, k.Reset, k.SwitchTab, k.Quit}
}

func (k keyMap) listHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.More, k.SwitchTab, k.Quit}
}
