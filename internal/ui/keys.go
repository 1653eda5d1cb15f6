package ui

import "github.com/charmbracelet/bubbles/key"

type chatKeyMap struct {
	Send       key.Binding
	Browse     key.Binding
	Compose    key.Binding
	Search     key.Binding
	Export     key.Binding
	Copy       key.Binding
	Widget     key.Binding
	Up         key.Binding
	Down       key.Binding
	SwitchPage key.Binding
	Quit       key.Binding
}

func defaultChatKeys() chatKeyMap {
	return chatKeyMap{
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Browse: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "browse"),
		),
		Compose: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "compose"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export transcript"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy transcript"),
		),
		Widget: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "answer widget"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
		SwitchPage: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "functions page"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

func (k chatKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.Browse, k.Widget, k.SwitchPage, k.Quit}
}

func (k chatKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Send, k.Browse, k.Compose, k.Widget},
		{k.Search, k.Export, k.Copy, k.Up, k.Down},
		{k.SwitchPage, k.Quit},
	}
}

type functionsKeyMap struct {
	NewFunction key.Binding
	Load        key.Binding
	Delete      key.Binding
	Copy        key.Binding
	NextField   key.Binding
	PrevField   key.Binding
	AddParam    key.Binding
	DeleteParam key.Binding
	Save        key.Binding
	Expert      key.Binding
	Back        key.Binding
	Quit        key.Binding
}

func defaultFunctionsKeys() functionsKeyMap {
	return functionsKeyMap{
		NewFunction: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new function"),
		),
		Load: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy schema"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field / page"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev field"),
		),
		AddParam: key.NewBinding(
			key.WithKeys("ctrl+a"),
			key.WithHelp("ctrl+a", "add parameter"),
		),
		DeleteParam: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "delete parameter"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
		Expert: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("ctrl+e", "expert mode"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back to list"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

func (k functionsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Load, k.NewFunction, k.Delete, k.Save, k.Expert, k.Quit}
}

func (k functionsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Load, k.NewFunction, k.Delete, k.Copy},
		{k.NextField, k.PrevField, k.AddParam, k.DeleteParam},
		{k.Save, k.Expert, k.Back, k.Quit},
	}
}
