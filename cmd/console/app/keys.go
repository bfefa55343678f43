package app

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Left, Right, Up, Down key.Binding
	Click                 key.Binding
	Edge                  key.Binding
	Background            key.Binding
	Connect               key.Binding
	AddNode               key.Binding
	AddConnection         key.Binding
	Edit                  key.Binding
	Delete                key.Binding
	ViewYAML              key.Binding
	EditYAML              key.Binding
	Run                   key.Binding
	Stop                  key.Binding
	NextTab, PrevTab      key.Binding
	Open                  key.Binding
	New                   key.Binding
	Download              key.Binding
	Theme                 key.Binding
	Help                  key.Binding
	Quit                  key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Left:          key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/→", "rank")),
		Right:         key.NewBinding(key.WithKeys("right", "l")),
		Up:            key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/↓", "node")),
		Down:          key.NewBinding(key.WithKeys("down", "j")),
		Click:         key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "select")),
		Edge:          key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "next edge")),
		Background:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
		Connect:       key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "connect mode")),
		AddNode:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add reactor")),
		AddConnection: key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "add flow device")),
		Edit:          key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "edit properties")),
		Delete:        key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		ViewYAML:      key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "view yaml")),
		EditYAML:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "edit yaml")),
		Run:           key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "run")),
		Stop:          key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
		NextTab:       key.NewBinding(key.WithKeys("]", "tab"), key.WithHelp("[/]", "results tab")),
		PrevTab:       key.NewBinding(key.WithKeys("[", "shift+tab")),
		Open:          key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open file")),
		New:           key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new")),
		Download:      key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "save code")),
		Theme:         key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		Help:          key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Click, k.Connect, k.AddNode, k.Edit, k.Run, k.Stop, k.NextTab, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Up, k.Click, k.Edge, k.Background},
		{k.Connect, k.AddNode, k.AddConnection, k.Edit, k.Delete},
		{k.ViewYAML, k.EditYAML, k.Open, k.New, k.Download},
		{k.Run, k.Stop, k.NextTab, k.Theme, k.Quit},
	}
}
