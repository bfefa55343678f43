package app

import (
	"fmt"

	"github.com/boulder-sim/boulder/cmd/console/config"
	"github.com/boulder-sim/boulder/internal/graph"
	"github.com/charmbracelet/lipgloss"
)

type themePalette struct {
	Name           string
	BorderColor    string
	AccentColor    string
	MutedColor     string
	TabActiveBG    string
	TabActiveFG    string
	TabInactiveFG  string
	WhitespaceTint string
	SuccessColor   string
	ErrorColor     string
	RunningColor   string
	EdgeColor      string
	PreviewColor   string
}

var palettes = map[string]themePalette{
	config.ThemeDark: {
		Name:           config.ThemeDark,
		BorderColor:    "240",
		AccentColor:    "63",
		MutedColor:     "241",
		TabActiveBG:    "57",
		TabActiveFG:    "230",
		TabInactiveFG:  "240",
		WhitespaceTint: "235",
		SuccessColor:   "42",
		ErrorColor:     "196",
		RunningColor:   "214",
		EdgeColor:      "245",
		PreviewColor:   "212",
	},
	config.ThemeLight: {
		Name:           config.ThemeLight,
		BorderColor:    "250",
		AccentColor:    "25",
		MutedColor:     "244",
		TabActiveBG:    "25",
		TabActiveFG:    "255",
		TabInactiveFG:  "243",
		WhitespaceTint: "254",
		SuccessColor:   "28",
		ErrorColor:     "160",
		RunningColor:   "130",
		EdgeColor:      "240",
		PreviewColor:   "163",
	},
}

var (
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Padding(0, 1)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	activeBox   = boxStyle.BorderForeground(lipgloss.Color("63"))
	placeholder = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	tabActive   = lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("57")).Bold(true)
	tabInactive = lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color("240"))
	modalStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(1, 2)
	modalTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	modalHint   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Padding(0, 1)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true).Padding(0, 1)
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Padding(0, 1)
	logoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true).PaddingRight(1)
)

func (m *Model) setTheme(name string) {
	p, ok := palettes[name]
	if !ok {
		p = palettes[config.ThemeDark]
	}
	m.theme = p.Name
	m.palette = p
	applyPalette(p)
}

func (m *Model) toggleTheme() {
	if m.theme == config.ThemeDark {
		m.setTheme(config.ThemeLight)
	} else {
		m.setTheme(config.ThemeDark)
	}
	m.bridge.Invalidate()
	m.notify(fmt.Sprintf("Theme switched to %s", m.theme))
}

// graphColors feeds the active palette to the network renderer.
func (p themePalette) graphColors() graph.Palette {
	return graph.Palette{
		Accent:  p.AccentColor,
		Muted:   p.MutedColor,
		Edge:    p.EdgeColor,
		Preview: p.PreviewColor,
	}
}

func applyPalette(p themePalette) {
	barStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(p.BorderColor)).Padding(0, 1)
	boxStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color(p.BorderColor)).Padding(0, 1)
	activeBox = boxStyle.BorderForeground(lipgloss.Color(p.AccentColor))
	placeholder = lipgloss.NewStyle().Foreground(lipgloss.Color(p.BorderColor))
	tabActive = lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color(p.TabActiveFG)).Background(lipgloss.Color(p.TabActiveBG)).Bold(true)
	tabInactive = lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color(p.TabInactiveFG))
	modalStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(p.AccentColor)).Padding(1, 2)
	modalTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.AccentColor))
	modalHint = lipgloss.NewStyle().Foreground(lipgloss.Color(p.MutedColor))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(p.SuccessColor)).Padding(0, 1)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(p.ErrorColor)).Bold(true).Padding(0, 1)
	hintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(p.RunningColor)).Padding(0, 1)
	logoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(p.AccentColor)).Bold(true).PaddingRight(1)
}
