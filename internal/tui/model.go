// Package tui is the interactive terminal dashboard: the reconciled port
// table with search, declare, and forget bound to single keys.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/noteports/noteports/internal/monitor"
	"github.com/noteports/noteports/pkg/model"
)

const refreshEvery = 5 * time.Second

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	baseStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#585858"))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5f5fd7")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff5f5f")).
			Bold(true)

	matchedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#22aa22"))
	catalogOnlyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#d7af00"))
	socketOnlyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5f5f"))
)

type inputMode int

const (
	modeBrowse inputMode = iota
	modeSearch
	modeDeclare
)

type (
	tickMsg   time.Time
	statusMsg struct {
		report model.StatusReport
		err    error
	}
)

// Model is the dashboard state. All reads and writes go through the monitor;
// the model itself only holds what is on screen.
type Model struct {
	mon    *monitor.Monitor
	table  table.Model
	input  textinput.Model
	mode   inputMode
	search string
	report model.StatusReport
	err    error
	width  int
}

func NewModel(mon *monitor.Monitor) Model {
	columns := []table.Column{
		{Title: "Port", Width: 6},
		{Title: "Proto", Width: 6},
		{Title: "Status", Width: 13},
		{Title: "Service", Width: 24},
		{Title: "Process", Width: 18},
		{Title: "PID", Width: 7},
		{Title: "Note", Width: 24},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(18),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	in := textinput.New()
	in.PromptStyle = promptStyle
	in.CharLimit = 280

	return Model{mon: mon, table: t, input: in}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshEvery, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
