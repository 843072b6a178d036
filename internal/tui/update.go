package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/noteports/noteports/internal/monitor"
)

func (m Model) refreshCmd() tea.Cmd {
	mon, search := m.mon, m.search
	return func() tea.Msg {
		report, err := mon.Status(context.Background(), monitor.Filter{Search: search})
		return statusMsg{report: report, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if h := msg.Height - 7; h >= 3 {
			m.table.SetHeight(h)
		}
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.refreshCmd(), tickCmd())

	case statusMsg:
		m.err = msg.err
		if msg.err == nil {
			m.report = msg.report
			m.table.SetRows(m.rows())
		}
		return m, nil

	case tea.KeyMsg:
		if m.mode != modeBrowse {
			return m.updateInput(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.refreshCmd()
		case "/":
			m.mode = modeSearch
			m.input.Prompt = "search: "
			m.input.SetValue(m.search)
			m.input.Focus()
			return m, nil
		case "a":
			m.mode = modeDeclare
			m.input.Prompt = "declare name:port: "
			m.input.SetValue("")
			m.input.Focus()
			return m, nil
		case "d":
			return m, m.forgetSelected()
		}
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.mode = modeBrowse
		m.input.Blur()

		if mode == modeSearch {
			m.search = value
			return m, m.refreshCmd()
		}
		return m, m.declare(value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// declare parses "name:port" and upserts it via the monitor. The monitor's
// validators decide what is acceptable; the TUI just reports the outcome.
func (m Model) declare(value string) tea.Cmd {
	mon, search := m.mon, m.search
	return func() tea.Msg {
		idx := strings.LastIndex(value, ":")
		if idx < 1 {
			return statusMsg{err: fmt.Errorf("expected name:port, got %q", value)}
		}
		if err := mon.AddService(strings.TrimSpace(value[:idx]), strings.TrimSpace(value[idx+1:]), ""); err != nil {
			return statusMsg{err: err}
		}
		report, err := mon.Status(context.Background(), monitor.Filter{Search: search})
		return statusMsg{report: report, err: err}
	}
}

func (m Model) forgetSelected() tea.Cmd {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.report.Ports) {
		return nil
	}
	row := m.report.Ports[cursor]
	if !row.Declared {
		return func() tea.Msg {
			return statusMsg{err: fmt.Errorf("port %d is not declared in the catalog", row.Port)}
		}
	}

	mon, search := m.mon, m.search
	return func() tea.Msg {
		if err := mon.RemoveService(row.ServiceName); err != nil {
			return statusMsg{err: err}
		}
		report, err := mon.Status(context.Background(), monitor.Filter{Search: search})
		return statusMsg{report: report, err: err}
	}
}

func (m Model) rows() []table.Row {
	rows := make([]table.Row, len(m.report.Ports))
	for i, p := range m.report.Ports {
		pid := ""
		if p.PID > 0 {
			pid = strconv.Itoa(p.PID)
		}
		rows[i] = table.Row{
			strconv.Itoa(p.Port),
			p.Protocol,
			string(p.State),
			p.ServiceName,
			p.Process,
			pid,
			p.Note,
		}
	}
	return rows
}
