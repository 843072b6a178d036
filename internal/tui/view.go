package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/noteports/noteports/pkg/model"
)

func (m Model) View() string {
	title := titleStyle.Render("NotePorts")
	summary := footerStyle.Render(fmt.Sprintf(" %d in use · %d TCP · %d UDP%s",
		m.report.TotalUsed, m.report.TCPUsed, m.report.UDPUsed, m.searchLabel()))

	counts := m.stateCounts()
	legend := strings.Join([]string{
		matchedStyle.Render(fmt.Sprintf("● %d matched", counts[model.StateMatched])),
		catalogOnlyStyle.Render(fmt.Sprintf("● %d catalog-only", counts[model.StateCatalogOnly])),
		socketOnlyStyle.Render(fmt.Sprintf("● %d socket-only", counts[model.StateSocketOnly])),
	}, "  ")

	var bottom string
	switch {
	case m.mode != modeBrowse:
		bottom = m.input.View()
	case m.err != nil:
		bottom = errorStyle.Render(m.err.Error())
	default:
		bottom = footerStyle.Render("r refresh · / search · a declare · d forget · q quit")
	}
	if m.width > 0 {
		bottom = truncate.String(bottom, uint(m.width))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Center, title, summary),
		legend,
		baseStyle.Render(m.table.View()),
		bottom,
	)
}

func (m Model) searchLabel() string {
	if m.search == "" {
		return ""
	}
	return fmt.Sprintf(" · filter %q", m.search)
}

func (m Model) stateCounts() map[model.PortState]int {
	counts := make(map[model.PortState]int, 3)
	for _, p := range m.report.Ports {
		counts[p.State]++
	}
	return counts
}
