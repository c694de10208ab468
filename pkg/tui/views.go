package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/skilldeck/skilldeck/pkg/skills"
)

const detailsHeaderLines = 7

var (
	listPaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	detailsPaneStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")).
				Padding(0, 1)

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220")).Background(lipgloss.Color("237"))
	validStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("76"))
	invalidStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
	missingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	fieldStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

const helpText = "↑/↓ navigate · i install local · g install global · z package · / filter · r rescan · q quit"

func (m Model) listWidth() int {
	w := m.width * 3 / 10
	if w < 24 {
		w = 24
	}
	return w
}

func (m Model) detailsWidth() int {
	w := m.width - m.listWidth() - 6
	if w < 20 {
		w = 20
	}
	return w
}

func (m Model) paneHeight() int {
	h := m.height - 4
	if h < 5 {
		h = 5
	}
	return h
}

// View renders the two panes and the status bar.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	panes := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderList(),
		m.renderDetails(),
	)

	return lipgloss.JoinVertical(lipgloss.Left, panes, m.renderStatusBar())
}

func (m Model) renderList() string {
	title := "Skills"
	if query := m.filterInput.Value(); query != "" {
		title = fmt.Sprintf("Skills (filter: %s)", query)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	if len(m.visible) == 0 {
		b.WriteString(missingStyle.Render("no bundles"))
	}

	maxRows := m.paneHeight() - 3
	start := 0
	if m.cursor >= maxRows {
		start = m.cursor - maxRows + 1
	}

	for idx := start; idx < len(m.visible) && idx < start+maxRows; idx++ {
		sum := m.visible[idx]
		line := statusMarker(sum.Status) + " " + sum.ID

		if idx == m.cursor {
			line = selectedStyle.Render("► " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return listPaneStyle.Width(m.listWidth()).Height(m.paneHeight()).Render(b.String())
}

func statusMarker(status skills.Status) string {
	switch status {
	case skills.StatusValid:
		return validStyle.Render("✓")
	case skills.StatusInvalid:
		return invalidStyle.Render("✗")
	default:
		return missingStyle.Render("?")
	}
}

func (m Model) renderDetails() string {
	sum := m.selected()
	if sum == nil {
		return detailsPaneStyle.Width(m.detailsWidth()).Height(m.paneHeight()).
			Render(missingStyle.Render("No bundle selected"))
	}

	var b strings.Builder
	name := sum.ID
	version := "-"
	if sum.Manifest != nil {
		if sum.Manifest.Name != "" {
			name = sum.Manifest.Name
		}
		if sum.Manifest.Version != "" {
			version = sum.Manifest.Version
		}
	}

	b.WriteString(fieldStyle.Render("Name: ") + name + "\n")
	b.WriteString(fieldStyle.Render("Version: ") + version + "\n")
	b.WriteString(fieldStyle.Render("Path: ") + sum.Path + "\n")
	b.WriteString(fieldStyle.Render("Status: ") + statusMarker(sum.Status) + " " + string(sum.Status) + "\n")
	b.WriteString(fieldStyle.Render("Files: ") + fmt.Sprintf("%d resources · %d templates · %d scripts\n",
		len(sum.Resources), len(sum.Templates), len(sum.Scripts)))

	if sum.Manifest != nil && len(sum.Manifest.AllowedTools) > 0 {
		b.WriteString(fieldStyle.Render("Tools: ") + strings.Join(sum.Manifest.AllowedTools, ", ") + "\n")
	}
	b.WriteString("\n")

	switch {
	case sum.Status == skills.StatusMissing:
		b.WriteString(missingStyle.Render("This directory has no " + skills.EntryFileName))
	case sum.Status == skills.StatusInvalid:
		b.WriteString(invalidStyle.Render("Validation problems:") + "\n")
		for _, reason := range sum.Reasons {
			b.WriteString(invalidStyle.Render("  • "+reason) + "\n")
		}
	case sum.ID == m.detailsFor:
		b.WriteString(m.detailsVP.View())
	default:
		b.WriteString(missingStyle.Render("Loading..."))
	}

	return detailsPaneStyle.Width(m.detailsWidth()).Height(m.paneHeight()).Render(b.String())
}

func (m Model) renderStatusBar() string {
	if m.filtering {
		return " " + m.filterInput.View()
	}
	return " " + statusStyle.Render(m.status) + "  " + helpStyle.Render(helpText)
}
