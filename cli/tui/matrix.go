package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/concord-run/concord/bridge"
)

// matrixModel is the interactive capability matrix view.
type matrixModel struct {
	rows   []bridge.MatrixRow
	cursor int
}

// NewMatrixModel builds the matrix model. Exposed for testing.
func NewMatrixModel(rows []bridge.MatrixRow) tea.Model {
	return matrixModel{rows: rows}
}

// RunMatrixTUI starts the capability matrix TUI.
func RunMatrixTUI(rows []bridge.MatrixRow) error {
	p := tea.NewProgram(NewMatrixModel(rows))
	_, err := p.Run()
	return err
}

func (m matrixModel) Init() tea.Cmd { return nil }

func (m matrixModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

func (m matrixModel) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Backend Capability Matrix"))
	b.WriteString("\n")

	for i, row := range m.rows {
		marker := "  "
		style := ValueStyle
		if i == m.cursor {
			marker = "> "
			style = SelectedStyle
		}

		availability := AvailabilityStyle(row.Available).Render(availabilityLabel(row.Available))
		b.WriteString(fmt.Sprintf("%s%s %s\n",
			marker,
			style.Render(fmt.Sprintf("%-12s %-10s %-7s", row.Name, row.Kind, row.Support)),
			availability,
		))
	}

	if len(m.rows) > 0 {
		selected := m.rows[m.cursor]
		detail := fmt.Sprintf("%s\n%s %s\n%s %s",
			TitleStyle.Render(selected.Name),
			LabelStyle.Render("capabilities:"), ValueStyle.Render(strings.Join(selected.Capabilities, ", ")),
			LabelStyle.Render("notes:"), ValueStyle.Render(selected.Notes),
		)
		b.WriteString("\n")
		b.WriteString(BoxStyle.Render(detail))
	}

	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("↑/↓ navigate · q quit"))
	b.WriteString("\n")
	return b.String()
}

func availabilityLabel(available bool) string {
	if available {
		return "available"
	}
	return "unavailable"
}
