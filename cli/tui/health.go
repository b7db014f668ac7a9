package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/concord-run/concord/bridge"
)

// healthModel is the interactive per-backend health view.
type healthModel struct {
	reports []bridge.HealthReport
	cursor  int
}

// NewHealthModel builds the health model. Exposed for testing.
func NewHealthModel(reports []bridge.HealthReport) tea.Model {
	return healthModel{reports: reports}
}

// RunHealthTUI starts the health report TUI.
func RunHealthTUI(reports []bridge.HealthReport) error {
	p := tea.NewProgram(NewHealthModel(reports))
	_, err := p.Run()
	return err
}

func (m healthModel) Init() tea.Cmd { return nil }

func (m healthModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.cursor < len(m.reports)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

func (m healthModel) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Backend Health"))
	b.WriteString("\n")

	for i, report := range m.reports {
		marker := "  "
		style := ValueStyle
		if i == m.cursor {
			marker = "> "
			style = SelectedStyle
		}
		availability := AvailabilityStyle(report.Available).Render(availabilityLabel(report.Available))
		b.WriteString(fmt.Sprintf("%s%s %s\n", marker, style.Render(fmt.Sprintf("%-12s", report.Target)), availability))
	}

	if len(m.reports) > 0 {
		selected := m.reports[m.cursor]
		var detail strings.Builder
		detail.WriteString(TitleStyle.Render(selected.Target))
		for _, check := range selected.Checks {
			status := SuccessStyle.Render("ok")
			if !check.OK {
				status = ErrorStyle.Render("fail")
			}
			detail.WriteString(fmt.Sprintf("\n%s %s  %s",
				LabelStyle.Render(check.Name+":"), status, ValueStyle.Render(check.Detail)))
		}
		b.WriteString("\n")
		b.WriteString(BoxStyle.Render(detail.String()))
	}

	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("↑/↓ navigate · q quit"))
	b.WriteString("\n")
	return b.String()
}
