package tui

import (
	"fmt"

	"github.com/concord-run/concord/bridge"
)

// Run starts the appropriate TUI based on the view type.
// Returns an error if the view type doesn't support TUI.
func Run(viewType string, data any) error {
	switch viewType {
	case "matrix":
		rows, ok := data.([]bridge.MatrixRow)
		if !ok {
			return fmt.Errorf("matrix view expects matrix rows, got %T", data)
		}
		return RunMatrixTUI(rows)
	case "health":
		reports, ok := data.([]bridge.HealthReport)
		if !ok {
			return fmt.Errorf("health view expects health reports, got %T", data)
		}
		return RunHealthTUI(reports)
	default:
		return fmt.Errorf("TUI mode is not supported for %s", viewType)
	}
}

// IsTUISupported returns true if the view type supports TUI mode.
// Only the matrix and health views are interactive.
func IsTUISupported(viewType string) bool {
	return viewType == "matrix" || viewType == "health"
}

// SupportedTUIViews returns the view types that support TUI.
func SupportedTUIViews() []string {
	return []string{"matrix", "health"}
}
