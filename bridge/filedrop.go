package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/concord-run/concord/log"
	"github.com/concord-run/concord/metrics"
	"github.com/concord-run/concord/types"
)

// FileDropSpec describes an IDE-bridge backend.
type FileDropSpec struct {
	// Name is the registry key, e.g. "cursor".
	Name string
	// Capabilities is the static capability set.
	Capabilities []types.Capability
	// Dir is the tool-specific directory, relative to the dispatch workdir.
	Dir string
	// RulesName is the rules file written under Dir.
	RulesName string
}

// FileDropAdapter materializes work as files for an IDE to pick up. It never
// executes anything: a dispatch writes a rules file plus a per-step JSON
// payload and succeeds once the writes land. Write failures propagate as
// errors, the only adapter family that returns them.
type FileDropAdapter struct {
	spec    FileDropSpec
	logger  *log.Logger
	metrics *metrics.Collector
}

// NewFileDropAdapter creates an IDE-bridge adapter. logger and collector
// may be nil.
func NewFileDropAdapter(spec FileDropSpec, logger *log.Logger, collector *metrics.Collector) (*FileDropAdapter, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("file-drop adapter requires a name")
	}
	if spec.Dir == "" {
		return nil, fmt.Errorf("file-drop adapter %s requires a directory", spec.Name)
	}
	if spec.RulesName == "" {
		spec.RulesName = "rules.md"
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &FileDropAdapter{spec: spec, logger: logger, metrics: collector}, nil
}

func (a *FileDropAdapter) Name() string                     { return a.spec.Name }
func (a *FileDropAdapter) Kind() types.AdapterKind          { return types.AdapterKindIDEBridge }
func (a *FileDropAdapter) SupportLevel() types.SupportLevel { return types.SupportBridge }

func (a *FileDropAdapter) Capabilities() []types.Capability {
	out := make([]types.Capability, len(a.spec.Capabilities))
	copy(out, a.spec.Capabilities)
	return out
}

// IsAvailable is trivially true: file drops need no live backend.
func (a *FileDropAdapter) IsAvailable() bool { return true }

// Health checks the working directory and reports whether the tool
// directory already exists there.
func (a *FileDropAdapter) Health(cwd string) HealthReport {
	report := HealthReport{Target: a.spec.Name, Available: true}

	if info, err := os.Stat(cwd); err != nil || !info.IsDir() {
		report.Checks = append(report.Checks, HealthCheck{
			Name: "workdir", OK: false, Detail: fmt.Sprintf("%s is not a directory", cwd),
		})
		report.Available = false
	} else {
		report.Checks = append(report.Checks, HealthCheck{
			Name: "workdir", OK: true, Detail: cwd,
		})
	}

	toolDir := filepath.Join(cwd, a.spec.Dir)
	if _, err := os.Stat(toolDir); err == nil {
		report.Checks = append(report.Checks, HealthCheck{
			Name: "tool-dir", OK: true, Detail: toolDir,
		})
	} else {
		report.Checks = append(report.Checks, HealthCheck{
			Name: "tool-dir", OK: true, Detail: fmt.Sprintf("%s will be created on dispatch", toolDir),
		})
	}

	return report
}

// stepPayload is the per-step JSON document dropped for the IDE.
type stepPayload struct {
	ContractID     string   `json:"contract_id"`
	StepID         string   `json:"step_id"`
	Stage          string   `json:"stage"`
	Summary        string   `json:"summary"`
	VerifyCommands []string `json:"verify_commands,omitempty"`
	DryRun         bool     `json:"dry_run"`
}

// Dispatch writes the rules file and the per-step payload under the tool
// directory. Every written path is listed in Artifacts.
func (a *FileDropAdapter) Dispatch(_ context.Context, envelope *types.BridgeEnvelope, dctx *types.DispatchContext) (*types.BridgeDispatchResult, error) {
	toolDir := filepath.Join(dctx.Workdir, a.spec.Dir)
	stepsDir := filepath.Join(toolDir, "steps")
	if err := os.MkdirAll(stepsDir, 0o755); err != nil {
		a.metrics.IncDispatch(false)
		return nil, fmt.Errorf("%s bridge: create %s: %w", a.spec.Name, stepsDir, err)
	}

	rulesPath := filepath.Join(toolDir, a.spec.RulesName)
	if err := os.MkdirAll(filepath.Dir(rulesPath), 0o755); err != nil {
		a.metrics.IncDispatch(false)
		return nil, fmt.Errorf("%s bridge: create %s: %w", a.spec.Name, filepath.Dir(rulesPath), err)
	}
	if err := os.WriteFile(rulesPath, []byte(a.renderRules(envelope, dctx)), 0o644); err != nil {
		a.metrics.IncDispatch(false)
		return nil, fmt.Errorf("%s bridge: write %s: %w", a.spec.Name, rulesPath, err)
	}

	payload, err := json.MarshalIndent(stepPayload{
		ContractID:     envelope.ContractID,
		StepID:         envelope.StepID,
		Stage:          envelope.Stage,
		Summary:        envelope.Summary,
		VerifyCommands: envelope.VerifyCommands,
		DryRun:         dctx.DryRun,
	}, "", "  ")
	if err != nil {
		a.metrics.IncDispatch(false)
		return nil, fmt.Errorf("%s bridge: encode step payload: %w", a.spec.Name, err)
	}

	stepPath := filepath.Join(stepsDir, envelope.StepID+".json")
	if err := os.WriteFile(stepPath, payload, 0o644); err != nil {
		a.metrics.IncDispatch(false)
		return nil, fmt.Errorf("%s bridge: write %s: %w", a.spec.Name, stepPath, err)
	}

	a.logger.Debug("bridge files materialized", map[string]any{
		"adapter":  a.spec.Name,
		"contract": envelope.ContractID,
		"step":     envelope.StepID,
		"dir":      toolDir,
	})
	a.metrics.IncDispatch(true)

	return &types.BridgeDispatchResult{
		Success:   true,
		RawOutput: fmt.Sprintf("materialized step %s under %s", envelope.StepID, toolDir),
		Artifacts: []string{rulesPath, stepPath},
		ExitCode:  -1,
		Metadata:  map[string]string{"route": "filedrop", "dir": toolDir},
	}, nil
}

// renderRules produces the rules file content for the IDE.
func (a *FileDropAdapter) renderRules(envelope *types.BridgeEnvelope, dctx *types.DispatchContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Contract %s\n\n", envelope.ContractID)
	fmt.Fprintf(&b, "Current step: %s (stage %s)\n\n", envelope.StepID, envelope.Stage)
	fmt.Fprintf(&b, "%s\n", envelope.Summary)
	if len(envelope.VerifyCommands) > 0 {
		b.WriteString("\nVerification:\n")
		for _, cmd := range envelope.VerifyCommands {
			fmt.Fprintf(&b, "- `%s`\n", cmd)
		}
	}
	if dctx.DryRun {
		b.WriteString("\nDry run: do not apply changes.\n")
	}
	return b.String()
}

// Verify FileDropAdapter implements the adapter boundary.
var _ Adapter = (*FileDropAdapter)(nil)
