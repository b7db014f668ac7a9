package bridge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/concord-run/concord/iox"
	"github.com/concord-run/concord/log"
	"github.com/concord-run/concord/metrics"
	"github.com/concord-run/concord/types"
)

// maxDispatchOutput bounds captured backend output.
const maxDispatchOutput = 256 * 1024

// ProcessSpec describes a process-executing backend.
type ProcessSpec struct {
	// Name is the registry key, e.g. "claude-code".
	Name string
	// Support is the declared support tier.
	Support types.SupportLevel
	// Capabilities is the static capability set.
	Capabilities []types.Capability
	// Binary is the native tool binary looked up on PATH.
	Binary string
	// Args are fixed arguments placed before the prompt.
	Args []string
	// Shim is a fallback command prefix used when Binary is not on PATH.
	// Empty means no shim: dispatch fails with Success=false instead.
	Shim []string
}

// ProcessAdapter shells out to an external tool binary with a constructed
// prompt and reports the process's own success signal. Routing through the
// shim is recorded in metadata["route"].
type ProcessAdapter struct {
	spec     ProcessSpec
	logger   *log.Logger
	metrics  *metrics.Collector
	lookPath func(string) (string, error)
}

// NewProcessAdapter creates a process-executing adapter. logger and
// collector may be nil.
func NewProcessAdapter(spec ProcessSpec, logger *log.Logger, collector *metrics.Collector) (*ProcessAdapter, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("process adapter requires a name")
	}
	if spec.Binary == "" {
		return nil, fmt.Errorf("process adapter %s requires a binary", spec.Name)
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &ProcessAdapter{
		spec:     spec,
		logger:   logger,
		metrics:  collector,
		lookPath: exec.LookPath,
	}, nil
}

func (a *ProcessAdapter) Name() string                     { return a.spec.Name }
func (a *ProcessAdapter) Kind() types.AdapterKind          { return types.AdapterKindExecutor }
func (a *ProcessAdapter) SupportLevel() types.SupportLevel { return a.spec.Support }

func (a *ProcessAdapter) Capabilities() []types.Capability {
	out := make([]types.Capability, len(a.spec.Capabilities))
	copy(out, a.spec.Capabilities)
	return out
}

// IsAvailable reports whether the native binary or its shim is invocable.
func (a *ProcessAdapter) IsAvailable() bool {
	if _, err := a.lookPath(a.spec.Binary); err == nil {
		return true
	}
	if len(a.spec.Shim) > 0 {
		if _, err := a.lookPath(a.spec.Shim[0]); err == nil {
			return true
		}
	}
	return false
}

// Health checks binary resolution and the working directory.
func (a *ProcessAdapter) Health(cwd string) HealthReport {
	report := HealthReport{Target: a.spec.Name}

	if path, err := a.lookPath(a.spec.Binary); err == nil {
		report.Checks = append(report.Checks, HealthCheck{
			Name: "binary", OK: true, Detail: fmt.Sprintf("%s resolved to %s", a.spec.Binary, path),
		})
	} else {
		report.Checks = append(report.Checks, HealthCheck{
			Name: "binary", OK: false, Detail: fmt.Sprintf("%s not on PATH", a.spec.Binary),
		})
	}

	if len(a.spec.Shim) > 0 {
		if path, err := a.lookPath(a.spec.Shim[0]); err == nil {
			report.Checks = append(report.Checks, HealthCheck{
				Name: "shim", OK: true, Detail: fmt.Sprintf("%s resolved to %s", a.spec.Shim[0], path),
			})
		} else {
			report.Checks = append(report.Checks, HealthCheck{
				Name: "shim", OK: false, Detail: fmt.Sprintf("%s not on PATH", a.spec.Shim[0]),
			})
		}
	}

	if info, err := os.Stat(cwd); err != nil || !info.IsDir() {
		report.Checks = append(report.Checks, HealthCheck{
			Name: "workdir", OK: false, Detail: fmt.Sprintf("%s is not a directory", cwd),
		})
	} else {
		report.Checks = append(report.Checks, HealthCheck{
			Name: "workdir", OK: true, Detail: cwd,
		})
	}

	report.Available = a.IsAvailable()
	return report
}

// Dispatch builds a prompt from the envelope and runs the backend. Process
// failures are reported through Success=false, never as an error return.
func (a *ProcessAdapter) Dispatch(ctx context.Context, envelope *types.BridgeEnvelope, dctx *types.DispatchContext) (*types.BridgeDispatchResult, error) {
	prompt := buildPrompt(envelope, dctx)

	argv, route := a.resolveCommand()
	if argv == nil {
		a.metrics.IncDispatch(false)
		return &types.BridgeDispatchResult{
			Success:   false,
			RawOutput: fmt.Sprintf("%s is not invocable: %s not on PATH and no shim available", a.spec.Name, a.spec.Binary),
			ExitCode:  -1,
			Metadata:  map[string]string{"route": "none"},
		}, nil
	}
	argv = append(argv, a.spec.Args...)
	argv = append(argv, prompt)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dctx.Workdir

	out, err := cmd.CombinedOutput()
	output := iox.Truncate(string(out), maxDispatchOutput)

	result := &types.BridgeDispatchResult{
		Success:   err == nil,
		RawOutput: output,
		ExitCode:  0,
		Metadata:  map[string]string{"route": route, "binary": argv[0]},
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			// The process never ran (start failure, context cancellation).
			result.ExitCode = -1
			if output == "" {
				result.RawOutput = err.Error()
			} else {
				result.RawOutput = output + "\n" + err.Error()
			}
		}
	}

	a.logger.Debug("backend dispatch finished", map[string]any{
		"adapter":   a.spec.Name,
		"contract":  envelope.ContractID,
		"step":      envelope.StepID,
		"route":     route,
		"exit_code": result.ExitCode,
		"success":   result.Success,
	})
	a.metrics.IncDispatch(result.Success)

	return result, nil
}

// resolveCommand picks the native binary when present, otherwise the shim.
// Returns nil when neither resolves.
func (a *ProcessAdapter) resolveCommand() ([]string, string) {
	if _, err := a.lookPath(a.spec.Binary); err == nil {
		return []string{a.spec.Binary}, "native"
	}
	if len(a.spec.Shim) > 0 {
		if _, err := a.lookPath(a.spec.Shim[0]); err == nil {
			argv := make([]string, len(a.spec.Shim))
			copy(argv, a.spec.Shim)
			return argv, "shim"
		}
	}
	return nil, ""
}

// buildPrompt renders the instruction text handed to the backend process.
func buildPrompt(envelope *types.BridgeEnvelope, dctx *types.DispatchContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Advance stage %q of contract %s, step %s.\n\n", envelope.Stage, envelope.ContractID, envelope.StepID)
	fmt.Fprintf(&b, "Task: %s\n", envelope.Summary)
	if len(envelope.VerifyCommands) > 0 {
		b.WriteString("\nVerify the result with:\n")
		for _, cmd := range envelope.VerifyCommands {
			fmt.Fprintf(&b, "  %s\n", cmd)
		}
	}
	if dctx.DryRun {
		b.WriteString("\nDry run: describe the intended changes without applying them.\n")
	}
	return b.String()
}

// Verify ProcessAdapter implements the adapter boundary.
var _ Adapter = (*ProcessAdapter)(nil)
