package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/concord-run/concord/snapshot"
)

// stringArg extracts a required string argument.
func stringArg(args map[string]any, key string) (string, error) {
	raw, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing argument: %s", key)
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("argument %s must be a non-empty string", key)
	}
	return s, nil
}

// ContractValidateTool checks a contract document on disk.
type ContractValidateTool struct{}

func (ContractValidateTool) Name() string     { return "contract.validate" }
func (ContractValidateTool) Describe() string { return "validate a contract document by path" }

// Call parses the YAML document at args["path"] and reports structural
// problems without failing the tool call itself.
func (ContractValidateTool) Call(_ context.Context, args map[string]any) (map[string]any, error) {
	path, err := stringArg(args, "path")
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read contract: %w", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return map[string]any{
			"valid":    false,
			"problems": []string{fmt.Sprintf("not a YAML document: %v", err)},
		}, nil
	}

	var problems []string
	if _, ok := doc["id"]; !ok {
		problems = append(problems, "missing field: id")
	}
	steps, ok := doc["steps"].([]any)
	if !ok {
		problems = append(problems, "missing or non-list field: steps")
	} else if len(steps) == 0 {
		problems = append(problems, "steps is empty")
	}

	result := map[string]any{"valid": len(problems) == 0}
	if len(problems) > 0 {
		result["problems"] = problems
	} else {
		result["steps"] = len(steps)
	}
	return result, nil
}

// SnapshotCreateTool captures a workspace snapshot through the store.
type SnapshotCreateTool struct {
	Store snapshot.Store
}

func (SnapshotCreateTool) Name() string     { return "snapshot.create" }
func (SnapshotCreateTool) Describe() string { return "capture a labeled workspace snapshot" }

func (t SnapshotCreateTool) Call(ctx context.Context, args map[string]any) (map[string]any, error) {
	label, err := stringArg(args, "label")
	if err != nil {
		return nil, err
	}
	info, err := t.Store.Create(ctx, label)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"id":         info.ID,
		"label":      info.Label,
		"created_at": info.CreatedAt.Format(time.RFC3339),
	}, nil
}

// PlanGenerateTool derives a three-stage step plan from a goal statement.
type PlanGenerateTool struct{}

func (PlanGenerateTool) Name() string     { return "plan.generate" }
func (PlanGenerateTool) Describe() string { return "derive a step plan from a goal statement" }

func (PlanGenerateTool) Call(_ context.Context, args map[string]any) (map[string]any, error) {
	goal, err := stringArg(args, "goal")
	if err != nil {
		return nil, err
	}

	stages := []struct{ stage, summary string }{
		{"plan", "outline the changes needed to " + goal},
		{"implement", goal},
		{"verify", "verify the outcome of: " + goal},
	}

	steps := make([]map[string]any, 0, len(stages))
	for _, s := range stages {
		steps = append(steps, map[string]any{
			"id":      uuid.NewString(),
			"stage":   s.stage,
			"summary": s.summary,
		})
	}
	return map[string]any{"goal": goal, "steps": steps}, nil
}

// ProgressReadTool reads the step payloads a bridge adapter dropped.
type ProgressReadTool struct{}

func (ProgressReadTool) Name() string     { return "progress.read" }
func (ProgressReadTool) Describe() string { return "list materialized step payloads under a directory" }

func (ProgressReadTool) Call(_ context.Context, args map[string]any) (map[string]any, error) {
	dir, err := stringArg(args, "dir")
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(dir, "steps"))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{"steps": 0}, nil
		}
		return nil, fmt.Errorf("read progress: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		files = append(files, e.Name())
	}

	result := map[string]any{"steps": len(files)}
	if len(files) > 0 {
		result["files"] = files
	}
	return result, nil
}

// DefaultTools is the server's standard surface.
func DefaultTools(store snapshot.Store) []Tool {
	return []Tool{
		ContractValidateTool{},
		SnapshotCreateTool{Store: store},
		PlanGenerateTool{},
		ProgressReadTool{},
	}
}
