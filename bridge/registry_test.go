package bridge_test

import (
	"testing"

	"github.com/concord-run/concord/bridge"
	"github.com/concord-run/concord/types"
)

func defaultRegistry(t *testing.T) *bridge.Registry {
	t.Helper()
	r, err := bridge.NewDefaultRegistry(nil, nil)
	if err != nil {
		t.Fatalf("NewDefaultRegistry: %v", err)
	}
	return r
}

func TestRegistry_DefaultComposition(t *testing.T) {
	r := defaultRegistry(t)

	want := []string{"claude-code", "codex", "opencode", "cursor", "cline", "vscode", "antigravity"}
	adapters := r.List()
	if len(adapters) != len(want) {
		t.Fatalf("List() returned %d adapters, want %d", len(adapters), len(want))
	}
	for i, name := range want {
		if adapters[i].Name() != name {
			t.Errorf("adapter[%d] = %s, want %s", i, adapters[i].Name(), name)
		}
	}
}

func TestRegistry_Find(t *testing.T) {
	r := defaultRegistry(t)

	a, ok := r.Find("codex")
	if !ok {
		t.Fatal("Find(codex) returned none")
	}
	if a.Name() != "codex" {
		t.Errorf("Name() = %s, want codex", a.Name())
	}
	if a.Kind() != types.AdapterKindExecutor {
		t.Errorf("Kind() = %s, want executor", a.Kind())
	}

	if _, ok := r.Find("not-a-real-adapter"); ok {
		t.Error("Find(not-a-real-adapter) should return none")
	}
}

func TestRegistry_RejectsDuplicateNames(t *testing.T) {
	a, err := bridge.NewFileDropAdapter(bridge.FileDropSpec{Name: "twin", Dir: ".twin"}, nil, nil)
	if err != nil {
		t.Fatalf("NewFileDropAdapter: %v", err)
	}
	b, err := bridge.NewFileDropAdapter(bridge.FileDropSpec{Name: "twin", Dir: ".other"}, nil, nil)
	if err != nil {
		t.Fatalf("NewFileDropAdapter: %v", err)
	}

	if _, err := bridge.NewRegistry(a, b); err == nil {
		t.Error("NewRegistry should reject duplicate adapter names")
	}
}

func TestRegistry_Matrix(t *testing.T) {
	r := defaultRegistry(t)

	rows := r.Matrix()
	if len(rows) != 7 {
		t.Fatalf("Matrix() returned %d rows, want 7", len(rows))
	}

	byName := make(map[string]bridge.MatrixRow, len(rows))
	for _, row := range rows {
		byName[row.Name] = row
	}

	cursor := byName["cursor"]
	if cursor.Kind != string(types.AdapterKindIDEBridge) {
		t.Errorf("cursor kind = %s, want ide-bridge", cursor.Kind)
	}
	if cursor.Support != string(types.SupportBridge) {
		t.Errorf("cursor support = %s, want bridge", cursor.Support)
	}
	if !cursor.Available {
		t.Error("file-drop bridges are always available")
	}

	cc := byName["claude-code"]
	if cc.Kind != string(types.AdapterKindExecutor) {
		t.Errorf("claude-code kind = %s, want executor", cc.Kind)
	}
	if len(cc.Capabilities) == 0 {
		t.Error("claude-code capabilities empty")
	}
}
