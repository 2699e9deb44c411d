package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kailas-cloud/serpintel/internal/repository/record"
)

// runCLI executes the root command against a minimal fixture-backed config.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "test.yaml")
	cfg := "serp:\n  provider: fixture\nlogging:\n  level: error\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--env", "test", "--config", cfgPath}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "", "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.HasPrefix(out, "serpintel dev") {
		t.Errorf("version output = %q", out)
	}
}

func TestAnalyzeCommand_Table(t *testing.T) {
	out, err := runCLI(t, "", "analyze", "funny cat shirt", "--max-results", "5")
	if err != nil {
		t.Fatalf("analyze error = %v", err)
	}
	for _, want := range []string{"funny cat shirt", "Main keyword", "shopping_ads"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestAnalyzeCommand_JSON(t *testing.T) {
	out, err := runCLI(t, "", "analyze", "graphic tee", "--json", "--classifier", "basic")
	if err != nil {
		t.Fatalf("analyze error = %v", err)
	}
	var got record.Analysis
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if got.SearchTerm != "graphic tee" {
		t.Errorf("search_term = %q", got.SearchTerm)
	}
	if got.ID == "" {
		t.Error("id is empty")
	}
	if got.RawData != nil {
		t.Error("raw data should be stripped from CLI output")
	}
}

func TestAnalyzeCommand_InvalidTerm(t *testing.T) {
	if _, err := runCLI(t, "", "analyze", "   "); err == nil {
		t.Fatal("expected error for blank term")
	}
}

func TestAnalyzeCommand_UnknownClassifier(t *testing.T) {
	if _, err := runCLI(t, "", "analyze", "cat shirt", "--classifier", "magic"); err == nil {
		t.Fatal("expected error for unknown classifier")
	}
}

const recsJSON = `[
  {"tactic_type": "ppc_strategy", "description": "Target shopping ads at cat shirt buyers", "priority": 1, "confidence": 0.9},
  {"tactic_type": "content_creation", "description": "Create a buying guide for cat shirt gifts", "priority": 2, "confidence": 0.9}
]`

func TestPrioritizeCommand(t *testing.T) {
	out, err := runCLI(t, recsJSON, "prioritize", "--intent", "informational", "--json")
	if err != nil {
		t.Fatalf("prioritize error = %v", err)
	}
	var got []record.Recommendation
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Tactic != "content_creation" || got[0].Priority != 1 {
		t.Errorf("first = %s p%d, want content_creation p1", got[0].Tactic, got[0].Priority)
	}
	if got[1].Tactic != "ppc_strategy" || got[1].Priority != 2 {
		t.Errorf("second = %s p%d, want ppc_strategy p2", got[1].Tactic, got[1].Priority)
	}
}

func TestPrioritizeCommand_Table(t *testing.T) {
	out, err := runCLI(t, recsJSON, "prioritize", "--intent", "transactional")
	if err != nil {
		t.Fatalf("prioritize error = %v", err)
	}
	if !strings.Contains(out, "ppc_strategy") || !strings.Contains(out, "content_creation") {
		t.Errorf("table missing tactics:\n%s", out)
	}
}

func TestPrioritizeCommand_Errors(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
	}{
		{"missing intent", recsJSON, []string{"prioritize"}},
		{"unknown intent", recsJSON, []string{"prioritize", "--intent", "curious"}},
		{"bad json", "{", []string{"prioritize", "--intent", "informational"}},
		{"invalid tactic", `[{"tactic_type":"nope","description":"Create a guide","priority":1,"confidence":0.5}]`,
			[]string{"prioritize", "--intent", "informational"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCLI(t, tt.stdin, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestMigrateCommand_RequiresDatabase(t *testing.T) {
	_, err := runCLI(t, "", "migrate")
	if err == nil || !strings.Contains(err.Error(), "database.dsn") {
		t.Fatalf("migrate error = %v, want database.dsn error", err)
	}
}
