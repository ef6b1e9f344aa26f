package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/viewsplit/pkg/config"
	splitio "github.com/matzehuels/viewsplit/pkg/io"
)

const testDataset = `{
  "timepoints": [0],
  "entities": [
    {"id": 0, "size": [1000, 300], "tile": {"id": 3}},
    {"id": 1, "size": [400, 300], "tile": {"id": 4}}
  ],
  "views": [
    {"timepoint": 0, "entity": 0, "transforms": [{"name": "calibration", "matrix": [1,0,0, 0,1,0]}]},
    {"timepoint": 0, "entity": 1, "transforms": [{"name": "calibration", "matrix": [1,0,0, 0,1,0]}]}
  ],
  "pyramids": [{"entity": 0, "factors": [[1, 1], [2, 2], [4, 4]]}]
}`

// runCLI executes args against a fresh root command with isolated config and
// cache directories and returns what the command printed.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	var buf bytes.Buffer
	stdout = &buf
	t.Cleanup(func() { stdout = os.Stdout })

	root := New(&bytes.Buffer{}, log.InfoLevel).RootCommand()
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	err := root.Execute()
	return buf.String(), err
}

func writeDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.json")
	if err := os.WriteFile(path, []byte(testDataset), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSplitCommand(t *testing.T) {
	input := writeDataset(t)
	output := filepath.Join(t.TempDir(), "out.json")

	printed, err := runCLI(t, "split", input, "-o", output, "--target", "600,300", "--overlap", "100,0")
	if err != nil {
		t.Fatalf("split error = %v", err)
	}
	if !strings.Contains(printed, "3 tiles") {
		t.Errorf("output = %q, want tile count", printed)
	}

	res, err := splitio.ImportResult(output)
	if err != nil {
		t.Fatalf("ImportResult() error = %v", err)
	}
	if diff := cmp.Diff([]int{0, 1}, res.Map.Tiles(0)); diff != "" {
		t.Errorf("Tiles(0) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{2}, res.Map.Tiles(1)); diff != "" {
		t.Errorf("Tiles(1) mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitCommandDefaultOutput(t *testing.T) {
	input := writeDataset(t)

	if _, err := runCLI(t, "split", input, "--no-cache", "--target", "600,300", "--overlap", "100,0"); err != nil {
		t.Fatalf("split error = %v", err)
	}
	if _, err := os.Stat(strings.TrimSuffix(input, ".json") + "_split.json"); err != nil {
		t.Errorf("default output missing: %v", err)
	}
}

func TestSplitCommandErrors(t *testing.T) {
	input := writeDataset(t)

	if _, err := runCLI(t, "split", input, "--target", "598,300", "--overlap", "100,0"); err == nil {
		t.Error("unaligned target accepted")
	}
	if _, err := runCLI(t, "split", filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing dataset accepted")
	}
}

func TestGraphCommand(t *testing.T) {
	input := writeDataset(t)
	result := filepath.Join(t.TempDir(), "out.json")
	if _, err := runCLI(t, "split", input, "-o", result, "--target", "600,300", "--overlap", "100,0"); err != nil {
		t.Fatalf("split error = %v", err)
	}

	dot := filepath.Join(t.TempDir(), "map.dot")
	if _, err := runCLI(t, "graph", result, "-f", "dot", "-o", dot, "--detailed"); err != nil {
		t.Fatalf("graph error = %v", err)
	}
	data, err := os.ReadFile(dot)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("digraph")) {
		t.Errorf("graph output = %.40q, want DOT", data)
	}

	if _, err := runCLI(t, "graph", result, "-f", "pdf"); err == nil {
		t.Error("pdf format accepted")
	}
}

func TestPlanCommand(t *testing.T) {
	printed, err := runCLI(t, "plan", "--size", "1000,300", "--target", "250,300", "--overlap", "50,0")
	if err != nil {
		t.Fatalf("plan error = %v", err)
	}
	if !strings.Contains(printed, "5 tiles") {
		t.Errorf("plan output = %q, want 5 tiles", printed)
	}
	if !strings.Contains(printed, "[800, 999]") {
		t.Errorf("plan output = %q, want last window", printed)
	}
}

func TestStepsCommand(t *testing.T) {
	printed, err := runCLI(t, "steps", writeDataset(t))
	if err != nil {
		t.Fatalf("steps error = %v", err)
	}
	if !strings.Contains(printed, "[4 4]") {
		t.Errorf("steps output = %q, want [4 4]", printed)
	}
}

func TestSplitFlagsOverrideConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Split.TargetSize = []int64{100, 100}
	cfg.Split.Overlap = []int64{10, 10}
	cfg.Split.Optimize = true

	var flags splitFlags
	cmd := &cobra.Command{Use: "test"}
	flags.register(cmd)

	opts := flags.options(cfg)
	if diff := cmp.Diff(cfg.Split.TargetSize, opts.TargetSize); diff != "" {
		t.Errorf("unset flags should keep config values (-want +got):\n%s", diff)
	}
	if !opts.Optimize {
		t.Error("Optimize from config lost")
	}

	if err := cmd.Flags().Set("target", "200,200"); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Set("optimize", "false"); err != nil {
		t.Fatal(err)
	}
	opts = flags.options(cfg)
	if diff := cmp.Diff([]int64{200, 200}, opts.TargetSize); diff != "" {
		t.Errorf("flag did not override config (-want +got):\n%s", diff)
	}
	if opts.Optimize {
		t.Error("--optimize=false did not override config")
	}
	if diff := cmp.Diff(cfg.Split.Overlap, opts.Overlap); diff != "" {
		t.Errorf("overlap changed (-want +got):\n%s", diff)
	}
}

func TestFormatWindows(t *testing.T) {
	plan, err := runCLI(t, "plan", "--size", "10000", "--target", "250", "--overlap", "50")
	if err != nil {
		t.Fatalf("plan error = %v", err)
	}
	if !strings.Contains(plan, "…") {
		t.Errorf("long window list not elided: %q", plan)
	}
}

func TestResultModel(t *testing.T) {
	input := writeDataset(t)
	result := filepath.Join(t.TempDir(), "out.json")
	if _, err := runCLI(t, "split", input, "-o", result, "--target", "600,300", "--overlap", "100,0"); err != nil {
		t.Fatalf("split error = %v", err)
	}
	res, err := splitio.ImportResult(result)
	if err != nil {
		t.Fatal(err)
	}

	var m tea.Model = NewResultModel(res)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if got := m.(ResultModel).Cursor; got != 2 {
		t.Errorf("Cursor = %d, want 2 (clamped)", got)
	}
	if view := m.View(); !strings.Contains(view, "3 tiles from 2 entities") {
		t.Errorf("View() = %q", view)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Error("q should quit")
	}
}
