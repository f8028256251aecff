package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nvandessel/conjoint/internal/models"
	"github.com/nvandessel/conjoint/internal/session"
	"github.com/nvandessel/conjoint/internal/store"
)

// isolateHome sets HOME to a temp directory to avoid touching real ~/.conjoint/
// MUST be called for any test that loads config
func isolateHome(t *testing.T, tmpDir string) {
	t.Helper()
	tmpHome := filepath.Join(tmpDir, "home")
	if err := os.MkdirAll(tmpHome, 0700); err != nil {
		t.Fatalf("Failed to create temp home: %v", err)
	}
	t.Setenv("HOME", tmpHome)
	for _, v := range []string{"CONJOINT_METHOD", "CONJOINT_SEED", "CONJOINT_RESPONDENTS", "CONJOINT_DRIVER", "CONJOINT_LISTEN", "CONJOINT_LOG_LEVEL"} {
		t.Setenv(v, "")
	}
}

// run executes the root command with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func setup(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	isolateHome(t, root)
	return root
}

func writeStudy(t *testing.T, root string) string {
	t.Helper()
	path := filepath.Join(root, "coffee.yaml")
	data := "attrlevels:\n  price: [low, mid, high]\n  brand: 2\nn_tasks: 2\nn_concepts: 2\nn_versions: 2\nnone_option: true\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func designID(t *testing.T, root, studyPath string, extra ...string) session.DesignView {
	t.Helper()
	out, err := run(t, append([]string{"--root", root, "--json", "design", studyPath}, extra...)...)
	if err != nil {
		t.Fatalf("design failed: %v", err)
	}
	var v session.DesignView
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("design --json output is not JSON: %v\n%s", err, out)
	}
	return v
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version", "--json")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	var got map[string]string
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got["version"] != version {
		t.Errorf("version = %q, want %q", got["version"], version)
	}
}

func TestInitCmd(t *testing.T) {
	root := setup(t)

	out, err := run(t, "--root", root, "init")
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if !strings.Contains(out, "Wrote example study") {
		t.Errorf("init output = %q", out)
	}
	if _, err := os.Stat(store.DBPath(root)); err != nil {
		t.Errorf("database not created: %v", err)
	}

	// The example study must be usable as-is.
	v := designID(t, root, filepath.Join(root, "study.yaml"))
	if strings.Join(v.Columns[3:], ",") != "brand,price,size" {
		t.Errorf("example columns = %v", v.Columns)
	}

	// A second init keeps the existing study.
	out, err = run(t, "--root", root, "--json", "init")
	if err != nil {
		t.Fatalf("second init failed: %v", err)
	}
	if !strings.Contains(out, `"study_created": false`) {
		t.Errorf("second init should not overwrite the study: %s", out)
	}
}

func TestDesignCmd(t *testing.T) {
	root := setup(t)
	studyPath := writeStudy(t, root)

	v := designID(t, root, studyPath, "--seed", "42")
	if v.Seed != 42 || v.Method != "random" {
		t.Errorf("seed/method = %d/%s", v.Seed, v.Method)
	}
	if len(v.Rows) != 2*2*3 {
		t.Errorf("rows = %d, want 12", len(v.Rows))
	}
	if strings.Join(v.Columns, ",") != "version,task,concept,price,brand" {
		t.Errorf("columns = %v", v.Columns)
	}

	again := designID(t, root, studyPath, "--seed", "42")
	for i := range v.Rows {
		for j := range v.Rows[i] {
			if v.Rows[i][j] != again.Rows[i][j] {
				t.Fatalf("same seed produced a different design at row %d", i)
			}
		}
	}
}

func TestDesignCmd_TextAndOut(t *testing.T) {
	root := setup(t)
	studyPath := writeStudy(t, root)
	outFile := filepath.Join(root, "out", "design.csv")

	out, err := run(t, "--root", root, "design", studyPath, "--method", "orthogonal", "--out", outFile)
	if err != nil {
		t.Fatalf("design failed: %v", err)
	}
	if !strings.Contains(out, "method=orthogonal") || !strings.Contains(out, "Wrote "+outFile) {
		t.Errorf("unexpected output:\n%s", out)
	}
	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("--out file missing: %v", err)
	}
	if !strings.HasPrefix(string(data), "version,task,concept,price,brand\n") {
		t.Errorf("csv header = %q", strings.SplitN(string(data), "\n", 2)[0])
	}
}

func TestDesignCmd_Errors(t *testing.T) {
	root := setup(t)
	studyPath := writeStudy(t, root)

	if _, err := run(t, "--root", root, "design", studyPath, "--method", "latin"); !errors.Is(err, models.ErrConfiguration) {
		t.Errorf("unknown method error = %v, want ErrConfiguration", err)
	}
	if _, err := run(t, "--root", root, "design", studyPath, "--format", "xls", "--out", "x"); !errors.Is(err, models.ErrConfiguration) {
		t.Errorf("unknown format error = %v, want ErrConfiguration", err)
	}
	if _, err := run(t, "--root", root, "design", filepath.Join(root, "missing.yaml")); err == nil {
		t.Error("missing study file should fail")
	}
}

func TestSimulateCmd(t *testing.T) {
	root := setup(t)
	d := designID(t, root, writeStudy(t, root))

	out, err := run(t, "--root", root, "--json", "simulate", d.ID, "--driver", "price", "--respondents", "5", "--shares")
	if err != nil {
		t.Fatalf("simulate failed: %v", err)
	}
	var got struct {
		Simulation session.ResponseView `json:"simulation"`
		Shares     []json.RawMessage    `json:"shares"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if got.Simulation.Driver != "price" || len(got.Simulation.Rows) != 5 {
		t.Errorf("simulation = %+v", got.Simulation)
	}
	if len(got.Shares) != 2 {
		t.Errorf("shares for %d tasks, want 2", len(got.Shares))
	}

	text, err := run(t, "--root", root, "simulate", d.ID, "--shares")
	if err != nil {
		t.Fatalf("simulate (text) failed: %v", err)
	}
	if !strings.Contains(text, "respid_0") || !strings.Contains(text, "Choice shares:") || !strings.Contains(text, "task_1:") {
		t.Errorf("unexpected text output:\n%s", text)
	}
}

func TestSimulateCmd_Errors(t *testing.T) {
	root := setup(t)
	d := designID(t, root, writeStudy(t, root))

	if _, err := run(t, "--root", root, "simulate", "d-missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("unknown design error = %v, want ErrNotFound", err)
	}
	if _, err := run(t, "--root", root, "simulate", d.ID, "--driver", "color"); !errors.Is(err, models.ErrConfiguration) {
		t.Errorf("unknown driver error = %v, want ErrConfiguration", err)
	}
}

func TestRunsExportBalance(t *testing.T) {
	root := setup(t)
	d := designID(t, root, writeStudy(t, root))

	simOut, err := run(t, "--root", root, "--json", "simulate", d.ID)
	if err != nil {
		t.Fatalf("simulate failed: %v", err)
	}
	var sim struct {
		Simulation session.ResponseView `json:"simulation"`
	}
	if err := json.Unmarshal([]byte(simOut), &sim); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	out, err := run(t, "--root", root, "--json", "runs")
	if err != nil {
		t.Fatalf("runs failed: %v", err)
	}
	var runs struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal([]byte(out), &runs); err != nil || runs.Count != 2 {
		t.Errorf("runs count = %d (err %v), want 2", runs.Count, err)
	}

	out, err = run(t, "--root", root, "runs", sim.Simulation.ID)
	if err != nil || !strings.Contains(out, "Simulation "+sim.Simulation.ID) {
		t.Errorf("runs <id> = %q, %v", out, err)
	}

	out, err = run(t, "--root", root, "--json", "export", d.ID, "--responses", sim.Simulation.ID, "--format", "jsonl")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	var exp struct {
		Dir string `json:"dir"`
	}
	if err := json.Unmarshal([]byte(out), &exp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	for _, f := range []string{"design.jsonl", "responses.jsonl", "session.json"} {
		if _, err := os.Stat(filepath.Join(exp.Dir, f)); err != nil {
			t.Errorf("export missing %s: %v", f, err)
		}
	}

	out, err = run(t, "--root", root, "balance", d.ID)
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if !strings.Contains(out, "price") || !strings.Contains(out, "high") {
		t.Errorf("balance output:\n%s", out)
	}
}

func TestRunsCmd_Empty(t *testing.T) {
	root := setup(t)
	out, err := run(t, "--root", root, "runs")
	if err != nil {
		t.Fatalf("runs failed: %v", err)
	}
	if !strings.Contains(out, "No runs yet") {
		t.Errorf("runs output = %q", out)
	}
}

func TestLogLevelFlag(t *testing.T) {
	root := setup(t)
	studyPath := writeStudy(t, root)

	if _, err := run(t, "--root", root, "--log-level", "loud", "design", studyPath); err == nil {
		t.Error("invalid --log-level should fail")
	}
	if _, err := run(t, "--root", root, "--log-level", "debug", "design", studyPath); err != nil {
		t.Fatalf("design with debug logging failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(store.DataDir(root), "trace.jsonl")); err != nil {
		t.Errorf("debug level should write the trace log: %v", err)
	}
}

func TestPruneCmd(t *testing.T) {
	root := setup(t)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)
	var dirs []string
	for i := range 4 {
		dir, err := store.EnsureStudyDir(root, "coffee", base.Add(time.Duration(i)*time.Hour))
		if err != nil {
			t.Fatal(err)
		}
		dirs = append(dirs, dir)
	}

	out, err := run(t, "--root", root, "prune", "--keep", "2", "--dry-run")
	if err != nil {
		t.Fatalf("prune --dry-run failed: %v", err)
	}
	if !strings.Contains(out, "Would remove") {
		t.Errorf("dry-run output = %q", out)
	}
	for _, d := range dirs {
		if _, err := os.Stat(d); err != nil {
			t.Errorf("dry run removed %s", d)
		}
	}

	out, err = run(t, "--root", root, "--json", "prune", "--keep", "2")
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	var resp struct {
		Removed []string `json:"removed"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("prune --json output: %v\n%s", err, out)
	}
	if len(resp.Removed) != 2 {
		t.Fatalf("removed = %v, want the 2 oldest", resp.Removed)
	}
	for i, d := range dirs {
		_, err := os.Stat(d)
		if gone := os.IsNotExist(err); gone != (i < 2) {
			t.Errorf("%s: gone = %v", filepath.Base(d), gone)
		}
	}

	if _, err := run(t, "--root", root, "prune", "--max-age", "soon"); err == nil {
		t.Error("invalid --max-age should fail")
	}
}
