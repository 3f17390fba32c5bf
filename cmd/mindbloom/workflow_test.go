package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// TestEndToEndWorkflow drives a built binary through a full session. Point MINDBLOOM_BIN at
// the binary, or build it into ../../bin first.
func TestEndToEndWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping end-to-end test in short mode")
	}

	cliPath := os.Getenv("MINDBLOOM_BIN")
	if cliPath == "" {
		cliPath, _ = filepath.Abs(filepath.Join("..", "..", "bin", "mindbloom"))
	}
	if _, err := os.Stat(cliPath); os.IsNotExist(err) {
		t.Skipf("CLI binary not found at %s; build it first", cliPath)
	}

	tempDir := t.TempDir()
	var env []string
	for _, e := range os.Environ() {
		if strings.HasPrefix(e, "HOME=") || strings.HasPrefix(e, "MINDBLOOM_") || strings.HasPrefix(e, "SUPABASE_") {
			continue
		}
		env = append(env, e)
	}
	env = append(env,
		fmt.Sprintf("HOME=%s", tempDir),
		fmt.Sprintf("MINDBLOOM_STORE=%s", filepath.Join(tempDir, "mindbloom", "mindbloom.db")),
		"MINDBLOOM_USER=e2e",
		"MINDBLOOM_TZ=UTC",
	)

	run := func(args ...string) string {
		t.Helper()
		cmd := exec.Command(cliPath, args...)
		cmd.Env = env
		cmd.Dir = tempDir
		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			t.Fatalf("mindbloom %s failed: %v\nstdout: %s\nstderr: %s", strings.Join(args, " "), err, stdout.String(), stderr.String())
		}
		return stdout.String()
	}

	t.Log("Initializing storage...")
	run("init")

	t.Log("Writing a journal entry...")
	var entry struct {
		ID   string   `json:"id"`
		Tags []string `json:"tags"`
	}
	out := run("journal", "write", "Went for a long walk", "--mood", "calm", "--tags", "walk,outside", "--json")
	if err := json.Unmarshal([]byte(out), &entry); err != nil {
		t.Fatalf("journal write did not print JSON: %v\n%s", err, out)
	}
	if entry.ID == "" || len(entry.Tags) != 2 {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	if out := run("journal", "search", "walk"); !strings.Contains(out, "Journal Entry") {
		t.Errorf("search did not find the entry:\n%s", out)
	}

	t.Log("Logging moods...")
	run("mood", "log", "happy", "--notes", "sunny")
	run("mood", "log", "sad", "--date", "yesterday")

	var summary struct {
		TotalEntries int     `json:"totalEntries"`
		Average      float64 `json:"average"`
	}
	out = run("mood", "stats", "--days", "7", "--json")
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("mood stats did not print JSON: %v\n%s", err, out)
	}
	if summary.TotalEntries != 2 || summary.Average != 3 {
		t.Errorf("stats = %+v, want 2 entries averaging 3", summary)
	}

	if out := run("mood", "streak"); !strings.Contains(out, "2 day streak") {
		t.Errorf("streak output:\n%s", out)
	}

	if out := run("validate"); !strings.Contains(out, "No conflicts detected.") {
		t.Errorf("validate output:\n%s", out)
	}

	t.Log("Backing up...")
	run("backup", "create")
	if out := run("backup", "list"); !strings.Contains(out, "1 total") {
		t.Errorf("backup list output:\n%s", out)
	}

	run("journal", "delete", entry.ID, "--yes")
	if out := run("journal", "list"); !strings.Contains(out, "No journal entries") {
		t.Errorf("entry still listed after delete:\n%s", out)
	}
}
