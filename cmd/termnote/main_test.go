package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cli struct {
	t      *testing.T
	dir    string
	config string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.toml")
	body := "state_path = \"" + filepath.Join(dir, "state.json") + "\"\n" +
		"log_path = \"" + filepath.Join(dir, "termnote.log") + "\"\n"
	if err := os.WriteFile(cfg, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &cli{t: t, dir: dir, config: cfg}
}

// exec runs one invocation and returns stdout.
func (c *cli) exec(args ...string) (string, error) {
	c.t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", c.config}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (c *cli) mustExec(args ...string) string {
	c.t.Helper()
	out, err := c.exec(args...)
	if err != nil {
		c.t.Fatalf("termnote %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func TestListShowsDefaultTabs(t *testing.T) {
	c := newCLI(t)
	out := c.mustExec("list")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 21 {
		t.Fatalf("list printed %d lines, want 21", len(lines))
	}
	if !strings.Contains(lines[8], "git status") || !strings.HasSuffix(lines[8], "terminal-9") {
		t.Fatalf("line 9 = %q", lines[8])
	}
}

func TestAddPersistsAcrossInvocations(t *testing.T) {
	c := newCLI(t)
	if out := c.mustExec("add", "make", "test"); out != "Tab added: make test\n" {
		t.Fatalf("add output = %q", out)
	}
	out := c.mustExec("list")
	if !strings.Contains(out, " 22   make test") {
		t.Fatalf("list missing new tab:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(c.dir, "state.json")); err != nil {
		t.Fatalf("state file not written: %v", err)
	}
}

func TestAddBlankFails(t *testing.T) {
	c := newCLI(t)
	_, err := c.exec("add", "  ")
	if err == nil || err.Error() != "Tab name cannot be empty." {
		t.Fatalf("err = %v, want validation failure", err)
	}
}

func TestRenameAndDeleteByPosition(t *testing.T) {
	c := newCLI(t)
	c.mustExec("rename", "1", "ls", "/tmp")
	if out := c.mustExec("list"); !strings.Contains(out, "ls /tmp") {
		t.Fatalf("rename not applied:\n%s", out)
	}
	c.mustExec("delete", "ls /tmp")
	if out := c.mustExec("list"); strings.Contains(out, "ls /tmp") {
		t.Fatalf("delete not applied:\n%s", out)
	}
	if _, err := c.exec("delete", "99"); err == nil {
		t.Fatalf("expected error for missing position")
	}
}

func TestFavoritesLifecycle(t *testing.T) {
	c := newCLI(t)
	if out := c.mustExec("fav", "list"); out != "Favorites is empty\n" {
		t.Fatalf("fav list = %q", out)
	}
	c.mustExec("fav", "add", "terminal-9")
	c.mustExec("fav", "add", "git pull")
	out := c.mustExec("fav", "list")
	want := "1  git status  terminal-9\n2  git pull  terminal-10\n"
	if out != want {
		t.Fatalf("fav list = %q, want %q", out, want)
	}
	if out := c.mustExec("list"); !strings.Contains(out, "*") {
		t.Fatalf("list should mark favorites:\n%s", out)
	}

	c.mustExec("fav", "remove", "1")
	out = c.mustExec("fav", "list")
	if out != "1  git pull  terminal-10\n" {
		t.Fatalf("fav list after remove = %q", out)
	}
	if _, err := c.exec("fav", "remove", "4"); err == nil {
		t.Fatalf("expected error for empty slot")
	}
}

func TestFavoriteCapacityFails(t *testing.T) {
	c := newCLI(t)
	for i := 1; i <= 5; i++ {
		c.mustExec("fav", "add", string(rune('0'+i)))
	}
	_, err := c.exec("fav", "add", "6")
	if err == nil || err.Error() != "Favorites can have up to 5 tabs only." {
		t.Fatalf("err = %v, want capacity warning", err)
	}
}

func TestFavRunRejectsBadSlot(t *testing.T) {
	c := newCLI(t)
	for _, arg := range []string{"0", "6", "x"} {
		if _, err := c.exec("fav", "run", arg); err == nil {
			t.Fatalf("fav run %s: expected error", arg)
		}
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	src := newCLI(t)
	src.mustExec("add", "uptime")
	path := filepath.Join(src.dir, "tabs.json")
	if out := src.mustExec("export", path); out != "Tab commands exported!\n" {
		t.Fatalf("export output = %q", out)
	}

	dst := newCLI(t)
	if out := dst.mustExec("import", path); out != "Tab commands imported! (1 new)\n" {
		t.Fatalf("import output = %q", out)
	}
	if out := dst.mustExec("import", path); out != "No new tab commands to import\n" {
		t.Fatalf("second import output = %q", out)
	}
}

func TestImportRejectsBadDocument(t *testing.T) {
	c := newCLI(t)
	path := filepath.Join(c.dir, "bad.json")
	if err := os.WriteFile(path, []byte(`{"type":"Other","tabs":[]}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := c.exec("import", path)
	if err == nil || err.Error() != "File format incorrect, cannot import." {
		t.Fatalf("err = %v, want format failure", err)
	}
}

func TestLockBlocksRun(t *testing.T) {
	c := newCLI(t)
	if out := c.mustExec("lock"); out != "Terminal locked\n" {
		t.Fatalf("lock output = %q", out)
	}
	_, err := c.exec("run", "1")
	if err == nil || !strings.Contains(err.Error(), "locked") {
		t.Fatalf("err = %v, want locked", err)
	}
	if out := c.mustExec("unlock"); out != "Terminal unlocked\n" {
		t.Fatalf("unlock output = %q", out)
	}
}

func TestUnreadableStateFallsBackToDefaults(t *testing.T) {
	bodies := map[string]string{
		"truncated":       `{"tabs":[`,
		"tabs wrong":      `{"tabs":{"label":"ls"}}`,
		"favorites wrong": `{"favorites":5}`,
		"locked wrong":    `{"locked":"yes"}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			for _, args := range [][]string{{"list"}, {"reset", "--yes"}} {
				c := newCLI(t)
				path := filepath.Join(c.dir, "state.json")
				if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
					t.Fatalf("write state: %v", err)
				}
				c.mustExec(args...)
				out := c.mustExec("list")
				if lines := strings.Split(strings.TrimSpace(out), "\n"); len(lines) != 21 {
					t.Fatalf("after %v list printed %d lines, want 21:\n%s", args, len(lines), out)
				}
			}
		})
	}
}

func TestResetRequiresConfirmation(t *testing.T) {
	c := newCLI(t)
	c.mustExec("add", "uptime")
	if _, err := c.exec("reset"); err == nil {
		t.Fatalf("reset without --yes should fail")
	}
	c.mustExec("reset", "--yes")
	if out := c.mustExec("list"); strings.Contains(out, "uptime") {
		t.Fatalf("reset kept custom tab:\n%s", out)
	}
}

func TestEphemeralLeavesNoState(t *testing.T) {
	c := newCLI(t)
	c.mustExec("--ephemeral", "add", "uptime")
	if _, err := os.Stat(filepath.Join(c.dir, "state.json")); !os.IsNotExist(err) {
		t.Fatalf("state file written in ephemeral mode: %v", err)
	}
}

func TestVersion(t *testing.T) {
	c := newCLI(t)
	if out := c.mustExec("version"); out != "termnote dev\n" {
		t.Fatalf("version = %q", out)
	}
}

func TestLogsShowsCommandActivity(t *testing.T) {
	c := newCLI(t)
	c.mustExec("add", "uptime")
	out := c.mustExec("logs", "-n", "0")
	if !strings.Contains(out, "INFO") {
		t.Fatalf("logs output missing entries:\n%s", out)
	}
	warnOnly := c.mustExec("logs", "--level", "warn")
	if strings.Contains(warnOnly, "INFO ") {
		t.Fatalf("level filter ignored:\n%s", warnOnly)
	}
}
