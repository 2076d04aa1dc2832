package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/sdejongh/sidediff/pkg/config"
	"github.com/sdejongh/sidediff/pkg/models"
	"github.com/sdejongh/sidediff/pkg/storage"
)

// cliResult captures one invocation of the command tree
type cliResult struct {
	code   int
	stdout string
	err    error
}

// runCLI executes the root command with an isolated home directory and
// records the exit code instead of terminating the test binary
func runCLI(t *testing.T, args ...string) cliResult {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	res := cliResult{code: -1}
	orig := exit
	exit = func(code int) { res.code = code }
	t.Cleanup(func() { exit = orig })

	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))

	res.err = root.Execute()
	res.stdout = out.String()
	return res
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}
}

func TestCompareCommand(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.txt": "one\ntwo\n",
		"b.txt": "one\ntwo\n",
		"c.txt": "one\nthree\n",
	})
	path := func(name string) string { return filepath.Join(dir, name) }

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  []string
	}{
		{
			name:     "Identical",
			args:     []string{"compare", path("a.txt"), path("b.txt")},
			wantCode: 0,
			wantOut:  []string{`<table class="basictable">`, `<td class="match">one</td>`},
		},
		{
			name:     "Different",
			args:     []string{"compare", "--format", "text", path("a.txt"), path("c.txt")},
			wantCode: 1,
			wantOut:  []string{"Status: different", "1 changed"},
		},
		{
			name:     "Titles",
			args:     []string{"compare", "--left-title", "L <1>", "--right-title", "R", path("a.txt"), path("c.txt")},
			wantCode: 1,
			wantOut:  []string{"<th>L&nbsp;&lt;1&gt;</th>", "<th>R</th>"},
		},
		{
			name:     "MissingRightIsEmpty",
			args:     []string{"compare", "--format", "json", path("a.txt"), path("absent.txt")},
			wantCode: 1,
			wantOut:  []string{`"equal": false`, `"left_only": 2`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, tt.args...)
			if res.err != nil {
				t.Fatalf("Execute() error = %v", res.err)
			}
			if res.code != tt.wantCode {
				t.Errorf("exit code = %d, want %d", res.code, tt.wantCode)
			}
			for _, want := range tt.wantOut {
				if !strings.Contains(res.stdout, want) {
					t.Errorf("output missing %q:\n%s", want, res.stdout)
				}
			}
		})
	}
}

func TestCompareCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "x"})
	a := filepath.Join(dir, "a.txt")

	tests := []struct {
		name string
		args []string
	}{
		{"OneArgument", []string{"compare", a}},
		{"NegativeTabWidth", []string{"compare", "--tab-width", "-1", a, a}},
		{"UnknownFormat", []string{"compare", "--format", "pdf", a, a}},
		{"RemoteWithoutSecret", []string{"compare", "--remote", "http://127.0.0.1:1", a, "a.txt"}},
		{"DirectoryArgument", []string{"compare", dir, a}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(config.SecretEnv, "")
			res := runCLI(t, tt.args...)
			if res.err == nil {
				t.Errorf("Execute() error = nil, want error")
			}
			if res.code != -1 {
				t.Errorf("exit called with %d, want no call", res.code)
			}
		})
	}
}

func TestCompareCommand_Out(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "x\n", "b.txt": "y\n"})
	out := filepath.Join(dir, "out", "diff.html")

	res := runCLI(t, "compare", "--out", out, "--format", "page",
		filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt"))
	if res.err != nil {
		t.Fatalf("Execute() error = %v", res.err)
	}
	if res.code != 1 {
		t.Errorf("exit code = %d, want 1", res.code)
	}
	if res.stdout != "" {
		t.Errorf("stdout = %q, want empty", res.stdout)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.HasPrefix(string(data), "<!DOCTYPE html>") {
		t.Errorf("output is not a page:\n%s", data)
	}
	if _, err := os.Stat(out + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temporary file left behind: %v", err)
	}
}

func TestCompareCommand_Remote(t *testing.T) {
	const secret = "s3cret"
	t.Setenv(config.SecretEnv, secret)

	peerDir := t.TempDir()
	writeFiles(t, peerDir, map[string]string{"conf/app.ini": "a=1\nb=2\n"})
	local, err := storage.NewLocal(peerDir)
	if err != nil {
		t.Fatalf("NewLocal() error = %v", err)
	}
	mux := http.NewServeMux()
	mux.Handle(storage.RawPrefix, storage.NewHandler(local, []byte(secret), 0, nil))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"app.ini": "a=1\nb=3\n"})

	res := runCLI(t, "compare", "--remote", srv.URL, "--format", "json",
		filepath.Join(dir, "app.ini"), "conf/app.ini")
	if res.err != nil {
		t.Fatalf("Execute() error = %v", res.err)
	}
	if res.code != 1 {
		t.Errorf("exit code = %d, want 1", res.code)
	}

	var got struct {
		RightTitle string `json:"right_title"`
		Stats      struct {
			Matched int `json:"matched"`
			Changed int `json:"changed"`
		} `json:"stats"`
	}
	if err := json.Unmarshal([]byte(res.stdout), &got); err != nil {
		t.Fatalf("Unmarshal() error = %v\n%s", err, res.stdout)
	}
	if got.Stats.Matched != 2 || got.Stats.Changed != 1 {
		t.Errorf("stats = %+v, want 2 matched, 1 changed", got.Stats)
	}
	if !strings.HasSuffix(got.RightTitle, ":conf/app.ini") {
		t.Errorf("right title = %q, want host-prefixed path", got.RightTitle)
	}
}

func TestCompareCommand_RemoteUnauthorized(t *testing.T) {
	peerDir := t.TempDir()
	writeFiles(t, peerDir, map[string]string{"a.txt": "x"})
	local, err := storage.NewLocal(peerDir)
	if err != nil {
		t.Fatalf("NewLocal() error = %v", err)
	}
	mux := http.NewServeMux()
	mux.Handle(storage.RawPrefix, storage.NewHandler(local, []byte("right"), 0, nil))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "x"})

	t.Setenv(config.SecretEnv, "wrong")
	res := runCLI(t, "compare", "--remote", srv.URL, filepath.Join(dir, "a.txt"), "a.txt")
	if res.err == nil {
		t.Fatalf("Execute() error = nil, want unauthorized")
	}
	if !strings.Contains(strings.ToLower(res.err.Error()), "unauthorized") {
		t.Errorf("error = %v, want unauthorized", res.err)
	}
}

func TestBatchCommand(t *testing.T) {
	left, right, out := t.TempDir(), t.TempDir(), t.TempDir()
	writeFiles(t, left, map[string]string{
		"same.txt":    "same\n",
		"changed.txt": "a\nb\n",
		"only-left":   "left\n",
		"skip.tmp":    "ignored\n",
	})
	writeFiles(t, right, map[string]string{
		"same.txt":    "same\n",
		"changed.txt": "a\nc\n",
		"sub/new.txt": "right\n",
	})

	res := runCLI(t, "batch", "--root", left, "--right", right, "--out", out, "--parallel", "2")
	if res.err != nil {
		t.Fatalf("Execute() error = %v", res.err)
	}
	if res.code != 1 {
		t.Errorf("exit code = %d, want 1", res.code)
	}
	for _, want := range []string{"different", "changed.txt", "missing-right", "only-left", "missing-left", "sub/new.txt"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("summary missing %q:\n%s", want, res.stdout)
		}
	}

	for _, name := range []string{"index.html", "report.json", "same.txt.html", "changed.txt.html", "sub/new.txt.html"} {
		if _, err := os.Stat(filepath.Join(out, filepath.FromSlash(name))); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(out, "report.json"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var report struct {
		Files []struct {
			Path string `json:"path"`
		} `json:"files"`
	}
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(report.Files) != 4 {
		t.Errorf("report has %d files, want 4 (excluded *.tmp)", len(report.Files))
	}
}

func TestBatchCommand_Identical(t *testing.T) {
	left, right, out := t.TempDir(), t.TempDir(), t.TempDir()
	files := map[string]string{"a.txt": "x\n", "b/c.txt": "y\n"}
	writeFiles(t, left, files)
	writeFiles(t, right, files)

	res := runCLI(t, "--quiet", "batch", "--root", left, "--right", right, "--out", out, "--format", "text")
	if res.err != nil {
		t.Fatalf("Execute() error = %v", res.err)
	}
	if res.code != models.StatusIdentical.ExitCode() {
		t.Errorf("exit code = %d, want %d", res.code, models.StatusIdentical.ExitCode())
	}
	if res.stdout != "" {
		t.Errorf("quiet run printed %q", res.stdout)
	}
	if _, err := os.Stat(filepath.Join(out, "b", "c.txt.txt")); err != nil {
		t.Errorf("missing text rendering: %v", err)
	}
}

func TestBatchCommand_Errors(t *testing.T) {
	left, right, out := t.TempDir(), t.TempDir(), t.TempDir()

	tests := []struct {
		name string
		args []string
	}{
		{"MissingOut", []string{"batch", "--root", left, "--right", right}},
		{"MissingRight", []string{"batch", "--root", left, "--out", out}},
		{"RightAndRemote", []string{"batch", "--root", left, "--right", right, "--remote", "http://peer", "--out", out}},
		{"RootNotFound", []string{"batch", "--root", filepath.Join(left, "absent"), "--right", right, "--out", out}},
		{"BadExclude", []string{"batch", "--root", left, "--right", right, "--out", out, "--exclude", "[a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, tt.args...)
			if res.err == nil {
				t.Errorf("Execute() error = nil, want error")
			}
		})
	}
}

func TestServe(t *testing.T) {
	const secret = "s3cret"
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.txt": "served\n"})

	cfg := config.Default()
	cfg.Remote.Secret = secret
	cfg.Serve.Root = root

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, ln, cfg, nil)
	}()

	remote, err := storage.NewRemote(storage.RemoteConfig{
		BaseURL: "http://" + ln.Addr().String(),
		Secret:  []byte(secret),
	})
	if err != nil {
		t.Fatalf("NewRemote() error = %v", err)
	}
	defer remote.Close()

	data, err := remote.Fetch(context.Background(), "a.txt")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(data) != "served\n" {
		t.Errorf("Fetch() = %q, want %q", data, "served\n")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve() error = %v, want nil", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("serve() did not return after cancellation")
	}
}

func TestServe_RequiresSecret(t *testing.T) {
	cfg := config.Default()
	cfg.Serve.Root = t.TempDir()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	if err := serve(context.Background(), ln, cfg, nil); err == nil {
		t.Error("serve() error = nil, want missing secret error")
	}
}

func TestVersionCommand(t *testing.T) {
	res := runCLI(t, "version", "--short")
	if res.err != nil {
		t.Fatalf("Execute() error = %v", res.err)
	}
	if res.stdout != Version+"\n" {
		t.Errorf("version = %q, want %q", res.stdout, Version+"\n")
	}
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	res := runCLI(t, "--config", path, "config", "init")
	if res.err != nil {
		t.Fatalf("config init error = %v", res.err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file mode = %o, want 600", perm)
	}

	res = runCLI(t, "--config", path, "config", "show")
	if res.err != nil {
		t.Fatalf("config show error = %v", res.err)
	}
	for _, want := range []string{"Tab Width: 4", "Char Unit: byte", "Remote Secret: (not set)", "Output Format: html"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("config show missing %q:\n%s", want, res.stdout)
		}
	}
}

func TestTitleFlagUsage(t *testing.T) {
	for _, cmd := range []*cobra.Command{NewCompareCommand(), NewWatchCommand()} {
		t.Run(cmd.Name(), func(t *testing.T) {
			left := cmd.Flags().Lookup("left-title")
			right := cmd.Flags().Lookup("right-title")
			if left == nil || right == nil {
				t.Fatal("title flags not registered")
			}
			if !strings.Contains(left.Usage, "LEFT path") {
				t.Errorf("left-title usage = %q, want the path fallback", left.Usage)
			}
			if !strings.Contains(right.Usage, "RIGHT path") || !strings.Contains(right.Usage, "host") {
				t.Errorf("right-title usage = %q, want the path and host fallback", right.Usage)
			}
		})
	}
}
