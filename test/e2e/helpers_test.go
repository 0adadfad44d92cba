package e2e

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func repoRoot(t *testing.T) string {
	t.Helper()
	root, err := filepath.Abs(filepath.Join("..", ".."))
	if err != nil {
		t.Fatalf("resolve repo root failed: %v", err)
	}
	return root
}

// buildCLI compiles cmd/jim into home and returns the binary and an
// environment isolating config and data under home.
func buildCLI(t *testing.T, home string) (string, []string) {
	t.Helper()
	root := repoRoot(t)
	goModCache := filepath.Join(os.TempDir(), "jim-gomodcache")
	goCache := filepath.Join(os.TempDir(), "jim-gocache")
	if err := os.MkdirAll(goModCache, 0o755); err != nil {
		t.Fatalf("create mod cache failed: %v", err)
	}
	if err := os.MkdirAll(goCache, 0o755); err != nil {
		t.Fatalf("create go cache failed: %v", err)
	}

	env := mergeEnv(os.Environ(), map[string]string{
		"HOME":            home,
		"XDG_CONFIG_HOME": filepath.Join(home, ".config"),
		"XDG_DATA_HOME":   filepath.Join(home, ".local", "share"),
		"JIM_DIR":         "",
		"JIM_CONFIG":      "",
		"LOG_LEVEL":       "",
		"GOMODCACHE":      goModCache,
		"GOCACHE":         goCache,
	})
	bin := filepath.Join(home, "bin", "jim")
	if err := os.MkdirAll(filepath.Dir(bin), 0o755); err != nil {
		t.Fatalf("create bin dir failed: %v", err)
	}
	cmd := exec.Command("go", "build", "-o", bin, "./cmd/jim")
	cmd.Dir = root
	cmd.Env = env
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("build cli failed: %v\n%s", err, string(out))
	}
	return bin, env
}

type run struct {
	stdout string
	stderr string
	code   int
}

func runCLIWithEnv(t *testing.T, bin string, env []string, extra map[string]string, args ...string) run {
	t.Helper()
	cmd := exec.Command(bin, args...)
	cmd.Env = mergeEnv(env, extra)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	res := run{stdout: stdout.String(), stderr: stderr.String()}
	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		res.code = exitErr.ExitCode()
	case err != nil:
		t.Fatalf("command did not run: %v\nargs=%v", err, args)
	}
	return res
}

func runCLI(t *testing.T, bin string, env []string, args ...string) run {
	t.Helper()
	res := runCLIWithEnv(t, bin, env, nil, args...)
	if res.code != 0 {
		t.Fatalf("command failed with exit %d\nargs=%v\nstderr=%s", res.code, args, res.stderr)
	}
	return res
}

func runCLIExpectFail(t *testing.T, bin string, env []string, args ...string) run {
	t.Helper()
	res := runCLIWithEnv(t, bin, env, nil, args...)
	if res.code == 0 {
		t.Fatalf("expected command to fail\nargs=%v\nstdout=%s", args, res.stdout)
	}
	return res
}

func mergeEnv(base []string, extra map[string]string) []string {
	if len(extra) == 0 {
		return base
	}
	values := map[string]string{}
	for _, item := range base {
		parts := strings.SplitN(item, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	for k, v := range extra {
		values[k] = v
	}
	out := make([]string, 0, len(values))
	for k, v := range values {
		out = append(out, k+"="+v)
	}
	return out
}

func assertContains(t *testing.T, out, want string) {
	t.Helper()
	if !strings.Contains(out, want) {
		t.Fatalf("expected output to contain %q, got:\n%s", want, out)
	}
}

func makeRuntime(t *testing.T, dir, name string) string {
	t.Helper()
	src := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Join(src, "bin"), 0o755); err != nil {
		t.Fatalf("create runtime failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(src, "bin", "java"), []byte("#!/bin/sh\necho "+name+"\n"), 0o755); err != nil {
		t.Fatalf("write runtime failed: %v", err)
	}
	return src
}
