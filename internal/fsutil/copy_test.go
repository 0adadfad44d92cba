package fsutil

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writeFile(t *testing.T, path, content string, perm os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Chmod(path, perm); err != nil {
		t.Fatalf("chmod: %v", err)
	}
}

func TestCopyTreeCopiesFilesAndDirs(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeFile(t, filepath.Join(src, "release"), "JAVA_VERSION=21", 0o644)
	writeFile(t, filepath.Join(src, "bin", "java"), "#!/bin/sh\necho java", 0o755)
	writeFile(t, filepath.Join(src, "lib", "server", "libjvm.so"), "elf", 0o644)
	if err := os.Mkdir(filepath.Join(src, "empty"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if err := CopyTree(context.Background(), src, dst); err != nil {
		t.Fatalf("CopyTree: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dst, "bin", "java"))
	if err != nil {
		t.Fatalf("read copied file: %v", err)
	}
	if string(got) != "#!/bin/sh\necho java" {
		t.Errorf("content = %q", got)
	}
	if _, err := os.Stat(filepath.Join(dst, "lib", "server", "libjvm.so")); err != nil {
		t.Errorf("nested file missing: %v", err)
	}
	if info, err := os.Stat(filepath.Join(dst, "empty")); err != nil || !info.IsDir() {
		t.Errorf("empty dir missing: %v", err)
	}
	if runtime.GOOS != "windows" {
		info, err := os.Stat(filepath.Join(dst, "bin", "java"))
		if err != nil {
			t.Fatalf("stat: %v", err)
		}
		if info.Mode().Perm() != 0o755 {
			t.Errorf("mode = %v, want 0755", info.Mode().Perm())
		}
	}
}

func TestCopyTreeRecreatesSymlinks(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeFile(t, filepath.Join(src, "lib", "libjli.so"), "elf", 0o644)
	if err := os.Symlink(filepath.Join("lib", "libjli.so"), filepath.Join(src, "libjli.so")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	if err := CopyTree(context.Background(), src, dst); err != nil {
		t.Fatalf("CopyTree: %v", err)
	}
	got, err := os.Readlink(filepath.Join(dst, "libjli.so"))
	if err != nil {
		t.Fatalf("expected symlink to be recreated: %v", err)
	}
	if got != filepath.Join("lib", "libjli.so") {
		t.Errorf("link = %q", got)
	}
}

func TestCopyTreePreservesReadOnlyDirectories(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("directory permission bits are not enforced on windows")
	}
	src := t.TempDir()
	dst := t.TempDir()
	writeFile(t, filepath.Join(src, "legal", "LICENSE"), "gpl", 0o444)
	if err := os.Chmod(filepath.Join(src, "legal"), 0o555); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chmod(filepath.Join(src, "legal"), 0o755)
		_ = os.Chmod(filepath.Join(dst, "legal"), 0o755)
	})
	if err := CopyTree(context.Background(), src, dst); err != nil {
		t.Fatalf("CopyTree: %v", err)
	}
	info, err := os.Stat(filepath.Join(dst, "legal"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o555 {
		t.Errorf("dir mode = %v, want 0555", info.Mode().Perm())
	}
}

func TestCopyTreeFailsOnExistingTarget(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeFile(t, filepath.Join(src, "a"), "new", 0o644)
	writeFile(t, filepath.Join(dst, "a"), "old", 0o644)
	if err := CopyTree(context.Background(), src, dst); err == nil {
		t.Fatal("expected copy over an existing file to fail")
	}
	got, _ := os.ReadFile(filepath.Join(dst, "a"))
	if string(got) != "old" {
		t.Errorf("existing file was overwritten: %q", got)
	}
}

func TestCopyTreeHonorsCancellation(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeFile(t, filepath.Join(src, "a"), "x", 0o644)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := CopyTree(ctx, src, dst); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRemoveTreeDeletesReadOnlyDirectories(t *testing.T) {
	root := filepath.Join(t.TempDir(), "partial")
	writeFile(t, filepath.Join(root, "legal", "LICENSE"), "gpl", 0o444)
	if err := os.Chmod(filepath.Join(root, "legal"), 0o555); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	if err := RemoveTree(root); err != nil {
		t.Fatalf("RemoveTree: %v", err)
	}
	if _, err := os.Stat(root); !os.IsNotExist(err) {
		t.Fatalf("expected %s to be removed, stat err=%v", root, err)
	}
}
