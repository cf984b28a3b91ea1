package scanner_test

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"dust/internal/scanner"
	"dust/internal/services"
	"dust/internal/testsupport"
)

func TestFindExecutablesRanksCandidates(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"tool.jar",
		"aaa.jar",
		"Launcher.JAR",
		filepath.Join("sub", "start.jar"),
		filepath.Join("nested", "deep", "game.jar"),
		"game.jar",
		"readme.txt",
		"save.dat",
	} {
		testsupport.WriteFile(t, filepath.Join(dir, name), 8)
	}

	execs, err := scanner.FindExecutables(dir)
	if err != nil {
		t.Fatalf("FindExecutables: %v", err)
	}

	want := []string{
		"game.jar",
		filepath.Join("nested", "deep", "game.jar"),
		filepath.Join("sub", "start.jar"),
		"Launcher.JAR",
		"aaa.jar",
		"tool.jar",
	}
	if len(execs) != len(want) {
		t.Fatalf("expected %d executables, got %v", len(want), execs)
	}
	for i := range want {
		if execs[i] != want[i] {
			t.Fatalf("position %d: expected %s, got %s (full order %v)", i, want[i], execs[i], execs)
		}
	}
}

func TestFindExecutablesExecutableBit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bits are not meaningful on windows")
	}

	dir := t.TempDir()
	write := func(name string, mode os.FileMode) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\n"), mode); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write("run-me", 0o755)
	write("notes.txt", 0o755)
	write("plain", 0o644)

	execs, err := scanner.FindExecutables(dir)
	if err != nil {
		t.Fatalf("FindExecutables: %v", err)
	}
	if len(execs) != 1 || execs[0] != "run-me" {
		t.Fatalf("expected only run-me, got %v", execs)
	}
}

func TestFindExecutablesEmptyDirectory(t *testing.T) {
	execs, err := scanner.FindExecutables(t.TempDir())
	if err != nil {
		t.Fatalf("FindExecutables: %v", err)
	}
	if len(execs) != 0 {
		t.Fatalf("expected no executables, got %v", execs)
	}
}

func TestFindExecutablesRejectsBadDirectories(t *testing.T) {
	if _, err := scanner.FindExecutables(""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for blank directory, got %v", err)
	}
	if _, err := scanner.FindExecutables(filepath.Join(t.TempDir(), "missing")); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for missing directory, got %v", err)
	}

	file := filepath.Join(t.TempDir(), "plain.txt")
	testsupport.WriteFile(t, file, 4)
	if _, err := scanner.FindExecutables(file); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for non-directory, got %v", err)
	}
}
