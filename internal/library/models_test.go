package library_test

import (
	"testing"

	"dust/internal/library"
)

func TestParseSource(t *testing.T) {
	cases := []struct {
		input string
		want  library.Source
		ok    bool
	}{
		{"dlsite", library.SourceDLSite, true},
		{"DLSite", library.SourceDLSite, true},
		{"Itch.io", library.SourceItch, true},
		{"itch", library.SourceItch, true},
		{"  Steam ", library.SourceSteam, true},
		{"local", library.SourceLocal, true},
		{"gog", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := library.ParseSource(tc.input)
		if ok != tc.ok {
			t.Fatalf("ParseSource(%q) ok = %v want %v", tc.input, ok, tc.ok)
		}
		if ok && got != tc.want {
			t.Fatalf("ParseSource(%q) = %q want %q", tc.input, got, tc.want)
		}
	}
}

func TestSourceDisplay(t *testing.T) {
	if library.SourceDLSite.Display() != "DLSite" {
		t.Fatalf("unexpected display: %q", library.SourceDLSite.Display())
	}
	if library.SourceItch.Display() != "Itch.io" {
		t.Fatalf("unexpected display: %q", library.SourceItch.Display())
	}
}

func TestLaunchable(t *testing.T) {
	game := library.GameRecord{ExecPath: "/games/x", ExecFile: "x.exe"}
	if !game.Launchable() {
		t.Fatal("expected launchable record")
	}
	if game.ExecutableTarget() == "" {
		t.Fatal("expected executable target path")
	}

	missing := library.GameRecord{ExecPath: "/games/x"}
	if missing.Launchable() {
		t.Fatal("record without executable name must not be launchable")
	}
	if missing.ExecutableTarget() != "" {
		t.Fatal("expected empty target for unlaunchable record")
	}
}

func TestCloneIsolation(t *testing.T) {
	original := &library.GameRecord{
		Title: "Clone Me",
		Tags:  []string{"one"},
	}
	cp := original.Clone()
	cp.Tags[0] = "mutated"
	cp.Title = "Changed"

	if original.Tags[0] != "one" {
		t.Fatalf("clone shares tag storage: %v", original.Tags)
	}
	if original.Title != "Clone Me" {
		t.Fatalf("clone shares title: %q", original.Title)
	}
}
