package library_test

import (
	"testing"

	"dust/internal/library"
)

func TestNormalizeInstallPath(t *testing.T) {
	cases := []struct {
		name string
		a    string
		b    string
	}{
		{"separator styles", `C:\Games\X`, "C:/Games/X"},
		{"doubled separators", "C:/Games//X", `C:\Games\X`},
		{"surrounding quotes", `"C:\Games\X"`, `C:\Games\X`},
		{"single quotes and space", `  'C:\Games\X'  `, "C:/Games/X"},
		{"trailing separator", "/games/x/", "/games/x"},
	}
	for _, tc := range cases {
		got := library.NormalizeInstallPath(tc.a)
		want := library.NormalizeInstallPath(tc.b)
		if got != want {
			t.Fatalf("%s: NormalizeInstallPath(%q) = %q, NormalizeInstallPath(%q) = %q; expected equal", tc.name, tc.a, got, tc.b, want)
		}
	}
}

func TestFoldTitleFullWidth(t *testing.T) {
	if library.FoldTitle("ＧＡＭＥ") != library.FoldTitle("game") {
		t.Fatal("expected full-width title to fold equal to ASCII")
	}
	if library.FoldTitle("Foo") != library.FoldTitle("FOO") {
		t.Fatal("expected case-insensitive fold")
	}
}

func TestFindDuplicateTitleCaseInsensitive(t *testing.T) {
	existing := []*library.GameRecord{
		{ID: 1, Title: "FOO", ExecPath: `C:\Games\Foo`, ExecFile: "foo.exe"},
	}
	candidate := &library.GameRecord{Title: "Foo", ExecPath: "C:/Games/Foo"}

	match, found := library.FindDuplicate(existing, candidate)
	if !found || match.ID != 1 {
		t.Fatalf("expected duplicate of record 1, got %#v found=%v", match, found)
	}
}

func TestFindDuplicateExecFileMatch(t *testing.T) {
	existing := []*library.GameRecord{
		{ID: 2, Title: "Same Game", ExecPath: "/old/location", ExecFile: "Game.exe"},
	}
	candidate := &library.GameRecord{Title: "same game", ExecPath: "/new/location", ExecFile: "game.EXE"}

	match, found := library.FindDuplicate(existing, candidate)
	if !found || match.ID != 2 {
		t.Fatalf("expected executable-name duplicate, got %#v found=%v", match, found)
	}
}

func TestFindDuplicateRequiresTitleMatch(t *testing.T) {
	existing := []*library.GameRecord{
		{ID: 3, Title: "Different Title", ExecPath: "/games/x", ExecFile: "x.exe"},
	}
	candidate := &library.GameRecord{Title: "Candidate", ExecPath: "/games/x", ExecFile: "x.exe"}

	if match, found := library.FindDuplicate(existing, candidate); found {
		t.Fatalf("expected no duplicate across different titles, got %#v", match)
	}
}

func TestFindDuplicateFirstMatchWins(t *testing.T) {
	existing := []*library.GameRecord{
		{ID: 10, Title: "Twin", ExecPath: "/games/twin", ExecFile: "twin.exe"},
		{ID: 11, Title: "Twin", ExecPath: "/games/twin", ExecFile: "twin.exe"},
	}
	candidate := &library.GameRecord{Title: "twin", ExecPath: "/games/twin"}

	match, found := library.FindDuplicate(existing, candidate)
	if !found || match.ID != 10 {
		t.Fatalf("expected first match to win, got %#v found=%v", match, found)
	}
}

func TestFindDuplicateSkipsSelf(t *testing.T) {
	existing := []*library.GameRecord{
		{ID: 5, Title: "Solo", ExecPath: "/games/solo", ExecFile: "solo.exe"},
	}
	candidate := &library.GameRecord{ID: 5, Title: "Solo", ExecPath: "/games/solo", ExecFile: "solo.exe"}

	if match, found := library.FindDuplicate(existing, candidate); found {
		t.Fatalf("expected record not to duplicate itself, got %#v", match)
	}
}
