package catalogid_test

import (
	"errors"
	"testing"

	"dust/internal/catalogid"
	"dust/internal/services"
)

func TestNormalizeCanonicalizes(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"RJ123456", "RJ123456"},
		{"rj123456", "RJ123456"},
		{"  re0012345  ", "RE0012345"},
		{"J123456", "RJ123456"},
		{"e123456", "RE123456"},
	}
	for _, tc := range cases {
		got, err := catalogid.Normalize(tc.input)
		if err != nil {
			t.Fatalf("Normalize(%q) returned error: %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("Normalize(%q) = %q want %q", tc.input, got, tc.want)
		}
	}
}

func TestNormalizeRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"RJ12345",
		"XX123456",
		"RJ",
		"123456",
		"J12345",
		"RJ123456extra",
		"BJ123456",
	}
	for _, input := range cases {
		if _, err := catalogid.Normalize(input); !errors.Is(err, services.ErrMalformedIdentifier) {
			t.Fatalf("Normalize(%q) = %v, want ErrMalformedIdentifier", input, err)
		}
	}
}

func TestValid(t *testing.T) {
	if !catalogid.Valid("RJ123456") {
		t.Fatal("expected RJ123456 to be valid")
	}
	if catalogid.Valid("rj123456") {
		t.Fatal("lowercase form is not canonical")
	}
	if catalogid.Valid("RG12345") {
		t.Fatal("RG identifiers are not canonical record IDs")
	}
}

func TestExtractFromPath(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{`C:\Games\RJ123456 Some Game\game.exe`, "RJ123456"},
		{"/home/user/games/rj01234567/start.sh", "RJ01234567"},
		{"/downloads/[RE300000] Title/setup.exe", "RE300000"},
		{"/archive/BJ234567 manga", "BJ234567"},
		{"/voice/vj987654", "VJ987654"},
		{"/circles/RG12345/work", "RG12345"},
	}
	for _, tc := range cases {
		got, ok := catalogid.ExtractFromPath(tc.path)
		if !ok {
			t.Fatalf("ExtractFromPath(%q) found nothing, want %q", tc.path, tc.want)
		}
		if got != tc.want {
			t.Fatalf("ExtractFromPath(%q) = %q want %q", tc.path, got, tc.want)
		}
	}
}

func TestExtractFromPathLeftmostWins(t *testing.T) {
	got, ok := catalogid.ExtractFromPath("/games/RE111111/RJ222222/game.exe")
	if !ok || got != "RE111111" {
		t.Fatalf("ExtractFromPath = %q,%v want RE111111,true", got, ok)
	}
}

func TestExtractFromPathAbsence(t *testing.T) {
	for _, path := range []string{"", "/home/user/games/minesweeper", "/games/RJ12345/too-short"} {
		if got, ok := catalogid.ExtractFromPath(path); ok {
			t.Fatalf("ExtractFromPath(%q) = %q, want no match", path, got)
		}
	}
}
