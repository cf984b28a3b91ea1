package catalogid

import (
	"fmt"
	"regexp"
	"strings"

	"dust/internal/services"
)

var (
	canonicalPattern = regexp.MustCompile(`^(?:RJ|RE)\d{6,}$`)
	digitsPattern    = regexp.MustCompile(`^\d+$`)
	// extractPattern covers the wider prefix family seen in folder names:
	// BJ (books), VJ (pro voice/software), and RG (circle pages, five digits).
	extractPattern = regexp.MustCompile(`(?i)(?:RJ|RE|BJ|VJ)\d{6,}|RG\d{5,}`)
)

// Normalize trims and uppercases a user-supplied catalog ID and validates it
// against the canonical RJ/RE grammar. Inputs that start with a bare J or E
// followed by digits lost their leading R somewhere upstream; the missing
// letter is restored before validation. Anything else that does not fit the
// grammar returns services.ErrMalformedIdentifier.
func Normalize(raw string) (string, error) {
	id := strings.ToUpper(strings.TrimSpace(raw))
	if id == "" {
		return "", fmt.Errorf("%w: empty identifier", services.ErrMalformedIdentifier)
	}
	if (strings.HasPrefix(id, "J") || strings.HasPrefix(id, "E")) && digitsPattern.MatchString(id[1:]) {
		id = "R" + id
	}
	if !canonicalPattern.MatchString(id) {
		return "", fmt.Errorf("%w: %q", services.ErrMalformedIdentifier, strings.TrimSpace(raw))
	}
	return id, nil
}

// Valid reports whether id already matches the canonical RJ/RE grammar.
func Valid(id string) bool {
	return canonicalPattern.MatchString(id)
}

// ExtractFromPath scans a filesystem path for a catalog identifier and
// returns it in canonical uppercase form. The whole path is scanned, not just
// the final element, and the leftmost match wins. Absence is an ordinary
// outcome, not an error.
func ExtractFromPath(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	normalized := strings.ReplaceAll(path, "\\", "/")
	match := extractPattern.FindString(normalized)
	if match == "" {
		return "", false
	}
	return strings.ToUpper(match), true
}
