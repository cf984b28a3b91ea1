package library

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var titleFolder = cases.Fold()

// FoldTitle returns the comparison key used for duplicate matching: NFKC
// normalization followed by case folding, so the full-width Latin that
// storefront pages use compares equal to plain ASCII.
func FoldTitle(title string) string {
	folded := norm.NFKC.String(strings.TrimSpace(title))
	return titleFolder.String(folded)
}

// NormalizeInstallPath canonicalizes an executable directory for comparison:
// surrounding whitespace and quote characters are stripped, both separator
// styles collapse to the host separator, and doubled separators collapse to
// one. Trailing separators are dropped except for a bare root.
func NormalizeInstallPath(path string) string {
	path = strings.TrimSpace(path)
	for len(path) >= 2 {
		first, last := path[0], path[len(path)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			path = strings.TrimSpace(path[1 : len(path)-1])
			continue
		}
		break
	}
	if path == "" {
		return ""
	}

	sep := string(filepath.Separator)
	path = strings.ReplaceAll(path, "\\", sep)
	path = strings.ReplaceAll(path, "/", sep)
	double := sep + sep
	for strings.Contains(path, double) {
		path = strings.ReplaceAll(path, double, sep)
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, sep)
		if path == "" {
			path = sep
		}
	}
	return path
}

// FindDuplicate reports the first existing record the candidate duplicates.
// A duplicate requires folded-title equality plus either the same normalized
// install path or the same executable name; the first match in iteration
// order wins. False positives and negatives are accepted and surfaced to the
// user rather than resolved here.
func FindDuplicate(games []*GameRecord, candidate *GameRecord) (*GameRecord, bool) {
	if candidate == nil {
		return nil, false
	}
	title := FoldTitle(candidate.Title)
	if title == "" {
		return nil, false
	}
	candidatePath := NormalizeInstallPath(candidate.ExecPath)
	candidateFile := strings.TrimSpace(candidate.ExecFile)

	for _, existing := range games {
		if existing == nil || (candidate.ID != 0 && existing.ID == candidate.ID) {
			continue
		}
		if FoldTitle(existing.Title) != title {
			continue
		}
		if strings.EqualFold(NormalizeInstallPath(existing.ExecPath), candidatePath) {
			return existing, true
		}
		if strings.EqualFold(strings.TrimSpace(existing.ExecFile), candidateFile) {
			return existing, true
		}
	}
	return nil, false
}
