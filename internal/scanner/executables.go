package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"dust/internal/services"
)

// launcherStems order executables by how strongly their names suggest the
// game's entry point. Lower index wins.
var launcherStems = []string{"game", "main", "start", "launcher", "play"}

// dataExts are never treated as launchable even when the file carries an
// executable bit.
var dataExts = map[string]struct{}{
	".txt": {},
	".log": {},
	".ini": {},
	".cfg": {},
	".dat": {},
}

// execExts holds the launchable extensions for the current platform. Java
// archives count everywhere. Comparison happens on the lowercased extension,
// so mixed-case names such as Game.AppImage still match.
var execExts = func() map[string]struct{} {
	exts := map[string]struct{}{".jar": {}}
	var platform []string
	switch runtime.GOOS {
	case "windows":
		platform = []string{".exe", ".bat", ".cmd", ".msi"}
	case "darwin":
		platform = []string{".app", ".dmg", ".pkg"}
	default:
		platform = []string{".sh", ".run", ".appimage"}
	}
	for _, ext := range platform {
		exts[ext] = struct{}{}
	}
	return exts
}()

type candidate struct {
	rel      string
	depth    int
	priority int
}

// FindExecutables walks a game directory and returns launch candidates
// ordered by likelihood: known launcher names first, then shallower files,
// then lexical order. Paths are relative to dir. Unreadable subtrees are
// skipped rather than failing the walk.
func FindExecutables(dir string) ([]string, error) {
	root := strings.TrimSpace(dir)
	if root == "" {
		return nil, services.Wrap(services.ErrValidation, "scanner", "find executables", "directory is required", nil)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "scanner", "find executables", "stat "+root, err)
	}
	if !info.IsDir() {
		return nil, services.Wrap(services.ErrValidation, "scanner", "find executables", root+" is not a directory", nil)
	}

	var found []candidate
	walkErr := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		if !launchable(path, entry.Name()) {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		found = append(found, candidate{
			rel:      rel,
			depth:    strings.Count(rel, string(filepath.Separator)),
			priority: stemPriority(entry.Name()),
		})
		return nil
	})
	if walkErr != nil {
		return nil, services.Wrap(services.ErrInternal, "scanner", "find executables", fmt.Sprintf("walk %s", root), walkErr)
	}

	sort.Slice(found, func(i, j int) bool {
		a, b := found[i], found[j]
		if a.priority != b.priority {
			return a.priority < b.priority
		}
		if a.depth != b.depth {
			return a.depth < b.depth
		}
		return a.rel < b.rel
	})

	paths := make([]string, len(found))
	for i, c := range found {
		paths[i] = c.rel
	}
	return paths, nil
}

// launchable reports whether the file counts as a launch candidate, either by
// extension or, outside Windows, by executable permission. Stat follows
// symlinks so a link with permissive bits does not qualify on its own.
func launchable(path, name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := execExts[ext]; ok {
		return true
	}
	if runtime.GOOS == "windows" {
		return false
	}
	if _, ok := dataExts[ext]; ok {
		return false
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode().Perm()&0o111 != 0
}

// stemPriority returns the rank of the first launcher stem contained in the
// lowercased file name, or len(launcherStems) when none match.
func stemPriority(name string) int {
	lowered := strings.ToLower(name)
	for i, stem := range launcherStems {
		if strings.Contains(lowered, stem) {
			return i
		}
	}
	return len(launcherStems)
}
