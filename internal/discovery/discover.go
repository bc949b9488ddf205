package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
	root    glob.Glob // pattern without a leading **/, nil if there is none
}

// Matcher selects files by relative path using include and ignore globs.
type Matcher struct {
	include []compiledPattern
	ignore  []compiledPattern
}

// NewMatcher compiles include and ignore patterns. Empty include falls back
// to DefaultPatterns.
func NewMatcher(patterns, ignore []string) (*Matcher, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	m := &Matcher{}
	var err error
	if m.include, err = compileAll(patterns); err != nil {
		return nil, err
	}
	if m.ignore, err = compileAll(ignore); err != nil {
		return nil, err
	}
	return m, nil
}

// ValidatePattern reports whether pattern compiles as a glob.
func ValidatePattern(pattern string) error {
	_, err := compile(pattern)
	return err
}

func compileAll(patterns []string) ([]compiledPattern, error) {
	out := make([]compiledPattern, 0, len(patterns))
	for _, p := range patterns {
		cp, err := compile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, nil
}

func compile(pattern string) (compiledPattern, error) {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return compiledPattern{}, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	cp := compiledPattern{pattern: pattern, glob: g}
	// "**/*.sqc" must also match "main.sqc" at the root
	if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
		if cp.root, err = glob.Compile(rest, '/'); err != nil {
			return compiledPattern{}, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
	}
	return cp, nil
}

// Match reports whether the slash-separated relative path is selected.
func (m *Matcher) Match(relPath string) bool {
	if m.ignored(relPath) {
		return false
	}
	return matchesAny(relPath, m.include)
}

// ignored also treats a path as ignored when a "dir/**" pattern names one of
// its parent directories.
func (m *Matcher) ignored(relPath string) bool {
	if matchesAny(relPath, m.ignore) {
		return true
	}
	return matchesAny(relPath+"/**", m.ignore)
}

// IgnoredDir reports whether a whole directory is excluded.
func (m *Matcher) IgnoredDir(relDir string) bool {
	if relDir == "." || relDir == "" {
		return false
	}
	return matchesAny(relDir, m.ignore) || matchesAny(relDir+"/**", m.ignore)
}

func matchesAny(path string, patterns []compiledPattern) bool {
	rootLevel := !strings.Contains(path, "/")
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
		if rootLevel && cp.root != nil && cp.root.Match(path) {
			return true
		}
	}
	return false
}

// Discover recursively finds embedded-SQL files below rootPath that match
// patterns and no ignore pattern. Files are returned in walk order, which is
// lexical.
func Discover(rootPath string, patterns, ignore []string) ([]DiscoveredFile, error) {
	absRoot, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	// Check if directory exists
	info, err := os.Stat(absRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("directory not found: %s", absRoot)
		}
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", absRoot)
	}

	matcher, err := NewMatcher(patterns, ignore)
	if err != nil {
		return nil, err
	}

	var files []DiscoveredFile

	err = filepath.Walk(absRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Skip directories we can't access
			if os.IsPermission(err) {
				return nil
			}
			return err
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}
		relPath = filepath.ToSlash(relPath)

		if info.IsDir() {
			if matcher.IgnoredDir(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		lang := ClassifyFile(info.Name())
		if lang == LanguageUnknown || !matcher.Match(relPath) {
			return nil
		}

		files = append(files, DiscoveredFile{
			Path:         path,
			RelativePath: relPath,
			Language:     lang,
			ModTime:      info.ModTime(),
		})

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	return files, nil
}

// NewDiscoveredFile describes a single file relative to root, for callers
// that already know which file they want.
func NewDiscoveredFile(root, path string) (DiscoveredFile, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return DiscoveredFile{}, fmt.Errorf("failed to get absolute path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return DiscoveredFile{}, fmt.Errorf("failed to access file: %w", err)
	}
	rel := filepath.Base(absPath)
	if absRoot, err := filepath.Abs(root); err == nil {
		if r, err := filepath.Rel(absRoot, absPath); err == nil && !strings.HasPrefix(r, "..") {
			rel = r
		}
	}
	return DiscoveredFile{
		Path:         absPath,
		RelativePath: filepath.ToSlash(rel),
		Language:     ClassifyFile(info.Name()),
		ModTime:      info.ModTime(),
	}, nil
}
