package theme

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Usage reports how often one color appears in utility classes.
type Usage struct {
	Color string
	Count int
	Files []string
}

// Scan walks root, reads every file matching the content globs and counts
// utility classes ending in a color name, such as text-oxygen or
// hover:bg-carbon/50. Every color is reported, unused ones with a zero count.
func (t *Theme) Scan(root string) ([]Usage, error) {
	return t.ScanFS(os.DirFS(root))
}

// ScanFS is Scan over an fs.FS.
func (t *Theme) ScanFS(fsys fs.FS) ([]Usage, error) {
	files, err := t.matchContent(fsys)
	if err != nil {
		return nil, err
	}

	re := t.classPattern()
	counts := make(map[string]int, len(t.Colors))
	seenIn := make(map[string]map[string]bool, len(t.Colors))

	for _, name := range files {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		for _, m := range re.FindAllSubmatch(data, -1) {
			color := string(m[1])
			counts[color]++
			if seenIn[color] == nil {
				seenIn[color] = make(map[string]bool)
			}
			seenIn[color][name] = true
		}
	}

	usages := make([]Usage, 0, len(t.Colors))
	for _, c := range t.Colors {
		u := Usage{Color: c.Name, Count: counts[c.Name]}
		for f := range seenIn[c.Name] {
			u.Files = append(u.Files, f)
		}
		sort.Strings(u.Files)
		usages = append(usages, u)
	}
	return usages, nil
}

// matchContent expands the content globs against fsys. Globs are relative
// to the scan root; a leading "./" is ignored.
func (t *Theme) matchContent(fsys fs.FS) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range t.Content {
		pattern = path.Clean(strings.TrimPrefix(pattern, "./"))
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid content glob %q", pattern)
		}
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expand %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

func (t *Theme) classPattern() *regexp.Regexp {
	names := t.names()
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = regexp.QuoteMeta(n)
	}
	return regexp.MustCompile(`\b[a-z][a-z0-9]*(?:-[a-z0-9]+)*-(` + strings.Join(quoted, "|") + `)(?:/\d{1,3})?\b`)
}
