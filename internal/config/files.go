package config

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// ResolvedLibrary is one library's expanded, deduplicated file list.
type ResolvedLibrary struct {
	Name  string
	Files []string
}

// ResolveLibraries expands every library's glob patterns relative to
// rootPath. File lists are sorted so that load order, and with it
// library modification-time tie-breaking, is reproducible run to run.
func (c *Config) ResolveLibraries(rootPath string) ([]ResolvedLibrary, error) {
	var result []ResolvedLibrary

	for libName, libCfg := range c.Libraries {
		fileSet := make(map[string]bool)
		for _, pattern := range libCfg.Files {
			matches, err := expandGlob(anchor(rootPath, pattern))
			if err != nil {
				return nil, err
			}
			for _, match := range matches {
				if isVHDL(match) {
					fileSet[match] = true
				}
			}
		}
		for _, pattern := range libCfg.Exclude {
			matches, err := expandGlob(anchor(rootPath, pattern))
			if err != nil {
				return nil, err
			}
			for _, match := range matches {
				delete(fileSet, match)
			}
		}

		resolved := ResolvedLibrary{Name: libName}
		for f := range fileSet {
			resolved.Files = append(resolved.Files, f)
		}
		sort.Strings(resolved.Files)
		result = append(result, resolved)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// FileLibrary returns the library a file belongs to, defaulting to
// "work" when no configured library claims it.
func (c *Config) FileLibrary(filePath, rootPath string) string {
	libs, err := c.ResolveLibraries(rootPath)
	if err != nil {
		return "work"
	}
	absPath, _ := filepath.Abs(filePath)
	for _, lib := range libs {
		for _, f := range lib.Files {
			absF, _ := filepath.Abs(f)
			if absPath == absF {
				return lib.Name
			}
		}
	}
	return "work"
}

func anchor(rootPath, pattern string) string {
	if filepath.IsAbs(pattern) {
		return pattern
	}
	return filepath.Join(rootPath, pattern)
}

func isVHDL(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".vhd" || ext == ".vhdl"
}

// expandGlob expands a glob pattern. A "**" component matches any
// number of directories, which filepath.Glob alone cannot express.
func expandGlob(pattern string) ([]string, error) {
	if !strings.Contains(pattern, "**") {
		return filepath.Glob(pattern)
	}

	parts := strings.SplitN(pattern, "**", 2)
	baseDir := filepath.Clean(parts[0])
	if baseDir == "" {
		baseDir = "."
	}
	suffix := strings.TrimPrefix(parts[1], string(filepath.Separator))

	var results []string
	err := filepath.WalkDir(baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if suffix == "" {
			results = append(results, path)
			return nil
		}
		rel, err := filepath.Rel(baseDir, path)
		if err != nil {
			return nil
		}
		if matchSuffix(rel, suffix) {
			results = append(results, path)
		}
		return nil
	})
	return results, err
}

// matchSuffix matches the part of a "**" pattern after the stars
// against a path relative to the pattern's base directory.
func matchSuffix(path, pattern string) bool {
	if !strings.Contains(pattern, string(filepath.Separator)) {
		matched, _ := filepath.Match(pattern, filepath.Base(path))
		return matched
	}
	if matched, _ := filepath.Match(pattern, path); matched {
		return true
	}
	if len(path) > len(pattern) {
		matched, _ := filepath.Match(pattern, path[len(path)-len(pattern):])
		return matched
	}
	return false
}
