// Package discovery enumerates candidate input files for a batch run.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FindCandidates matches the input directory's immediate children against
// the configured extensions, in extension order then name order. The scan is
// non-recursive. An empty result is not an error; the coordinator decides
// how to report it.
func FindCandidates(inputDir string, extensions []string) ([]string, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("cannot read directory %s: %w", inputDir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		names = append(names, name)
	}

	var files []string
	seen := make(map[string]bool)

	for _, ext := range extensions {
		suffix := "." + strings.ToLower(strings.TrimPrefix(ext, "."))

		var matched []string
		for _, name := range names {
			if strings.HasSuffix(strings.ToLower(name), suffix) && !seen[name] {
				matched = append(matched, name)
				seen[name] = true
			}
		}

		sort.Slice(matched, func(i, j int) bool {
			return strings.ToLower(matched[i]) < strings.ToLower(matched[j])
		})
		for _, name := range matched {
			files = append(files, filepath.Join(inputDir, name))
		}
	}

	return files, nil
}
