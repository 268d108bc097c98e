package report

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadExisting parses a previously written note into a mapping from
// lowercased repository name to the raw text fragments listed under its
// section. A section starts at a line containing the repository marker and
// runs until the next marker; every non-blank line in between is a fragment,
// section labels included.
func LoadExisting(path string) (map[string][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening prior note %s: %w", path, err)
	}
	defer file.Close()

	fragments := make(map[string][]string)
	current := ""

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimPrefix(scanner.Text(), utf8BOM)
		if idx := strings.Index(line, RepoMarker); idx >= 0 {
			name := strings.TrimSpace(line[idx+len(RepoMarker):])
			current = strings.ToLower(name)
			if _, ok := fragments[current]; !ok {
				fragments[current] = []string{}
			}
			continue
		}
		if current == "" || strings.TrimSpace(line) == "" {
			continue
		}
		fragments[current] = append(fragments[current], line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading prior note %s: %w", path, err)
	}

	return fragments, nil
}
