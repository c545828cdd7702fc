package pipeline

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadKeepSet reads region names that survive pruning: one per line, blank
// lines and lines starting with # ignored. An empty path yields no names.
func ReadKeepSet(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open keep-set: %w", err)
	}
	defer f.Close()

	var names []string
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read keep-set: %w", err)
	}
	return names, nil
}
