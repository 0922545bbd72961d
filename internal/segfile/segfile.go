// Package segfile loads segment names from plain-text files.
package segfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Load reads one segment name per line from path. Blank lines and lines
// starting with '#' are skipped.
func Load(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open segment file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only segment file.
			_ = cerr
		}
	}()
	return Parse(file)
}

// Parse reads segment names from r.
func Parse(r io.Reader) ([]string, error) {
	var names []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read segment file: %w", err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("segment file is empty")
	}
	return names, nil
}
