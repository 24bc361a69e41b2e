package segment

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ParseCatalog reads known section titles, one per line. Blank lines and
// lines starting with '#' are skipped; order is preserved.
func ParseCatalog(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var titles []string
	for scanner.Scan() {
		line := strings.Join(strings.Fields(scanner.Text()), " ")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		titles = append(titles, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read title catalog: %w", err)
	}
	return titles, nil
}
