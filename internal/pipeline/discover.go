package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/dgallion1/docgloss/internal/parser"
)

// DiscoverAssets lists the extractable documents directly inside dir,
// sorted by name. A legacy .doc is left out when a .docx with the same
// stem sits next to it, since that file is its earlier conversion.
func DiscoverAssets(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read assets dir: %w", err)
	}

	docx := make(map[string]bool)
	for _, e := range entries {
		if !e.IsDir() && parser.FormatOf(e.Name()) == parser.FormatDocx {
			docx[stemOf(e.Name())] = true
		}
	}

	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !parser.IsExtractable(name) {
			continue
		}
		if parser.FormatOf(name) == parser.FormatLegacyDoc && docx[stemOf(name)] {
			continue
		}
		out = append(out, filepath.Join(dir, name))
	}
	sort.Strings(out)
	return out, nil
}

// DiscoverTermPages lists the glossary pages directly inside dir, sorted
// by name, leaving out reserved section numbers.
func DiscoverTermPages(dir string, reserved func(int) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read details dir: %w", err)
	}

	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.EqualFold(filepath.Ext(name), ".html") {
			continue
		}
		if n, err := strconv.Atoi(stemOf(name)); err == nil && reserved != nil && reserved(n) {
			continue
		}
		out = append(out, filepath.Join(dir, name))
	}
	sort.Strings(out)
	return out, nil
}

func stemOf(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
