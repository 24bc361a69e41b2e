package store

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolvePath maps a stored source path to a real file inside the assets
// directory. Relative paths are taken from the root; symlinks are
// followed. Anything missing or outside the assets directory is reported
// as unavailable.
func (s *Store) ResolvePath(stored string) (string, bool) {
	if stored == "" || s.assetsDir == "" {
		return "", false
	}
	resolved, err := s.realPath(stored)
	if err != nil {
		return "", false
	}
	base, err := s.realPath(s.assetsDir)
	if err != nil {
		return "", false
	}
	if !within(base, resolved) {
		return "", false
	}
	info, err := os.Stat(resolved)
	if err != nil || info.IsDir() {
		return "", false
	}
	return resolved, true
}

// imageURL returns the public URL of an extracted image, or "" when the
// image lies outside the extracted directory.
func (s *Store) imageURL(stored string) string {
	if stored == "" || s.extractedDir == "" {
		return ""
	}
	p, err := filepath.Abs(s.fromRoot(stored))
	if err != nil {
		return ""
	}
	base, err := filepath.Abs(s.fromRoot(s.extractedDir))
	if err != nil {
		return ""
	}
	if !within(base, p) {
		return ""
	}
	rel, err := filepath.Rel(base, p)
	if err != nil {
		return ""
	}
	return "/extracted/" + filepath.ToSlash(rel)
}

func (s *Store) fromRoot(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(s.root, p)
}

func (s *Store) realPath(p string) (string, error) {
	abs, err := filepath.Abs(s.fromRoot(p))
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

func within(base, p string) bool {
	rel, err := filepath.Rel(base, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Relative returns p relative to root when it lies inside root, and p
// unchanged otherwise. Both are made absolute first so relative inputs
// and an absolute root produce the same stored form.
func Relative(root, p string) string {
	if root == "" {
		return p
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	base, err := filepath.Abs(root)
	if err != nil {
		return p
	}
	rel, err := filepath.Rel(base, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return p
	}
	return rel
}
