package utils

import (
	"path/filepath"
	"strings"
)

// GetPathInfo resolves relPath against base (when relative) and returns the
// cleaned absolute path together with its parent directory.
func GetPathInfo(base, relPath string) (fullPath string, parentDir string, err error) {
	if !filepath.IsAbs(relPath) {
		relPath = filepath.Join(base, relPath)
	}
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}
	return fullPath, filepath.Dir(fullPath), nil
}

// ReplaceExt swaps the extension of p for ext, which includes the dot.
func ReplaceExt(p, ext string) string {
	return strings.TrimSuffix(p, filepath.Ext(p)) + ext
}
