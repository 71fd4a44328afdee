// Package cli holds helpers shared by the report tool commands.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrNotAFile is returned by ResolveFile for directories and other
// non-regular paths.
var ErrNotAFile = errors.New("not a regular file")

// ResolveFile checks that path exists and is a regular file, then returns
// its absolute path.
func ResolveFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to access %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%s: %w", path, ErrNotAFile)
	}

	absPath, err := filepath.Abs(path)
	if err == nil {
		path = absPath
	}
	return path, nil
}

// SplitExt splits path into root and extension. Leading dots of the base
// name are part of the root, so ".profile" has no extension.
func SplitExt(path string) (root, ext string) {
	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) {
		return path, ""
	}
	name := strings.TrimLeft(base, ".")
	dot := strings.LastIndex(name, ".")
	if dot < 0 {
		return path, ""
	}
	ext = name[dot:]
	return strings.TrimSuffix(path, ext), ext
}

// OutputPath replaces the extension of input with ext, keeping its directory.
func OutputPath(input, ext string) string {
	root, _ := SplitExt(input)
	return root + ext
}

// ExpandInputs expands each argument as a glob (including "**") and returns
// the matching files in argument order without duplicates. An argument
// without glob characters is returned as is so a missing file is reported
// by whoever opens it.
func ExpandInputs(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[{") {
			add(arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", arg)
		}
		sort.Strings(matches)
		for _, m := range matches {
			add(m)
		}
	}
	return out, nil
}
