package iofio

import "path/filepath"

// matchGlob reports whether name matches pattern, using shell-style
// wildcards. A malformed pattern is treated as no match rather than
// propagated as an error, since it is checked once per directory entry.
func matchGlob(pattern, name string) (bool, error) {
	ok, err := filepath.Match(pattern, name)
	if err != nil {
		return false, nil
	}
	return ok, nil
}
