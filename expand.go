package geocounts

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome expands a leading ~ to the home directory of the current user. If
// the home directory cannot be determined, the path is returned untouched.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
