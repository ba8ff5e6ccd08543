package basedir

import (
	"fmt"
	"os"
	"path/filepath"
)

// FindConfigFile finds the given suffix in order of priority. First, XDG_CONFIG_HOME is checked,
// then, each dir in XDG_CONFIG_DIRS is checked.
// An empty path and a nil error are returned if the file exists in none of them.
// Example for suffix: xdgmime/config.yaml.
func FindConfigFile(suffix string) (string, error) {
	found, err := findFiles(suffix, ConfigHome, ConfigDirs, true)
	if err != nil || len(found) == 0 {
		return "", err
	}

	return found[0], nil
}

// FindDataFiles returns every existing $dir/suffix for XDG_DATA_HOME and XDG_DATA_DIRS, highest
// priority first.
// The shared MIME-info database merges files from all data directories, so unlike
// FindConfigFile, the search does not stop at the first hit.
// Example for suffix: mime/globs2.
func FindDataFiles(suffix string) ([]string, error) {
	return findFiles(suffix, DataHome, DataDirs, false)
}

func findFiles(suffix string, primary string, secondary []string, firstOnly bool) ([]string, error) {
	var result []string

	dirs := make([]string, 0, len(secondary)+1)
	if primary != "" {
		dirs = append(dirs, primary)
	}
	dirs = append(dirs, secondary...)

	for _, dir := range dirs {
		path := filepath.Join(dir, suffix)
		_, err := os.Stat(path)
		switch {
		case err == nil:
			result = append(result, path)
			if firstOnly {
				return result, nil
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
	}

	return result, nil
}
