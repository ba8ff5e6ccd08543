// Package basedir contains the environment variables of the
// [XDG Base Directory Specification] that are needed to locate the shared MIME-info database
// and the configuration of xdgmime.
//
// [XDG Base Directory Specification]: https://specifications.freedesktop.org/basedir-spec/0.8/
package basedir

import (
	"os"
	"path/filepath"
	"strings"
)

var (
	// ConfigHome is the single base directory relative to which user-specific configuration files
	// should be written. This directory is defined by the environment variable $XDG_CONFIG_HOME.
	ConfigHome string

	// ConfigDirs is a set of preference ordered base directories relative to which configuration
	// files should be searched. This set of directories is defined by the environment
	// variable $XDG_CONFIG_DIRS.
	ConfigDirs []string

	// DataHome is a single base directory relative to which user-specific data files should be
	// written. This directory is defined by the environment variable $XDG_DATA_HOME.
	// User-installed MIME types live in $XDG_DATA_HOME/mime.
	DataHome string

	// DataDirs is a set of preference ordered base directories relative to which data files should
	// be searched. This set of directories is defined by the environment variable $XDG_DATA_DIRS.
	DataDirs []string

	// Home is the equivalent of $HOME. It will always be non-empty.
	Home string
)

func init() {
	Reinit()
}

// Reinit reinitializes the basedir values. Use this if you change XDG environment variables.
func Reinit() {
	home := os.Getenv("HOME")
	if home == "" {
		// $HOME must always be set in a POSIX environment.
		panic("$HOME environment variable not set")
	}

	ConfigHome = singleVar("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	ConfigDirs = listVar("XDG_CONFIG_DIRS", []string{"/etc/xdg"})
	DataDirs = listVar("XDG_DATA_DIRS", []string{"/usr/local/share/", "/usr/share/"})
	DataHome = singleVar("XDG_DATA_HOME", filepath.Join(home, ".local/share"))
	Home = home
}

// DataSearchPath returns DataHome followed by DataDirs, highest precedence first.
func DataSearchPath() []string {
	dirs := make([]string, 0, len(DataDirs)+1)
	dirs = append(dirs, DataHome)
	return append(dirs, DataDirs...)
}

func singleVar(envName string, defaultValue string) string {
	envValue := os.Getenv(envName)
	if envValue == "" || !filepath.IsAbs(envValue) {
		return defaultValue
	}

	return envValue
}

func listVar(envName string, defaultValue []string) []string {
	envValue := os.Getenv(envName)
	if envValue == "" {
		return defaultValue
	}

	result := make([]string, 0)
	for _, path := range strings.Split(envValue, ":") {
		if path == "" || !filepath.IsAbs(path) {
			continue
		}

		result = append(result, path)
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}
