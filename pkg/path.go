package pkg

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// Prefix returns the base name used for the per-user configuration and cache
// directories.
//
// By default, Prefix is the base name of the executable file unless it matches
// one of the following substitution rules:
//   - "__debug_bin" (default output of the dlv debugger): replaced with [Name]
//   - "^\.+" (dot-prefixed names): remove the dot prefix
//
//nolint:gochecknoglobals
var Prefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		exe, err := os.Executable()
		if err == nil {
			id = exe
		}

		ext := filepath.Ext(filepath.Base(id))
		id = strings.TrimSuffix(filepath.Base(id), ext)

		for rex, rep := range map[*regexp.Regexp]string{
			regexp.MustCompile(`^__debug_bin\d+$`): Name, // default output from dlv
			regexp.MustCompile(`^\.+`):             "",   // remove leading dot(s)
		} {
			id = rex.ReplaceAllString(id, rep)
		}

		if id == "" {
			return Name
		}

		return id
	},
)

// ConfigDir returns the configuration directory path. It holds config.yaml.
//
//nolint:gochecknoglobals
var ConfigDir = sync.OnceValue(
	func() string { return userDir(os.UserConfigDir, ".config") },
)

// CacheDir returns the cache directory path used for transient files such as
// REPL history and profiles.
//
//nolint:gochecknoglobals
var CacheDir = sync.OnceValue(
	func() string { return userDir(os.UserCacheDir, ".cache") },
)

// userDir resolves a per-user directory, falling back to a hidden directory
// under $HOME and then to the working directory.
func userDir(base func() (string, error), hidden string) string {
	dir, err := base()
	if err != nil {
		dir, err = os.UserHomeDir()
		if err == nil {
			dir = filepath.Join(dir, hidden)
		} else if dir, err = os.Getwd(); err != nil {
			dir = "."
		}
	}

	return filepath.Join(dir, Prefix())
}
