// Package utils provides utility functions.
package utils

import (
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// ExpandPath expands tilde and all environment variables from the given path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}
	if strings.HasPrefix(path, "~") {
		if s, err := homedir.Expand(path); err == nil {
			path = s
		}
	}
	return os.ExpandEnv(path)
}
