package settings

import (
	"os"
	"path/filepath"
)

// UserConfigFile returns the path of name inside the per-user config
// directory: $XDG_CONFIG_HOME/prodlookup, else ~/.config/prodlookup. It
// returns "" when neither can be determined.
func UserConfigFile(name string) string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, CliBinaryName, name)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", CliBinaryName, name)
}
