package logmanager

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// BinName returns the file name of the running executable
func BinName() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmtErrorf("%w: %v", ErrBinPathNotFound, err)
	}
	name := filepath.Base(exe)
	if runtime.GOOS == "windows" {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", fmtErrorf("%w: %s", ErrBinNameNotFound, exe)
	}
	return name, nil
}

// DataLocalDir returns the per-user local data directory of the platform:
// $XDG_DATA_HOME or ~/.local/share on Unix, ~/Library/Application Support
// on macOS, %LOCALAPPDATA% on Windows.
func DataLocalDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return dir, nil
		}
		return "", ErrDirectoryDataLocalNotFound
	case "darwin", "ios":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmtErrorf("%w: %v", ErrDirectoryDataLocalNotFound, err)
		}
		return filepath.Join(home, "Library", "Application Support"), nil
	default:
		if dir := os.Getenv("XDG_DATA_HOME"); dir != "" && filepath.IsAbs(dir) {
			return dir, nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmtErrorf("%w: %v", ErrDirectoryDataLocalNotFound, err)
		}
		return filepath.Join(home, ".local", "share"), nil
	}
}

// ResolveDirectory returns <data-local dir>/<binary name>. Failures wrap
// ErrDirectoryResolutionFailed as well as the specific cause.
func ResolveDirectory() (string, error) {
	name, err := BinName()
	if err != nil {
		return "", fmtErrorf("%w: %w", ErrDirectoryResolutionFailed, err)
	}
	base, err := DataLocalDir()
	if err != nil {
		return "", fmtErrorf("%w: %w", ErrDirectoryResolutionFailed, err)
	}
	return filepath.Join(base, name), nil
}

// NewDefault parses the textual inputs, resolves the directory and installs
// a manager into DefaultRegistry
func NewDefault(level, rotation string, maxFiles int) (*Manager, error) {
	levelVal, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	rotationVal, err := ParseRotation(rotation)
	if err != nil {
		return nil, err
	}
	if maxFiles < 0 {
		return nil, fmtErrorf("max log files cannot be negative: %d", maxFiles)
	}
	dir, err := ResolveDirectory()
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	cfg.Level = levelVal
	cfg.Rotation = rotationVal
	cfg.MaxLogFiles = int64(maxFiles)
	cfg.Directory = dir

	return New(cfg, WithRegistry(DefaultRegistry()))
}
