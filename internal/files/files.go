package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/oukeidos/tmxline/internal/logger"
)

// AtomicWrite writes data to a temp file and renames it into place. It is
// meant for bounded outputs; streaming outputs are written in place.
func AtomicWrite(path string, data []byte, perms os.FileMode) error {
	if err := RejectSymlinkPath(path); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, "tmxline-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	cleanup := true
	defer func() {
		if cleanup {
			tmpFile.Close()
			os.Remove(tmpPath)
		}
	}()

	if err := tmpFile.Chmod(perms); err != nil {
		return fmt.Errorf("failed to set temp file permissions: %w", err)
	}
	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := renameAtomic(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to destination: %w", err)
	}
	if err := syncDir(dir); err != nil {
		logger.Warn("Directory fsync failed (safe to ignore on some platforms)", "path", dir, "error", err)
	}

	cleanup = false
	return nil
}

func renameAtomic(oldPath, newPath string) error {
	err := os.Rename(oldPath, newPath)
	if err != nil && runtime.GOOS == "windows" {
		// Windows cannot rename over an existing file.
		if removeErr := os.Remove(newPath); removeErr == nil {
			err = os.Rename(oldPath, newPath)
		}
	}
	return err
}

func syncDir(dir string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}

// RejectSymlinkPath returns an error if the path or any parent component is
// a symlink. Output paths are resolved before anything is written to them.
func RejectSymlinkPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path is empty")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	volume := filepath.VolumeName(abs)
	rest := strings.TrimLeft(abs[len(volume):], string(os.PathSeparator))

	var current string
	if volume != "" {
		current = volume + string(os.PathSeparator)
	} else if filepath.IsAbs(abs) {
		current = string(os.PathSeparator)
	}

	for _, part := range strings.Split(rest, string(os.PathSeparator)) {
		if part == "" {
			continue
		}
		current = filepath.Join(current, part)
		info, err := os.Lstat(current)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return fmt.Errorf("failed to access path: %w", err)
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("refusing to write to symlink path: %s (symlink detected at %s)", abs, current)
		}
	}
	return nil
}
