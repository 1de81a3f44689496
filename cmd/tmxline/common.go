package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/oukeidos/tmxline/internal/logger"
)

func signalContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Warn("Cancellation requested")
		cancel()
	}()
	stop := func() {
		signal.Stop(sigCh)
		cancel()
	}
	return ctx, stop
}

func validateExtension(kind, path string, supported map[string]struct{}) error {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := supported[ext]; ok {
		return nil
	}
	if ext == "" {
		ext = "(none)"
	}
	return fmt.Errorf("unsupported %s extension %q (supported: %s)", kind, ext, extensionsLabel(supported))
}

func extensionsLabel(supported map[string]struct{}) string {
	exts := make([]string, 0, len(supported))
	for ext := range supported {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}

// ensureOutputDir creates the parent directory of an output path when it
// does not exist yet.
func ensureOutputDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
