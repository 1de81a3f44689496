package pipeline

import (
	"fmt"
	"strings"
)

// Config holds everything required for one conversion run. Counters and the
// in-progress unit live in the run, never in package state, so concurrent
// runs stay isolated.
type Config struct {
	// IO Paths
	InputPath  string
	OutputPath string

	// Languages routed to the record's source and target fields.
	SourceLang string
	TargetLang string

	// Limit stops the run after this many valid records; 0 means no limit.
	// The check is cooperative: it runs after each completed unit and never
	// interrupts a partially read one.
	Limit int64

	// Silent keeps the progress counter but drops the record preview.
	Silent bool

	// Overwrite skips the confirmation when the output file exists.
	Overwrite bool

	// OnConfirmOverwrite is called when the output file exists and
	// Overwrite is unset. Returning false skips the run.
	OnConfirmOverwrite func(path string) bool
}

// Normalize lowercases the language binding and reports adjustments.
func (c Config) Normalize() (Config, []string) {
	var notes []string
	if src := strings.ToLower(strings.TrimSpace(c.SourceLang)); src != c.SourceLang {
		notes = append(notes, fmt.Sprintf("source language normalized from %q to %q", c.SourceLang, src))
		c.SourceLang = src
	}
	if tgt := strings.ToLower(strings.TrimSpace(c.TargetLang)); tgt != c.TargetLang {
		notes = append(notes, fmt.Sprintf("target language normalized from %q to %q", c.TargetLang, tgt))
		c.TargetLang = tgt
	}
	return c, notes
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if strings.TrimSpace(c.InputPath) == "" {
		return fmt.Errorf("input path is required")
	}
	if strings.TrimSpace(c.OutputPath) == "" {
		return fmt.Errorf("output path is required")
	}
	if c.SourceLang == "" {
		return fmt.Errorf("source language is required")
	}
	if c.TargetLang == "" {
		return fmt.Errorf("target language is required")
	}
	if c.SourceLang == c.TargetLang {
		return fmt.Errorf("source and target languages must be different (%s)", c.SourceLang)
	}
	if c.Limit < 0 {
		return fmt.Errorf("limit must be 0 or greater, got %d", c.Limit)
	}
	return nil
}
