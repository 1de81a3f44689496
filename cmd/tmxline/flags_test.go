package main

import (
	"strings"
	"testing"
)

func TestRootCmdHasSubcommands(t *testing.T) {
	cmd := newRootCmd()
	want := []string{"about", "convert", "jsonl", "chat", "alpaca", "parquet", "completion"}
	for _, name := range want {
		if !isSubcommand(cmd, name) {
			t.Errorf("expected subcommand %q", name)
		}
	}
	if isSubcommand(cmd, "nope") {
		t.Error("unexpected subcommand nope")
	}
}

func TestRootCmdConvertFlagDefaults(t *testing.T) {
	cmd := newRootCmd()
	cases := []struct {
		flag string
		want string
	}{
		{"source", "en"},
		{"target", "zh_cn"},
		{"limit", "0"},
		{"silent", "false"},
		{"verbose", "false"},
		{"debug", "false"},
		{"yes", "false"},
		{"log-file", ""},
	}
	for _, tc := range cases {
		f := cmd.Flags().Lookup(tc.flag)
		if f == nil {
			t.Errorf("missing flag --%s", tc.flag)
			continue
		}
		if f.DefValue != tc.want {
			t.Errorf("flag --%s: expected default %q, got %q", tc.flag, tc.want, f.DefValue)
		}
	}
}

func TestEnvDefaultsOverride(t *testing.T) {
	t.Setenv("TMXLINE_SOURCE", "de")
	t.Setenv("TMXLINE_TARGET", "fr")
	d := loadEnvDefaults()
	if d.SourceLang != "de" || d.TargetLang != "fr" {
		t.Errorf("environment must preset flag defaults, got %+v", d)
	}
}

func TestEnvDefaultsFallback(t *testing.T) {
	d := loadEnvDefaults()
	if d.SourceLang != "en" || d.TargetLang != "zh_cn" {
		t.Errorf("expected built-in defaults, got %+v", d)
	}
}

func TestValidateConvertPathExtensions(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		output string
		valid  bool
	}{
		{"tmx to jsonl", "in.tmx", "out.jsonl", true},
		{"xml to ndjson", "in.xml", "out.ndjson", true},
		{"uppercase extensions", "IN.TMX", "OUT.JSONL", true},
		{"bad input", "in.srt", "out.jsonl", false},
		{"bad output", "in.tmx", "out.json", false},
		{"no extension", "input", "out.jsonl", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateConvertPathExtensions(tc.input, tc.output)
			if tc.valid && err != nil {
				t.Errorf("expected valid paths, got %v", err)
			}
			if !tc.valid && err == nil {
				t.Error("expected an extension error")
			}
		})
	}
}

func TestValidateExtensionErrorListsSupported(t *testing.T) {
	err := validateConvertPathExtensions("in.srt", "out.jsonl")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), ".tmx") || !strings.Contains(err.Error(), ".xml") {
		t.Errorf("error should list supported extensions, got %v", err)
	}
}

func TestRootCmdVersionSet(t *testing.T) {
	cmd := newRootCmd()
	if cmd.Version == "" {
		t.Error("expected a version string")
	}
	if !strings.Contains(cmd.Version, "tmxline") {
		t.Errorf("version should name the binary, got %q", cmd.Version)
	}
}

func TestSubcommandFlags(t *testing.T) {
	cmd := newRootCmd()

	jsonlCmd, _, err := cmd.Find([]string{"jsonl"})
	if err != nil {
		t.Fatalf("jsonl command not found: %v", err)
	}
	if jsonlCmd.Flags().Lookup("no-validate") == nil {
		t.Error("jsonl command should have --no-validate")
	}

	chatCmd, _, err := cmd.Find([]string{"chat"})
	if err != nil {
		t.Fatalf("chat command not found: %v", err)
	}
	for _, flag := range []string{"no-reasoning", "validation-split", "validation-output", "random-seed"} {
		if chatCmd.Flags().Lookup(flag) == nil {
			t.Errorf("chat command should have --%s", flag)
		}
	}
	if chatCmd.Flags().Lookup("system-prompt") != nil {
		t.Error("chat command uses the fixed system prompt")
	}

	alpacaCmd, _, err := cmd.Find([]string{"alpaca"})
	if err != nil {
		t.Fatalf("alpaca command not found: %v", err)
	}
	if alpacaCmd.Flags().Lookup("system-prompt") == nil {
		t.Error("alpaca command should have --system-prompt")
	}

	parquetCmd, _, err := cmd.Find([]string{"parquet"})
	if err != nil {
		t.Fatalf("parquet command not found: %v", err)
	}
	if parquetCmd.Flags().Lookup("batch-rows") == nil {
		t.Error("parquet command should have --batch-rows")
	}
}
