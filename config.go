package peg

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the TOML-backed configuration surface for cmd/pegc (spec
// SPEC_FULL §4.H), restructured from clarete-langlang/go/config.go's
// typed sections onto github.com/BurntSushi/toml.
type Config struct {
	Grammar  GrammarConfig  `toml:"grammar"`
	Compiler CompilerConfig `toml:"compiler"`
	Emit     EmitConfig     `toml:"emit"`
	Log      LogConfig      `toml:"log"`
}

// GrammarConfig controls how Compiler.BuildRules assembles a grammar's
// live rules; it does not change how grammar source is parsed.
type GrammarConfig struct {
	// AddBuiltins splices EOF, Letter, Digit and Space into every
	// grammar's environment before its own declarations are processed
	// (Compiler.BuildRules), so a grammar author can reference them by
	// plain RuleCall without declaring them itself. A grammar that
	// declares its own rule under one of these names silently shadows
	// the builtin.
	AddBuiltins bool `toml:"add_builtins"`
	// HandleSpaces makes every rule without an explicit `skip` clause
	// inherit a default whitespace-and-comment skip rule, matching the
	// convenience most hand-written PEG grammars expect (spec §4.F
	// treats an explicit `skip` clause as always required; this option
	// is what lets pegc paper over that for casual grammars).
	HandleSpaces bool `toml:"handle_spaces"`
}

// CompilerConfig controls Compiler.Parse/Compile/BuildRules.
type CompilerConfig struct {
	// FurthestFailureReporting makes a failed parse report the
	// *furthest*-reaching ParseError (via ParseError.Deepest) instead
	// of the literal top-level error, usually the more actionable of
	// the two for a human reading a CLI failure.
	FurthestFailureReporting bool `toml:"furthest_failure_reporting"`
}

// EmitConfig controls Compiler.Compile's target-language output.
type EmitConfig struct {
	Target      string `toml:"target"`       // "go" or "python"
	PackageName string `toml:"package_name"` // Go target only
}

// LogConfig controls the process-wide Logger (log.go).
type LogConfig struct {
	Level string `toml:"level"` // "debug"|"info"|"warn"|"error"
}

// DefaultConfig mirrors the zero-config behaviour pegc has always had:
// builtins on, furthest-failure reporting on, Go output, info logging.
func DefaultConfig() Config {
	return Config{
		Grammar: GrammarConfig{
			AddBuiltins:  true,
			HandleSpaces: false,
		},
		Compiler: CompilerConfig{
			FurthestFailureReporting: true,
		},
		Emit: EmitConfig{
			Target:      "go",
			PackageName: "parser",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads and decodes a TOML config file, applying
// DefaultConfig first so a file only needs to override what it cares
// about.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("peg: loading config %q: %w", path, err)
	}
	return cfg, nil
}

// LoadConfigIfExists behaves like LoadConfig, but returns
// DefaultConfig without error when path doesn't exist — pegc's config
// flag is optional.
func LoadConfigIfExists(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}
