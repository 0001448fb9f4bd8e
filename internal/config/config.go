// Package config locates and decodes bibadac.toml. The file is discovered
// by walking up from the working directory, so an invocation anywhere inside
// a project picks up the project's configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"bibadac/internal/diag"
	"bibadac/internal/formatter"
	"bibadac/internal/rules"
)

// FileName is the manifest file searched for.
const FileName = "bibadac.toml"

// Config mirrors the bibadac.toml layout.
type Config struct {
	Check  CheckConfig  `toml:"check"`
	Format FormatConfig `toml:"format"`
}

// CheckConfig configures the rule engine.
type CheckConfig struct {
	// Severity maps rule IDs to "info", "warning" or "error".
	Severity map[string]string `toml:"severity"`
	// Disabled lists rule IDs to switch off.
	Disabled []string `toml:"disabled"`
	// AllowedFields are field keys unknown-field accepts.
	AllowedFields []string `toml:"allowed-fields"`
	// MaxDiagnostics caps the diagnostics kept per run.
	MaxDiagnostics int `toml:"max-diagnostics"`
}

// FormatConfig configures the printer.
type FormatConfig struct {
	Indent        string   `toml:"indent"`
	Delimiter     string   `toml:"delimiter"`    // "brace" or "quote"
	SortEntries   string   `toml:"sort-entries"` // "none" or "key"
	FieldOrder    []string `toml:"field-order"`
	DropFields    []string `toml:"drop-fields"`
	KeepFields    []string `toml:"keep-fields"`
	AlignEquals   bool     `toml:"align-equals"`
	WrapWidth     int      `toml:"wrap-width"`
	ResolveMacros bool     `toml:"resolve-macros"`
	FormatAuthors bool     `toml:"format-authors"`
}

// Find walks up from startDir to locate bibadac.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load discovers and decodes the configuration. A missing file yields the
// zero Config, not an error.
func Load(startDir string) (Config, string, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return Config{}, "", err
	}
	cfg, err := Decode(path)
	return cfg, path, err
}

// Decode parses one bibadac.toml file.
func Decode(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	for id, sev := range c.Check.Severity {
		if _, ok := diag.CodeByID(id); !ok {
			return fmt.Errorf("unknown rule %q in [check.severity]", id)
		}
		if _, ok := diag.ParseSeverity(sev); !ok {
			return fmt.Errorf("invalid severity %q for rule %q", sev, id)
		}
	}
	for _, id := range c.Check.Disabled {
		if _, ok := diag.CodeByID(id); !ok {
			return fmt.Errorf("unknown rule %q in [check].disabled", id)
		}
	}
	switch c.Format.Delimiter {
	case "", "brace", "quote":
	default:
		return fmt.Errorf("invalid delimiter %q, want \"brace\" or \"quote\"", c.Format.Delimiter)
	}
	switch c.Format.SortEntries {
	case "", "none", "key":
	default:
		return fmt.Errorf("invalid sort-entries %q, want \"none\" or \"key\"", c.Format.SortEntries)
	}
	return nil
}

// Rules converts the [check] section into the engine's configuration.
func (c Config) Rules() *rules.Config {
	out := &rules.Config{
		AllowedFields:  c.Check.AllowedFields,
		MaxDiagnostics: c.Check.MaxDiagnostics,
	}
	if len(c.Check.Severity) > 0 {
		out.Severity = make(map[string]diag.Severity, len(c.Check.Severity))
		for id, s := range c.Check.Severity {
			sev, _ := diag.ParseSeverity(s)
			out.Severity[id] = sev
		}
	}
	if len(c.Check.Disabled) > 0 {
		out.Disabled = make(map[string]bool, len(c.Check.Disabled))
		for _, id := range c.Check.Disabled {
			out.Disabled[id] = true
		}
	}
	return out
}

// Style converts the [format] section into a formatter style.
func (c Config) Style() formatter.Style {
	style := formatter.DefaultStyle()
	if c.Format.Indent != "" {
		style.Indent = c.Format.Indent
	}
	if c.Format.Delimiter == "quote" {
		style.Delimiter = formatter.DelimQuote
	}
	if c.Format.SortEntries == "key" {
		style.SortEntries = formatter.SortByKey
	}
	if len(c.Format.FieldOrder) > 0 {
		style.FieldOrder = c.Format.FieldOrder
	}
	style.DropFields = c.Format.DropFields
	style.KeepFields = c.Format.KeepFields
	style.AlignEquals = c.Format.AlignEquals
	style.WrapWidth = c.Format.WrapWidth
	style.ResolveMacros = c.Format.ResolveMacros
	style.FormatAuthors = c.Format.FormatAuthors
	return style
}
