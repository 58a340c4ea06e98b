// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the codemod rules: denylists, text heuristics,
// key limits, output names and print options.
package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// Embedded Defaults
// =============================================================================

//go:embed defaults.yaml
var defaultConfigYAML []byte

// MaxConfigFileSize bounds project configuration files.
const MaxConfigFileSize = 1 << 20

// ProjectConfigNames are the file names searched by Discover, in order.
var ProjectConfigNames = []string{".intlcodemodrc.yaml", ".intlcodemodrc.yml", "intl-codemod.yaml"}

var tracer = otel.Tracer("github.com/shamrt/ast-react-intl/services/codemod/config")

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid codemod config")

// =============================================================================
// Configuration Types
// =============================================================================

// Config holds all codemod rules.
//
// Thread Safety: Immutable after loading; safe for concurrent use.
type Config struct {
	// DenylistedAttributeNames are attribute names never rewritten.
	DenylistedAttributeNames []string `yaml:"denylisted_attribute_names"`

	// DenylistedCallCallees are callees whose arguments are never rewritten.
	DenylistedCallCallees []string `yaml:"denylisted_call_callees"`

	// IgnoredAttributePatterns are regular expressions for attribute and
	// object key names that never hold text.
	IgnoredAttributePatterns []string `yaml:"ignored_attribute_patterns" validate:"dive,regexp"`

	// TextAttributePatterns are regular expressions for names that
	// usually hold text.
	TextAttributePatterns []string `yaml:"text_attribute_patterns" validate:"dive,regexp"`

	// SVGElementNames are elements whose attributes are left alone.
	SVGElementNames []string `yaml:"svg_element_names"`

	// ValidationMethod makes member calls like schema.required('...') eligible.
	ValidationMethod string `yaml:"validation_method"`

	// MaxKeyLength bounds derived catalog keys.
	MaxKeyLength int `yaml:"max_key_length" validate:"gte=1,lte=200"`

	// ExcludePattern matches file paths skipped as tests.
	ExcludePattern string `yaml:"exclude_pattern" validate:"regexp"`

	// Extensions are the source file extensions processed.
	Extensions []string `yaml:"extensions" validate:"min=1,dive,startswith=."`

	// EmitIDs adds the derived key as the descriptor id.
	EmitIDs bool `yaml:"emit_ids"`

	// Description is added to every generated descriptor when non-empty.
	Description string `yaml:"description"`

	// ContentForm selects "component" or "call" lookups for element content.
	ContentForm string `yaml:"content_form" validate:"oneof=component call"`

	Intl  IntlConfig  `yaml:"intl"`
	Print PrintConfig `yaml:"print"`
}

// IntlConfig names the localization API the generated code targets.
type IntlConfig struct {
	ImportSource string `yaml:"import_source" validate:"required"`
	Hook         string `yaml:"hook" validate:"required,jsident"`
	Accessor     string `yaml:"accessor" validate:"required,jsident"`
	Method       string `yaml:"method" validate:"required,jsident"`
	Component    string `yaml:"component" validate:"required,jsident"`
}

// PrintConfig controls generated code formatting.
type PrintConfig struct {
	Quote          string `yaml:"quote" validate:"oneof=single double"`
	TrailingComma  bool   `yaml:"trailing_comma"`
	LineTerminator string `yaml:"line_terminator" validate:"lineterminator"`
}

const (
	// ContentFormComponent rewrites element content to a component lookup.
	ContentFormComponent = "component"

	// ContentFormCall rewrites element content to an accessor call.
	ContentFormCall = "call"
)

// =============================================================================
// Singleton Config
// =============================================================================

var (
	configMu      sync.RWMutex
	configOnce    sync.Once
	cachedConfig  *Config
	configLoadErr error
)

// Get returns the process-wide configuration.
//
// Description:
//
//	Loads the embedded defaults overlaid with the project file discovered
//	from the working directory on first call and caches the result.
//
// Inputs:
//
//	ctx - Context for tracing. Must not be nil.
//
// Outputs:
//
//	*Config - The loaded configuration. Never nil on success.
//	error - Non-nil if loading or validation failed.
//
// Thread Safety: Safe for concurrent use.
func Get(ctx context.Context) (*Config, error) {
	if ctx == nil {
		return nil, fmt.Errorf("config.Get: ctx must not be nil")
	}

	configMu.RLock()
	if cachedConfig != nil || configLoadErr != nil {
		cfg, err := cachedConfig, configLoadErr
		configMu.RUnlock()
		return cfg, err
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()

	configOnce.Do(func() {
		cachedConfig, configLoadErr = loadDiscovered(ctx)
	})
	return cachedConfig, configLoadErr
}

// Reset clears the cached configuration so tests can reload it.
func Reset() {
	configMu.Lock()
	defer configMu.Unlock()
	cachedConfig = nil
	configLoadErr = nil
	configOnce = sync.Once{}
}

func loadDiscovered(ctx context.Context) (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return Load(ctx, nil)
	}
	path, ok := Discover(wd)
	if !ok {
		return Load(ctx, nil)
	}
	return LoadFile(ctx, path)
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg, err := Load(context.Background(), nil)
	if err != nil {
		panic(fmt.Sprintf("embedded config defaults are invalid: %v", err))
	}
	return cfg
}

// Discover looks for a project configuration file in dir and its parents.
func Discover(dir string) (string, bool) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		for _, name := range ProjectConfigNames {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// LoadFile loads the defaults overlaid with the YAML file at path.
func LoadFile(ctx context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.LoadFile: %w", err)
	}
	cfg, err := Load(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("config.LoadFile %s: %w", path, err)
	}
	slog.Debug("project codemod config applied", slog.String("path", path))
	return cfg, nil
}

// Load parses the embedded defaults, overlays override (which may be
// empty), applies defaults for zero values and validates the result.
// Keys present in override replace the defaults; lists are not merged.
func Load(ctx context.Context, override []byte) (*Config, error) {
	_, span := tracer.Start(ctx, "config.Load")
	defer span.End()

	if len(override) > MaxConfigFileSize {
		err := fmt.Errorf("config.Load: override exceeds maximum size (%d > %d)", len(override), MaxConfigFileSize)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(defaultConfigYAML, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parsing defaults: %w", err)
	}
	if len(override) > 0 {
		if err := yaml.Unmarshal(override, &cfg); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "parse override")
			return nil, fmt.Errorf("config.Load: parsing YAML: %w", err)
		}
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation")
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	span.SetAttributes(
		attribute.Int("denylisted_attribute_names", len(cfg.DenylistedAttributeNames)),
		attribute.Int("denylisted_call_callees", len(cfg.DenylistedCallCallees)),
		attribute.Int("max_key_length", cfg.MaxKeyLength),
		attribute.String("content_form", cfg.ContentForm),
		attribute.Bool("override", len(override) > 0),
	)

	slog.Debug("codemod config loaded",
		slog.Int("denylisted_attribute_names", len(cfg.DenylistedAttributeNames)),
		slog.Int("denylisted_call_callees", len(cfg.DenylistedCallCallees)),
		slog.Int("max_key_length", cfg.MaxKeyLength),
		slog.String("content_form", cfg.ContentForm),
	)

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.MaxKeyLength == 0 {
		cfg.MaxKeyLength = 40
	}
	if cfg.ContentForm == "" {
		cfg.ContentForm = ContentFormComponent
	}
	if cfg.Print.Quote == "" {
		cfg.Print.Quote = "single"
	}
	if cfg.Print.LineTerminator == "" {
		cfg.Print.LineTerminator = "\n"
	}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
	jsIdentRe    = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)
)

func configValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("regexp", func(fl validator.FieldLevel) bool {
			_, err := regexp.Compile(fl.Field().String())
			return err == nil
		})
		_ = validate.RegisterValidation("jsident", func(fl validator.FieldLevel) bool {
			return jsIdentRe.MatchString(fl.Field().String())
		})
		_ = validate.RegisterValidation("lineterminator", func(fl validator.FieldLevel) bool {
			v := fl.Field().String()
			return v == "\n" || v == "\r\n"
		})
	})
	return validate
}

// validateConfig checks field constraints declared in struct tags.
func validateConfig(cfg *Config) error {
	if err := configValidator().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return fmt.Errorf("%w: %s failed %q", ErrInvalidConfig, first.Namespace(), first.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// QuoteRune returns the configured quote character.
func (p PrintConfig) QuoteRune() rune {
	if p.Quote == "double" {
		return '"'
	}
	return '\''
}
