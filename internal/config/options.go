// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Kind is the value type an option accepts.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindNumber
	KindBool
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindArray:
		return "array"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Scope tells where an option may be set.
type Scope int

const (
	// ScopeAll options are accepted as flags and as config file keys.
	ScopeAll Scope = iota
	// ScopeCLI options only steer the loader and never reach Config.
	ScopeCLI
	// ScopeFile options have no flag.
	ScopeFile
	// ScopeMeta options (help, version) short-circuit the invocation.
	ScopeMeta
)

// Option describes one recognized setting. The parser registers flags from
// it and the merger and validator use it to normalize and check values.
type Option struct {
	Name    string
	Short   string
	Aliases []string
	Key     string
	Kind    Kind
	Choices []string
	Scope   Scope
	Usage   func(d Config) string

	// Coerce rewrites a command-line value before it enters the CLI layer.
	Coerce func(v any) (any, error)

	// Check validates the merged value. It may normalize the field in place.
	Check func(c *Config) error
}

// InFile reports whether the option may appear in a config file.
func (o Option) InFile() bool {
	return o.Scope == ScopeAll || o.Scope == ScopeFile
}

// HasFlag reports whether the option is registered as a command-line flag.
func (o Option) HasFlag() bool {
	return o.Scope != ScopeFile
}

const (
	KeyConfig   = "config"
	KeyNoConfig = "noConfig"
	KeyHelp     = "help"
	KeyVersion  = "version"
)

// Options is the declarative option table, in help and validation order.
var Options = []Option{
	{
		Name: "help", Short: "h", Key: KeyHelp, Kind: KindBool, Scope: ScopeMeta,
		Usage: func(Config) string { return "show help" },
	},
	{
		Name: "version", Short: "v", Key: KeyVersion, Kind: KindBool, Scope: ScopeMeta,
		Usage: func(Config) string { return "show version number" },
	},
	{
		Name: "flow-command-path", Short: "f", Key: "flowCommandPath", Kind: KindString,
		Usage: func(d Config) string {
			return fmt.Sprintf("path to the flow executable (defaults to %q)", d.FlowCommandPath)
		},
		Coerce: CoerceCommandPath,
		Check: func(c *Config) error {
			if strings.TrimSpace(c.FlowCommandPath) == "" {
				return Usagef("flowCommandPath must not be empty, got %q", c.FlowCommandPath)
			}
			return nil
		},
	},
	{
		Name: "flow-command-timeout", Key: "flowCommandTimeout", Kind: KindInt,
		Usage: func(d Config) string {
			return fmt.Sprintf("maximum number of milliseconds to wait for a flow response (defaults to %d)", d.FlowCommandTimeout)
		},
		Check: func(c *Config) error {
			if c.FlowCommandTimeout <= 0 {
				return Usagef("flowCommandTimeout must be a positive number of milliseconds, got %d", c.FlowCommandTimeout)
			}
			return nil
		},
	},
	{
		Name: "type", Short: "t", Aliases: []string{"reportTypes"}, Key: "reportTypes", Kind: KindArray,
		Choices: ReportTypeChoices,
		Usage: func(d Config) string {
			return fmt.Sprintf("format of the generated reports (defaults to %q)", strings.Join(d.ReportTypes, ", "))
		},
		Check: func(c *Config) error {
			if len(c.ReportTypes) == 0 {
				return Usagef("reportTypes must list at least one of %s, got []", strings.Join(ReportTypeChoices, ", "))
			}
			for _, t := range c.ReportTypes {
				if !slices.Contains(ReportTypeChoices, t) {
					return Usagef("reportTypes contains unknown report type %q (choices: %s)", t, strings.Join(ReportTypeChoices, ", "))
				}
			}
			return nil
		},
	},
	{
		Name: "project-dir", Short: "p", Key: "projectDir", Kind: KindString,
		Usage: func(d Config) string {
			return fmt.Sprintf("select the project dir path (defaults to %q)", d.ProjectDir)
		},
		Check: checkProjectDir,
	},
	{
		Name: "include-glob", Short: "i", Aliases: []string{"globIncludePatterns"}, Key: "globIncludePatterns", Kind: KindArray,
		Usage: func(Config) string { return "include the files selected by the specified glob" },
		Check: func(c *Config) error {
			if len(c.GlobIncludePatterns) == 0 {
				return Usagef("globIncludePatterns must contain at least one include glob, got []")
			}
			return nil
		},
	},
	{
		Name: "exclude-glob", Short: "x", Aliases: []string{"globExcludePatterns"}, Key: "globExcludePatterns", Kind: KindArray,
		Usage: func(d Config) string {
			encoded, _ := json.Marshal(d.GlobExcludePatterns)
			return fmt.Sprintf("exclude the files selected by the specified glob (defaults to \"%s\")", encoded)
		},
	},
	{
		Name: "threshold", Key: "threshold", Kind: KindNumber,
		Usage: func(d Config) string {
			return fmt.Sprintf("the minimum coverage percent requested (defaults to %v)", d.Threshold)
		},
		Check: func(c *Config) error {
			if math.IsNaN(c.Threshold) || math.IsInf(c.Threshold, 0) || c.Threshold < 0 || c.Threshold > 100 {
				return Usagef("threshold must be a number between 0 and 100, got %v", c.Threshold)
			}
			return nil
		},
	},
	{
		Name: "percent-decimals", Aliases: []string{"percentDecimals"}, Key: "percentDecimals", Kind: KindInt,
		Usage: func(Config) string { return "the number of decimals used for the computed percent values" },
		Check: func(c *Config) error {
			if c.PercentDecimals < 0 || c.PercentDecimals > 20 {
				return Usagef("percentDecimals must be between 0 and 20, got %d", c.PercentDecimals)
			}
			return nil
		},
	},
	{
		Name: "output-dir", Short: "o", Key: "outputDir", Kind: KindString,
		Usage: func(d Config) string {
			return fmt.Sprintf("output html or json files to this folder relative to project-dir (defaults to %q)", d.OutputDir)
		},
	},
	{
		Name: "concurrent-files", Short: "c", Key: "concurrentFiles", Kind: KindInt,
		Usage: func(d Config) string {
			return fmt.Sprintf("the maximum number of files concurrently submitted to flow (defaults to %d)", d.ConcurrentFiles)
		},
		Check: func(c *Config) error {
			if c.ConcurrentFiles <= 0 {
				return Usagef("concurrentFiles must be a positive integer, got %d", c.ConcurrentFiles)
			}
			return nil
		},
	},
	{
		Name: "strict-coverage", Key: "strictCoverage", Kind: KindBool,
		Usage: func(Config) string {
			return "non annotated and flow weak files are considered as completely uncovered. " +
				"Default behavior is for flow to best-guess coverage on all the files included in the report."
		},
	},
	{
		Name: "exclude-non-flow", Key: "excludeNonFlow", Kind: KindBool,
		Usage: func(Config) string { return "excludes files without flow annotation from the report" },
	},
	{
		Name: "no-flow-output", Key: "noFlowOutput", Kind: KindBool, Scope: ScopeFile,
	},
	{
		Name: "no-config", Key: KeyNoConfig, Kind: KindBool, Scope: ScopeCLI,
		Usage: func(Config) string { return "do not load any config file from the project dir" },
	},
	{
		Name: "config", Key: KeyConfig, Kind: KindString, Scope: ScopeCLI,
		Usage: func(Config) string { return "file path of the config file to load" },
	},
}

// Lookup finds an option by its config key.
func Lookup(key string) (Option, bool) {
	for _, opt := range Options {
		if opt.Key == key {
			return opt, true
		}
	}
	return Option{}, false
}

// CoerceCommandPath resolves "./"-relative command paths against the current
// working directory. Any other string is returned unchanged.
func CoerceCommandPath(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, &TypeError{Value: v}
	}
	if !strings.HasPrefix(s, "./") {
		return s, nil
	}
	abs, err := filepath.Abs(s)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", s, err)
	}
	return abs, nil
}

func checkProjectDir(c *Config) error {
	dir, err := ResolvePath(c.ProjectDir)
	if err != nil {
		return &UsageError{Msg: fmt.Sprintf("projectDir %q cannot be resolved", c.ProjectDir), Err: err}
	}
	dir, err = filepath.Abs(dir)
	if err != nil {
		return &UsageError{Msg: fmt.Sprintf("projectDir %q cannot be resolved", c.ProjectDir), Err: err}
	}
	info, err := os.Stat(dir)
	if err != nil {
		return Usagef("projectDir must be an existing directory, got %q", c.ProjectDir)
	}
	if !info.IsDir() {
		return Usagef("projectDir must be a directory, got %q", c.ProjectDir)
	}
	c.ProjectDir = dir
	return nil
}
