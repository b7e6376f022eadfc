// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"

	"flow-coverage-report/internal/config"
	"flow-coverage-report/internal/generator"
	"flow-coverage-report/internal/logger"

	"github.com/fatih/color"
)

// Exit codes of the flow-coverage-report process.
const (
	ExitOK             = 0
	ExitBelowThreshold = 2
	ExitFailure        = 255
)

var (
	errorColor     = color.New(color.FgRed)
	thresholdColor = color.New(color.FgYellow)
)

// panicError carries a recovered panic and the stack it was raised on.
type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprint(e.value)
}

// Run drives one invocation: parse argv, load and validate the config, call
// gen once and interpret its first summary. It returns the process exit code
// and never exits itself.
func Run(ctx context.Context, argv []string, stdout, stderr io.Writer, gen generator.Generator) int {
	cfg, err := safeResolve(argv, stdout, stderr)
	if err != nil {
		var usageErr *config.UsageError
		if errors.As(err, &usageErr) {
			errorColor.Fprintf(stderr, "Configuration error: %s\n", err)
		} else {
			errorColor.Fprintf(stderr, "Unexpected exception: %s %s\n", err, stackOf(err))
		}
		return ExitFailure
	}
	if cfg == nil {
		return ExitOK
	}

	summaries, err := safeGenerate(ctx, gen, *cfg)
	if err != nil {
		errorColor.Fprintf(stderr, "Error while generating Flow Coverage Report: %s %s\n", err, stackOf(err))
		return ExitFailure
	}
	if len(summaries) == 0 {
		errorColor.Fprintln(stderr, "Error while generating Flow Coverage Report: the generator returned no coverage summary")
		return ExitFailure
	}

	summary := summaries[0]
	if summary.Percent < summary.Threshold {
		thresholdColor.Fprintf(stderr, "Flow Coverage %v%% is below the required threshold %v%%\n", summary.Percent, summary.Threshold)
		return ExitBelowThreshold
	}
	logger.Debug("Coverage meets the threshold.", "percent", summary.Percent, "threshold", summary.Threshold)
	return ExitOK
}

// stackOf returns the stack a panic was raised on, or the current stack for
// plain errors.
func stackOf(err error) []byte {
	var panicErr *panicError
	if errors.As(err, &panicErr) {
		return panicErr.stack
	}
	return debug.Stack()
}

func safeResolve(argv []string, stdout, stderr io.Writer) (cfg *config.Config, err error) {
	defer func() {
		if r := recover(); r != nil {
			cfg, err = nil, &panicError{value: r, stack: debug.Stack()}
		}
	}()
	return resolveConfig(argv, stdout, stderr)
}

func safeGenerate(ctx context.Context, gen generator.Generator, cfg config.Config) (summaries []generator.Summary, err error) {
	defer func() {
		if r := recover(); r != nil {
			summaries, err = nil, &panicError{value: r, stack: debug.Stack()}
		}
	}()
	return gen.Generate(ctx, cfg)
}

// resolveConfig returns nil when the invocation only asked for help or the
// version.
func resolveConfig(argv []string, stdout, stderr io.Writer) (*config.Config, error) {
	inv, err := ParseArgs(argv, stdout, stderr)
	if err != nil || inv == nil {
		return nil, err
	}

	defaults := config.Defaults()
	projectDir := defaults.ProjectDir
	if dir, ok := inv.Layer["projectDir"].(string); ok {
		projectDir = dir
	}

	fragment, path, err := config.Load(config.LoadOptions{
		ConfigPath: inv.ConfigPath,
		ProjectDir: projectDir,
		NoConfig:   inv.NoConfig,
	})
	if err != nil {
		return nil, err
	}
	if path != "" {
		logger.Debug("Loaded config file.", "path", path, "keys", len(fragment))
	}

	merged, err := config.Merge(defaults, fragment, inv.Layer)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Validate(merged)
	if err != nil {
		return nil, err
	}
	logger.Debug("Effective configuration.", "config", cfg)
	return &cfg, nil
}
