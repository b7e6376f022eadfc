// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"flow-coverage-report/internal/config"
	"flow-coverage-report/internal/logger"
	"flow-coverage-report/internal/util"
)

const (
	// CommandEnvVar overrides the generator executable used by the CLI.
	CommandEnvVar = "FLOW_COVERAGE_GENERATOR"

	DefaultCommand = "flow-coverage-generator"
)

// Command runs an external generator program. The effective configuration is
// written to its stdin as JSON and a JSON array of summaries is read back from
// its stdout. The program's stderr is passed through.
type Command struct {
	Path   string
	Args   []string
	Env    []string
	Stderr io.Writer
}

// CommandFromEnv builds a Command from FLOW_COVERAGE_GENERATOR, falling back
// to DefaultCommand.
func CommandFromEnv(stderr io.Writer) *Command {
	path := strings.TrimSpace(os.Getenv(CommandEnvVar))
	if path == "" {
		path = DefaultCommand
	}
	return &Command{Path: path, Stderr: stderr}
}

func (c *Command) describe() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, util.QuoteArgForShell(c.Path))
	for _, arg := range c.Args {
		parts = append(parts, util.QuoteArgForShell(arg))
	}
	return strings.Join(parts, " ")
}

func (c *Command) Generate(ctx context.Context, cfg config.Config) ([]Summary, error) {
	input, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}

	cmdDesc := c.describe()
	logger.Debug("Running report generator.", "command", cmdDesc, "projectDir", cfg.ProjectDir)

	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Dir = cfg.ProjectDir
	if c.Env != nil {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	cmd.Stdin = bytes.NewReader(input)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if c.Stderr != nil {
		cmd.Stderr = c.Stderr
	}

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
			return nil, fmt.Errorf("%s exited with status %d: %w", cmdDesc, exitErr.ExitCode(), err)
		}
		return nil, fmt.Errorf("%s failed: %w", cmdDesc, err)
	}

	var summaries []Summary
	if err := json.Unmarshal(stdout.Bytes(), &summaries); err != nil {
		return nil, fmt.Errorf("failed to decode output of %s: %w", cmdDesc, err)
	}
	return summaries, nil
}
