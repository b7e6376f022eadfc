// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"testing"

	"flow-coverage-report/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHelperProcess is not a real test. It stands in for the external
// generator when re-executed by helperCommand.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)

	input, err := io.ReadAll(os.Stdin)
	if err != nil {
		os.Exit(10)
	}
	var cfg config.Config
	if err := json.Unmarshal(input, &cfg); err != nil {
		os.Exit(11)
	}

	switch os.Getenv("HELPER_MODE") {
	case "ok":
		fmt.Fprintf(os.Stdout, `[{"percent": 42.5, "threshold": %v, "covered_count": %d}]`, cfg.Threshold, cfg.ConcurrentFiles)
	case "fail":
		fmt.Fprint(os.Stderr, "flow crashed")
		os.Exit(3)
	case "garbage":
		fmt.Fprint(os.Stdout, "not json")
	}
}

func helperCommand(mode string, stderr io.Writer) *Command {
	return &Command{
		Path:   os.Args[0],
		Args:   []string{"-test.run=TestHelperProcess", "--"},
		Env:    []string{"GO_WANT_HELPER_PROCESS=1", "HELPER_MODE=" + mode},
		Stderr: stderr,
	}
}

func testConfig(t *testing.T) config.Config {
	cfg := config.Defaults()
	cfg.ProjectDir = t.TempDir()
	cfg.Threshold = 65
	cfg.ConcurrentFiles = 7
	return cfg
}

func TestCommand_Generate(t *testing.T) {
	summaries, err := helperCommand("ok", io.Discard).Generate(context.Background(), testConfig(t))
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, Summary{Percent: 42.5, Threshold: 65, CoveredCount: 7}, summaries[0])
}

func TestCommand_GenerateFailure(t *testing.T) {
	var stderr bytes.Buffer
	_, err := helperCommand("fail", &stderr).Generate(context.Background(), testConfig(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exited with status 3")
	assert.Contains(t, stderr.String(), "flow crashed")
}

func TestCommand_GenerateBadOutput(t *testing.T) {
	_, err := helperCommand("garbage", io.Discard).Generate(context.Background(), testConfig(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode output")
}

func TestCommand_GenerateMissingExecutable(t *testing.T) {
	cmd := &Command{Path: "flow-coverage-generator-that-does-not-exist"}
	_, err := cmd.Generate(context.Background(), testConfig(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed")
}

func TestCommandFromEnv(t *testing.T) {
	t.Setenv(CommandEnvVar, "")
	assert.Equal(t, DefaultCommand, CommandFromEnv(nil).Path)

	t.Setenv(CommandEnvVar, "/opt/bin/report")
	assert.Equal(t, "/opt/bin/report", CommandFromEnv(nil).Path)
}

func TestFunc(t *testing.T) {
	gen := Func(func(_ context.Context, cfg config.Config) ([]Summary, error) {
		return []Summary{{Percent: 100, Threshold: cfg.Threshold}}, nil
	})

	summaries, err := gen.Generate(context.Background(), config.Config{Threshold: 12})
	require.NoError(t, err)
	assert.Equal(t, []Summary{{Percent: 100, Threshold: 12}}, summaries)
}
