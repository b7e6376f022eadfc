// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

// Package generator defines the contract of the external coverage report
// generator and an adapter that runs it as a child process.
package generator

import (
	"context"

	"flow-coverage-report/internal/config"
)

// Summary is one coverage summary produced by the generator.
type Summary struct {
	Percent   float64 `json:"percent"`
	Threshold float64 `json:"threshold"`

	CoveredCount   int `json:"covered_count,omitempty"`
	UncoveredCount int `json:"uncovered_count,omitempty"`
}

// Generator computes coverage for a validated configuration and writes the
// requested reports.
type Generator interface {
	Generate(ctx context.Context, cfg config.Config) ([]Summary, error)
}

// Func adapts a plain function to the Generator interface.
type Func func(ctx context.Context, cfg config.Config) ([]Summary, error)

func (f Func) Generate(ctx context.Context, cfg config.Config) ([]Summary, error) {
	return f(ctx, cfg)
}
