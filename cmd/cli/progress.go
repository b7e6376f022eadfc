// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package cli

import (
	"context"
	"os"
	"time"

	"flow-coverage-report/internal/config"
	"flow-coverage-report/internal/generator"

	"github.com/briandowns/spinner"
)

// WithSpinner shows a spinner on out while gen runs. The spinner stays off
// when out is not a terminal.
func WithSpinner(gen generator.Generator, out *os.File) generator.Generator {
	return generator.Func(func(ctx context.Context, cfg config.Config) ([]generator.Summary, error) {
		s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriterFile(out))
		s.Color("cyan")
		s.Suffix = " Generating flow coverage report..."
		s.Start()
		defer s.Stop()

		return gen.Generate(ctx, cfg)
	})
}
