// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

// Package config declares the recognized report options, loads the optional
// config file and merges defaults, file and command-line values into the
// single validated Config handed to the report generator.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config is the effective configuration driving one report generation.
// Every field holds a concrete value once Validate has accepted it.
type Config struct {
	// FlowCommandPath is the flow executable used by the generator
	FlowCommandPath string `json:"flowCommandPath" mapstructure:"flowCommandPath"`

	// FlowCommandTimeout is the per-request flow timeout in milliseconds
	FlowCommandTimeout int `json:"flowCommandTimeout" mapstructure:"flowCommandTimeout"`

	// ReportTypes lists the formats to generate (html, json, text)
	ReportTypes []string `json:"reportTypes" mapstructure:"reportTypes"`

	// ProjectDir is the absolute path of the analysed project
	ProjectDir string `json:"projectDir" mapstructure:"projectDir"`

	GlobIncludePatterns []string `json:"globIncludePatterns" mapstructure:"globIncludePatterns"`
	GlobExcludePatterns []string `json:"globExcludePatterns" mapstructure:"globExcludePatterns"`

	// Threshold is the minimum acceptable coverage percent
	Threshold float64 `json:"threshold" mapstructure:"threshold"`

	PercentDecimals int `json:"percentDecimals" mapstructure:"percentDecimals"`

	// OutputDir is where html and json reports are written, relative to ProjectDir
	OutputDir string `json:"outputDir" mapstructure:"outputDir"`

	// ConcurrentFiles bounds how many files are submitted to flow at once
	ConcurrentFiles int `json:"concurrentFiles" mapstructure:"concurrentFiles"`

	StrictCoverage bool `json:"strictCoverage" mapstructure:"strictCoverage"`
	ExcludeNonFlow bool `json:"excludeNonFlow" mapstructure:"excludeNonFlow"`
	NoFlowOutput   bool `json:"noFlowOutput" mapstructure:"noFlowOutput"`
}

const (
	DefaultFlowCommandPath    = "flow"
	DefaultFlowCommandTimeout = 15000
	DefaultThreshold          = 80
	DefaultOutputDir          = "./flow-coverage"
	DefaultConcurrentFiles    = 1
)

// ReportTypeChoices is the closed set accepted by --type and reportTypes.
var ReportTypeChoices = []string{"html", "json", "text"}

// Defaults returns the built-in configuration. ProjectDir is the current
// working directory.
func Defaults() Config {
	projectDir, err := os.Getwd()
	if err != nil {
		projectDir = "."
	}
	return Config{
		FlowCommandPath:     DefaultFlowCommandPath,
		FlowCommandTimeout:  DefaultFlowCommandTimeout,
		ReportTypes:         []string{"text"},
		ProjectDir:          projectDir,
		GlobIncludePatterns: []string{},
		GlobExcludePatterns: []string{"node_modules/**"},
		Threshold:           DefaultThreshold,
		PercentDecimals:     0,
		OutputDir:           DefaultOutputDir,
		ConcurrentFiles:     DefaultConcurrentFiles,
	}
}

// ResolvePath expands a leading "~/" to the user's home directory.
func ResolvePath(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path, fmt.Errorf("could not get user home directory to resolve path '%s': %w", path, err)
	}

	return filepath.Join(homeDir, path[2:]), nil
}
