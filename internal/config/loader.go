// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"flow-coverage-report/internal/logger"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigFile is looked up in the project dir when --config is absent.
	DefaultConfigFile = ".flow-coverage-report.json"

	// PackageJSONSection is the package.json key holding an inline config.
	PackageJSONSection = "flow-coverage-report"
)

var defaultYAMLFiles = []string{".flow-coverage-report.yaml", ".flow-coverage-report.yml"}

// LoadOptions selects which config file, if any, Load reads.
type LoadOptions struct {
	ConfigPath string
	ProjectDir string
	NoConfig   bool
}

// Load returns the config fragment and the path it came from. The fragment
// is empty when NoConfig is set or when no default file exists. An explicit
// ConfigPath must be readable and well formed.
func Load(opts LoadOptions) (Layer, string, error) {
	if opts.NoConfig {
		if opts.ConfigPath != "" {
			logger.Debug("Ignoring config file because config loading is disabled.", "path", opts.ConfigPath)
		}
		return Layer{}, "", nil
	}

	if opts.ConfigPath != "" {
		path, err := ResolvePath(opts.ConfigPath)
		if err != nil {
			return nil, "", &UsageError{Msg: "failed to resolve config path", Err: err}
		}
		fragment, err := readConfigFile(path)
		if err != nil {
			return nil, "", err
		}
		return fragment, path, nil
	}

	projectDir, err := ResolvePath(opts.ProjectDir)
	if err != nil {
		return nil, "", &UsageError{Msg: "failed to resolve project dir", Err: err}
	}

	for _, name := range append([]string{DefaultConfigFile}, defaultYAMLFiles...) {
		path := filepath.Join(projectDir, name)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, "", &UsageError{Msg: fmt.Sprintf("failed to inspect config file %s", path), Err: err}
		}
		fragment, err := readConfigFile(path)
		if err != nil {
			return nil, "", err
		}
		return fragment, path, nil
	}

	fragment, path, err := readPackageJSONSection(filepath.Join(projectDir, "package.json"))
	if err != nil {
		return nil, "", err
	}
	if fragment != nil {
		return fragment, path, nil
	}

	logger.Debug("No config file found, using defaults and flags.", "projectDir", projectDir)
	return Layer{}, "", nil
}

func readConfigFile(path string) (Layer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &UsageError{Msg: fmt.Sprintf("failed to read config file %s", path), Err: err}
	}

	var raw any
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		err = yaml.Unmarshal(data, &raw)
	} else {
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, &UsageError{Msg: fmt.Sprintf("failed to parse config file %s", path), Err: err}
	}

	fragment, ok := raw.(map[string]any)
	if !ok {
		return nil, Usagef("config file %s must contain a mapping of option names, got %T", path, raw)
	}
	return Layer(fragment), nil
}

// readPackageJSONSection returns a nil fragment when package.json is missing
// or has no section for this tool.
func readPackageJSONSection(path string) (Layer, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", nil
		}
		return nil, "", &UsageError{Msg: fmt.Sprintf("failed to read %s", path), Err: err}
	}

	var pkg map[string]json.RawMessage
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, "", &UsageError{Msg: fmt.Sprintf("failed to parse %s", path), Err: err}
	}
	section, ok := pkg[PackageJSONSection]
	if !ok {
		return nil, "", nil
	}

	var fragment map[string]any
	if err := json.Unmarshal(section, &fragment); err != nil {
		return nil, "", &UsageError{Msg: fmt.Sprintf("the %q section of %s must be an object", PackageJSONSection, path), Err: err}
	}
	return Layer(fragment), path + "#" + PackageJSONSection, nil
}
