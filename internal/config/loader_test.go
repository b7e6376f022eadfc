// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0640))
	return path
}

func TestLoad_NoConfigWinsOverExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "somefile.json", `{"threshold": 10}`)
	writeFile(t, dir, DefaultConfigFile, `{"threshold": 20}`)

	fragment, used, err := Load(LoadOptions{ConfigPath: path, ProjectDir: dir, NoConfig: true})
	require.NoError(t, err)
	assert.Empty(t, fragment)
	assert.Empty(t, used)
}

func TestLoad_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "custom.json", `{"threshold": 90, "reportTypes": ["html"]}`)

	fragment, used, err := Load(LoadOptions{ConfigPath: path, ProjectDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, Layer{"threshold": float64(90), "reportTypes": []any{"html"}}, fragment)
}

func TestLoad_ExplicitYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "coverage.yaml", "threshold: 70\nstrictCoverage: true\nglobIncludePatterns:\n  - src/**/*.js\n")

	fragment, _, err := Load(LoadOptions{ConfigPath: path})
	require.NoError(t, err)
	assert.Equal(t, 70, fragment["threshold"])
	assert.Equal(t, true, fragment["strictCoverage"])
	assert.Equal(t, []any{"src/**/*.js"}, fragment["globIncludePatterns"])
}

func TestLoad_ExplicitPathErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		path    string
		wantMsg string
	}{
		{name: "missing", path: filepath.Join(dir, "missing.json"), wantMsg: "failed to read config file"},
		{name: "malformed", path: writeFile(t, dir, "broken.json", `{"threshold": `), wantMsg: "failed to parse config file"},
		{name: "not_a_mapping", path: writeFile(t, dir, "list.json", `["html"]`), wantMsg: "must contain a mapping"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Load(LoadOptions{ConfigPath: tt.path, ProjectDir: dir})
			require.Error(t, err)

			var usageErr *UsageError
			require.ErrorAs(t, err, &usageErr)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoad_DefaultFileAbsentIsEmpty(t *testing.T) {
	fragment, used, err := Load(LoadOptions{ProjectDir: t.TempDir()})
	require.NoError(t, err)
	assert.Empty(t, fragment)
	assert.Empty(t, used)
}

func TestLoad_DefaultFileInProjectDir(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, DefaultConfigFile, `{"concurrentFiles": 4}`)

	fragment, used, err := Load(LoadOptions{ProjectDir: dir})
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, Layer{"concurrentFiles": float64(4)}, fragment)
}

func TestLoad_BrokenDefaultFileIsAnError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, DefaultConfigFile, `not json`)

	_, _, err := Load(LoadOptions{ProjectDir: dir})
	var usageErr *UsageError
	require.ErrorAs(t, err, &usageErr)
}

func TestLoad_PackageJSONSection(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "package.json", `{
	"name": "demo",
	"flow-coverage-report": {"threshold": 95, "outputDir": "coverage"}
}`)

	fragment, used, err := Load(LoadOptions{ProjectDir: dir})
	require.NoError(t, err)
	assert.Equal(t, path+"#"+PackageJSONSection, used)
	assert.Equal(t, Layer{"threshold": float64(95), "outputDir": "coverage"}, fragment)
}

func TestLoad_PackageJSONWithoutSection(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{"name": "demo"}`)

	fragment, used, err := Load(LoadOptions{ProjectDir: dir})
	require.NoError(t, err)
	assert.Empty(t, fragment)
	assert.Empty(t, used)
}

func TestLoad_DedicatedFileBeatsPackageJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{"flow-coverage-report": {"threshold": 95}}`)
	writeFile(t, dir, ".flow-coverage-report.yml", "threshold: 60\n")

	fragment, _, err := Load(LoadOptions{ProjectDir: dir})
	require.NoError(t, err)
	assert.Equal(t, 60, fragment["threshold"])
}

func TestLoad_DefaultFileLookupFailureIsAnError(t *testing.T) {
	notADir := writeFile(t, t.TempDir(), "project", "x")

	_, _, err := Load(LoadOptions{ProjectDir: notADir})
	var usageErr *UsageError
	require.ErrorAs(t, err, &usageErr)
	assert.Contains(t, err.Error(), "failed to inspect config file")
	assert.Contains(t, err.Error(), DefaultConfigFile)
}
