// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package config

// Validate runs every option check in table order and stops at the first
// failure. The returned copy has ProjectDir expanded to an absolute path.
func Validate(cfg Config) (Config, error) {
	for _, opt := range Options {
		if opt.Check == nil {
			continue
		}
		if err := opt.Check(&cfg); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}
