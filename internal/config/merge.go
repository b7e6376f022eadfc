// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package config

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Layer holds the settings one source supplied, keyed by config key. A key
// that is present overrides lower layers whatever its value.
type Layer map[string]any

// Merge applies layers over defaults in order, so later layers win. Values are
// normalized to their option kind; unknown keys and kind mismatches fail with
// a UsageError.
func Merge(defaults Config, layers ...Layer) (Config, error) {
	merged := map[string]any{}
	if err := mapstructure.Decode(defaults, &merged); err != nil {
		return Config{}, fmt.Errorf("failed to flatten defaults: %w", err)
	}

	for _, layer := range layers {
		for _, key := range slices.Sorted(maps.Keys(layer)) {
			opt, ok := Lookup(key)
			if !ok || !opt.InFile() {
				return Config{}, Usagef("unknown configuration option %q", key)
			}
			value, err := normalize(opt, layer[key])
			if err != nil {
				return Config{}, err
			}
			merged[key] = value
		}
	}

	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		ErrorUnused:      true,
		WeaklyTypedInput: false,
	})
	if err != nil {
		return Config{}, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(merged); err != nil {
		return Config{}, &UsageError{Msg: "invalid configuration", Err: err}
	}
	return cfg, nil
}

func normalize(opt Option, v any) (any, error) {
	mismatch := func() error {
		return Usagef("%s must be of type %s, got %v (%T)", opt.Key, opt.Kind, v, v)
	}

	switch opt.Kind {
	case KindString:
		s, ok := v.(string)
		if !ok {
			return nil, mismatch()
		}
		return s, nil

	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, mismatch()
		}
		return b, nil

	case KindInt:
		switch n := v.(type) {
		case int:
			return n, nil
		case int64:
			return int(n), nil
		case uint64:
			if n > math.MaxInt32 {
				return nil, mismatch()
			}
			return int(n), nil
		case float64:
			if n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
				return nil, Usagef("%s must be an integer, got %v", opt.Key, n)
			}
			return int(n), nil
		}
		return nil, mismatch()

	case KindNumber:
		switch n := v.(type) {
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		case uint64:
			return float64(n), nil
		case float64:
			return n, nil
		}
		return nil, mismatch()

	case KindArray:
		var items []string
		switch a := v.(type) {
		case string:
			items = []string{a}
		case []string:
			items = slices.Clone(a)
		case []any:
			items = make([]string, 0, len(a))
			for _, item := range a {
				s, ok := item.(string)
				if !ok {
					return nil, Usagef("%s must only contain strings, got %v (%T)", opt.Key, item, item)
				}
				items = append(items, s)
			}
		default:
			return nil, mismatch()
		}
		if len(opt.Choices) > 0 {
			for _, item := range items {
				if !slices.Contains(opt.Choices, item) {
					return nil, Usagef("%s contains %q, choices are: %s", opt.Key, item, strings.Join(opt.Choices, ", "))
				}
			}
		}
		return items, nil
	}

	return nil, fmt.Errorf("option %s has unsupported kind %s", opt.Key, opt.Kind)
}
