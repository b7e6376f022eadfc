// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package config

import "fmt"

// UsageError reports an operator mistake: a bad flag, an unreadable config
// file or a merged configuration that does not pass validation.
type UsageError struct {
	Msg string
	Err error
}

func (e *UsageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// Usagef builds a UsageError from a format string.
func Usagef(format string, args ...any) *UsageError {
	return &UsageError{Msg: fmt.Sprintf(format, args...)}
}

// TypeError marks a value of the wrong Go type reaching a coercion step.
// It is a programming defect, never an operator mistake.
type TypeError struct {
	Value any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("unexpected non-string value: %v", e.Value)
}
