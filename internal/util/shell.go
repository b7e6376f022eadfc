// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package util

import "strings"

// QuoteArgForShell quotes an argument so a logged command line can be pasted
// into a POSIX shell. Arguments made only of safe characters are left bare.
func QuoteArgForShell(arg string) string {
	if arg != "" && strings.Trim(arg, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_./=:,@+") == "" {
		return arg
	}

	quotedArg := strings.ReplaceAll(arg, "'", `'\''`)
	return `'` + quotedArg + `'`
}
