// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"runtime/debug"
	"slices"
	"strings"

	"flow-coverage-report/internal/config"
	"flow-coverage-report/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ProgramName is reported by --version.
const ProgramName = "flow-coverage-report"

// maxPositionalArgs counts arguments after the program path. Only the
// project dir is expected; more usually means the shell expanded a glob.
const maxPositionalArgs = 1

const errUnquotedGlob = "ERROR: The include glob needs to be quoted."

// Invocation is what the command line asked for. Layer only holds options
// that were actually given.
type Invocation struct {
	Layer      config.Layer
	ConfigPath string
	NoConfig   bool
	Positional []string
}

func appName(argv0 string) string {
	return strings.SplitN(filepath.Base(argv0), ".", 2)[0]
}

func examples(app string) string {
	return fmt.Sprintf(`  %[1]s -i "src/**/*.js"
  %[1]s -p /path/to/project -i "src/**/*.js" -x "src/test/**/*.js"
  %[1]s -t html -p /path/to/project -i "src/**/*.js"
  %[1]s -t html -t json -t text /path/to/project -i "src/**/*.js"
  %[1]s -i "src/**/*.js" -c 5`, app)
}

const moreInfo = `
For more information:

  https://github.com/rpl/flow-coverage-report
`

func version() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "(devel)" && info.Main.Version != "" {
			return info.Main.Version
		}
	}
	return "dev"
}

// ParseArgs parses argv (program path first). It returns a nil Invocation and
// a nil error when help or version was printed. On failure the usage banner is
// written to stderr before the error is returned.
func ParseArgs(argv []string, stdout, stderr io.Writer) (*Invocation, error) {
	app := ProgramName
	// Non-nil so cobra never falls back to os.Args.
	args := []string{}
	if len(argv) > 0 {
		app = appName(argv[0])
		args = argv[1:]
	}

	var parsed *Invocation
	rootCmd := &cobra.Command{
		Use:   app + " [COMMAND] PROJECTDIR [...globs]",
		Short: "Generate Flow type coverage reports",
		Long: `Collects Flow type coverage for the files selected by the include globs
and generates html, json or text reports.

Options are read from a config file in the project dir (.flow-coverage-report.json
or the "flow-coverage-report" section of package.json) and overridden by flags.`,
		Version: version(),
		Example: examples(app),
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > maxPositionalArgs {
				return &config.UsageError{Msg: errUnquotedGlob}
			}
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := collectInvocation(cmd.Flags(), args)
			if err != nil {
				return err
			}
			parsed = inv
			return nil
		},
	}
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetVersionTemplate(ProgramName + " {{.Version}}\n")
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &config.UsageError{Msg: err.Error()}
	})
	registerFlags(rootCmd.Flags(), config.Defaults())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprint(stderr, rootCmd.UsageString())
		fmt.Fprint(stderr, moreInfo)
		return nil, err
	}
	return parsed, nil
}

// registerFlags declares one flag per option. No flag carries a pflag default
// so that Changed tells whether the user supplied it.
func registerFlags(fs *pflag.FlagSet, defaults config.Config) {
	for _, opt := range config.Options {
		if !opt.HasFlag() {
			continue
		}
		usage := opt.Usage(defaults)

		switch opt.Kind {
		case config.KindString:
			fs.StringP(opt.Name, opt.Short, "", usage)
		case config.KindInt:
			fs.IntP(opt.Name, opt.Short, 0, usage)
		case config.KindNumber:
			fs.Float64P(opt.Name, opt.Short, 0, usage)
		case config.KindBool:
			fs.BoolP(opt.Name, opt.Short, false, usage)
		case config.KindArray:
			if len(opt.Choices) > 0 {
				fs.VarP(newChoiceArrayValue(opt.Choices), opt.Name, opt.Short, usage)
			} else {
				fs.StringArrayP(opt.Name, opt.Short, nil, usage)
			}
		}

		primary := fs.Lookup(opt.Name)
		for _, alias := range opt.Aliases {
			fs.AddFlag(&pflag.Flag{
				Name:        alias,
				Usage:       usage,
				Value:       primary.Value,
				DefValue:    primary.DefValue,
				NoOptDefVal: primary.NoOptDefVal,
				Hidden:      true,
			})
		}
	}
}

func flagChanged(fs *pflag.FlagSet, opt config.Option) bool {
	if fs.Changed(opt.Name) {
		return true
	}
	return slices.ContainsFunc(opt.Aliases, fs.Changed)
}

func flagValue(fs *pflag.FlagSet, opt config.Option) (any, error) {
	switch opt.Kind {
	case config.KindString:
		return fs.GetString(opt.Name)
	case config.KindInt:
		return fs.GetInt(opt.Name)
	case config.KindNumber:
		return fs.GetFloat64(opt.Name)
	case config.KindBool:
		return fs.GetBool(opt.Name)
	case config.KindArray:
		slice, ok := fs.Lookup(opt.Name).Value.(pflag.SliceValue)
		if !ok {
			return nil, fmt.Errorf("flag --%s does not hold a list", opt.Name)
		}
		return slices.Clone(slice.GetSlice()), nil
	}
	return nil, fmt.Errorf("flag --%s has unsupported kind %s", opt.Name, opt.Kind)
}

func collectInvocation(fs *pflag.FlagSet, args []string) (*Invocation, error) {
	inv := &Invocation{
		Layer:      config.Layer{},
		Positional: slices.Clone(args),
	}

	for _, opt := range config.Options {
		if !opt.HasFlag() || opt.Scope == config.ScopeMeta || !flagChanged(fs, opt) {
			continue
		}
		value, err := flagValue(fs, opt)
		if err != nil {
			return nil, err
		}
		if opt.Coerce != nil {
			if value, err = opt.Coerce(value); err != nil {
				return nil, err
			}
		}

		switch opt.Key {
		case config.KeyConfig:
			inv.ConfigPath = value.(string)
		case config.KeyNoConfig:
			inv.NoConfig = value.(bool)
		default:
			inv.Layer[opt.Key] = value
		}
	}

	if len(args) == 1 {
		if dir, ok := inv.Layer["projectDir"]; ok {
			logger.Warn("Both --project-dir and a PROJECTDIR argument given, using --project-dir.", "flag", dir, "argument", args[0])
		} else {
			inv.Layer["projectDir"] = args[0]
		}
	}
	return inv, nil
}

// choiceArrayValue is a repeatable flag restricted to a closed set of values.
type choiceArrayValue struct {
	values  []string
	choices []string
}

func newChoiceArrayValue(choices []string) *choiceArrayValue {
	return &choiceArrayValue{choices: choices}
}

func (v *choiceArrayValue) check(s string) error {
	if !slices.Contains(v.choices, s) {
		return fmt.Errorf("invalid value %q, choices are: %s", s, strings.Join(v.choices, ", "))
	}
	return nil
}

func (v *choiceArrayValue) Set(s string) error {
	if err := v.check(s); err != nil {
		return err
	}
	v.values = append(v.values, s)
	return nil
}

func (v *choiceArrayValue) Append(s string) error {
	return v.Set(s)
}

func (v *choiceArrayValue) Replace(values []string) error {
	for _, s := range values {
		if err := v.check(s); err != nil {
			return err
		}
	}
	v.values = slices.Clone(values)
	return nil
}

func (v *choiceArrayValue) GetSlice() []string {
	return v.values
}

func (v *choiceArrayValue) Type() string {
	return "stringArray"
}

// String is empty until a value is set so help shows no pflag default.
func (v *choiceArrayValue) String() string {
	if len(v.values) == 0 {
		return ""
	}
	return "[" + strings.Join(v.values, ",") + "]"
}
