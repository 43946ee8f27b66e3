package cli

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables that override flags,
// e.g. JSONSEARCH_DSN.
const EnvPrefix = "JSONSEARCH"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	Definition string
	Driver     string
	DSN        string
	ConfigFile string

	// Logger is installed by the root command. Nil means slog.Default().
	Logger *slog.Logger
}

func (o *RootOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the jsonsearch CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "jsonsearch",
		Short: "jsonsearch - JSON search documents compiled to SQL",
		Long: `jsonsearch compiles JSON search documents into parameterised SQL
against a declared parameter catalog, and optionally runs them.

Flags can also be set through environment variables prefixed with
JSONSEARCH_ (e.g. JSONSEARCH_DSN=app.db) or a --config file.
Flags take precedence over environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := resolveConfig(v, opts); err != nil {
				return WrapExitError(ExitCommandError, ErrCodeInvalidConfig, err)
			}
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			opts.Logger = newLogger(cmd.ErrOrStderr(), opts.Verbose)
			slog.SetDefault(opts.Logger)
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVarP(&opts.Definition, "definition", "d", "", "search definition file (.yaml, .json or .cue)")
	flags.StringVar(&opts.Driver, "driver", "", "database driver (sqlite3|sqlite|pgx|mysql)")
	flags.StringVar(&opts.DSN, "dsn", "", "database data source name")
	flags.StringVar(&opts.ConfigFile, "config", "", "config file (yaml, json or toml)")

	// Binding cannot fail for a non-nil flag set.
	_ = v.BindPFlags(flags)

	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// resolveConfig layers flags over environment over config file and copies
// the result back into opts.
func resolveConfig(v *viper.Viper, opts *RootOptions) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfg := v.GetString("config"); cfg != "" {
		v.SetConfigFile(cfg)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file: %w", err)
		}
	}

	opts.Verbose = v.GetBool("verbose")
	opts.Format = v.GetString("format")
	opts.Definition = v.GetString("definition")
	opts.Driver = v.GetString("driver")
	opts.DSN = v.GetString("dsn")
	opts.ConfigFile = v.GetString("config")
	return nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
