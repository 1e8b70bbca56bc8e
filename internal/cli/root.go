package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/packratdb/packrat/internal/profile"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the packrat CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "packrat",
		Short: "Packrat inventory search",
		Long: `Packrat stores an inventory and answers search-box queries against it.

A query mixes free text, item identifiers, backslash directives, and
"?"-prefixed filter chains:

  packrat search --db inv.db 'desk lamp ?has_notes'
  packrat search --db inv.db '\show=10 \bydate ?is_favorite | ?due'
  packrat explain '?quantity>1 ?!is_archived'`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	// Add subcommands
	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewExplainCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// setupLogging routes slog output to stderr, at debug level when verbose.
func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

// loadProfiles returns the built-in table profiles or, when dir is set, the
// CUE overlay loaded from it. Loading is fail-fast: the first error aborts.
func loadProfiles(dir string) (profile.Set, error) {
	if dir == "" {
		return profile.Defaults(), nil
	}
	set, errs := profile.Load(dir, profile.LoadModeFailFast)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return set, nil
}
