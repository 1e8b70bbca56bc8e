package cli

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/packratdb/packrat/internal/schema"
	"github.com/packratdb/packrat/internal/store"
)

// SchemaOptions holds flags for the schema command.
type SchemaOptions struct {
	*RootOptions
	Database string
	Profiles string
}

// schemaColumn is one resolved column in a schema report.
type schemaColumn struct {
	Name     string `json:"name"`
	Native   string `json:"native"`
	Category string `json:"category"`
}

// schemaReport is the JSON payload for a schema inspection.
type schemaReport struct {
	Table      string         `json:"table"`
	Columns    []schemaColumn `json:"columns"`
	Synthetics []string       `json:"synthetics,omitempty"`
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SchemaOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "schema <table>",
		Short: "Show how a table's columns resolve for search",
		Long: `Introspect a table and print each column's native type next to the
category the search compiler resolves it to. Filters on a column
compile to SQL according to that category.

With no --db the embedded schema is inspected in a scratch in-memory
database.

Example:
  packrat schema items
  packrat schema --db inv.db boxes`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (defaults to a scratch in-memory one)")
	cmd.Flags().StringVar(&opts.Profiles, "profiles", "", "directory of CUE search profiles")

	return cmd
}

func runSchema(opts *SchemaOptions, table string, cmd *cobra.Command) error {
	setupLogging(opts.Verbose)
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	profiles, err := loadProfiles(opts.Profiles)
	if err != nil {
		_ = formatter.Error(ErrCodeProfile, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load profiles", err)
	}

	dbPath := opts.Database
	if dbPath == "" {
		dbPath = ":memory:"
	}
	st, err := store.Open(dbPath, store.WithProfiles(profiles))
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	native, err := schema.NewSQLiteIntrospector(st.DB()).Columns(ctx, table)
	if err != nil {
		_ = formatter.Error(ErrCodeTable, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to introspect table", err)
	}

	report := schemaReport{Table: table}
	names := make([]string, 0, len(native))
	for name := range native {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		report.Columns = append(report.Columns, schemaColumn{
			Name:     name,
			Native:   native[name],
			Category: string(schema.Categorize(native[name])),
		})
	}
	if prof, ok := profiles.Lookup(table); ok {
		report.Synthetics = prof.Synthetics
	}

	if formatter.Format == "json" {
		return formatter.Success(report)
	}

	fmt.Fprintf(formatter.Writer, "Table %s (%d columns):\n", report.Table, len(report.Columns))
	for _, col := range report.Columns {
		fmt.Fprintf(formatter.Writer, "  %-12s %-10s %s\n", col.Name, col.Native, col.Category)
	}
	if len(report.Synthetics) > 0 {
		fmt.Fprintf(formatter.Writer, "Synthetic keys: %s\n", strings.Join(report.Synthetics, ", "))
	}
	return nil
}
