package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/packratdb/packrat/internal/querysql"
	"github.com/packratdb/packrat/internal/store"
)

// SearchOptions holds flags for the search command.
type SearchOptions struct {
	*RootOptions
	Database string
	Profiles string
}

// searchReport is the JSON payload for a search.
type searchReport struct {
	Query    string       `json:"query"`
	Count    int          `json:"count"`
	Residual bool         `json:"residual"`
	Items    []store.Item `json:"items"`
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a search query against the inventory",
		Long: `Run a search-box query against the inventory database.

Free text matches item names, descriptions, and notes. Identifiers
(UUIDs, 8-hex short ids, or slugs ending in one) jump straight to their
items. Filter chains after "?" are pushed down to SQL when the schema
allows it and evaluated in memory otherwise.

Example:
  packrat search --db inv.db 'chair'
  packrat search --db inv.db '\show=10 ?quantity>1 | ?is_favorite'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Profiles, "profiles", "", "directory of CUE search profiles")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runSearch(opts *SearchOptions, raw string, cmd *cobra.Command) error {
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

	st, err := store.Open(opts.Database, store.WithProfiles(profiles))
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

	res, err := st.Search(ctx, raw)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitFailure, "search failed", err)
	}

	formatter.VerboseLog("plan: where=%v order=%v limit=%d offset=%d residual=%t",
		res.Plan.Where, res.Plan.OrderBy, res.Plan.Limit, res.Plan.Offset, res.Residual)

	if formatter.Format == "json" {
		return formatter.Success(searchReport{
			Query:    raw,
			Count:    len(res.Items),
			Residual: res.Residual,
			Items:    res.Items,
		})
	}

	if len(res.Items) == 0 {
		fmt.Fprintf(formatter.Writer, "no items for %q\n", raw)
	} else {
		fmt.Fprintf(formatter.Writer, "%d item(s) for %q\n", len(res.Items), raw)
		for _, item := range res.Items {
			fmt.Fprintf(formatter.Writer, "  %s  %s%s\n", item.ShortID, item.Name, itemAnnotations(item))
		}
	}
	if res.Residual {
		fmt.Fprintln(formatter.Writer, "(filters evaluated in memory)")
	}
	return nil
}

// itemAnnotations renders the bracketed status notes after an item name.
func itemAnnotations(item store.Item) string {
	var notes []string
	if item.Quantity > 1 {
		notes = append(notes, fmt.Sprintf("x%d", item.Quantity))
	}
	if item.Favorite {
		notes = append(notes, "favorite")
	}
	if item.Archived {
		notes = append(notes, "archived")
	}
	notes = append(notes, flagNames(item.Flags)...)
	if len(notes) == 0 {
		return ""
	}
	return " [" + strings.Join(notes, ", ") + "]"
}

// flagNames lists the set state-flag names, in bit order.
func flagNames(flags int64) []string {
	var names []string
	for _, fl := range []struct {
		bit  int64
		name string
	}{
		{querysql.FlagFragile, "fragile"},
		{querysql.FlagLent, "lent"},
		{querysql.FlagBroken, "broken"},
		{querysql.FlagRetired, "retired"},
	} {
		if flags&fl.bit != 0 {
			names = append(names, fl.name)
		}
	}
	return names
}
