package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/packratdb/packrat/internal/query"
	"github.com/packratdb/packrat/internal/store"
)

// ExplainOptions holds flags for the explain command.
type ExplainOptions struct {
	*RootOptions
	Database string
	Profiles string
	Table    string
}

// explainReport is the JSON payload for an explain run.
type explainReport struct {
	Query         string            `json:"query"`
	Table         string            `json:"table"`
	Identifiers   []string          `json:"identifiers,omitempty"`
	Terms         []string          `json:"terms,omitempty"`
	Directives    []string          `json:"directives,omitempty"`
	Chains        []string          `json:"chains,omitempty"`
	Where         []string          `json:"where,omitempty"`
	OrderBy       []string          `json:"order_by,omitempty"`
	Limit         int               `json:"limit"`
	LimitExplicit bool              `json:"limit_explicit,omitempty"`
	Offset        int               `json:"offset,omitempty"`
	Params        map[string]string `json:"params,omitempty"`
	AppliedKeys   []string          `json:"applied_keys,omitempty"`
	Residual      bool              `json:"residual"`
	Mode          string            `json:"mode,omitempty"`
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExplainOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "explain <query>",
		Short: "Show how a query parses and compiles, without running it",
		Long: `Parse a search-box query and compile it against a table profile,
then print the parse buckets and the resulting SQL plan.

With no --db the plan is compiled against a scratch in-memory database;
the embedded schema makes that a complete schema source.

Example:
  packrat explain 'chair \show=10 ?is_favorite'
  packrat explain --table boxes '?room=office'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (defaults to a scratch in-memory one)")
	cmd.Flags().StringVar(&opts.Profiles, "profiles", "", "directory of CUE search profiles")
	cmd.Flags().StringVar(&opts.Table, "table", "items", "table profile to compile against")

	return cmd
}

func runExplain(opts *ExplainOptions, raw string, cmd *cobra.Command) error {
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

	prof, ok := profiles.Lookup(opts.Table)
	if !ok {
		msg := fmt.Sprintf("no profile for table %q", opts.Table)
		_ = formatter.Error(ErrCodeTable, msg, profiles.Names())
		return NewExitError(ExitCommandError, msg)
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

	q := query.Parse(raw)
	cond := st.Compiler().Compile(ctx, q, prof.Name, prof.Alias, prof.PageSize)

	report := explainReport{
		Query:         q.Raw,
		Table:         prof.Name,
		Identifiers:   q.Identifiers,
		Terms:         q.Terms,
		Where:         cond.Where,
		OrderBy:       cond.OrderBy,
		Limit:         cond.Limit,
		LimitExplicit: cond.LimitExplicit,
		Offset:        cond.Offset,
		AppliedKeys:   cond.AppliedKeys,
		Residual:      !cond.FullPushdown(),
		Mode:          cond.Mode,
	}
	for _, d := range q.Directives {
		report.Directives = append(report.Directives, renderDirective(d))
	}
	for _, c := range q.Chains {
		report.Chains = append(report.Chains, renderChain(c))
	}
	if len(cond.Params) > 0 {
		report.Params = make(map[string]string, len(cond.Params))
		for name, lit := range cond.Params {
			report.Params[name] = query.Format(lit)
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(report)
	}
	writeExplainText(formatter, report, cond.ParamNames())
	return nil
}

// writeExplainText prints the human-readable explain report. Empty
// sections are skipped.
func writeExplainText(formatter *OutputFormatter, report explainReport, paramNames []string) {
	w := formatter.Writer
	fmt.Fprintf(w, "Query: %s\n", report.Query)
	fmt.Fprintf(w, "Table: %s\n\n", report.Table)

	if len(report.Identifiers) > 0 {
		fmt.Fprintf(w, "Identifiers: %s\n", strings.Join(report.Identifiers, ", "))
	}
	if len(report.Terms) > 0 {
		fmt.Fprintf(w, "Terms:       %s\n", strings.Join(report.Terms, " "))
	}
	if len(report.Directives) > 0 {
		fmt.Fprintf(w, "Directives:  %s\n", strings.Join(report.Directives, " "))
	}
	if len(report.Chains) > 0 {
		fmt.Fprintf(w, "Chains:      %s\n", strings.Join(report.Chains, " | "))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Plan:")
	if report.Residual {
		fmt.Fprintf(w, "  residual: %d chain(s) evaluated in memory after fetch\n", len(report.Chains))
	}
	for _, frag := range report.Where {
		fmt.Fprintf(w, "  WHERE   %s\n", frag)
	}
	if len(report.OrderBy) > 0 {
		fmt.Fprintf(w, "  ORDER   %s\n", strings.Join(report.OrderBy, ", "))
	}
	if report.Limit > 0 {
		fmt.Fprintf(w, "  LIMIT   %d\n", report.Limit)
	} else {
		fmt.Fprintln(w, "  LIMIT   none")
	}
	if report.Offset > 0 {
		fmt.Fprintf(w, "  OFFSET  %d\n", report.Offset)
	}
	if report.Mode != "" {
		fmt.Fprintf(w, "  MODE    %s\n", report.Mode)
	}
	for _, name := range paramNames {
		fmt.Fprintf(w, "  param %s = %s\n", name, report.Params[name])
	}
	if len(report.AppliedKeys) > 0 {
		fmt.Fprintf(w, "  applied: %s\n", strings.Join(report.AppliedKeys, ", "))
	}
}

// renderDirective reconstructs the backslash syntax of a parsed directive.
func renderDirective(d query.Directive) string {
	if !d.HasValue {
		return `\` + d.Key
	}
	return `\` + d.Key + "=" + query.Format(d.Value)
}

// renderChain reconstructs the "?"-syntax of a parsed chain.
func renderChain(c query.Chain) string {
	parts := make([]string, len(c))
	for i, f := range c {
		var b strings.Builder
		b.WriteString("?")
		if f.Negated {
			b.WriteString("!")
		}
		b.WriteString(f.Key)
		switch f.Op {
		case query.OpEquals:
			b.WriteString("=" + query.Format(f.Value))
		case query.OpContains:
			b.WriteString("[" + query.Format(f.Value))
		case query.OpGreater:
			b.WriteString(">" + query.Format(f.Value))
		case query.OpLess:
			b.WriteString("<" + query.Format(f.Value))
		}
		parts[i] = b.String()
	}
	return strings.Join(parts, " ")
}
