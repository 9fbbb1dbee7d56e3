package slugs

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/carecrest/hospital-cms/apps/cli/cmd/cliutil"
	slugmigrationsservice "github.com/carecrest/hospital-cms/domains/slugmigrations/be/service"
	"github.com/carecrest/hospital-cms/platform/go/persistence"
	"github.com/carecrest/hospital-cms/platform/go/slugmigration"
)

// Command groups slug maintenance.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slugs",
		Short: "Slug maintenance",
	}

	cmd.AddCommand(migrateCommand())
	return cmd
}

func migrateCommand() *cobra.Command {
	var (
		conn        cliutil.Conn
		kind        string
		unique      bool
		maxAttempts int
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Backfill slugs on records that have none",
		Long: "Backfill slugs on live records whose slug is empty. Without --kind every sluggable kind is swept;\n" +
			"a failing kind does not stop the others.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			pool, logger, err := conn.Open(ctx)
			if err != nil {
				return err
			}
			defer persistence.ClosePool(pool)

			store, err := persistence.NewSlugStore(pool)
			if err != nil {
				return err
			}

			runner := slugmigration.NewRunner(store,
				slugmigration.WithLogger(logger),
				slugmigration.WithMaxAttempts(maxAttempts),
			)
			svc := slugmigrationsservice.New(slugmigrationsservice.FromRunner(runner), logger)

			var uniqueFlag *bool
			if cmd.Flags().Changed("unique") {
				uniqueFlag = &unique
			}

			audit := cliutil.OperatorAudit()
			out := cmd.OutOrStdout()
			if kind == "" {
				report, err := svc.MigrateAll(ctx, audit, uniqueFlag)
				if err != nil {
					return err
				}
				printReport(out, report)
				if report.Failed > 0 {
					return fmt.Errorf("%d kind(s) failed", report.Failed)
				}
				return nil
			}

			summary, err := svc.MigrateKind(ctx, audit, kind, uniqueFlag)
			printSummary(out, summary)
			if err != nil {
				logger.Error("slug backfill failed", zap.String("kind", kind), zap.Error(err))
				return err
			}
			return nil
		},
	}

	conn.Bind(cmd)
	cmd.Flags().StringVar(&kind, "kind", "", "only backfill this kind (categories, subcategories, blogs, doctors)")
	cmd.Flags().BoolVar(&unique, "unique", false, "resolve collisions with -2, -3 suffixes")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "cap on suffix candidates in unique mode (0 keeps the default)")
	return cmd
}

func printReport(w io.Writer, report slugmigration.RunReport) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tUPDATED\tRESULT")
	for _, outcome := range report.Kinds {
		result := outcome.Message
		if outcome.Error != "" {
			result = "error: " + outcome.Error
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", outcome.Kind, outcome.Updated, result)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "Updated %d record(s); %d kind(s) failed.\n", report.Updated, report.Failed)
}

func printSummary(w io.Writer, summary slugmigration.Summary) {
	for _, res := range summary.Results {
		fmt.Fprintf(w, "%s  %s -> %s\n", res.ID, res.Title, res.Slug)
	}
	if summary.Message != "" {
		fmt.Fprintln(w, summary.Message)
	}
}
