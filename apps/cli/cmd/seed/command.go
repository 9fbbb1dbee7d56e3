package seed

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/carecrest/hospital-cms/apps/cli/cmd/cliutil"
	categoriesrepo "github.com/carecrest/hospital-cms/domains/categories/be/repo"
	categoriesservice "github.com/carecrest/hospital-cms/domains/categories/be/service"
	doctorsrepo "github.com/carecrest/hospital-cms/domains/doctors/be/repo"
	doctorsservice "github.com/carecrest/hospital-cms/domains/doctors/be/service"
	herorepo "github.com/carecrest/hospital-cms/domains/hero/be/repo"
	heroservice "github.com/carecrest/hospital-cms/domains/hero/be/service"
	subcategoriesrepo "github.com/carecrest/hospital-cms/domains/subcategories/be/repo"
	subcategoriesservice "github.com/carecrest/hospital-cms/domains/subcategories/be/service"
	"github.com/carecrest/hospital-cms/platform/go/persistence"
	"github.com/carecrest/hospital-cms/platform/go/slug"
)

// Command loads a YAML seed file.
func Command() *cobra.Command {
	var (
		conn cliutil.Conn
		path string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load categories, subcategories, doctors and hero slides from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			fh, err := os.Open(path)
			if err != nil {
				return err
			}
			defer fh.Close()

			file, err := Decode(fh)
			if err != nil {
				return err
			}

			pool, logger, err := conn.Open(ctx)
			if err != nil {
				return err
			}
			defer persistence.ClosePool(pool)

			if err := persistence.Migrate(ctx, pool, logger); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			svcs, err := buildServices(pool)
			if err != nil {
				return err
			}

			stats, err := Apply(ctx, svcs, cliutil.OperatorAudit(), file, cmd.OutOrStdout())
			fmt.Fprintf(cmd.OutOrStdout(), "Seed: %d created, %d skipped.\n", stats.Created, stats.Skipped)
			return err
		},
	}

	conn.Bind(cmd)
	cmd.Flags().StringVarP(&path, "file", "f", "", "path to the YAML seed file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func buildServices(pool *pgxpool.Pool) (Services, error) {
	categoryStore, err := persistence.NewCategoryStore(pool)
	if err != nil {
		return Services{}, err
	}
	subcategoryStore, err := persistence.NewSubcategoryStore(pool)
	if err != nil {
		return Services{}, err
	}
	doctorStore, err := persistence.NewDoctorStore(pool)
	if err != nil {
		return Services{}, err
	}
	heroStore, err := persistence.NewHeroStore(pool)
	if err != nil {
		return Services{}, err
	}
	slugStore, err := persistence.NewSlugStore(pool)
	if err != nil {
		return Services{}, err
	}

	return Services{
		Categories: categoriesservice.New(
			categoriesrepo.NewPostgresRepository(categoryStore),
			slug.NewResolver(slugStore.ExistsFunc(persistence.SlugKindCategories)),
		),
		Subcategories: subcategoriesservice.New(
			subcategoriesrepo.NewPostgresRepository(subcategoryStore, categoryStore),
			slug.NewResolver(slugStore.ExistsFunc(persistence.SlugKindSubcategories)),
		),
		Doctors: doctorsservice.New(
			doctorsrepo.NewPostgresRepository(doctorStore),
			slug.NewResolver(slugStore.ExistsFunc(persistence.SlugKindDoctors)),
		),
		Hero: heroservice.New(herorepo.NewPostgresRepository(heroStore)),
	}, nil
}
