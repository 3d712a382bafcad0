package cmd

import (
	"context"
	"fmt"

	"splitters/internal/core/container"
	"splitters/internal/repository"
	"splitters/internal/seed"
	"splitters/internal/store"
	"splitters/internal/teams"
	"splitters/pkg/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load locations from a YAML file (or the built-in inventory) into the store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadEnv()
			if err != nil {
				return err
			}
			defer log.Sync()

			file, _ := cmd.Flags().GetString("file")
			skipExisting, _ := cmd.Flags().GetBool("skip-existing")

			locations := seed.Default()
			if file != "" {
				if locations, err = seed.LoadFile(file); err != nil {
					return err
				}
			}

			s, db, err := container.NewStore(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			if db != nil {
				defer db.Close()
				if file != "" {
					teamList, err := seed.LoadTeamsFile(file)
					if err != nil {
						return err
					}
					repo := teams.NewRepository(repository.NewRepository(db))
					for _, team := range teamList {
						if err := repo.PersistTeam(cmd.Context(), team); err != nil {
							return err
						}
					}
				}
			}

			added, skipped, err := seedLocations(cmd.Context(), s, locations, skipExisting)
			if err != nil {
				return err
			}
			log.Info("Seed finished", zap.Int("added", added), zap.Int("skipped", skipped))
			fmt.Fprintf(cmd.OutOrStdout(), "added %d locations, skipped %d\n", added, skipped)

			return nil
		},
	}
	cmd.Flags().String("file", "", "YAML seed file (default: built-in inventory)")
	cmd.Flags().Bool("skip-existing", true, "Skip locations whose id already exists")

	return cmd
}

func seedLocations(ctx context.Context, s *store.Store, locations []models.Location, skipExisting bool) (added, skipped int, err error) {
	if err := s.Refresh(ctx); err != nil {
		return 0, 0, err
	}

	for _, loc := range locations {
		if _, exists := s.Location(loc.ID); exists && loc.ID != "" {
			if skipExisting {
				skipped++
				continue
			}
			if err := s.DeleteLocation(ctx, loc.ID); err != nil {
				return added, skipped, err
			}
		}
		if _, err := s.AddLocation(ctx, loc); err != nil {
			return added, skipped, fmt.Errorf("seed location %q: %w", loc.Name, err)
		}
		added++
	}

	return added, skipped, nil
}
