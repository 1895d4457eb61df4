package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophfarm/internal/server"
	"github.com/spf13/cobra"
)

func (a *App) reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Bring every table to its declared shape",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(cmd, func(ctx context.Context, e *server.Engine) error {
				out := cmd.OutOrStdout()
				if len(e.Changed) == 0 {
					fmt.Fprintf(out, "%s schema up to date\n", okMark("✓"))
					return nil
				}
				fmt.Fprintf(out, "%s reconciled: %s\n", okMark("✓"), strings.Join(e.Changed, ", "))
				return nil
			})
		},
	}
}

func (a *App) migrateLegacyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate-legacy",
		Short: "Move the legacy soil table into plot and theft rows",
		Long: `Decodes every packed soil cell into plot and theft rows and drops the
legacy table, in one transaction. Running it again is a no-op.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(cmd, func(ctx context.Context, e *server.Engine) error {
				migrated, err := e.Services.Plots.MigrateLegacy(ctx)
				if err != nil {
					return fmt.Errorf("failed to migrate legacy soil table: %w", err)
				}
				if !migrated {
					fmt.Fprintf(cmd.OutOrStdout(), "%s no legacy soil table, nothing to do\n", warnMark("-"))
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s legacy soil table migrated\n", okMark("✓"))
				return nil
			})
		},
	}
}
