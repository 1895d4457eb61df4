package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophfarm/internal/models"
	"github.com/dmitrijs2005/gophfarm/internal/server"
	"github.com/spf13/cobra"
)

func (a *App) signCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "sign [uid]",
		Short: "Record a sign-in, today or a past day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var day time.Time
			if date != "" {
				var err error
				if day, err = time.ParseInLocation(models.DateLayout, date, time.Local); err != nil {
					return fmt.Errorf("date must look like %s: %w", models.DateLayout, err)
				}
			}

			return a.withEngine(cmd, func(ctx context.Context, e *server.Engine) error {
				signed, err := e.Services.SignIns.Sign(ctx, args[0], day)
				if err != nil {
					return err
				}
				if !signed {
					fmt.Fprintf(cmd.OutOrStdout(), "%s already signed\n", warnMark("-"))
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s signed in %s\n", okMark("✓"), args[0])
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "past day to sign, YYYY-MM-DD")
	return cmd
}
