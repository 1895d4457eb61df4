package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/gophfarm/internal/common"
	"github.com/dmitrijs2005/gophfarm/internal/server"
	"github.com/spf13/cobra"
)

func (a *App) resetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete farm state (operator only)",
	}
	cmd.AddCommand(a.resetPlotCmd())
	cmd.AddCommand(a.resetFarmCmd())
	return cmd
}

func (a *App) resetPlotCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "plot [uid] [slot]",
		Short: "Delete one plot and its theft history",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			uid := args[0]
			slot, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("slot must be a number: %w", err)
			}
			if err := a.confirm(cmd, yes, fmt.Sprintf("reset plot %s/%d", uid, slot)); err != nil {
				return err
			}

			return a.withEngine(cmd, func(ctx context.Context, e *server.Engine) error {
				deleted, err := e.Services.Plots.Reset(ctx, uid, slot)
				if err != nil {
					return fmt.Errorf("failed to reset plot: %w", err)
				}
				if !deleted {
					fmt.Fprintf(cmd.OutOrStdout(), "%s plot %s/%d does not exist\n", warnMark("-"), uid, slot)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s plot %s/%d reset\n", okMark("✓"), uid, slot)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (a *App) resetFarmCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "farm [uid]",
		Short: "Close a farm: delete the user, its plots and their theft history",
		Long: `Deletes the farm owner and every plot together with the thefts against
them. Seed and crop inventories are kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uid := args[0]
			if err := a.confirm(cmd, yes, fmt.Sprintf("close farm %s", uid)); err != nil {
				return err
			}

			return a.withEngine(cmd, func(ctx context.Context, e *server.Engine) error {
				n, err := e.Services.Farm.CloseFarm(ctx, uid)
				if errors.Is(err, common.ErrorNotFound) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s farm %s does not exist\n", warnMark("-"), uid)
					return nil
				}
				if err != nil {
					return fmt.Errorf("failed to close farm: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s farm %s closed, %d plot(s) removed\n", okMark("✓"), uid, n)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
