package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophfarm/internal/common"
	"github.com/dmitrijs2005/gophfarm/internal/server"
	"github.com/spf13/cobra"
)

func (a *App) provisionCmd() *cobra.Command {
	var name string
	var plots int

	cmd := &cobra.Command{
		Use:   "provision [uid]",
		Short: "Open a farm or top up its empty plots",
		Long: `Creates the user and its empty plots. For an existing farm, missing slots
up to --plots are added and planted slots are left alone.

Examples:
  farmctl provision 1001 --name alice
  farmctl provision 1001 --plots 6`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uid := args[0]
			return a.withEngine(cmd, func(ctx context.Context, e *server.Engine) error {
				out := cmd.OutOrStdout()
				_, err := e.Services.Farm.OpenFarm(ctx, uid, name)
				switch {
				case err == nil:
					fmt.Fprintf(out, "%s opened farm %s\n", okMark("✓"), uid)
					if plots == 0 {
						return nil
					}
				case errors.Is(err, common.ErrFarmAlreadyOpen):
					if plots == 0 {
						fmt.Fprintf(out, "%s farm %s already exists\n", warnMark("-"), uid)
						return nil
					}
				default:
					return fmt.Errorf("failed to open farm: %w", err)
				}

				created, err := e.Services.Plots.Provision(ctx, uid, plots)
				if err != nil {
					return fmt.Errorf("failed to provision plots: %w", err)
				}
				fmt.Fprintf(out, "%s %d new plot(s) for %s\n", okMark("✓"), created, uid)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "display name of a new farm")
	cmd.Flags().IntVarP(&plots, "plots", "p", 0, "ensure slots 1..N exist")
	return cmd
}
