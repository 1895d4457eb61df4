package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/gophfarm/internal/common"
	"github.com/dmitrijs2005/gophfarm/internal/models"
	"github.com/dmitrijs2005/gophfarm/internal/server"
	"github.com/dmitrijs2005/gophfarm/internal/services"
	"github.com/spf13/cobra"
)

func (a *App) showCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Inspect a farm",
	}
	cmd.AddCommand(a.showPlotsCmd())
	cmd.AddCommand(a.showInventoryCmd())
	cmd.AddCommand(a.showTheftsCmd())
	cmd.AddCommand(a.showSignInsCmd())
	return cmd
}

func (a *App) showPlotsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plots [uid]",
		Short: "List the plots of a farm",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(cmd, func(ctx context.Context, e *server.Engine) error {
				plots, err := e.Services.Plots.List(ctx, args[0])
				if err != nil {
					return err
				}
				if len(plots) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "no plots for %s\n", args[0])
					return nil
				}
				writePlots(cmd.OutOrStdout(), plots, time.Now().Unix())
				return nil
			})
		},
	}
}

func writePlots(out io.Writer, plots []models.Plot, now int64) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SLOT\tPLANT\tSTATE\tMATURE AT\tSOIL\tFLAGS")
	for _, p := range plots {
		plant, matureAt := "-", "-"
		if p.Planted() {
			plant = p.PlantName
			matureAt = time.Unix(p.MatureAt, 0).UTC().Format(time.DateTime)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", p.Slot, plant, plotState(p, now), matureAt, p.SoilLevel, plotFlags(p))
	}
	_ = w.Flush()
}

func plotState(p models.Plot, now int64) string {
	switch {
	case !p.Planted():
		return "empty"
	case p.MatureAtOrBefore(now):
		return okMark("mature")
	default:
		return warnMark("growing")
	}
}

func plotFlags(p models.Plot) string {
	var set []string
	for _, f := range models.Fields {
		if v, _ := p.Flag(f); v {
			set = append(set, string(f))
		}
	}
	if len(set) == 0 {
		return "-"
	}
	return badMark(strings.Join(set, ","))
}

func (a *App) showInventoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inventory [uid]",
		Short: "List seeds and crops held by a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(cmd, func(ctx context.Context, e *server.Engine) error {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "KIND\tITEM\tCOUNT\tLOCKED")
				for _, l := range []*services.InventoryLedger{e.Services.Seeds, e.Services.Crops} {
					entries, err := l.List(ctx, args[0])
					if err != nil {
						return err
					}
					for _, en := range entries {
						locked := ""
						if en.Locked {
							locked = "yes"
						}
						fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", l.Kind().Name, en.Item, en.Count, locked)
					}
				}
				return w.Flush()
			})
		},
	}
}

func (a *App) showTheftsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "thefts [uid]",
		Short: "List thefts from a farm's current plantings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(cmd, func(ctx context.Context, e *server.Engine) error {
				recs, err := e.Services.Thefts.ListByVictim(ctx, args[0])
				if err != nil {
					return err
				}
				if len(recs) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "no thefts from %s\n", args[0])
					return nil
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "SLOT\tTHIEF\tCOUNT\tWHEN")
				for _, r := range recs {
					fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", r.Slot, r.ThiefUID, r.Count,
						time.Unix(r.StolenAt, 0).UTC().Format(time.DateTime))
				}
				return w.Flush()
			})
		},
	}
}

func (a *App) showSignInsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signins [uid]",
		Short: "Show the sign-in summary of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(cmd, func(ctx context.Context, e *server.Engine) error {
				s, err := e.Services.SignIns.Summary(ctx, args[0])
				if errors.Is(err, common.ErrorNotFound) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s has never signed in\n", args[0])
					return nil
				}
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "total:       %d\n", s.TotalSignDays)
				fmt.Fprintf(out, "month:       %s (%d)\n", s.CurrentMonth, s.MonthSignDays)
				fmt.Fprintf(out, "streak:      %d\n", s.ContinuousDays)
				fmt.Fprintf(out, "last:        %s\n", s.LastSignDate)
				fmt.Fprintf(out, "supplements: %d\n", s.SupplementCount)
				return nil
			})
		},
	}
}
