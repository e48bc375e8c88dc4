package commands

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/marshallshelly/airline/cmd/airline/output"
	"github.com/marshallshelly/airline/pkg/airline"
)

var repairsCmd = &cobra.Command{
	Use:   "repairs",
	Short: "Report repair counts",
	Long: `Report repair counts per plane and per year. Without a subcommand both
reports are printed.

Subcommands:
  per-plane  - repairs per plane, most repaired first
  per-year   - repairs per calendar year`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRepairsBoth(cmd.Context())
	},
}

var repairsPerPlaneCmd = &cobra.Command{
	Use:   "per-plane",
	Short: "Repairs per plane, most repaired first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd.Context(), func(svc *airline.Service) error {
			counts, err := svc.ListRepairsPerPlane(cmd.Context())
			if err != nil {
				return err
			}
			return emit(counts, func() { printPerPlane(counts) })
		})
	},
}

var repairsPerYearCmd = &cobra.Command{
	Use:   "per-year",
	Short: "Repairs per calendar year",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd.Context(), func(svc *airline.Service) error {
			counts, err := svc.ListRepairsPerYear(cmd.Context())
			if err != nil {
				return err
			}
			return emit(counts, func() { printPerYear(counts) })
		})
	},
}

func init() {
	rootCmd.AddCommand(repairsCmd)
	repairsCmd.AddCommand(repairsPerPlaneCmd, repairsPerYearCmd)
}

// runRepairsBoth fetches both reports concurrently. With the default
// single-connection pool the queries still run one after the other.
func runRepairsBoth(ctx context.Context) error {
	return withService(ctx, func(svc *airline.Service) error {
		var (
			perPlane []airline.PlaneRepairCount
			perYear  []airline.YearRepairCount
		)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			perPlane, err = svc.ListRepairsPerPlane(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			perYear, err = svc.ListRepairsPerYear(gctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return err
		}

		report := struct {
			PerPlane []airline.PlaneRepairCount `json:"per_plane"`
			PerYear  []airline.YearRepairCount  `json:"per_year"`
		}{perPlane, perYear}

		return emit(report, func() {
			printPerPlane(perPlane)
			printPerYear(perYear)
		})
	})
}

func printPerPlane(counts []airline.PlaneRepairCount) {
	output.Section("Repairs Per Plane")
	if len(counts) == 0 {
		output.Muted("No repairs recorded")
		return
	}
	rows := make([][]string, len(counts))
	for i, c := range counts {
		rows[i] = []string{strconv.Itoa(c.PlaneID), strconv.Itoa(c.Count)}
	}
	_ = output.Table(output.Out, []string{"PLANE", "REPAIRS"}, rows)
}

func printPerYear(counts []airline.YearRepairCount) {
	output.Section("Repairs Per Year")
	if len(counts) == 0 {
		output.Muted("No repairs recorded")
		return
	}
	rows := make([][]string, len(counts))
	for i, c := range counts {
		rows[i] = []string{strconv.Itoa(c.Year), strconv.Itoa(c.Count)}
	}
	_ = output.Table(output.Out, []string{"YEAR", "REPAIRS"}, rows)
}
