package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shroominic/cashu-mint-status-board/internal/board"
	"github.com/shroominic/cashu-mint-status-board/internal/rank"
	"github.com/shroominic/cashu-mint-status-board/internal/storage/models"
)

var probeCmd = &cobra.Command{
	Use:   "probe [url...]",
	Short: "Probe mints once and print the ranked board",
	Long: `Probe the given mint URLs (or every registered mint when none are given)
and print the resulting ranking.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		if len(args) > 0 {
			statuses := make([]*models.MintStatus, 0, len(args))
			for _, url := range args {
				statuses = append(statuses, models.NewMintStatus(url))
			}
			appInstance.Registry.ReplaceAll(statuses)
			appInstance.Prober.MeasureAll(ctx, false)
		} else {
			if err := appInstance.Board.Apply(ctx, board.DatasetRefreshed{Dataset: board.DefaultDataset}); err != nil {
				return err
			}
		}

		ranked := appInstance.Board.Rankings()
		if len(ranked) == 0 {
			fmt.Println("No mints to probe. Register some with 'mintboard discover --register'.")
			return nil
		}

		weights := appInstance.Board.Weights()
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "MINT\tSTATUS\tLATENCY\tUNITS\tCAPACITY\tSCORE")
		for _, st := range ranked {
			status := "down"
			if st.IsUp {
				status = "up"
			}
			latency := "-"
			if st.LatencyMS != models.LatencyUnknown {
				latency = fmt.Sprintf("%dms (%s)", st.LatencyMS, rank.LatencyClass(st.LatencyMS))
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.0f\n",
				st.DisplayName(), status, latency, st.CurrencyCount,
				st.CapacitySats, rank.Score(st, weights))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
}
