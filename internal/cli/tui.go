package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shroominic/cashu-mint-status-board/internal/scheduler"
	"github.com/shroominic/cashu-mint-status-board/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive terminal board",
	Long:  `Launch the full-screen ranked mint board with key-driven column sorting.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Background refresh keeps the board live while the TUI renders it.
		sched, err := newScheduler(scheduler.Config{})
		if err != nil {
			return err
		}
		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer sched.Stop()

		p := tui.NewProgram(appInstance.Board)
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("TUI error: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
