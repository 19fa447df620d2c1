package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shroominic/cashu-mint-status-board/internal/app"
)

var (
	appInstance *app.App
	version     = "dev"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "mintboard",
	Short: "Rank and monitor Cashu mints from your terminal",
	Long: `Cashu mint status board

  Discovers Cashu mints announced on nostr, probes their liveness, latency
  and supported units, enriches them with lightning node metadata, and ranks
  them by a configurable weighted score.

  Quick start:
    mintboard discover --register
    mintboard probe
    mintboard serve
    mintboard tui`,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize app
		var err error
		appInstance, err = app.New()
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		// Cleanup
		if appInstance != nil {
			return appInstance.Close()
		}
		return nil
	},
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mintboard %s\n", version)
	},
}
