package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shroominic/cashu-mint-status-board/internal/discovery"
	"github.com/shroominic/cashu-mint-status-board/internal/lightning"
	"github.com/shroominic/cashu-mint-status-board/internal/scheduler"
	"github.com/shroominic/cashu-mint-status-board/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the status board server",
	Long:  `Start the HTTP board together with the background refresh cycles (probes, nostr discovery, lightning enrichment).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		listen, _ := cmd.Flags().GetString("listen")
		probeInterval, _ := cmd.Flags().GetDuration("probe-interval")
		discoveryInterval, _ := cmd.Flags().GetDuration("discovery-interval")
		lightningInterval, _ := cmd.Flags().GetDuration("lightning-interval")

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sched, err := newScheduler(scheduler.Config{
			ProbeInterval:     probeInterval,
			DiscoveryInterval: discoveryInterval,
			LightningInterval: lightningInterval,
		})
		if err != nil {
			return err
		}
		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer sched.Stop()

		srv := server.New(appInstance.Board, appInstance.Storage)

		// Shut down on SIGINT/SIGTERM.
		go func() {
			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			<-sig
			log.Println("Shutting down")
			cancel()
			srv.Shutdown()
		}()

		log.Printf("Board listening on %s", listen)
		return srv.Listen(listen)
	},
}

// newScheduler wires the refresh scheduler from the app context.
func newScheduler(cfg scheduler.Config) (*scheduler.Scheduler, error) {
	disc := discovery.New(discovery.DefaultConfig())
	ln := lightning.New(15 * time.Second)
	return scheduler.New(appInstance.Board, appInstance.Storage, disc, ln, cfg)
}

func init() {
	serveCmd.Flags().String("listen", ":8000", "listen address")
	serveCmd.Flags().Duration("probe-interval", 15*time.Second, "probe cache refresh interval")
	serveCmd.Flags().Duration("discovery-interval", 10*time.Minute, "nostr discovery interval")
	serveCmd.Flags().Duration("lightning-interval", 15*time.Minute, "lightning enrichment interval")
	rootCmd.AddCommand(serveCmd)
}
