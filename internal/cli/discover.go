package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shroominic/cashu-mint-status-board/internal/discovery"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover mints announced on nostr",
	Long:  `Sweep the nostr relays for mint announcements (kind 38172) and print the found URLs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		register, _ := cmd.Flags().GetBool("register")
		relays, _ := cmd.Flags().GetStringSlice("relay")

		cfg := discovery.DefaultConfig()
		if len(relays) > 0 {
			cfg.Relays = relays
		}

		ctx := context.Background()
		urls, err := discovery.New(cfg).DiscoverMintURLs(ctx)
		if err != nil {
			return err
		}

		for _, url := range urls {
			if register {
				if _, err := appInstance.Storage.EnsureMint(ctx, url); err != nil {
					fmt.Printf("%s  (failed to register: %v)\n", url, err)
					continue
				}
			}
			fmt.Println(url)
		}
		fmt.Printf("\n%d mints announced\n", len(urls))
		return nil
	},
}

func init() {
	discoverCmd.Flags().Bool("register", false, "register discovered mints")
	discoverCmd.Flags().StringSlice("relay", nil, "relay URLs (default: built-in set)")
	rootCmd.AddCommand(discoverCmd)
}
