package command

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	cmdclient "portalhub/cmd/cli/command/client"
	"portalhub/internal/client"
)

var (
	watchStateDir string
	watchTouch    bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Receive and display notifications like a portal device",
	Long: `watch runs the full client controller against the server: it restores
in-flight notifications from the last run, deduplicates deliveries, keeps
countdowns, and reconnects when the stream drops.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := watchStateDir
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return err
			}
			dir = filepath.Join(home, ".portalhub")
		}
		storage, err := client.NewFileStore(dir)
		if err != nil {
			return err
		}

		ctrl := client.NewController(client.Options{
			Display: cmdclient.NewTermDisplay(),
			Device:  cmdclient.BellNotifier{},
			Storage: storage,
			Touch:   watchTouch,
		})

		stream := client.NewStreamClient(
			[]string{serverURL + "/notifications/stream"},
			ctrl.HandleEnvelope,
		)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		fmt.Printf("watching %s (state in %s, ctrl-c to exit)\n", serverURL, dir)
		go stream.Run(ctx)
		ctrl.Run(ctx)
		return nil
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchStateDir, "state-dir", "", "state directory (default ~/.portalhub)")
	watchCmd.Flags().BoolVar(&watchTouch, "touch", false, "classify as a touch device (3 visible max, device notes)")
	rootCmd.AddCommand(watchCmd)
}
