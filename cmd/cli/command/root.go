package command

// root.go defines the root command for portalctl.

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	serverURL string // portal server base URL
	token     string // shared admin secret
)

var rootCmd = &cobra.Command{
	Use:   "portalctl",
	Short: "portalctl - hotspot portal notification CLI",
	Long: `portalctl talks to the hotspot portal notification server. Use it to:
- Broadcast admin notifications to every connected device
- Trigger device-level push delivery
- Inspect server status and active notifications
- Watch the stream as a receiving client

Use "portalctl command -h" to see all available commands.`,
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:3000", "portal server base URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("ADMIN_TOKEN"), "admin token (defaults to $ADMIN_TOKEN)")
}
