package command

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"portalhub/cmd/cli/command/client"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.NewHTTPClient(serverURL, token)
		resp, err := c.Status()
		if err != nil {
			return err
		}
		fmt.Printf("status:               %s\n", color.GreenString(resp.Status))
		fmt.Printf("connected clients:    %d\n", resp.ConnectedClients)
		fmt.Printf("active notifications: %d\n", resp.ActiveNotifications)
		fmt.Printf("uptime:               %s\n", (time.Duration(resp.Uptime) * time.Second).String())
		return nil
	},
}

var activeCmd = &cobra.Command{
	Use:   "active",
	Short: "List currently-active notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.NewHTTPClient(serverURL, token)
		resp, err := c.ActiveNotifications()
		if err != nil {
			return err
		}
		if len(resp.Notifications) == 0 {
			fmt.Println("no active notifications")
			return nil
		}
		for _, n := range resp.Notifications {
			fmt.Printf("%s  [%s/%s]  %s: %s (expires %s)\n",
				n.ID, n.Type, n.Priority, n.DisplayTitle(), n.Message,
				n.ExpiresAt().Format("15:04:05"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(activeCmd)
}
