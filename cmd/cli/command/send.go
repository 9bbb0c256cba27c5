package command

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"portalhub/cmd/cli/command/client"
)

var (
	sendType            string
	sendTitle           string
	sendMessage         string
	sendDuration        int64
	sendDisplayDuration int
	sendPriority        string
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Broadcast a notification to all connected devices",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.NewHTTPClient(serverURL, token)
		resp, err := c.SendNotification(client.SendNotificationRequest{
			NotificationType: sendType,
			Title:            sendTitle,
			Message:          sendMessage,
			Duration:         sendDuration,
			DisplayDuration:  sendDisplayDuration,
			Priority:         sendPriority,
		})
		if err != nil {
			return err
		}
		color.Green("✅ notification %s sent to %d clients", resp.NotificationID, resp.ClientsNotified)
		return nil
	},
}

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Trigger device-level push delivery to subscribed devices",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.NewHTTPClient(serverURL, token)
		resp, err := c.PushSend(client.SendNotificationRequest{
			NotificationType: sendType,
			Title:            sendTitle,
			Message:          sendMessage,
			Duration:         sendDuration,
			Priority:         sendPriority,
		})
		if err != nil {
			return err
		}
		fmt.Printf("push delivered to %d subscribed clients\n", resp.ClientsNotified)
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{sendCmd, pushCmd} {
		cmd.Flags().StringVar(&sendType, "type", "service_announcement", "notification type")
		cmd.Flags().StringVar(&sendTitle, "title", "", "title (per-type default when empty)")
		cmd.Flags().StringVar(&sendMessage, "message", "", "message body")
		cmd.Flags().Int64Var(&sendDuration, "duration", 0, "time-to-live in milliseconds")
		cmd.Flags().StringVar(&sendPriority, "priority", "normal", "normal | high | urgent")
	}
	sendCmd.Flags().IntVar(&sendDisplayDuration, "display-duration", 0, "time-to-live in minutes (duration wins)")

	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(pushCmd)
}
