package command

import (
	"fmt"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/spf13/cobra"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Generate a VAPID keypair for the server config",
	RunE: func(cmd *cobra.Command, args []string) error {
		private, public, err := webpush.GenerateVAPIDKeys()
		if err != nil {
			return err
		}
		fmt.Printf("VAPID_PUBLIC_KEY=%s\n", public)
		fmt.Printf("VAPID_PRIVATE_KEY=%s\n", private)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keysCmd)
}
