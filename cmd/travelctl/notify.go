package main

import (
	"context"
	"fmt"
	"html"

	"github.com/spf13/cobra"

	"travel_app_echo/internal/config"
	"travel_app_echo/internal/notifications"
	"travel_app_echo/internal/services"
)

func notifyCmd() *cobra.Command {
	var (
		to    string
		phone string
		msg   string
	)

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Send a test notification over email and WhatsApp",
		Example: `  travelctl notify --to guest@example.com
  travelctl notify --phone 0911234567 --msg "hello from travelctl"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if to == "" && phone == "" {
				return fmt.Errorf("provide --to, --phone or both")
			}

			cfg := config.Load()
			if cfg.WahaBaseURL == "" && phone != "" {
				return fmt.Errorf("WAHA_BASE_URL is not set")
			}

			n := notifications.New(notifications.KindTest, to, phone, "Test notification", "<p>"+html.EscapeString(msg)+"</p>", msg)
			if to == "" {
				n.Channels = []notifications.Channel{notifications.ChannelWhatsapp}
			}

			fmt.Printf("Sending %s over %v\n", n.ID, n.Channels)
			if err := services.NewDeliverer(cfg).Deliver(context.Background(), n); err != nil {
				return fmt.Errorf("failed to send notification: %w", err)
			}
			fmt.Println("Notification sent successfully!")
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "email address")
	cmd.Flags().StringVar(&phone, "phone", "", "phone number, e.g. 0911234567 or +251911234567")
	cmd.Flags().StringVar(&msg, "msg", "Test message from travelctl", "message body")

	return cmd
}
