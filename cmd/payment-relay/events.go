package main

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/LavaJover/shvark-mypvit-relay/internal/app/setup"
	"github.com/LavaJover/shvark-mypvit-relay/internal/infrastructure/kafka"
	"github.com/LavaJover/shvark-mypvit-relay/internal/infrastructure/telemetry"
	"github.com/spf13/cobra"
)

var tailGroup string

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect the payment event stream",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print payment events published on the kafka topic",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		if cfg.Events.Driver != setup.EventsKafka {
			return fmt.Errorf("events tail needs the kafka events driver, got %q", cfg.Events.Driver)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		msgs, errc := kafka.NewKafkaSubscriber(cfg.Events.Brokers).Subscribe(ctx, cfg.Events.Topic, tailGroup)
		for m := range msgs {
			var ev telemetry.EventMessage
			if err := json.Unmarshal(m.Value, &ev); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipping undecodable message %q: %v\n", m.Key, err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %-28s key=%s tx=%s status=%s\n",
				ev.OccurredAt.Format("15:04:05.000"), ev.Type, m.Key, ev.TransactionID, ev.Status)
		}
		return <-errc
	},
}

func init() {
	eventsTailCmd.Flags().StringVar(&tailGroup, "group", "payment-relay-tail", "kafka consumer group")
	eventsCmd.AddCommand(eventsTailCmd)
}
