package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vegatran/GaraManager-sub003/kafka"
)

func newEventsCommand() *cobra.Command {
	events := &cobra.Command{
		Use:   "events",
		Short: "Inspect the events this service publishes",
	}

	var (
		topics  []string
		groupID string
	)
	tail := &cobra.Command{
		Use:   "tail",
		Short: "Print inventory events from Kafka until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if groupID == "" {
				groupID = cfg.Kafka.GroupID
			}

			consumer, err := kafka.NewConsumer(cfg.Kafka.Brokers, groupID, topics)
			if err != nil {
				return err
			}
			defer consumer.Close()

			consumer.RegisterHandler(kafka.AnyEvent, func(_ context.Context, event kafka.Envelope) error {
				cmd.Printf("%s\t%s\t%s\t%s\n", event.Topic, event.EventType, event.Key, event.Payload)
				return nil
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := consumer.Run(ctx); err != nil {
				return fmt.Errorf("consume events: %w", err)
			}
			return nil
		},
	}
	tail.Flags().StringSliceVar(&topics, "topic", kafka.Topics, "topics to follow")
	tail.Flags().StringVar(&groupID, "group", "", "consumer group (defaults to kafka.group_id)")

	events.AddCommand(tail)
	return events
}
