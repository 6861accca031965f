package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/permit-service/internal/core/events"
	"github.com/frahmantamala/permit-service/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Publish sample domain events through the in-process bus and its audit log`,
}

var publishEventCmd = &cobra.Command{
	Use:       "publish [event-type]",
	Short:     "Publish a test event",
	Long:      `Publish a sample event to the event bus for testing and debugging`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{events.EventTypePermitCreated, events.EventTypePermitClosed, events.EventTypeUserRegistered},
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishTestEvent(args[0])
	},
}

var eventData string

func publishTestEvent(eventType string) error {
	lg := logger.LoggerWrapper()

	bus := events.NewEventBus(lg)
	events.RegisterAuditLog(bus, lg)

	event, err := sampleEvent(eventType, eventData)
	if err != nil {
		return err
	}

	lg.Info("publishing test event", "event_type", eventType, "event_id", event.EventID())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := bus.Publish(ctx, event); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	if err := bus.Wait(ctx); err != nil {
		return fmt.Errorf("wait for handlers: %w", err)
	}

	lg.Info("test event published successfully")
	return nil
}

func sampleEvent(eventType, data string) (events.Event, error) {
	switch eventType {
	case events.EventTypePermitCreated:
		return events.NewPermitCreatedEvent(0, data), nil
	case events.EventTypePermitClosed:
		return events.NewPermitClosedEvent(data, []string{"clearance_date"}), nil
	case events.EventTypeUserRegistered:
		return events.NewUserRegisteredEvent(0, data), nil
	default:
		return nil, fmt.Errorf("unknown event type %q", eventType)
	}
}

func init() {
	publishEventCmd.Flags().StringVar(&eventData, "data", "TEST-0001", "permit number or email carried by the sample event")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
