// Package notifications delivers ledger events to external observers.
package notifications

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/token_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/token_ledger/internal/core/ports/services"
	"github.com/posthog/posthog-go"
)

// enqueuer is the part of posthog.Client the sink uses.
type enqueuer interface {
	Enqueue(msg posthog.Message) error
	Close() error
}

// PosthogSink forwards ledger events and API usage to PostHog. A sink built
// without an API key is disabled and drops everything.
type PosthogSink struct {
	client enqueuer
	logger *slog.Logger
}

var _ portssvc.EventSink = (*PosthogSink)(nil)

// NewPosthogSink creates the sink. An empty apiKey yields a disabled sink.
func NewPosthogSink(apiKey, endpoint string, logger *slog.Logger) (*PosthogSink, error) {
	if apiKey == "" {
		logger.Warn("Posthog API key is empty, not initializing posthog client.")
		return &PosthogSink{logger: logger}, nil
	}
	client, err := posthog.NewWithConfig(apiKey, posthog.Config{Endpoint: endpoint})
	if err != nil {
		return nil, fmt.Errorf("failed to create posthog client: %w", err)
	}
	logger.Info("Posthog client initialized", slog.String("endpoint", endpoint))
	return newPosthogSink(client, logger), nil
}

func newPosthogSink(client enqueuer, logger *slog.Logger) *PosthogSink {
	return &PosthogSink{client: client, logger: logger}
}

// IsInitialized reports whether events are actually delivered.
func (s *PosthogSink) IsInitialized() bool {
	return s != nil && s.client != nil
}

// Publish enqueues the event under the acting account. Delivery is asynchronous.
func (s *PosthogSink) Publish(ctx context.Context, event domain.LedgerEvent) error {
	if !s.IsInitialized() {
		return nil
	}
	capture := posthog.Capture{
		DistinctId: string(event.Actor),
		Event:      "ledger_" + string(event.Action),
		Timestamp:  event.OccurredAt,
		Properties: event.Properties(),
	}
	if err := s.client.Enqueue(capture); err != nil {
		return fmt.Errorf("failed to enqueue %s event: %w", event.Action, err)
	}
	return nil
}

// Track enqueues a free-form usage event, e.g. one per API request.
func (s *PosthogSink) Track(distinctID, event string, properties map[string]any) {
	if !s.IsInitialized() {
		return
	}
	if err := s.client.Enqueue(posthog.Capture{
		DistinctId: distinctID,
		Event:      event,
		Properties: properties,
	}); err != nil {
		s.logger.Warn("Failed to enqueue usage event", slog.String("event", event), slog.String("error", err.Error()))
	}
}

// Close flushes pending events.
func (s *PosthogSink) Close() error {
	if !s.IsInitialized() {
		return nil
	}
	return s.client.Close()
}
