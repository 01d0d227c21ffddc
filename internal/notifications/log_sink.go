package notifications

import (
	"context"
	"log/slog"

	"github.com/SscSPs/token_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/token_ledger/internal/core/ports/services"
	"github.com/SscSPs/token_ledger/internal/middleware"
)

// LogSink writes every event as one structured log line.
type LogSink struct {
	logger *slog.Logger
}

var _ portssvc.EventSink = (*LogSink)(nil)

// NewLogSink creates a sink logging through logger when the request carries no logger of its own.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Publish(ctx context.Context, event domain.LedgerEvent) error {
	logger, ok := middleware.LoggerFromCtx(ctx)
	if !ok {
		logger = s.logger
	}
	attrs := []any{
		slog.String("event_id", event.ID),
		slog.String("action", string(event.Action)),
		slog.String("code", string(event.Code)),
		slog.String("actor", string(event.Actor)),
		slog.Any("recipients", event.Recipients),
	}
	if event.Quantity != nil {
		attrs = append(attrs, slog.String("quantity", event.Quantity.String()))
	}
	logger.Info("Ledger event", attrs...)
	return nil
}
