package errortrack

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/PontoAdmin/ponto-admin/internal/db/models"
)

// Notifier is told about critical errors.
type Notifier interface {
	Notify(ctx context.Context, row models.ErrorLog) error
}

// LogNotifier reports critical errors on the error log.
type LogNotifier struct{}

// Notify implements Notifier.
func (LogNotifier) Notify(_ context.Context, row models.ErrorLog) error {
	log.Error().
		Str("error_id", row.ID).
		Str("error_type", row.ErrorType).
		Str("component", row.Component).
		Int("occurrences", row.OccurrenceCount).
		Msg("critical client error: " + row.Message)

	return nil
}
