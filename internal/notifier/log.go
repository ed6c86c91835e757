package notifier

import (
	"context"
	"log/slog"

	"github.com/amishk599/uxcelerator/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes failure notices to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each notice via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// NotifyFailure logs the notice. Returns nil (stdout logging does not fail).
func (n *LogNotifier) NotifyFailure(_ context.Context, notice model.FailureNotice) error {
	n.logger.Error("recommendation failed",
		"request_id", notice.RequestID,
		"attempts", notice.Attempts,
		"goal", notice.Goal,
		"error", notice.Err,
	)
	return nil
}
