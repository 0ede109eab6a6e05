package services

import (
	"context"

	"sourcehub/internal/core/ports"
	"sourcehub/pkg/utils"

	"go.uber.org/zap"
)

type logNotifier struct {
	log *zap.SugaredLogger
}

// NewLogNotifier returns a Notifier that writes notifications to the log.
func NewLogNotifier(log *zap.SugaredLogger) ports.Notifier {
	return &logNotifier{log: log}
}

func (n *logNotifier) Notify(ctx context.Context, severity ports.Severity, title, description string) {
	fields := []interface{}{
		"severity", string(severity),
		"title", title,
		"description", utils.TruncateString(description, 500),
	}

	switch severity {
	case ports.SeverityError:
		n.log.Errorw("notification", fields...)
	default:
		n.log.Infow("notification", fields...)
	}
}
