package notify

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/rl1809/rocketshoes-cart/internal/port"
)

// LogNotifier surfaces user-visible messages through the application log.
type LogNotifier struct {
	logger logrus.FieldLogger
}

func NewLogNotifier(logger logrus.FieldLogger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, severity port.Severity, message string) {
	entry := n.logger.WithFields(logrus.Fields{
		"notification": true,
		"severity":     severity,
	})

	if severity == port.SeverityWarning {
		entry.Warn(message)
		return
	}
	entry.Error(message)
}
