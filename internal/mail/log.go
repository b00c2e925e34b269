package mail

import (
	"context"

	"github.com/google/uuid"

	"github.com/iliyamo/stagebook/internal/logger"
)

// LogSender writes messages to the application log.  It is used when no
// broker is configured.
type LogSender struct{}

// Send logs the envelope of msg and reports success.
func (LogSender) Send(ctx context.Context, msg Message) (Receipt, error) {
	if err := msg.validate(); err != nil {
		return Receipt{}, err
	}
	id := uuid.NewString()
	logger.WithContext(ctx).Info("email (not delivered, no broker configured)",
		"id", id, "to", msg.To, "subject", msg.Subject, "kind", msg.Kind)
	return Receipt{OK: true, ID: id}, nil
}
