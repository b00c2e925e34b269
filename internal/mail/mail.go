// Package mail builds and sends transactional email.  Sending is always
// asynchronous from the workflow's point of view: callers schedule a
// Send through the notify dispatcher and never wait on the outcome.
package mail

import (
	"context"
	"errors"
)

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
	// Kind tags the message for delivery logs, e.g. "booking_request".
	Kind string
}

// Receipt acknowledges that the transport accepted a message.
type Receipt struct {
	OK bool
	ID string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}

// ErrNoRecipient is returned for a message without a To address.
var ErrNoRecipient = errors.New("mail: message has no recipient")

func (m Message) validate() error {
	if m.To == "" {
		return ErrNoRecipient
	}
	return nil
}
