// Package queue defines message payloads exchanged over the message broker
// and the background consumer that drains them.
package queue

// EmailJob is published for every outbound mail.  The consumer delivers
// it; the web process never talks to an SMTP server directly.
type EmailJob struct {
	MessageID string `json:"message_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
	HTML      string `json:"html"`
	Text      string `json:"text"`
	Kind      string `json:"kind"`
	QueuedAt  string `json:"queued_at"`
}
