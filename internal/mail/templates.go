package mail

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"
)

// BookingRequestData fills the booking request mail sent to an artist
// when an event they are lined up for is published.
type BookingRequestData struct {
	ArtistName string
	EventTitle string
	VenueName  string
	EventDate  time.Time
	Hours      float64
	ActionURL  string
}

// BookingCancelledData fills the notice sent when a published event is
// pulled and the artist's booking is cancelled.
type BookingCancelledData struct {
	ArtistName string
	EventTitle string
	EventDate  time.Time
	Reason     string
}

var funcs = map[string]any{
	"date": func(t time.Time) string { return t.UTC().Format("Mon 2 Jan 2006, 15:04 UTC") },
}

var (
	requestHTML = htmltemplate.Must(htmltemplate.New("request").Funcs(funcs).Parse(
		`<p>Hi {{.ArtistName}},</p>
<p>You have a new booking request for <strong>{{.EventTitle}}</strong>{{if .VenueName}} at {{.VenueName}}{{end}} on {{date .EventDate}} ({{.Hours}}h).</p>
<p><a href="{{.ActionURL}}">Review the request</a></p>`))
	requestText = texttemplate.Must(texttemplate.New("request").Funcs(funcs).Parse(
		`Hi {{.ArtistName}},

You have a new booking request for {{.EventTitle}}{{if .VenueName}} at {{.VenueName}}{{end}} on {{date .EventDate}} ({{.Hours}}h).

Review the request: {{.ActionURL}}
`))
	cancelHTML = htmltemplate.Must(htmltemplate.New("cancel").Funcs(funcs).Parse(
		`<p>Hi {{.ArtistName}},</p>
<p>Your booking for <strong>{{.EventTitle}}</strong> on {{date .EventDate}} has been cancelled.</p>
{{if .Reason}}<p>Reason: {{.Reason}}</p>{{end}}`))
	cancelText = texttemplate.Must(texttemplate.New("cancel").Funcs(funcs).Parse(
		`Hi {{.ArtistName}},

Your booking for {{.EventTitle}} on {{date .EventDate}} has been cancelled.
{{if .Reason}}Reason: {{.Reason}}
{{end}}`))
)

// BookingRequest renders the booking request mail.
func BookingRequest(to string, d BookingRequestData) (Message, error) {
	return render(to, "booking_request",
		fmt.Sprintf("New booking request: %s", d.EventTitle), requestHTML, requestText, d)
}

// BookingCancelled renders the cancellation notice.
func BookingCancelled(to string, d BookingCancelledData) (Message, error) {
	return render(to, "booking_cancelled",
		fmt.Sprintf("Booking cancelled: %s", d.EventTitle), cancelHTML, cancelText, d)
}

func render(to, kind, subject string, h *htmltemplate.Template, t *texttemplate.Template, data any) (Message, error) {
	var hb, tb bytes.Buffer
	if err := h.Execute(&hb, data); err != nil {
		return Message{}, fmt.Errorf("render %s html: %w", kind, err)
	}
	if err := t.Execute(&tb, data); err != nil {
		return Message{}, fmt.Errorf("render %s text: %w", kind, err)
	}
	return Message{
		To:      strings.TrimSpace(to),
		Subject: subject,
		HTML:    hb.String(),
		Text:    tb.String(),
		Kind:    kind,
	}, nil
}
