package service

import (
	"strings"
	"time"
)

// ValidationResult lists every rule an input breaks.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

func (r ValidationResult) err() error {
	if r.Valid {
		return nil
	}
	return &ValidationError{Errors: r.Errors}
}

// EventInput is the data needed to create an event.
type EventInput struct {
	Title             string
	Description       string
	EventDate         *time.Time
	EndDate           *time.Time
	CreatorID         uint64
	VenueID           *uint64
	ExternalVenueName *string
	ExternalAddress   *string
	ExternalCity      *string
	ExternalContact   *string
	TotalHours        *float64
	TotalBudgetCents  *int64
	IsPublic          bool
}

// PerformanceInput is the data needed to open a performance request.
type PerformanceInput struct {
	EventID          uint64
	ArtistID         uint64
	ProposedFeeCents *int64
	AgreedFeeCents   *int64
	Hours            *float64
	Notes            *string
}

// ValidateEvent checks an event input against now.
func ValidateEvent(in EventInput, now time.Time) ValidationResult {
	var errs []string
	if strings.TrimSpace(in.Title) == "" {
		errs = append(errs, "Title is required")
	}
	if in.EventDate == nil || in.EventDate.IsZero() {
		errs = append(errs, "Event date is required")
	} else if !in.EventDate.After(now) {
		errs = append(errs, "Event date must be in the future")
	}
	if in.CreatorID == 0 {
		errs = append(errs, "Creator ID is required")
	}

	hasVenue := in.VenueID != nil && *in.VenueID != 0
	hasExternal := in.ExternalVenueName != nil && strings.TrimSpace(*in.ExternalVenueName) != ""
	switch {
	case !hasVenue && !hasExternal:
		errs = append(errs, "Either venue ID or external venue name is required")
	case hasVenue && hasExternal:
		errs = append(errs, "Cannot specify both venue ID and external venue name")
	}

	if in.TotalHours != nil && *in.TotalHours <= 0 {
		errs = append(errs, "Total hours must be greater than 0")
	}
	if in.TotalBudgetCents != nil && *in.TotalBudgetCents <= 0 {
		errs = append(errs, "Total budget must be greater than 0")
	}
	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// ValidatePerformance checks a performance input.
func ValidatePerformance(in PerformanceInput) ValidationResult {
	var errs []string
	if in.EventID == 0 {
		errs = append(errs, "Event ID is required")
	}
	if in.ArtistID == 0 {
		errs = append(errs, "Artist ID is required")
	}
	if in.ProposedFeeCents != nil && *in.ProposedFeeCents < 0 {
		errs = append(errs, "Proposed fee cannot be negative")
	}
	if in.AgreedFeeCents != nil && *in.AgreedFeeCents < 0 {
		errs = append(errs, "Agreed fee cannot be negative")
	}
	if in.Hours != nil && *in.Hours <= 0 {
		errs = append(errs, "Hours must be greater than 0")
	}
	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
