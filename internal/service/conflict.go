package service

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/stagebook/internal/metrics"
	"github.com/iliyamo/stagebook/internal/model"
	"github.com/iliyamo/stagebook/internal/repository"
)

// ConflictChecker decides whether an artist is free for a time slot.
type ConflictChecker struct {
	bookings       repository.BookingRepository
	unavailability repository.UnavailabilityRepository
}

// NewConflictChecker returns a checker over the given stores.
func NewConflictChecker(b repository.BookingRepository, u repository.UnavailabilityRepository) *ConflictChecker {
	return &ConflictChecker{bookings: b, unavailability: u}
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// Touching intervals do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// HasConflict reports whether the slot [start, start+hours) collides
// with one of the artist's ACCEPTED bookings on the same UTC day or with
// an unavailability window.  Non-positive or nil hours mean two hours.
// excludeBookingID, when non-zero, is ignored so a booking does not
// conflict with itself.
func (c *ConflictChecker) HasConflict(ctx context.Context, artistID uint64, start time.Time, hours *float64, excludeBookingID uint64) (bool, error) {
	start = start.UTC()
	end := start.Add(model.HoursToDuration(hours))

	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	booked, err := c.bookings.ListAcceptedForArtistBetween(ctx, artistID, day, day.Add(24*time.Hour), excludeBookingID)
	if err != nil {
		return false, fmt.Errorf("list accepted bookings: %w", err)
	}
	for _, b := range booked {
		if b.ID == excludeBookingID && excludeBookingID != 0 {
			continue
		}
		if Overlaps(start, end, b.EventDate, b.EventDate.Add(b.Duration())) {
			metrics.ConflictChecks.WithLabelValues("conflict").Inc()
			return true, nil
		}
	}

	windows, err := c.unavailability.ListByArtist(ctx, artistID)
	if err != nil {
		return false, fmt.Errorf("list unavailability: %w", err)
	}
	for _, w := range windows {
		if Overlaps(start, end, w.StartDate, w.EndDate) {
			metrics.ConflictChecks.WithLabelValues("conflict").Inc()
			return true, nil
		}
	}

	metrics.ConflictChecks.WithLabelValues("clear").Inc()
	return false, nil
}
