package schedule_follow_up

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-DemoBookingService/internal/domain"
)

// parseStart валидирует запрос и возвращает начало встречи в UTC
func parseStart(req *Request, loc *time.Location, now time.Time) (time.Time, error) {
	if req.BookingID == uuid.Nil {
		return time.Time{}, fmt.Errorf("%w: bookingId is required", ErrInvalidInput)
	}

	if !domain.IsAllowedFollowUpDuration(req.DurationMinutes) {
		return time.Time{}, fmt.Errorf("%w: duration must be one of %v", ErrInvalidDuration, domain.AllowedFollowUpDurations)
	}

	if req.Notes != nil {
		notes := strings.TrimSpace(*req.Notes)
		if notes == "" {
			req.Notes = nil
		} else {
			if utf8.RuneCountInString(notes) > domain.MaxMessageLength {
				return time.Time{}, fmt.Errorf("%w: notes must not exceed %d characters", ErrInvalidInput, domain.MaxMessageLength)
			}
			req.Notes = &notes
		}
	}

	date, err := time.ParseInLocation(domain.DateFormat, req.Date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", ErrInvalidInput, req.Date)
	}
	clock, err := time.Parse(domain.TimeFormat, req.Time)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid time %q, expected HH:MM", ErrInvalidInput, req.Time)
	}

	start := time.Date(date.Year(), date.Month(), date.Day(), clock.Hour(), clock.Minute(), 0, 0, loc)
	if !start.After(now) {
		return time.Time{}, fmt.Errorf("%w: %s", ErrSlotInPast, start.Format(time.RFC3339))
	}

	return start.UTC(), nil
}
