package get_available_slots

import (
	"fmt"
	"time"
)

// resolveDuration возвращает запрошенную длительность или значение по умолчанию
func resolveDuration(req *Request, policy Policy) (int, error) {
	if req.DurationMinutes == nil {
		return policy.DefaultDurationMinutes, nil
	}

	d := *req.DurationMinutes
	if d <= 0 {
		return 0, fmt.Errorf("%w: duration must be positive", ErrInvalidDuration)
	}
	if d > policy.MaxDurationMinutes {
		return 0, fmt.Errorf("%w: duration must not exceed %d minutes", ErrInvalidDuration, policy.MaxDurationMinutes)
	}
	return d, nil
}

// resolveWindow сужает окно запроса до [now + minNotice, now + horizon)
func resolveWindow(req *Request, policy Policy, now time.Time) (time.Time, time.Time, error) {
	if req.From != nil && req.To != nil && !req.From.Before(*req.To) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from must be before to", ErrInvalidWindow)
	}

	from := now.Add(time.Duration(policy.MinNoticeMinutes) * time.Minute)
	to := now.AddDate(0, 0, policy.HorizonDays)

	if req.From != nil && req.From.After(from) {
		from = *req.From
	}
	if req.To != nil && req.To.Before(to) {
		to = *req.To
	}

	return from.UTC(), to.UTC(), nil
}

// snapshotRange выравнивает окно по суткам для переиспользования кэша.
// Хвост расширен на максимальную длительность: цепочка может выходить за окно.
func snapshotRange(now time.Time, policy Policy) (time.Time, time.Time) {
	day := now.UTC().Truncate(24 * time.Hour)
	from := day
	to := day.AddDate(0, 0, policy.HorizonDays+1).Add(time.Duration(policy.MaxDurationMinutes) * time.Minute)
	return from, to
}
