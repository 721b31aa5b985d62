package get_booking_policy

import (
	"github.com/m04kA/SMC-DemoBookingService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-DemoBookingService/internal/usecase/get_available_slots"
)

// PolicyResponse правила бронирования, которые видит публичная форма
type PolicyResponse struct {
	HorizonDays            int      `json:"horizonDays"`
	MinNoticeMinutes       int      `json:"minNoticeMinutes"`
	DefaultDurationMinutes int      `json:"defaultDurationMinutes"`
	MaxDurationMinutes     int      `json:"maxDurationMinutes"`
	SlotDurations          []int    `json:"slotDurations"`
	MeetingTypes           []string `json:"meetingTypes"`
}

// FromPolicy конвертирует политику в HTTP response
func FromPolicy(p getAvailableSlots.Policy) *PolicyResponse {
	return &PolicyResponse{
		HorizonDays:            p.HorizonDays,
		MinNoticeMinutes:       p.MinNoticeMinutes,
		DefaultDurationMinutes: p.DefaultDurationMinutes,
		MaxDurationMinutes:     p.MaxDurationMinutes,
		SlotDurations:          domain.AllowedSlotDurations,
		MeetingTypes:           []string{string(domain.MeetingOnline), string(domain.MeetingPhysical)},
	}
}
