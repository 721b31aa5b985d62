package get_available_slots

import (
	"fmt"
	"strconv"
	"time"

	"github.com/m04kA/SMC-DemoBookingService/internal/api/handlers"
	getAvailableSlots "github.com/m04kA/SMC-DemoBookingService/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	RequestedDurationMinutes int             `json:"requestedDurationMinutes"`
	From                     time.Time       `json:"from"`
	To                       time.Time       `json:"to"`
	NoSlotFitsDuration       bool            `json:"noSlotFitsDuration"`
	Slots                    []AvailableSlot `json:"slots"`
}

// AvailableSlot старт, вмещающий запрошенную длительность
type AvailableSlot struct {
	SlotID          string    `json:"slotId"`
	StartAt         time.Time `json:"startAt"`
	EndAt           time.Time `json:"endAt"`
	DurationMinutes int       `json:"durationMinutes"`
	CoveredSlotIDs  []string  `json:"coveredSlotIds"`
}

// ToUseCaseRequest создает запрос use case из query параметров
func ToUseCaseRequest(durationStr, fromStr, toStr string) (*getAvailableSlots.Request, error) {
	req := &getAvailableSlots.Request{}

	if durationStr != "" {
		duration, err := strconv.Atoi(durationStr)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q: %w", durationStr, err)
		}
		req.DurationMinutes = &duration
	}

	from, err := handlers.ParseTime(fromStr)
	if err != nil {
		return nil, err
	}
	to, err := handlers.ParseTime(toStr)
	if err != nil {
		return nil, err
	}
	req.From, req.To = from, to

	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]AvailableSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		covered := make([]string, len(slot.CoveredSlotIDs))
		for j, id := range slot.CoveredSlotIDs {
			covered[j] = id.String()
		}
		slots[i] = AvailableSlot{
			SlotID:          slot.SlotID.String(),
			StartAt:         slot.StartAt,
			EndAt:           slot.EndAt,
			DurationMinutes: slot.DurationMinutes,
			CoveredSlotIDs:  covered,
		}
	}

	return &AvailableSlotsResponse{
		RequestedDurationMinutes: resp.RequestedDurationMinutes,
		From:                     resp.From,
		To:                       resp.To,
		NoSlotFitsDuration:       resp.NoSlotFitsDuration,
		Slots:                    slots,
	}
}
