package create_booking

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-DemoBookingService/internal/domain"
)

// validateRequest валидирует и нормализует контактные данные запроса
func validateRequest(req *Request) error {
	if req.SlotID == uuid.Nil {
		return fmt.Errorf("%w: slotId is required", ErrInvalidInput)
	}

	req.InstituteName = strings.TrimSpace(req.InstituteName)
	req.ContactName = strings.TrimSpace(req.ContactName)
	req.ContactEmail = strings.TrimSpace(req.ContactEmail)
	req.MeetingType = strings.ToUpper(strings.TrimSpace(req.MeetingType))
	req.ContactPhone = trimOptional(req.ContactPhone)
	req.Message = trimOptional(req.Message)
	req.Location = trimOptional(req.Location)
	req.City = trimOptional(req.City)

	if req.InstituteName == "" {
		return fmt.Errorf("%w: instituteName is required", ErrInvalidInput)
	}
	if err := checkLength("instituteName", req.InstituteName, domain.MaxInstituteNameLength); err != nil {
		return err
	}

	if req.ContactName == "" {
		return fmt.Errorf("%w: contactName is required", ErrInvalidInput)
	}
	if err := checkLength("contactName", req.ContactName, domain.MaxContactNameLength); err != nil {
		return err
	}

	if err := validateEmail(req.ContactEmail); err != nil {
		return err
	}

	if req.ContactPhone != nil {
		if err := checkLength("contactPhone", *req.ContactPhone, domain.MaxPhoneLength); err != nil {
			return err
		}
	}
	if req.Message != nil {
		if err := checkLength("message", *req.Message, domain.MaxMessageLength); err != nil {
			return err
		}
	}

	meetingType := domain.MeetingType(req.MeetingType)
	if !meetingType.IsValid() {
		return fmt.Errorf("%w: meetingType must be ONLINE or PHYSICAL", ErrInvalidInput)
	}

	// Адрес нужен только для очной встречи
	switch meetingType {
	case domain.MeetingPhysical:
		if req.Location == nil {
			return fmt.Errorf("%w: location is required for PHYSICAL meetings", ErrInvalidInput)
		}
		if err := checkLength("location", *req.Location, domain.MaxLocationLength); err != nil {
			return err
		}
	case domain.MeetingOnline:
		req.Location = nil
	}

	return nil
}

// validateEmail проверяет, что email состоит из одного адреса без отображаемого имени
func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: contactEmail is required", ErrInvalidInput)
	}
	if err := checkLength("contactEmail", email, domain.MaxEmailLength); err != nil {
		return err
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		return fmt.Errorf("%w: contactEmail is not a valid email address", ErrInvalidInput)
	}
	return nil
}

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

// validateSlotTiming проверяет минимальный запас и горизонт бронирования
func validateSlotTiming(slot *domain.Slot, now time.Time, policy Policy) error {
	earliest := now.Add(time.Duration(policy.MinNoticeMinutes) * time.Minute)
	if slot.StartAt.Before(earliest) {
		return fmt.Errorf("%w: slot starts at %s, minimum notice is %d minutes",
			ErrTooLateToBook, slot.StartAt.UTC().Format(time.RFC3339), policy.MinNoticeMinutes)
	}

	if policy.HorizonDays > 0 && !slot.StartAt.Before(now.AddDate(0, 0, policy.HorizonDays)) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, policy.HorizonDays)
	}

	return nil
}

// sameSlotSet сравнивает цепочки без учета порядка
func sameSlotSet(a, b []uuid.UUID) bool {
	if len(a) != len(b) {
		return false
	}

	seen := make(map[uuid.UUID]int, len(a))
	for _, id := range a {
		seen[id]++
	}
	for _, id := range b {
		if seen[id] == 0 {
			return false
		}
		seen[id]--
	}
	return true
}

func checkLength(field, value string, limit int) error {
	if utf8.RuneCountInString(value) > limit {
		return fmt.Errorf("%w: %s must not exceed %d characters", ErrInvalidInput, field, limit)
	}
	return nil
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
