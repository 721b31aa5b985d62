package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// MeetingRooms генератор ссылок на онлайн-встречи
type MeetingRooms struct {
	BaseURL    string
	RoomPrefix string
}

// LinkFor возвращает ссылку на комнату для бронирования.
// Ссылка детерминирована: повторный вызов с тем же ID дает ту же комнату.
func (r MeetingRooms) LinkFor(bookingID uuid.UUID) string {
	base := strings.TrimRight(r.BaseURL, "/")
	room := strings.ReplaceAll(bookingID.String(), "-", "")
	if r.RoomPrefix != "" {
		room = r.RoomPrefix + "-" + room
	}
	return fmt.Sprintf("%s/%s", base, room)
}
