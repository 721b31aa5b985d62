package delete_slot

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-DemoBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-DemoBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-DemoBookingService/internal/service/slots"
)

const (
	msgInvalidSlotID = "identifiant de créneau invalide"
	msgMissingUserID = "identifiant opérateur manquant"
	msgNotFound      = "créneau introuvable"
	msgSlotBooked    = "ce créneau est réservé et ne peut pas être supprimé"
)

type Handler struct {
	service SlotService
	logger  Logger
}

func NewHandler(service SlotService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle DELETE /api/v1/admin/demo-slots/{slotId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	slotID, err := handlers.PathUUID(r, "slotId")
	if err != nil {
		h.logger.Warn("DELETE /admin/demo-slots/{id} - Invalid slot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("DELETE /admin/demo-slots/{id} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	if err := h.service.Delete(r.Context(), slotID, userID); err != nil {
		switch {
		case errors.Is(err, slots.ErrSlotNotFound):
			h.logger.Warn("DELETE /admin/demo-slots/{id} - Slot not found: slot_id=%s", slotID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, slots.ErrSlotBooked):
			h.logger.Warn("DELETE /admin/demo-slots/{id} - Slot is booked: slot_id=%s", slotID)
			handlers.RespondConflict(w, msgSlotBooked)

		default:
			h.logger.Error("DELETE /admin/demo-slots/{id} - Failed to delete slot: slot_id=%s, error=%v", slotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /admin/demo-slots/{id} - Slot deleted: slot_id=%s, operator=%d", slotID, userID)
	handlers.RespondNoContent(w)
}
