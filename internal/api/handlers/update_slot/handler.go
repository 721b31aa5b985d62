package update_slot

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-DemoBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-DemoBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-DemoBookingService/internal/service/slots"
)

const (
	msgInvalidSlotID      = "identifiant de créneau invalide"
	msgInvalidRequestBody = "corps de requête invalide"
	msgMissingUserID      = "identifiant opérateur manquant"
	msgNotFound           = "créneau introuvable"
	msgSlotBooked         = "ce créneau est réservé et ne peut pas être modifié"
	msgSlotOverlap        = "ce créneau chevauche un créneau existant"
	msgInvalidDuration    = "durée de créneau non autorisée"
	msgSlotInPast         = "le créneau commence dans le passé"
	msgInvalidInput       = "données de créneau invalides"
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

// Handle PATCH /api/v1/admin/demo-slots/{slotId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	slotID, err := handlers.PathUUID(r, "slotId")
	if err != nil {
		h.logger.Warn("PATCH /admin/demo-slots/{id} - Invalid slot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PATCH /admin/demo-slots/{id} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req UpdateSlotRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /admin/demo-slots/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Update(r.Context(), slotID, req.ToServiceRequest(userID))
	if err != nil {
		switch {
		case errors.Is(err, slots.ErrSlotNotFound):
			h.logger.Warn("PATCH /admin/demo-slots/{id} - Slot not found: slot_id=%s", slotID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, slots.ErrSlotBooked):
			h.logger.Warn("PATCH /admin/demo-slots/{id} - Slot is booked: slot_id=%s", slotID)
			handlers.RespondConflict(w, msgSlotBooked)

		case errors.Is(err, slots.ErrSlotOverlap):
			h.logger.Warn("PATCH /admin/demo-slots/{id} - Overlap: slot_id=%s", slotID)
			handlers.RespondConflict(w, msgSlotOverlap)

		case errors.Is(err, slots.ErrInvalidDuration):
			h.logger.Warn("PATCH /admin/demo-slots/{id} - Invalid duration: slot_id=%s", slotID)
			handlers.RespondBadRequest(w, msgInvalidDuration)

		case errors.Is(err, slots.ErrSlotInPast):
			h.logger.Warn("PATCH /admin/demo-slots/{id} - Slot in the past: slot_id=%s", slotID)
			handlers.RespondBadRequest(w, msgSlotInPast)

		case errors.Is(err, slots.ErrInvalidInput):
			h.logger.Warn("PATCH /admin/demo-slots/{id} - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("PATCH /admin/demo-slots/{id} - Failed to update slot: slot_id=%s, error=%v", slotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /admin/demo-slots/{id} - Slot updated: slot_id=%s, operator=%d", slotID, userID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
