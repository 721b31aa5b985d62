package create_slot

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-DemoBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-DemoBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-DemoBookingService/internal/service/slots"
)

const (
	msgInvalidRequestBody = "corps de requête invalide"
	msgMissingUserID      = "identifiant opérateur manquant"
	msgInvalidDuration    = "durée de créneau non autorisée"
	msgSlotInPast         = "le créneau commence dans le passé"
	msgSlotOverlap        = "ce créneau chevauche un créneau existant"
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

// Handle POST /api/v1/admin/demo-slots
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /admin/demo-slots - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateSlotRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /admin/demo-slots - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Create(r.Context(), req.ToServiceRequest(userID))
	if err != nil {
		switch {
		case errors.Is(err, slots.ErrInvalidDuration):
			h.logger.Warn("POST /admin/demo-slots - Invalid duration: %d", req.DurationMinutes)
			handlers.RespondBadRequest(w, msgInvalidDuration)

		case errors.Is(err, slots.ErrSlotInPast):
			h.logger.Warn("POST /admin/demo-slots - Slot in the past: %s", req.StartAt)
			handlers.RespondBadRequest(w, msgSlotInPast)

		case errors.Is(err, slots.ErrInvalidInput):
			h.logger.Warn("POST /admin/demo-slots - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, slots.ErrSlotOverlap):
			h.logger.Warn("POST /admin/demo-slots - Overlap: start=%s", req.StartAt)
			handlers.RespondConflict(w, msgSlotOverlap)

		default:
			h.logger.Error("POST /admin/demo-slots - Failed to create slot: operator=%d, error=%v", userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /admin/demo-slots - Slot created successfully: slot_id=%s, operator=%d", result.ID, userID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
