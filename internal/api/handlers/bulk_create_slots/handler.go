package bulk_create_slots

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
	msgTooManySlots       = "trop de créneaux demandés en une fois"
	msgInvalidInput       = "plage de dates ou d'horaires invalide"
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

// Handle POST /api/v1/admin/demo-slots/bulk
// Пересекающиеся и прошедшие слоты пропускаются и учитываются в skippedCount
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /admin/demo-slots/bulk - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req BulkCreateRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /admin/demo-slots/bulk - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.CreateBulk(r.Context(), req.ToServiceRequest(userID))
	if err != nil {
		switch {
		case errors.Is(err, slots.ErrInvalidDuration):
			h.logger.Warn("POST /admin/demo-slots/bulk - Invalid duration: %d", req.DurationMinutes)
			handlers.RespondBadRequest(w, msgInvalidDuration)

		case errors.Is(err, slots.ErrTooManySlots):
			h.logger.Warn("POST /admin/demo-slots/bulk - Too many slots: %v", err)
			handlers.RespondBadRequest(w, msgTooManySlots)

		case errors.Is(err, slots.ErrInvalidInput):
			h.logger.Warn("POST /admin/demo-slots/bulk - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /admin/demo-slots/bulk - Failed to create slots: operator=%d, error=%v", userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /admin/demo-slots/bulk - Slots created: operator=%d, created=%d, skipped=%d",
		userID, result.CreatedCount, result.SkippedCount)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
