package get_available_slots

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-DemoBookingService/internal/api/handlers"
	getAvailableSlots "github.com/m04kA/SMC-DemoBookingService/internal/usecase/get_available_slots"
)

const (
	msgInvalidParams   = "paramètres de requête invalides"
	msgInvalidDuration = "durée demandée invalide"
	msgInvalidWindow   = "période de recherche invalide"
)

type Handler struct {
	useCase AvailabilityFinder
	logger  Logger
}

func NewHandler(useCase AvailabilityFinder, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/demo-slots/available
// Query params: duration, from, to (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	useCaseReq, err := ToUseCaseRequest(query.Get("duration"), query.Get("from"), query.Get("to"))
	if err != nil {
		h.logger.Warn("GET /demo-slots/available - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrInvalidDuration):
			h.logger.Warn("GET /demo-slots/available - Invalid duration: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDuration)

		case errors.Is(err, getAvailableSlots.ErrInvalidWindow):
			h.logger.Warn("GET /demo-slots/available - Invalid window: %v", err)
			handlers.RespondBadRequest(w, msgInvalidWindow)

		default:
			h.logger.Error("GET /demo-slots/available - Failed to get slots: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /demo-slots/available - Slots retrieved successfully: duration=%d, slots_count=%d",
		result.RequestedDurationMinutes, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
