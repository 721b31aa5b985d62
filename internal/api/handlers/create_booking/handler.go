package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-DemoBookingService/internal/api/handlers"
	createBooking "github.com/m04kA/SMC-DemoBookingService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody   = "corps de requête invalide"
	msgInvalidSlotID        = "identifiant de créneau invalide"
	msgInvalidInput         = "données de réservation invalides"
	msgInvalidDuration      = "durée demandée invalide"
	msgSlotNotFound         = "créneau introuvable"
	msgSlotNotAvailable     = "ce créneau n'est plus disponible"
	msgDurationNotSatisfied = "ce créneau ne permet pas la durée demandée"
	msgStaleSnapshot        = "les disponibilités ont changé, veuillez rafraîchir la liste des créneaux"
	msgTooLateToBook        = "ce créneau est trop proche pour être réservé"
	msgDateTooFar           = "ce créneau est trop loin dans le futur"
)

type Handler struct {
	useCase DemoBookingCreator
	logger  Logger
}

func NewHandler(useCase DemoBookingCreator, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/demo-bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /demo-bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("POST /demo-bookings - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /demo-bookings - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, createBooking.ErrInvalidDuration):
			h.logger.Warn("POST /demo-bookings - Invalid duration: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDuration)

		case errors.Is(err, createBooking.ErrTooLateToBook):
			h.logger.Warn("POST /demo-bookings - Too late to book: slot_id=%s", req.SlotID)
			handlers.RespondBadRequest(w, msgTooLateToBook)

		case errors.Is(err, createBooking.ErrDateTooFarInFuture):
			h.logger.Warn("POST /demo-bookings - Date too far in future: slot_id=%s", req.SlotID)
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, createBooking.ErrSlotNotFound):
			h.logger.Warn("POST /demo-bookings - Slot not found: slot_id=%s", req.SlotID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, createBooking.ErrSlotNotAvailable):
			h.logger.Warn("POST /demo-bookings - Slot not available: slot_id=%s", req.SlotID)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, createBooking.ErrDurationNotSatisfiable):
			h.logger.Warn("POST /demo-bookings - Duration not satisfiable: slot_id=%s", req.SlotID)
			handlers.RespondConflict(w, msgDurationNotSatisfied)

		case errors.Is(err, createBooking.ErrStaleSnapshot):
			h.logger.Warn("POST /demo-bookings - Stale snapshot: slot_id=%s", req.SlotID)
			handlers.RespondConflict(w, msgStaleSnapshot)

		default:
			h.logger.Error("POST /demo-bookings - Failed to create booking: slot_id=%s, error=%v", req.SlotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /demo-bookings - Booking created successfully: booking_id=%s, covered_slots=%d",
		result.ID, len(result.CoveredSlotIDs))
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
