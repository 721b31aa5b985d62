package schedule_follow_up

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-DemoBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-DemoBookingService/internal/api/middleware"
	scheduleFollowUp "github.com/m04kA/SMC-DemoBookingService/internal/usecase/schedule_follow_up"
)

const (
	msgInvalidBookingID   = "identifiant de réservation invalide"
	msgInvalidRequestBody = "corps de requête invalide"
	msgMissingUserID      = "identifiant opérateur manquant"
	msgNotFound           = "réservation introuvable"
	msgInvalidInput       = "date ou heure invalide"
	msgInvalidDuration    = "durée non autorisée pour un rendez-vous de suivi"
	msgSlotInPast         = "le rendez-vous doit être dans le futur"
	msgSlotOverlap        = "ce créneau chevauche un créneau existant"
)

type Handler struct {
	useCase ScheduleFollowUpUseCase
	logger  Logger
}

func NewHandler(useCase ScheduleFollowUpUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/admin/demo-bookings/{bookingId}/follow-up
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathUUID(r, "bookingId")
	if err != nil {
		h.logger.Warn("POST /admin/demo-bookings/{id}/follow-up - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /admin/demo-bookings/{id}/follow-up - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req FollowUpRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /admin/demo-bookings/{id}/follow-up - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(bookingID, userID))
	if err != nil {
		switch {
		case errors.Is(err, scheduleFollowUp.ErrBookingNotFound):
			h.logger.Warn("POST /admin/demo-bookings/{id}/follow-up - Booking not found: booking_id=%s", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, scheduleFollowUp.ErrInvalidInput):
			h.logger.Warn("POST /admin/demo-bookings/{id}/follow-up - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, scheduleFollowUp.ErrInvalidDuration):
			h.logger.Warn("POST /admin/demo-bookings/{id}/follow-up - Invalid duration: %d", req.DurationMinutes)
			handlers.RespondBadRequest(w, msgInvalidDuration)

		case errors.Is(err, scheduleFollowUp.ErrSlotInPast):
			h.logger.Warn("POST /admin/demo-bookings/{id}/follow-up - In the past: %s %s", req.Date, req.Time)
			handlers.RespondBadRequest(w, msgSlotInPast)

		case errors.Is(err, scheduleFollowUp.ErrSlotOverlap):
			h.logger.Warn("POST /admin/demo-bookings/{id}/follow-up - Overlap: %s %s", req.Date, req.Time)
			handlers.RespondConflict(w, msgSlotOverlap)

		default:
			h.logger.Error("POST /admin/demo-bookings/{id}/follow-up - Failed to schedule: booking_id=%s, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /admin/demo-bookings/{id}/follow-up - Follow-up scheduled: booking_id=%s, new_booking_id=%s, operator=%d",
		bookingID, result.BookingID, userID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
