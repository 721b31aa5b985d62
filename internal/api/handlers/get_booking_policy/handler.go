package get_booking_policy

import (
	"net/http"

	"github.com/m04kA/SMC-DemoBookingService/internal/api/handlers"
)

type Handler struct {
	provider PolicyProvider
	logger   Logger
}

func NewHandler(provider PolicyProvider, logger Logger) *Handler {
	return &Handler{
		provider: provider,
		logger:   logger,
	}
}

// Handle GET /api/v1/demo-slots/policy
// Публичный endpoint - без авторизации
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	policy := h.provider.Policy()

	h.logger.Info("GET /demo-slots/policy - Policy retrieved: horizon=%d, min_notice=%d",
		policy.HorizonDays, policy.MinNoticeMinutes)
	handlers.RespondJSON(w, http.StatusOK, FromPolicy(policy))
}
