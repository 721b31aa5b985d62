package crmservice

// LeadSource источник лида для демо-бронирований
const LeadSource = "demo_booking"

// LeadRequest данные для создания или обновления лида
type LeadRequest struct {
	InstituteName string  `json:"institute_name"`
	ContactName   string  `json:"contact_name"`
	Email         string  `json:"email"`
	Phone         *string `json:"phone,omitempty"`
	City          *string `json:"city,omitempty"`
	Source        string  `json:"source"`
	BookingID     string  `json:"booking_id"`
	DemoAt        string  `json:"demo_at"` // RFC3339
}

// Lead модель лида из CRM
type Lead struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// ErrorResponse модель ошибки от CRM
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
