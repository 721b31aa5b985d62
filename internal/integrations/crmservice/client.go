package crmservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client клиент для работы с CRM (лиды)
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента CRM
func NewClient(baseURL, apiKey string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// UpsertLead создает лид или обновляет существующий по email
func (c *Client) UpsertLead(ctx context.Context, lead LeadRequest) (*Lead, error) {
	if lead.Source == "" {
		lead.Source = LeadSource
	}

	body, err := json.Marshal(lead)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal request: %v", ErrInternal, err)
	}

	url := fmt.Sprintf("%s/internal/leads", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Service-Token", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		var errResp ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		return nil, fmt.Errorf("%w: %s", ErrInvalidLead, errResp.Message)
	default:
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(raw))
	}

	var created Lead
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}
	if created.ID == "" {
		return nil, fmt.Errorf("%w: empty lead id", ErrInvalidResponse)
	}

	return &created, nil
}

// UpsertLeadWithGracefulDegradation привязывает лид с graceful degradation.
// При недоступности CRM возвращает ErrServiceDegraded, бронирование при этом не отменяется.
func (c *Client) UpsertLeadWithGracefulDegradation(ctx context.Context, lead LeadRequest) (*Lead, error) {
	c.log.Info("Linking CRM lead for booking_id=%s", lead.BookingID)

	created, err := c.UpsertLead(ctx, lead)
	if err != nil {
		if errors.Is(err, ErrInvalidLead) {
			c.log.Warn("CRM rejected lead for booking_id=%s: %v", lead.BookingID, err)
			return nil, err
		}

		c.log.Error("CRM unavailable, applying graceful degradation for booking_id=%s: %v", lead.BookingID, err)
		return nil, fmt.Errorf("%w: booking_id=%s, error=%v", ErrServiceDegraded, lead.BookingID, err)
	}

	c.log.Info("Linked booking_id=%s to lead_id=%s", lead.BookingID, created.ID)
	return created, nil
}
