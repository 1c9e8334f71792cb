package paymentservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// AuthorizeRequest запрос на авторизацию списания
type AuthorizeRequest struct {
	ClientID int64   `json:"client_id"`
	SalonID  int64   `json:"salon_id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Authorization результат авторизации списания
type Authorization struct {
	TransactionID string `json:"transaction_id"`
}

// Client клиент платёжного сервиса. Сервис только подтверждает или отклоняет
// списание - вся механика платёжного шлюза остаётся на его стороне.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента PaymentService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Authorize авторизует списание указанной суммы с клиента.
// Возвращает ErrChargeDeclined, если платёж отклонён.
func (c *Client) Authorize(ctx context.Context, req *AuthorizeRequest) (*Authorization, error) {
	url := fmt.Sprintf("%s/internal/charges/authorize", c.baseURL)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal request: %v", ErrInternal, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		// Продолжаем обработку
	case http.StatusPaymentRequired, http.StatusUnprocessableEntity:
		c.log.Warn("Charge declined for client_id=%d, amount=%.2f", req.ClientID, req.Amount)
		return nil, ErrChargeDeclined
	default:
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(respBody))
	}

	var auth Authorization
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	c.log.Info("Charge authorized for client_id=%d, amount=%.2f, transaction=%s",
		req.ClientID, req.Amount, auth.TransactionID)
	return &auth, nil
}
