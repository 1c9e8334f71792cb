package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/trimly-app/TRM-BookingService/internal/domain"
)

// Типы событий бронирования
const (
	EventBookingCreated       = "booking.created"
	EventBookingCancelled     = "booking.cancelled"
	EventBookingStatusChanged = "booking.status_changed"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Event событие бронирования, публикуемое в Kafka.
// Доставка уведомлений - ответственность notification-сервиса, мы только публикуем.
type Event struct {
	EventID       string `json:"event_id"`
	EventType     string `json:"event_type"`
	BookingID     int64  `json:"booking_id"`
	BookingNumber string `json:"booking_number"`
	ClientID      int64  `json:"client_id"`
	SalonID       int64  `json:"salon_id"`
	StaffID       int64  `json:"staff_id"`
	ServiceID     int64  `json:"service_id"`
	BookingDate   string `json:"booking_date"`
	StartTime     string `json:"start_time"`
	Status        string `json:"status"`
	OccurredAt    string `json:"occurred_at"`
}

// Producer публикует события бронирований в Kafka.
// Публикация fire-and-forget: ошибки логируются и не влияют на результат операции.
type Producer struct {
	writer *kafka.Writer
	log    Logger
}

// NewProducer создает продюсер событий бронирований.
// brokers - список адресов через запятую.
func NewProducer(brokers, topic string, log Logger) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(splitBrokers(brokers)...),
			Topic:    topic,
			Balancer: &kafka.Hash{},
		},
		log: log,
	}
}

func splitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// BookingCreated публикует событие о создании бронирования
func (p *Producer) BookingCreated(ctx context.Context, booking *domain.Booking) {
	p.publish(ctx, EventBookingCreated, booking)
}

// BookingCancelled публикует событие об отмене бронирования
func (p *Producer) BookingCancelled(ctx context.Context, booking *domain.Booking) {
	p.publish(ctx, EventBookingCancelled, booking)
}

// BookingStatusChanged публикует событие о смене статуса бронирования
func (p *Producer) BookingStatusChanged(ctx context.Context, booking *domain.Booking) {
	p.publish(ctx, EventBookingStatusChanged, booking)
}

func (p *Producer) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	event := Event{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		BookingID:     booking.ID,
		BookingNumber: booking.Number,
		ClientID:      booking.ClientID,
		SalonID:       booking.SalonID,
		StaffID:       booking.StaffID,
		ServiceID:     booking.ServiceID,
		BookingDate:   booking.BookingDate.Format(domain.DateFormat),
		StartTime:     booking.StartTime.String(),
		Status:        string(booking.Status),
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.log.Error("notify: failed to marshal %s event for booking id=%d: %v", eventType, booking.ID, err)
		return
	}

	msg := kafka.Message{
		// Ключ - мастер: события одного мастера попадают в одну партицию
		// и обрабатываются по порядку.
		Key:   []byte(strconv.FormatInt(booking.StaffID, 10)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.EventID)},
			{Key: "event_type", Value: []byte(eventType)},
		},
	}

	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(writeCtx, msg); err != nil {
		p.log.Error("notify: failed to publish %s event for booking id=%d: %v", eventType, booking.ID, err)
		return
	}

	p.log.Info("notify: published %s event for booking id=%d", eventType, booking.ID)
}

// Close закрывает соединение с Kafka
func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("notify: failed to close kafka writer: %w", err)
	}
	return nil
}
