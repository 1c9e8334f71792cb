package models

import (
	"time"

	"github.com/trimly-app/TRM-BookingService/internal/domain"
)

// Request модели

// UpdateConfigRequest запрос на обновление конфигурации слотов
// Все поля опциональны - обновляются только переданные значения
type UpdateConfigRequest struct {
	UserID                  int64 `json:"userId"`
	SalonID                 int64 `json:"salonId"`
	SlotGranularityMinutes  *int  `json:"slotGranularityMinutes,omitempty"`
	MinBookingNoticeMinutes *int  `json:"minBookingNoticeMinutes,omitempty"`
	AdvanceBookingDays      *int  `json:"advanceBookingDays,omitempty"`
	DepositPercent          *int  `json:"depositPercent,omitempty"`
}

// ApplyTo накладывает переданные значения на существующую конфигурацию
func (r *UpdateConfigRequest) ApplyTo(cfg *domain.SalonSlotsConfig) {
	if r.SlotGranularityMinutes != nil {
		cfg.SlotGranularityMinutes = *r.SlotGranularityMinutes
	}
	if r.MinBookingNoticeMinutes != nil {
		cfg.MinBookingNoticeMinutes = *r.MinBookingNoticeMinutes
	}
	if r.AdvanceBookingDays != nil {
		cfg.AdvanceBookingDays = *r.AdvanceBookingDays
	}
	if r.DepositPercent != nil {
		cfg.DepositPercent = *r.DepositPercent
	}
}

// Response модели

// ConfigResponse ответ с данными конфигурации слотов
type ConfigResponse struct {
	SalonID                 int64      `json:"salonId"`
	SlotGranularityMinutes  int        `json:"slotGranularityMinutes"`
	MinBookingNoticeMinutes int        `json:"minBookingNoticeMinutes"`
	AdvanceBookingDays      int        `json:"advanceBookingDays"` // 0 = без ограничений
	DepositPercent          int        `json:"depositPercent"`
	UpdatedAt               *time.Time `json:"updatedAt,omitempty"` // nil для дефолтной конфигурации
}

// FromDomainConfig конвертирует domain модель в DTO
func FromDomainConfig(c *domain.SalonSlotsConfig) *ConfigResponse {
	if c == nil {
		return nil
	}

	resp := &ConfigResponse{
		SalonID:                 c.SalonID,
		SlotGranularityMinutes:  c.SlotGranularityMinutes,
		MinBookingNoticeMinutes: c.MinBookingNoticeMinutes,
		AdvanceBookingDays:      c.AdvanceBookingDays,
		DepositPercent:          c.DepositPercent,
	}

	if !c.UpdatedAt.IsZero() {
		updatedAt := c.UpdatedAt
		resp.UpdatedAt = &updatedAt
	}

	return resp
}
