package domain

import "time"

// SalonSlotsConfig represents the booking configuration of a salon.
// A salon without a stored row uses the Default* constants.
type SalonSlotsConfig struct {
	ID                      int64
	SalonID                 int64
	SlotGranularityMinutes  int
	MinBookingNoticeMinutes int
	AdvanceBookingDays      int // 0 = unlimited
	DepositPercent          int
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// DefaultSalonSlotsConfig возвращает конфигурацию с дефолтными значениями
func DefaultSalonSlotsConfig(salonID int64) *SalonSlotsConfig {
	return &SalonSlotsConfig{
		SalonID:                 salonID,
		SlotGranularityMinutes:  DefaultSlotGranularityMinutes,
		MinBookingNoticeMinutes: DefaultMinBookingNoticeMinutes,
		AdvanceBookingDays:      DefaultAdvanceBookingDays,
		DepositPercent:          DefaultDepositPercent,
	}
}

// HasAdvanceBookingLimit returns true if there's a limit on how far in advance bookings can be made
func (c *SalonSlotsConfig) HasAdvanceBookingLimit() bool {
	return c.AdvanceBookingDays > 0
}
