package get_salon_bookings

import (
	"net/url"
	"strconv"
	"time"

	"github.com/trimly-app/TRM-BookingService/internal/domain"
	"github.com/trimly-app/TRM-BookingService/internal/service/bookings/models"
	"github.com/trimly-app/TRM-BookingService/pkg/ptr"
)

// ParseQuery собирает запрос сервиса из query параметров.
// Поддерживаются: staffId, startDate, endDate (YYYY-MM-DD), status, includeInactive.
func ParseQuery(salonID, userID int64, query url.Values) (*models.GetSalonBookingsRequest, error) {
	req := &models.GetSalonBookingsRequest{
		SalonID: salonID,
		UserID:  userID,
	}

	if raw := query.Get("staffId"); raw != "" {
		staffID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		req.StaffID = ptr.Ptr(staffID)
	}

	if raw := query.Get("startDate"); raw != "" {
		startDate, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			return nil, err
		}
		req.StartDate = ptr.Ptr(startDate)
	}

	if raw := query.Get("endDate"); raw != "" {
		endDate, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			return nil, err
		}
		req.EndDate = ptr.Ptr(endDate)
	}

	if status := query.Get("status"); status != "" {
		req.Status = ptr.Ptr(status)
	}

	if raw := query.Get("includeInactive"); raw != "" {
		includeInactive, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, err
		}
		req.IncludeInactive = includeInactive
	}

	return req, nil
}
