package catalogservice

// Salon модель салона из CatalogService
type Salon struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Timezone string  `json:"timezone"` // IANA имя, например "Africa/Blantyre"
	OwnerIDs []int64 `json:"owner_ids"`
	StaffIDs []int64 `json:"staff_ids"`
	Verified bool    `json:"verified"`
}

// HasStaff проверяет, что мастер работает в салоне
func (s *Salon) HasStaff(staffID int64) bool {
	for _, id := range s.StaffIDs {
		if id == staffID {
			return true
		}
	}
	return false
}

// HasOwner проверяет, что пользователь является владельцем салона
func (s *Salon) HasOwner(userID int64) bool {
	for _, id := range s.OwnerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Service модель услуги из CatalogService
type Service struct {
	ID              int64   `json:"id"`
	SalonID         int64   `json:"salon_id"`
	Title           string  `json:"title"`
	DurationMinutes int     `json:"duration_minutes"`
	Price           float64 `json:"price"`
	Active          bool    `json:"active"`
	StaffIDs        []int64 `json:"staff_ids"` // Мастера, оказывающие услугу
}

// OfferedByStaff проверяет, что услугу оказывает указанный мастер
func (s *Service) OfferedByStaff(staffID int64) bool {
	for _, id := range s.StaffIDs {
		if id == staffID {
			return true
		}
	}
	return false
}

// ErrorResponse модель ошибки от CatalogService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
