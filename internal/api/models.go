package api

// Booking
type BookAppointmentResponse struct {
	Code    string `json:"appointment_code"`
	Message string `json:"message"`
}
type CancelRequest struct {
	TelegramID int64 `json:"telegram_id"`
}
type CancelSlotRequest struct {
	TelegramID int64  `json:"telegram_id"`
	DoctorID   int    `json:"doctor_id"`
	Date       string `json:"date"`
	Time       string `json:"time"`
}

// Admin
type DoctorRequest struct {
	SpecializationID int    `json:"specialization_id"`
	LastName         string `json:"last_name"`
	FirstName        string `json:"first_name"`
	MiddleName       string `json:"middle_name,omitempty"`
	Cabinet          string `json:"cabinet,omitempty"`
	Phone            string `json:"phone,omitempty"`
	IsActive         bool   `json:"is_active"`
	WorkStart        string `json:"work_start"`
	WorkEnd          string `json:"work_end"`
	SlotMinutes      int    `json:"slot_minutes"`
	Mon              bool   `json:"mon"`
	Tue              bool   `json:"tue"`
	Wed              bool   `json:"wed"`
	Thu              bool   `json:"thu"`
	Fri              bool   `json:"fri"`
	Sat              bool   `json:"sat"`
	Sun              bool   `json:"sun"`
}
type DoctorAdminResponse struct {
	ID int `json:"id"`
	DoctorRequest
}
type UnavailablePeriodRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}
type SpecializationRequest struct {
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}
type StatusUpdateRequest struct {
	Status string `json:"status"`
}
