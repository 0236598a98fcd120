package entities

// BookingRequest is a patient's slot selection.
type BookingRequest struct {
	TelegramID int64  `json:"telegram_id"`
	DoctorID   int    `json:"doctor_id"`
	Date       string `json:"date"`
	Time       string `json:"time"`
}

// RegisterPatientRequest carries the profile fields collected by the
// registration flow. Dates are "YYYY-MM-DD", times "HH:MM".
type RegisterPatientRequest struct {
	TelegramID int64  `json:"telegram_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	MiddleName string `json:"middle_name,omitempty"`
	Phone      string `json:"phone"`
	Email      string `json:"email,omitempty"`
	BirthDate  string `json:"birth_date,omitempty"`
}
