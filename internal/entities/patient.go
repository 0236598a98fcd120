package entities

// ProfileStatus reports whether the mandatory profile fields are filled
// and which ones are still missing.
type ProfileStatus struct {
	IsComplete    bool     `json:"is_complete"`
	MissingFields []string `json:"missing_fields,omitempty"`
}

// PatientProfile is the public view of a registered patient.
type PatientProfile struct {
	TelegramID int64         `json:"telegram_id"`
	FirstName  string        `json:"first_name"`
	LastName   string        `json:"last_name"`
	MiddleName string        `json:"middle_name,omitempty"`
	Phone      string        `json:"phone"`
	Email      string        `json:"email,omitempty"`
	BirthDate  string        `json:"birth_date,omitempty"`
	Profile    ProfileStatus `json:"profile"`
}
