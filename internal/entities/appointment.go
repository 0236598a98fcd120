package entities

// AppointmentSummary is one row of a patient's visit history, joined
// with the doctor and specialization for display.
type AppointmentSummary struct {
	ID             int    `json:"id"`
	Code           string `json:"code"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Doctor         string `json:"doctor"`
	Specialization string `json:"specialization"`
	Cabinet        string `json:"cabinet,omitempty"`
	Status         string `json:"status"`
}

// AdminAppointment is the admin listing row, additionally carrying the
// patient identity.
type AdminAppointment struct {
	ID             int    `json:"id"`
	Code           string `json:"code"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Patient        string `json:"patient"`
	PatientPhone   string `json:"patient_phone,omitempty"`
	Doctor         string `json:"doctor"`
	Specialization string `json:"specialization"`
	Status         string `json:"status"`
}

// AppointmentNotification carries everything the sender needs to build
// a confirmation, cancellation or reminder message.
type AppointmentNotification struct {
	PatientName    string
	Phone          string
	Email          string
	Code           string
	Doctor         string
	Specialization string
	Cabinet        string
	Date           string
	Time           string
}
