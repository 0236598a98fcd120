package db

import "time"

// Appointment statuses. Scheduled and completed rows occupy their slot;
// cancelled and no_show rows do not.
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no_show"
)

// OccupyingStatuses are the statuses that block re-booking of a slot.
var OccupyingStatuses = []string{StatusScheduled, StatusCompleted}

func ValidStatus(s string) bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

type Specialization struct {
	ID        int
	Name      string
	IsActive  bool
	SortOrder int
}

type Doctor struct {
	ID               int
	SpecializationID int
	LastName         string
	FirstName        string
	MiddleName       string
	Cabinet          string
	Phone            string
	IsActive         bool

	// Working window and fixed appointment length, "HH:MM" clock times.
	WorkStart   string
	WorkEnd     string
	SlotMinutes int

	// Weekday flags, true = takes appointments.
	Mon, Tue, Wed, Thu, Fri, Sat, Sun bool
}

// UnavailablePeriod is a date range (both ends inclusive) during which a
// doctor takes no appointments regardless of weekday flags.
type UnavailablePeriod struct {
	ID        int
	DoctorID  int
	StartDate time.Time
	EndDate   time.Time
}

type Patient struct {
	ID         int
	TelegramID int64
	FirstName  string
	LastName   string
	MiddleName string
	Phone      string
	Email      string
	BirthDate  *time.Time
	CreatedAt  time.Time
}

type Appointment struct {
	ID        int
	Code      string
	PatientID int
	DoctorID  int
	// Date and time of the visit, plus the combined timestamp kept
	// denormalized for ordering and sweep queries.
	AppointmentDate     time.Time
	AppointmentTime     string
	AppointmentDatetime time.Time
	Status              string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
