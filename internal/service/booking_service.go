package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"clinica/internal/db"
	"clinica/internal/entities"
	"clinica/internal/repository"
	"clinica/internal/schedule"
	"clinica/internal/utils"

	"github.com/google/uuid"
)

var (
	ErrPatientNotFound   = errors.New("patient not registered")
	ErrDoctorNotFound    = errors.New("doctor not found")
	ErrSlotUnavailable   = errors.New("slot not available")
	ErrProfileIncomplete = errors.New("patient profile incomplete")
	ErrValidation        = errors.New("validation failed")
)

// clinicLocation is the timezone all schedule dates and slot times are
// interpreted in.
func clinicLocation() *time.Location {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		loc = time.FixedZone("MSK", 3*60*60) // fallback MSK
	}
	return loc
}

// Events passed to the notifier.
const (
	EventConfirmed = "confirmed"
	EventCancelled = "cancelled"
	EventReminder  = "reminder"
)

// Notifier delivers booking notifications out of band. Failures are the
// notifier's problem; the booking flow never waits on it.
type Notifier interface {
	NotifyAppointment(n entities.AppointmentNotification, event string)
}

type BookingService struct {
	doctors      repository.DoctorRepository
	appointments repository.AppointmentRepository
	patients     repository.PatientRepository
	notifier     Notifier
	horizonDays  int

	// Now is swappable in tests.
	Now func() time.Time
}

func NewBookingService(
	doctors repository.DoctorRepository,
	appointments repository.AppointmentRepository,
	patients repository.PatientRepository,
	notifier Notifier,
	horizonDays int,
) *BookingService {
	if horizonDays <= 0 {
		horizonDays = 20
	}
	return &BookingService{
		doctors:      doctors,
		appointments: appointments,
		patients:     patients,
		notifier:     notifier,
		horizonDays:  horizonDays,
		Now:          time.Now,
	}
}

func (s *BookingService) Specializations() ([]entities.SpecializationResponse, error) {
	specs, err := s.doctors.ListSpecializations()
	if err != nil {
		return nil, err
	}
	resp := make([]entities.SpecializationResponse, 0, len(specs))
	for _, sp := range specs {
		resp = append(resp, entities.SpecializationResponse{ID: sp.ID, Name: sp.Name})
	}
	return resp, nil
}

func (s *BookingService) DoctorsBySpecialization(specializationID int) ([]entities.DoctorResponse, error) {
	doctors, err := s.doctors.ListDoctorsBySpecialization(specializationID)
	if err != nil {
		return nil, err
	}
	resp := make([]entities.DoctorResponse, 0, len(doctors))
	for _, d := range doctors {
		resp = append(resp, entities.DoctorResponse{
			ID:      d.ID,
			Name:    doctorDisplayName(d),
			Cabinet: d.Cabinet,
		})
	}
	return resp, nil
}

// AvailableDates lists the bookable dates for a doctor, starting
// tomorrow through the configured horizon. An unknown or inactive
// doctor yields an empty list, not an error.
func (s *BookingService) AvailableDates(doctorID int) ([]string, error) {
	rule, ok, err := s.doctorRule(doctorID)
	if err != nil || !ok {
		return nil, err
	}
	var dates []string
	for _, d := range schedule.AvailableDates(rule, s.Now().In(clinicLocation()), s.horizonDays) {
		dates = append(dates, d.Format("2006-01-02"))
	}
	return dates, nil
}

// FreeSlots lists the open slots for a doctor on a date: the full
// candidate grid minus the times already taken by capacity-occupying
// appointments.
func (s *BookingService) FreeSlots(doctorID int, dateStr string) ([]entities.Slot, error) {
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", ErrValidation, dateStr)
	}

	doctor, rule, err := s.loadDoctor(doctorID)
	if err != nil || doctor == nil {
		return nil, err
	}

	candidates := rule.DaySlots(date)
	if len(candidates) == 0 {
		return nil, nil
	}

	busyTimes, err := s.appointments.BusyTimes(doctorID, schedule.DateOf(date))
	if err != nil {
		return nil, err
	}
	busy := make(map[time.Duration]bool, len(busyTimes))
	for _, bt := range busyTimes {
		t, err := schedule.ParseClock(bt)
		if err != nil {
			log.Printf("Skipping unparseable booked time %q for doctor %d: %v", bt, doctorID, err)
			continue
		}
		busy[t] = true
	}

	var slots []entities.Slot
	for _, t := range schedule.FilterBusy(candidates, busy) {
		slots = append(slots, entities.Slot{
			Time:    schedule.FormatClock(t),
			Display: schedule.FormatClock(t) + " - " + schedule.FormatClock(t+rule.Slot),
		})
	}
	return slots, nil
}

// Book creates a scheduled appointment for the chosen slot. The slot is
// re-validated against the schedule and the booked set; the partial
// unique index in the store is the final arbiter, surfacing as
// repository.ErrSlotTaken when a concurrent booker wins.
func (s *BookingService) Book(req entities.BookingRequest) (*db.Appointment, error) {
	patient, err := s.patients.GetByTelegramID(req.TelegramID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}
	if status := profileStatus(patient); !status.IsComplete {
		return nil, fmt.Errorf("%w: missing %v", ErrProfileIncomplete, status.MissingFields)
	}

	doctor, rule, err := s.loadDoctor(req.DoctorID)
	if err != nil {
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", ErrValidation, req.Date)
	}
	slotTime, err := schedule.ParseClock(req.Time)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid time %q", ErrValidation, req.Time)
	}

	if !rule.WorkingDay(date) || !rule.Aligned(slotTime) {
		return nil, ErrSlotUnavailable
	}
	// The slot is a clinic-local wall-clock instant; compare it in the
	// clinic timezone so a UTC server clock does not shift the cutoff.
	slotInstant := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, clinicLocation()).Add(slotTime)
	if !slotInstant.After(s.Now()) {
		return nil, ErrSlotUnavailable
	}

	// "9:05" parses the same as "09:05"; normalize before comparing
	// against stored times and before the insert.
	slotClock := schedule.FormatClock(slotTime)

	busyTimes, err := s.appointments.BusyTimes(req.DoctorID, schedule.DateOf(date))
	if err != nil {
		return nil, err
	}
	for _, bt := range busyTimes {
		if bt == slotClock {
			return nil, repository.ErrSlotTaken
		}
	}

	appt := &db.Appointment{
		Code:                uuid.NewString(),
		PatientID:           patient.ID,
		DoctorID:            doctor.ID,
		AppointmentDate:     schedule.DateOf(date),
		AppointmentTime:     slotClock,
		AppointmentDatetime: schedule.At(date, slotTime),
		Status:              db.StatusScheduled,
	}
	if err := s.appointments.Create(appt); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyAppointment(s.notification(patient, doctor, appt), EventConfirmed)
	}
	return appt, nil
}

// CancelByCode flips the appointment to cancelled. A second call for
// the same code is a no-op returning false.
func (s *BookingService) CancelByCode(code string, telegramID int64) (bool, error) {
	found, err := s.appointments.CancelByCode(code, telegramID)
	if err != nil || !found {
		return found, err
	}

	if s.notifier != nil {
		if patient, perr := s.patients.GetByTelegramID(telegramID); perr == nil && patient != nil {
			s.notifier.NotifyAppointment(entities.AppointmentNotification{
				PatientName: patient.FirstName,
				Phone:       patient.Phone,
				Email:       patient.Email,
				Code:        code,
			}, EventCancelled)
		}
	}
	return true, nil
}

// CancelBySlot cancels by (patient, doctor, date, time) for callers that
// never learned the appointment code.
func (s *BookingService) CancelBySlot(telegramID int64, doctorID int, dateStr, timeStr string) (bool, error) {
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return false, fmt.Errorf("%w: invalid date %q", ErrValidation, dateStr)
	}
	slotTime, err := schedule.ParseClock(timeStr)
	if err != nil {
		return false, fmt.Errorf("%w: invalid time %q", ErrValidation, timeStr)
	}
	return s.appointments.CancelBySlot(telegramID, doctorID, schedule.DateOf(date), schedule.FormatClock(slotTime))
}

func (s *BookingService) MyAppointments(telegramID int64) ([]entities.AppointmentSummary, error) {
	return s.appointments.SummaryByTelegramID(telegramID)
}

// RegisterPatient creates or updates the profile collected by the bot's
// registration flow.
func (s *BookingService) RegisterPatient(req entities.RegisterPatientRequest) (*entities.PatientProfile, error) {
	if req.TelegramID == 0 {
		return nil, fmt.Errorf("%w: telegram_id is required", ErrValidation)
	}
	if !utils.ValidName(req.FirstName) || !utils.ValidName(req.LastName) {
		return nil, fmt.Errorf("%w: invalid name", ErrValidation)
	}
	if req.MiddleName != "" && !utils.ValidName(req.MiddleName) {
		return nil, fmt.Errorf("%w: invalid middle name", ErrValidation)
	}
	if !utils.ValidPhone(req.Phone) {
		return nil, fmt.Errorf("%w: invalid phone", ErrValidation)
	}

	patient := &db.Patient{
		TelegramID: req.TelegramID,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		MiddleName: req.MiddleName,
		Phone:      utils.NormalizePhone(req.Phone),
		Email:      req.Email,
	}
	if req.BirthDate != "" {
		birthDate, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid birth date %q", ErrValidation, req.BirthDate)
		}
		patient.BirthDate = &birthDate
	}

	if err := s.patients.Upsert(patient); err != nil {
		return nil, err
	}
	profile := toProfile(patient)
	return &profile, nil
}

// Profile returns nil when the telegram user never registered.
func (s *BookingService) Profile(telegramID int64) (*entities.PatientProfile, error) {
	patient, err := s.patients.GetByTelegramID(telegramID)
	if err != nil || patient == nil {
		return nil, err
	}
	profile := toProfile(patient)
	return &profile, nil
}

// doctorRule resolves a doctor to its schedule rule; ok is false when
// the doctor is unknown or inactive.
func (s *BookingService) doctorRule(doctorID int) (schedule.Rule, bool, error) {
	doctor, rule, err := s.loadDoctor(doctorID)
	if err != nil || doctor == nil {
		return schedule.Rule{}, false, err
	}
	return rule, true, nil
}

func (s *BookingService) loadDoctor(doctorID int) (*db.Doctor, schedule.Rule, error) {
	doctor, periods, err := s.doctors.GetDoctor(doctorID)
	if err != nil {
		return nil, schedule.Rule{}, err
	}
	if doctor == nil || !doctor.IsActive {
		return nil, schedule.Rule{}, nil
	}
	return doctor, buildRule(doctor, periods), nil
}

// buildRule maps the stored schedule fields onto the pure rule.
// Unparseable work times collapse the window so the rule yields no
// slots, mirroring how a misconfigured doctor silently has no
// availability.
func buildRule(d *db.Doctor, periods []db.UnavailablePeriod) schedule.Rule {
	start, err := schedule.ParseClock(d.WorkStart)
	if err != nil {
		log.Printf("Doctor %d has invalid work_start_time %q", d.ID, d.WorkStart)
		return schedule.Rule{}
	}
	end, err := schedule.ParseClock(d.WorkEnd)
	if err != nil {
		log.Printf("Doctor %d has invalid work_end_time %q", d.ID, d.WorkEnd)
		return schedule.Rule{}
	}

	rule := schedule.Rule{
		Week: schedule.Week{
			Mon: d.Mon, Tue: d.Tue, Wed: d.Wed, Thu: d.Thu,
			Fri: d.Fri, Sat: d.Sat, Sun: d.Sun,
		},
		Start: start,
		End:   end,
		Slot:  time.Duration(d.SlotMinutes) * time.Minute,
	}
	for _, p := range periods {
		rule.Off = append(rule.Off, schedule.Period{Start: p.StartDate, End: p.EndDate})
	}
	return rule
}

func (s *BookingService) notification(p *db.Patient, d *db.Doctor, a *db.Appointment) entities.AppointmentNotification {
	return entities.AppointmentNotification{
		PatientName: p.FirstName,
		Phone:       p.Phone,
		Email:       p.Email,
		Code:        a.Code,
		Doctor:      doctorDisplayName(*d),
		Cabinet:     d.Cabinet,
		Date:        a.AppointmentDate.Format("2006-01-02"),
		Time:        a.AppointmentTime,
	}
}

func doctorDisplayName(d db.Doctor) string {
	name := d.LastName + " " + d.FirstName
	if d.MiddleName != "" {
		name += " " + d.MiddleName
	}
	return name
}

func profileStatus(p *db.Patient) entities.ProfileStatus {
	status := entities.ProfileStatus{IsComplete: true}
	checks := []struct {
		field  string
		filled bool
	}{
		{"first_name", p.FirstName != ""},
		{"last_name", p.LastName != ""},
		{"phone", p.Phone != ""},
		{"birth_date", p.BirthDate != nil},
	}
	for _, c := range checks {
		if !c.filled {
			status.IsComplete = false
			status.MissingFields = append(status.MissingFields, c.field)
		}
	}
	return status
}

func toProfile(p *db.Patient) entities.PatientProfile {
	profile := entities.PatientProfile{
		TelegramID: p.TelegramID,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		MiddleName: p.MiddleName,
		Phone:      p.Phone,
		Email:      p.Email,
		Profile:    profileStatus(p),
	}
	if p.BirthDate != nil {
		profile.BirthDate = p.BirthDate.Format("2006-01-02")
	}
	return profile
}
