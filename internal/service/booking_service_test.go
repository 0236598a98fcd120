package service

import (
	"errors"
	"testing"
	"time"

	"clinica/internal/db"
	"clinica/internal/entities"
	"clinica/internal/repository"
)

type fakeDoctorRepo struct {
	doctor  *db.Doctor
	periods []db.UnavailablePeriod
}

func (f *fakeDoctorRepo) ListSpecializations() ([]db.Specialization, error) {
	return []db.Specialization{{ID: 1, Name: "Cardiology", IsActive: true}}, nil
}

func (f *fakeDoctorRepo) ListDoctorsBySpecialization(int) ([]db.Doctor, error) {
	if f.doctor == nil {
		return nil, nil
	}
	return []db.Doctor{*f.doctor}, nil
}

func (f *fakeDoctorRepo) GetDoctor(id int) (*db.Doctor, []db.UnavailablePeriod, error) {
	if f.doctor == nil || f.doctor.ID != id {
		return nil, nil, nil
	}
	return f.doctor, f.periods, nil
}

type fakeAppointmentRepo struct {
	busy      []string
	created   []*db.Appointment
	cancelled map[string]bool
	createErr error
}

func (f *fakeAppointmentRepo) BusyTimes(int, time.Time) ([]string, error) {
	return f.busy, nil
}

func (f *fakeAppointmentRepo) Create(a *db.Appointment) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, a)
	f.busy = append(f.busy, a.AppointmentTime)
	return nil
}

func (f *fakeAppointmentRepo) CancelByCode(code string, _ int64) (bool, error) {
	if f.cancelled == nil {
		f.cancelled = map[string]bool{}
	}
	if f.cancelled[code] {
		return false, nil
	}
	f.cancelled[code] = true
	for i, a := range f.created {
		if a.Code == code {
			f.created[i].Status = db.StatusCancelled
			// The slot opens up again.
			for j, t := range f.busy {
				if t == a.AppointmentTime {
					f.busy = append(f.busy[:j], f.busy[j+1:]...)
					break
				}
			}
		}
	}
	return true, nil
}

func (f *fakeAppointmentRepo) CancelBySlot(int64, int, time.Time, string) (bool, error) {
	return false, nil
}

func (f *fakeAppointmentRepo) SummaryByTelegramID(int64) ([]entities.AppointmentSummary, error) {
	return nil, nil
}

type fakePatientRepo struct {
	patient *db.Patient
}

func (f *fakePatientRepo) GetByTelegramID(telegramID int64) (*db.Patient, error) {
	if f.patient == nil || f.patient.TelegramID != telegramID {
		return nil, nil
	}
	return f.patient, nil
}

func (f *fakePatientRepo) Upsert(p *db.Patient) error {
	p.ID = 1
	f.patient = p
	return nil
}

func testDoctor() *db.Doctor {
	return &db.Doctor{
		ID:               7,
		SpecializationID: 1,
		LastName:         "Ivanova",
		FirstName:        "Anna",
		IsActive:         true,
		WorkStart:        "09:00",
		WorkEnd:          "17:00",
		SlotMinutes:      30,
		Mon:              true, Tue: true, Wed: true, Thu: true, Fri: true,
	}
}

func testPatient() *db.Patient {
	birth := time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)
	return &db.Patient{
		ID:         1,
		TelegramID: 42,
		FirstName:  "Pyotr",
		LastName:   "Sidorov",
		Phone:      "+79001234567",
		BirthDate:  &birth,
	}
}

func newTestService(doctors *fakeDoctorRepo, appts *fakeAppointmentRepo, patients *fakePatientRepo) *BookingService {
	svc := NewBookingService(doctors, appts, patients, nil, 20)
	// A fixed clock: Sunday evening, so Monday 2025-09-08 is bookable.
	svc.Now = func() time.Time {
		return time.Date(2025, 9, 7, 19, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestFreeSlotsFullDay(t *testing.T) {
	svc := newTestService(&fakeDoctorRepo{doctor: testDoctor()}, &fakeAppointmentRepo{}, &fakePatientRepo{})

	slots, err := svc.FreeSlots(7, "2025-09-08")
	if err != nil {
		t.Fatalf("FreeSlots: %v", err)
	}
	if len(slots) != 16 {
		t.Fatalf("expected 16 slots, got %d", len(slots))
	}
	if slots[0].Time != "09:00" || slots[len(slots)-1].Time != "16:30" {
		t.Fatalf("unexpected boundary slots: %v ... %v", slots[0], slots[len(slots)-1])
	}
	if slots[0].Display != "09:00 - 09:30" {
		t.Fatalf("unexpected display %q", slots[0].Display)
	}
}

func TestFreeSlotsExcludesBooked(t *testing.T) {
	appts := &fakeAppointmentRepo{busy: []string{"10:00"}}
	svc := newTestService(&fakeDoctorRepo{doctor: testDoctor()}, appts, &fakePatientRepo{})

	slots, err := svc.FreeSlots(7, "2025-09-08")
	if err != nil {
		t.Fatalf("FreeSlots: %v", err)
	}
	if len(slots) != 15 {
		t.Fatalf("expected 15 slots, got %d", len(slots))
	}
	for _, s := range slots {
		if s.Time == "10:00" {
			t.Fatalf("booked slot leaked into result")
		}
	}
}

func TestFreeSlotsNonWorkingDay(t *testing.T) {
	svc := newTestService(&fakeDoctorRepo{doctor: testDoctor()}, &fakeAppointmentRepo{}, &fakePatientRepo{})

	// 2025-09-13 is a Saturday and the doctor works Mon-Fri.
	slots, err := svc.FreeSlots(7, "2025-09-13")
	if err != nil {
		t.Fatalf("FreeSlots: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots on a day off, got %d", len(slots))
	}
}

func TestFreeSlotsUnknownDoctor(t *testing.T) {
	svc := newTestService(&fakeDoctorRepo{}, &fakeAppointmentRepo{}, &fakePatientRepo{})

	slots, err := svc.FreeSlots(99, "2025-09-08")
	if err != nil {
		t.Fatalf("FreeSlots: %v", err)
	}
	if slots != nil {
		t.Fatalf("expected empty result for unknown doctor, got %v", slots)
	}
}

func TestBookThenCancelReopensSlot(t *testing.T) {
	appts := &fakeAppointmentRepo{}
	svc := newTestService(&fakeDoctorRepo{doctor: testDoctor()}, appts, &fakePatientRepo{patient: testPatient()})

	appt, err := svc.Book(entities.BookingRequest{
		TelegramID: 42, DoctorID: 7, Date: "2025-09-08", Time: "10:00",
	})
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if appt.Status != db.StatusScheduled {
		t.Fatalf("expected scheduled status, got %s", appt.Status)
	}
	if appt.Code == "" {
		t.Fatalf("expected a confirmation code")
	}
	if got := appt.AppointmentDatetime.Format("2006-01-02 15:04"); got != "2025-09-08 10:00" {
		t.Fatalf("unexpected combined datetime %s", got)
	}

	slots, err := svc.FreeSlots(7, "2025-09-08")
	if err != nil {
		t.Fatalf("FreeSlots: %v", err)
	}
	if len(slots) != 15 {
		t.Fatalf("expected 15 slots after booking, got %d", len(slots))
	}

	found, err := svc.CancelByCode(appt.Code, 42)
	if err != nil {
		t.Fatalf("CancelByCode: %v", err)
	}
	if !found {
		t.Fatalf("expected cancellation to find the appointment")
	}

	slots, err = svc.FreeSlots(7, "2025-09-08")
	if err != nil {
		t.Fatalf("FreeSlots: %v", err)
	}
	if len(slots) != 16 {
		t.Fatalf("expected 16 slots after cancel, got %d", len(slots))
	}

	// Second cancel is a no-op, not an error.
	found, err = svc.CancelByCode(appt.Code, 42)
	if err != nil {
		t.Fatalf("CancelByCode: %v", err)
	}
	if found {
		t.Fatalf("expected second cancellation to report false")
	}
}

func TestBookRejectsTakenSlot(t *testing.T) {
	appts := &fakeAppointmentRepo{busy: []string{"10:00"}}
	svc := newTestService(&fakeDoctorRepo{doctor: testDoctor()}, appts, &fakePatientRepo{patient: testPatient()})

	_, err := svc.Book(entities.BookingRequest{
		TelegramID: 42, DoctorID: 7, Date: "2025-09-08", Time: "10:00",
	})
	if !errors.Is(err, repository.ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
}

func TestBookSurfacesStoreConflict(t *testing.T) {
	// The pre-check passes but the insert loses the race.
	appts := &fakeAppointmentRepo{createErr: repository.ErrSlotTaken}
	svc := newTestService(&fakeDoctorRepo{doctor: testDoctor()}, appts, &fakePatientRepo{patient: testPatient()})

	_, err := svc.Book(entities.BookingRequest{
		TelegramID: 42, DoctorID: 7, Date: "2025-09-08", Time: "10:00",
	})
	if !errors.Is(err, repository.ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken from store, got %v", err)
	}
}

func TestBookRejectsMisalignedAndPastSlots(t *testing.T) {
	svc := newTestService(&fakeDoctorRepo{doctor: testDoctor()}, &fakeAppointmentRepo{}, &fakePatientRepo{patient: testPatient()})

	cases := []struct {
		name string
		date string
		time string
	}{
		{"off grid", "2025-09-08", "10:15"},
		{"outside window", "2025-09-08", "08:00"},
		{"no room before closing", "2025-09-08", "16:45"},
		{"day off", "2025-09-13", "10:00"},
		{"in the past", "2025-09-05", "10:00"},
	}
	for _, c := range cases {
		_, err := svc.Book(entities.BookingRequest{
			TelegramID: 42, DoctorID: 7, Date: c.date, Time: c.time,
		})
		if !errors.Is(err, ErrSlotUnavailable) {
			t.Fatalf("%s: expected ErrSlotUnavailable, got %v", c.name, err)
		}
	}
}

func TestBookRejectsPastSlotOnZonedClock(t *testing.T) {
	svc := newTestService(&fakeDoctorRepo{doctor: testDoctor()}, &fakeAppointmentRepo{}, &fakePatientRepo{patient: testPatient()})
	// Monday noon clinic time; the server clock reads 09:00 UTC.
	msk := time.FixedZone("MSK", 3*60*60)
	svc.Now = func() time.Time { return time.Date(2025, 9, 8, 12, 0, 0, 0, msk) }

	_, err := svc.Book(entities.BookingRequest{
		TelegramID: 42, DoctorID: 7, Date: "2025-09-08", Time: "10:00",
	})
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable for a slot two hours gone, got %v", err)
	}

	appt, err := svc.Book(entities.BookingRequest{
		TelegramID: 42, DoctorID: 7, Date: "2025-09-08", Time: "14:00",
	})
	if err != nil {
		t.Fatalf("Book for a future slot: %v", err)
	}
	if appt.Status != db.StatusScheduled {
		t.Fatalf("expected scheduled status, got %s", appt.Status)
	}
}

func TestAvailableDatesUseClinicDate(t *testing.T) {
	svc := newTestService(&fakeDoctorRepo{doctor: testDoctor()}, &fakeAppointmentRepo{}, &fakePatientRepo{})
	// Just past midnight Tuesday in the clinic zone, still Monday in UTC.
	msk := time.FixedZone("MSK", 3*60*60)
	svc.Now = func() time.Time { return time.Date(2025, 9, 9, 0, 30, 0, 0, msk) }

	dates, err := svc.AvailableDates(7)
	if err != nil {
		t.Fatalf("AvailableDates: %v", err)
	}
	if len(dates) == 0 {
		t.Fatalf("expected dates")
	}
	if dates[0] != "2025-09-10" {
		t.Fatalf("expected listing to start on the clinic's tomorrow, got %s", dates[0])
	}
}

func TestBookNormalizesSlotTime(t *testing.T) {
	appts := &fakeAppointmentRepo{busy: []string{"09:00"}}
	svc := newTestService(&fakeDoctorRepo{doctor: testDoctor()}, appts, &fakePatientRepo{patient: testPatient()})

	// A non-padded hour still collides with the padded stored time.
	_, err := svc.Book(entities.BookingRequest{
		TelegramID: 42, DoctorID: 7, Date: "2025-09-08", Time: "9:00",
	})
	if !errors.Is(err, repository.ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken for non-padded busy time, got %v", err)
	}

	appt, err := svc.Book(entities.BookingRequest{
		TelegramID: 42, DoctorID: 7, Date: "2025-09-08", Time: "9:30",
	})
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if appt.AppointmentTime != "09:30" {
		t.Fatalf("expected padded stored time, got %q", appt.AppointmentTime)
	}
}

func TestBookRequiresRegisteredPatient(t *testing.T) {
	svc := newTestService(&fakeDoctorRepo{doctor: testDoctor()}, &fakeAppointmentRepo{}, &fakePatientRepo{})

	_, err := svc.Book(entities.BookingRequest{
		TelegramID: 42, DoctorID: 7, Date: "2025-09-08", Time: "10:00",
	})
	if !errors.Is(err, ErrPatientNotFound) {
		t.Fatalf("expected ErrPatientNotFound, got %v", err)
	}
}

func TestBookRequiresCompleteProfile(t *testing.T) {
	patient := testPatient()
	patient.Phone = ""
	svc := newTestService(&fakeDoctorRepo{doctor: testDoctor()}, &fakeAppointmentRepo{}, &fakePatientRepo{patient: patient})

	_, err := svc.Book(entities.BookingRequest{
		TelegramID: 42, DoctorID: 7, Date: "2025-09-08", Time: "10:00",
	})
	if !errors.Is(err, ErrProfileIncomplete) {
		t.Fatalf("expected ErrProfileIncomplete, got %v", err)
	}
}

func TestBookUnknownDoctor(t *testing.T) {
	svc := newTestService(&fakeDoctorRepo{}, &fakeAppointmentRepo{}, &fakePatientRepo{patient: testPatient()})

	_, err := svc.Book(entities.BookingRequest{
		TelegramID: 42, DoctorID: 99, Date: "2025-09-08", Time: "10:00",
	})
	if !errors.Is(err, ErrDoctorNotFound) {
		t.Fatalf("expected ErrDoctorNotFound, got %v", err)
	}
}

func TestCancelBySlotValidatesInput(t *testing.T) {
	svc := newTestService(&fakeDoctorRepo{}, &fakeAppointmentRepo{}, &fakePatientRepo{})

	if _, err := svc.CancelBySlot(42, 7, "not-a-date", "10:00"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for bad date, got %v", err)
	}
	if _, err := svc.CancelBySlot(42, 7, "2025-09-08", "10:75"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for bad time, got %v", err)
	}

	found, err := svc.CancelBySlot(42, 7, "2025-09-08", "10:00")
	if err != nil {
		t.Fatalf("CancelBySlot: %v", err)
	}
	if found {
		t.Fatalf("expected false when nothing matches")
	}
}

func TestAvailableDatesStartTomorrowAndSkipDaysOff(t *testing.T) {
	doctor := testDoctor()
	doctor.Mon, doctor.Tue, doctor.Wed, doctor.Thu, doctor.Fri = false, false, false, false, false
	doctor.Sat = true
	svc := newTestService(&fakeDoctorRepo{doctor: doctor}, &fakeAppointmentRepo{}, &fakePatientRepo{})
	// Thursday; horizon covers Fri, Sat, Sun.
	svc.Now = func() time.Time { return time.Date(2025, 9, 4, 12, 0, 0, 0, time.UTC) }
	svc.horizonDays = 3

	dates, err := svc.AvailableDates(7)
	if err != nil {
		t.Fatalf("AvailableDates: %v", err)
	}
	if len(dates) != 1 || dates[0] != "2025-09-06" {
		t.Fatalf("expected only the next Saturday, got %v", dates)
	}
}

func TestAvailableDatesHonorsUnavailablePeriods(t *testing.T) {
	repo := &fakeDoctorRepo{
		doctor: testDoctor(),
		periods: []db.UnavailablePeriod{{
			DoctorID:  7,
			StartDate: time.Date(2025, 9, 8, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2025, 9, 12, 0, 0, 0, 0, time.UTC),
		}},
	}
	svc := newTestService(repo, &fakeAppointmentRepo{}, &fakePatientRepo{})

	dates, err := svc.AvailableDates(7)
	if err != nil {
		t.Fatalf("AvailableDates: %v", err)
	}
	for _, d := range dates {
		if d >= "2025-09-08" && d <= "2025-09-12" {
			t.Fatalf("date %s inside unavailable period was offered", d)
		}
	}
	if len(dates) == 0 {
		t.Fatalf("expected dates after the unavailable period")
	}
}

func TestAvailableDatesInactiveDoctor(t *testing.T) {
	doctor := testDoctor()
	doctor.IsActive = false
	svc := newTestService(&fakeDoctorRepo{doctor: doctor}, &fakeAppointmentRepo{}, &fakePatientRepo{})

	dates, err := svc.AvailableDates(7)
	if err != nil {
		t.Fatalf("AvailableDates: %v", err)
	}
	if len(dates) != 0 {
		t.Fatalf("expected no dates for inactive doctor, got %v", dates)
	}
}

func TestMisconfiguredHoursYieldNoSlots(t *testing.T) {
	doctor := testDoctor()
	doctor.WorkStart, doctor.WorkEnd = "17:00", "09:00"
	svc := newTestService(&fakeDoctorRepo{doctor: doctor}, &fakeAppointmentRepo{}, &fakePatientRepo{})

	slots, err := svc.FreeSlots(7, "2025-09-08")
	if err != nil {
		t.Fatalf("FreeSlots: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots for start >= end, got %d", len(slots))
	}
}

func TestRegisterPatientValidation(t *testing.T) {
	svc := newTestService(&fakeDoctorRepo{}, &fakeAppointmentRepo{}, &fakePatientRepo{})

	_, err := svc.RegisterPatient(entities.RegisterPatientRequest{
		TelegramID: 42, FirstName: "P", LastName: "Sidorov", Phone: "+79001234567",
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for one-letter name, got %v", err)
	}

	_, err = svc.RegisterPatient(entities.RegisterPatientRequest{
		TelegramID: 42, FirstName: "Pyotr", LastName: "Sidorov", Phone: "12345",
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for short phone, got %v", err)
	}

	profile, err := svc.RegisterPatient(entities.RegisterPatientRequest{
		TelegramID: 42, FirstName: "Pyotr", LastName: "Sidorov",
		Phone: "+7 (900) 123-45-67", BirthDate: "1990-05-01",
	})
	if err != nil {
		t.Fatalf("RegisterPatient: %v", err)
	}
	if profile.Phone != "+79001234567" {
		t.Fatalf("expected normalized phone, got %q", profile.Phone)
	}
	if !profile.Profile.IsComplete {
		t.Fatalf("expected complete profile, missing %v", profile.Profile.MissingFields)
	}
}

func TestProfileReportsMissingFields(t *testing.T) {
	patient := testPatient()
	patient.Phone = ""
	patient.BirthDate = nil
	svc := newTestService(&fakeDoctorRepo{}, &fakeAppointmentRepo{}, &fakePatientRepo{patient: patient})

	profile, err := svc.Profile(42)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if profile.Profile.IsComplete {
		t.Fatalf("expected incomplete profile")
	}
	if len(profile.Profile.MissingFields) != 2 {
		t.Fatalf("expected 2 missing fields, got %v", profile.Profile.MissingFields)
	}
}
