package service

import (
	"fmt"
	"time"

	"clinica/internal/db"
	"clinica/internal/entities"
	"clinica/internal/repository"
	"clinica/internal/schedule"
)

type AdminService struct {
	adminRepo *repository.AdminRepository
}

func NewAdminService(adminRepo *repository.AdminRepository) *AdminService {
	return &AdminService{adminRepo: adminRepo}
}

func (s *AdminService) ListAppointments(date string, doctorID int, status string) ([]entities.AdminAppointment, error) {
	if status != "" && !db.ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	return s.adminRepo.ListAppointments(date, doctorID, status)
}

func (s *AdminService) SetAppointmentStatus(id int, status string) (bool, error) {
	if !db.ValidStatus(status) {
		return false, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	return s.adminRepo.SetAppointmentStatus(id, status)
}

func (s *AdminService) DeleteAppointment(id int) (bool, error) {
	return s.adminRepo.DeleteAppointment(id)
}

func (s *AdminService) ListSpecializations() ([]db.Specialization, error) {
	return s.adminRepo.ListAllSpecializations()
}

func (s *AdminService) CreateSpecialization(name string, sortOrder int) (*db.Specialization, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	spec := &db.Specialization{Name: name, IsActive: true, SortOrder: sortOrder}
	if err := s.adminRepo.CreateSpecialization(spec); err != nil {
		return nil, err
	}
	return spec, nil
}

func (s *AdminService) ListDoctors() ([]db.Doctor, error) {
	return s.adminRepo.ListDoctors()
}

// CreateDoctor validates the schedule fields before persisting; unlike
// the booking path, the admin surface reports misconfiguration instead
// of silently yielding an empty schedule.
func (s *AdminService) CreateDoctor(d *db.Doctor) error {
	if err := validateDoctor(d); err != nil {
		return err
	}
	return s.adminRepo.CreateDoctor(d)
}

func (s *AdminService) UpdateDoctor(d *db.Doctor) (bool, error) {
	if err := validateDoctor(d); err != nil {
		return false, err
	}
	return s.adminRepo.UpdateDoctor(d)
}

func (s *AdminService) AddUnavailablePeriod(doctorID int, startDate, endDate string) (*db.UnavailablePeriod, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid start date %q", ErrValidation, startDate)
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid end date %q", ErrValidation, endDate)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date before start date", ErrValidation)
	}

	period := &db.UnavailablePeriod{DoctorID: doctorID, StartDate: start, EndDate: end}
	if err := s.adminRepo.AddUnavailablePeriod(period); err != nil {
		return nil, err
	}
	return period, nil
}

func (s *AdminService) DeleteUnavailablePeriod(id int) (bool, error) {
	return s.adminRepo.DeleteUnavailablePeriod(id)
}

func validateDoctor(d *db.Doctor) error {
	if d.LastName == "" || d.FirstName == "" {
		return fmt.Errorf("%w: doctor name is required", ErrValidation)
	}
	if d.SpecializationID == 0 {
		return fmt.Errorf("%w: specialization_id is required", ErrValidation)
	}
	start, err := schedule.ParseClock(d.WorkStart)
	if err != nil {
		return fmt.Errorf("%w: invalid work_start %q", ErrValidation, d.WorkStart)
	}
	end, err := schedule.ParseClock(d.WorkEnd)
	if err != nil {
		return fmt.Errorf("%w: invalid work_end %q", ErrValidation, d.WorkEnd)
	}
	if start >= end {
		return fmt.Errorf("%w: work_start must be before work_end", ErrValidation)
	}
	if d.SlotMinutes <= 0 {
		return fmt.Errorf("%w: slot_minutes must be positive", ErrValidation)
	}
	return nil
}
