package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"clinica/internal/db"
)

type DoctorRepository interface {
	ListSpecializations() ([]db.Specialization, error)
	ListDoctorsBySpecialization(specializationID int) ([]db.Doctor, error)
	GetDoctor(id int) (*db.Doctor, []db.UnavailablePeriod, error)
}

type doctorRepository struct {
	db *sql.DB
}

func NewDoctorRepository(database *sql.DB) DoctorRepository {
	return &doctorRepository{db: database}
}

const doctorColumns = `
	d.id, d.specialization_id, d.last_name, d.first_name, COALESCE(d.middle_name, ''),
	COALESCE(d.cabinet, ''), COALESCE(d.phone, ''), d.is_active,
	to_char(d.work_start_time, 'HH24:MI'), to_char(d.work_end_time, 'HH24:MI'),
	d.appointment_duration_minutes,
	d.mon, d.tue, d.wed, d.thu, d.fri, d.sat, d.sun`

func scanDoctor(row interface{ Scan(...interface{}) error }) (*db.Doctor, error) {
	var d db.Doctor
	err := row.Scan(
		&d.ID, &d.SpecializationID, &d.LastName, &d.FirstName, &d.MiddleName,
		&d.Cabinet, &d.Phone, &d.IsActive,
		&d.WorkStart, &d.WorkEnd, &d.SlotMinutes,
		&d.Mon, &d.Tue, &d.Wed, &d.Thu, &d.Fri, &d.Sat, &d.Sun,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *doctorRepository) ListSpecializations() ([]db.Specialization, error) {
	query := `
	SELECT id, name, is_active, sort_order
	FROM specializations
	WHERE is_active = TRUE
	ORDER BY sort_order, name`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error querying specializations: %w", err)
	}
	defer rows.Close()

	var specs []db.Specialization
	for rows.Next() {
		var s db.Specialization
		if err := rows.Scan(&s.ID, &s.Name, &s.IsActive, &s.SortOrder); err != nil {
			return nil, fmt.Errorf("error scanning specialization: %w", err)
		}
		specs = append(specs, s)
	}
	return specs, rows.Err()
}

func (r *doctorRepository) ListDoctorsBySpecialization(specializationID int) ([]db.Doctor, error) {
	query := `
	SELECT ` + doctorColumns + `
	FROM doctors d
	WHERE d.specialization_id = $1 AND d.is_active = TRUE
	ORDER BY d.last_name, d.first_name`

	rows, err := r.db.Query(query, specializationID)
	if err != nil {
		return nil, fmt.Errorf("error querying doctors: %w", err)
	}
	defer rows.Close()

	var doctors []db.Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning doctor: %w", err)
		}
		doctors = append(doctors, *d)
	}
	return doctors, rows.Err()
}

// GetDoctor loads one doctor together with its unavailable periods.
// A missing doctor is reported as (nil, nil, nil), not an error.
func (r *doctorRepository) GetDoctor(id int) (*db.Doctor, []db.UnavailablePeriod, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors d WHERE d.id = $1`
	d, err := scanDoctor(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("error querying doctor %d: %w", id, err)
	}

	rows, err := r.db.Query(`
		SELECT id, doctor_id, start_date, end_date
		FROM doctor_unavailable_periods
		WHERE doctor_id = $1
		ORDER BY start_date`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("error querying unavailable periods: %w", err)
	}
	defer rows.Close()

	var periods []db.UnavailablePeriod
	for rows.Next() {
		var p db.UnavailablePeriod
		if err := rows.Scan(&p.ID, &p.DoctorID, &p.StartDate, &p.EndDate); err != nil {
			return nil, nil, fmt.Errorf("error scanning unavailable period: %w", err)
		}
		periods = append(periods, p)
	}
	return d, periods, rows.Err()
}
