package repository

import (
	"database/sql"
	"fmt"
	"strconv"

	"clinica/internal/db"
	"clinica/internal/entities"
)

type AdminRepository struct {
	DB *sql.DB
}

func NewAdminRepository(database *sql.DB) *AdminRepository {
	return &AdminRepository{DB: database}
}

func (r *AdminRepository) ListAppointments(date string, doctorID int, status string) ([]entities.AdminAppointment, error) {
	query := `
	SELECT
		a.id, a.code,
		to_char(a.appointment_date, 'YYYY-MM-DD'),
		to_char(a.appointment_time, 'HH24:MI'),
		TRIM(CONCAT_WS(' ', p.last_name, p.first_name, p.middle_name)),
		COALESCE(p.phone, ''),
		TRIM(CONCAT_WS(' ', d.last_name, d.first_name, d.middle_name)),
		s.name, a.status
	FROM appointments a
	JOIN patients p ON a.patient_id = p.id
	JOIN doctors d ON a.doctor_id = d.id
	JOIN specializations s ON d.specialization_id = s.id
	WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if date != "" {
		query += " AND a.appointment_date = $" + strconv.Itoa(idx)
		args = append(args, date)
		idx++
	}
	if doctorID != 0 {
		query += " AND a.doctor_id = $" + strconv.Itoa(idx)
		args = append(args, doctorID)
		idx++
	}
	if status != "" {
		query += " AND a.status = $" + strconv.Itoa(idx)
		args = append(args, status)
		idx++
	}
	query += " ORDER BY a.appointment_datetime"

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying appointments: %w", err)
	}
	defer rows.Close()

	var appointments []entities.AdminAppointment
	for rows.Next() {
		var a entities.AdminAppointment
		err := rows.Scan(&a.ID, &a.Code, &a.Date, &a.Time, &a.Patient, &a.PatientPhone, &a.Doctor, &a.Specialization, &a.Status)
		if err != nil {
			return nil, fmt.Errorf("error scanning appointment: %w", err)
		}
		appointments = append(appointments, a)
	}
	return appointments, rows.Err()
}

// SetAppointmentStatus reports false when no row matched. Reviving a
// cancelled row whose slot was re-booked in the meantime trips the
// partial unique index and comes back as ErrSlotTaken.
func (r *AdminRepository) SetAppointmentStatus(id int, status string) (bool, error) {
	result, err := r.DB.Exec(
		`UPDATE appointments SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, ErrSlotTaken
		}
		return false, fmt.Errorf("error updating appointment %d status: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// DeleteAppointment removes the row physically. Normal cancellation goes
// through the status transition instead; this exists for administrative
// correction only.
func (r *AdminRepository) DeleteAppointment(id int) (bool, error) {
	result, err := r.DB.Exec(`DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("error deleting appointment %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *AdminRepository) ListAllSpecializations() ([]db.Specialization, error) {
	rows, err := r.DB.Query(`SELECT id, name, is_active, sort_order FROM specializations ORDER BY sort_order, name`)
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

func (r *AdminRepository) CreateSpecialization(s *db.Specialization) error {
	err := r.DB.QueryRow(
		`INSERT INTO specializations (name, is_active, sort_order) VALUES ($1, $2, $3) RETURNING id`,
		s.Name, s.IsActive, s.SortOrder,
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("error inserting specialization: %w", err)
	}
	return nil
}

func (r *AdminRepository) ListDoctors() ([]db.Doctor, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors d ORDER BY d.last_name, d.first_name`
	rows, err := r.DB.Query(query)
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

func (r *AdminRepository) CreateDoctor(d *db.Doctor) error {
	query := `
	INSERT INTO doctors
	(specialization_id, last_name, first_name, middle_name, cabinet, phone, is_active,
	 work_start_time, work_end_time, appointment_duration_minutes,
	 mon, tue, wed, thu, fri, sat, sun)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	RETURNING id`

	err := r.DB.QueryRow(query,
		d.SpecializationID, d.LastName, d.FirstName, d.MiddleName, d.Cabinet, d.Phone, d.IsActive,
		d.WorkStart, d.WorkEnd, d.SlotMinutes,
		d.Mon, d.Tue, d.Wed, d.Thu, d.Fri, d.Sat, d.Sun,
	).Scan(&d.ID)
	if err != nil {
		return fmt.Errorf("error inserting doctor: %w", err)
	}
	return nil
}

func (r *AdminRepository) UpdateDoctor(d *db.Doctor) (bool, error) {
	query := `
	UPDATE doctors SET
		specialization_id = $1, last_name = $2, first_name = $3, middle_name = $4,
		cabinet = $5, phone = $6, is_active = $7,
		work_start_time = $8, work_end_time = $9, appointment_duration_minutes = $10,
		mon = $11, tue = $12, wed = $13, thu = $14, fri = $15, sat = $16, sun = $17
	WHERE id = $18`

	result, err := r.DB.Exec(query,
		d.SpecializationID, d.LastName, d.FirstName, d.MiddleName, d.Cabinet, d.Phone, d.IsActive,
		d.WorkStart, d.WorkEnd, d.SlotMinutes,
		d.Mon, d.Tue, d.Wed, d.Thu, d.Fri, d.Sat, d.Sun,
		d.ID,
	)
	if err != nil {
		return false, fmt.Errorf("error updating doctor %d: %w", d.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *AdminRepository) AddUnavailablePeriod(p *db.UnavailablePeriod) error {
	err := r.DB.QueryRow(
		`INSERT INTO doctor_unavailable_periods (doctor_id, start_date, end_date) VALUES ($1, $2, $3) RETURNING id`,
		p.DoctorID, p.StartDate, p.EndDate,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("error inserting unavailable period: %w", err)
	}
	return nil
}

func (r *AdminRepository) DeleteUnavailablePeriod(id int) (bool, error) {
	result, err := r.DB.Exec(`DELETE FROM doctor_unavailable_periods WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("error deleting unavailable period %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
