package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"clinica/internal/db"
	"clinica/internal/entities"

	"github.com/lib/pq"
)

// ErrSlotTaken is returned when an insert collides with the partial
// unique index on (doctor_id, appointment_date, appointment_time) over
// non-cancelled rows. Two clients racing for the same slot both pass the
// availability read; the index decides the winner.
var ErrSlotTaken = errors.New("slot already booked")

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

type AppointmentRepository interface {
	BusyTimes(doctorID int, date time.Time) ([]string, error)
	Create(a *db.Appointment) error
	CancelByCode(code string, telegramID int64) (bool, error)
	CancelBySlot(telegramID int64, doctorID int, date time.Time, timeOfDay string) (bool, error)
	SummaryByTelegramID(telegramID int64) ([]entities.AppointmentSummary, error)
}

type appointmentRepository struct {
	db *sql.DB
}

func NewAppointmentRepository(database *sql.DB) AppointmentRepository {
	return &appointmentRepository{db: database}
}

// BusyTimes lists the "HH:MM" start times already taken on a date by
// appointments whose status still occupies capacity.
func (r *appointmentRepository) BusyTimes(doctorID int, date time.Time) ([]string, error) {
	query := `
	SELECT to_char(appointment_time, 'HH24:MI')
	FROM appointments
	WHERE doctor_id = $1
	  AND appointment_date = $2
	  AND status = ANY($3)`

	rows, err := r.db.Query(query, doctorID, date, pq.Array(db.OccupyingStatuses))
	if err != nil {
		return nil, fmt.Errorf("error querying busy times: %w", err)
	}
	defer rows.Close()

	var times []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("error scanning busy time: %w", err)
		}
		times = append(times, t)
	}
	return times, rows.Err()
}

func (r *appointmentRepository) Create(a *db.Appointment) error {
	query := `
	INSERT INTO appointments
	(code, patient_id, doctor_id, appointment_date, appointment_time, appointment_datetime, status, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(query,
		a.Code,
		a.PatientID,
		a.DoctorID,
		a.AppointmentDate,
		a.AppointmentTime,
		a.AppointmentDatetime,
		a.Status,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("error inserting appointment: %w", err)
	}
	return nil
}

// CancelByCode flips one of the patient's own appointments to cancelled.
// A miss (unknown code, someone else's appointment, already cancelled)
// is reported as false, not as an error.
func (r *appointmentRepository) CancelByCode(code string, telegramID int64) (bool, error) {
	query := `
	UPDATE appointments a
	SET status = $1, updated_at = NOW()
	FROM patients p
	WHERE a.patient_id = p.id
	  AND p.telegram_id = $2
	  AND a.code = $3
	  AND a.status <> $1`

	result, err := r.db.Exec(query, db.StatusCancelled, telegramID, code)
	if err != nil {
		return false, fmt.Errorf("error cancelling appointment %s: %w", code, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// CancelBySlot cancels by the (patient, doctor, date, time) quadruple,
// for callers that never learned the appointment code.
func (r *appointmentRepository) CancelBySlot(telegramID int64, doctorID int, date time.Time, timeOfDay string) (bool, error) {
	query := `
	UPDATE appointments a
	SET status = $1, updated_at = NOW()
	FROM patients p
	WHERE a.patient_id = p.id
	  AND p.telegram_id = $2
	  AND a.doctor_id = $3
	  AND a.appointment_date = $4
	  AND a.appointment_time = $5
	  AND a.status <> $1`

	result, err := r.db.Exec(query, db.StatusCancelled, telegramID, doctorID, date, timeOfDay)
	if err != nil {
		return false, fmt.Errorf("error cancelling appointment by slot: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *appointmentRepository) SummaryByTelegramID(telegramID int64) ([]entities.AppointmentSummary, error) {
	query := `
	SELECT
		a.id, a.code,
		to_char(a.appointment_date, 'YYYY-MM-DD'),
		to_char(a.appointment_time, 'HH24:MI'),
		TRIM(CONCAT_WS(' ', d.last_name, d.first_name, d.middle_name)),
		s.name, COALESCE(d.cabinet, ''), a.status
	FROM appointments a
	JOIN patients p ON a.patient_id = p.id
	JOIN doctors d ON a.doctor_id = d.id
	JOIN specializations s ON d.specialization_id = s.id
	WHERE p.telegram_id = $1 AND a.status <> $2
	ORDER BY a.appointment_datetime`

	rows, err := r.db.Query(query, telegramID, db.StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("error querying appointment summary: %w", err)
	}
	defer rows.Close()

	var summaries []entities.AppointmentSummary
	for rows.Next() {
		var s entities.AppointmentSummary
		err := rows.Scan(&s.ID, &s.Code, &s.Date, &s.Time, &s.Doctor, &s.Specialization, &s.Cabinet, &s.Status)
		if err != nil {
			return nil, fmt.Errorf("error scanning appointment summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
