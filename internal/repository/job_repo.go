package repository

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"clinica/internal/db"
	"clinica/internal/entities"

	"github.com/lib/pq"
)

type JobRepository struct {
	DB *sql.DB
}

func NewJobRepository(database *sql.DB) *JobRepository {
	return &JobRepository{DB: database}
}

// GetScheduledIDsPastSlot lists scheduled appointments whose slot is
// already in the past.
func (r *JobRepository) GetScheduledIDsPastSlot() ([]int, error) {
	query := `SELECT id FROM appointments WHERE status = $1 AND appointment_datetime < NOW()`
	rows, err := r.DB.Query(query, db.StatusScheduled)
	if err != nil {
		return nil, fmt.Errorf("error querying scheduled appointments past their slot: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning appointment ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows: %w", err)
	}
	return ids, nil
}

// UpdateAppointmentStatuses moves a batch of appointments to newStatus
// and refreshes updated_at.
func (r *JobRepository) UpdateAppointmentStatuses(ids []int, newStatus string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE appointments SET status = $1, updated_at = NOW() WHERE id = ANY($2)`
	result, err := r.DB.Exec(query, newStatus, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("error updating appointment statuses: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Printf("Could not get rows affected: %v", err)
	} else {
		log.Printf("Updated status for %d appointments to '%s'", rowsAffected, newStatus)
	}
	return nil
}

// ReminderTargets lists the scheduled appointments on the given date
// together with the contact data the reminder needs.
func (r *JobRepository) ReminderTargets(date time.Time) ([]entities.AppointmentNotification, error) {
	query := `
	SELECT
		TRIM(CONCAT_WS(' ', p.first_name, p.last_name)),
		COALESCE(p.phone, ''), COALESCE(p.email, ''), a.code,
		TRIM(CONCAT_WS(' ', d.last_name, d.first_name, d.middle_name)),
		s.name, COALESCE(d.cabinet, ''),
		to_char(a.appointment_date, 'YYYY-MM-DD'),
		to_char(a.appointment_time, 'HH24:MI')
	FROM appointments a
	JOIN patients p ON a.patient_id = p.id
	JOIN doctors d ON a.doctor_id = d.id
	JOIN specializations s ON d.specialization_id = s.id
	WHERE a.appointment_date = $1 AND a.status = $2
	ORDER BY a.appointment_time`

	rows, err := r.DB.Query(query, date, db.StatusScheduled)
	if err != nil {
		return nil, fmt.Errorf("error querying reminder targets: %w", err)
	}
	defer rows.Close()

	var targets []entities.AppointmentNotification
	for rows.Next() {
		var n entities.AppointmentNotification
		err := rows.Scan(&n.PatientName, &n.Phone, &n.Email, &n.Code, &n.Doctor, &n.Specialization, &n.Cabinet, &n.Date, &n.Time)
		if err != nil {
			return nil, fmt.Errorf("error scanning reminder target: %w", err)
		}
		targets = append(targets, n)
	}
	return targets, rows.Err()
}
