package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"clinica/internal/db"
)

type PatientRepository interface {
	GetByTelegramID(telegramID int64) (*db.Patient, error)
	Upsert(p *db.Patient) error
}

type patientRepository struct {
	db *sql.DB
}

func NewPatientRepository(database *sql.DB) PatientRepository {
	return &patientRepository{db: database}
}

// GetByTelegramID returns nil, nil when the patient is not registered.
func (r *patientRepository) GetByTelegramID(telegramID int64) (*db.Patient, error) {
	query := `
	SELECT id, telegram_id, COALESCE(first_name, ''), COALESCE(last_name, ''),
	       COALESCE(middle_name, ''), COALESCE(phone, ''), COALESCE(email, ''),
	       birth_date, created_at
	FROM patients
	WHERE telegram_id = $1`

	var p db.Patient
	var birthDate sql.NullTime
	err := r.db.QueryRow(query, telegramID).Scan(
		&p.ID, &p.TelegramID, &p.FirstName, &p.LastName,
		&p.MiddleName, &p.Phone, &p.Email, &birthDate, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying patient %d: %w", telegramID, err)
	}
	if birthDate.Valid {
		p.BirthDate = &birthDate.Time
	}
	return &p, nil
}

// Upsert creates the patient row on first contact and updates the
// profile fields on every later registration step.
func (r *patientRepository) Upsert(p *db.Patient) error {
	query := `
	INSERT INTO patients (telegram_id, first_name, last_name, middle_name, phone, email, birth_date, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	ON CONFLICT (telegram_id) DO UPDATE SET
		first_name = EXCLUDED.first_name,
		last_name = EXCLUDED.last_name,
		middle_name = EXCLUDED.middle_name,
		phone = EXCLUDED.phone,
		email = EXCLUDED.email,
		birth_date = EXCLUDED.birth_date
	RETURNING id, created_at`

	var birthDate interface{}
	if p.BirthDate != nil {
		birthDate = *p.BirthDate
	}
	err := r.db.QueryRow(query,
		p.TelegramID, p.FirstName, p.LastName, p.MiddleName, p.Phone, p.Email, birthDate,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("error upserting patient %d: %w", p.TelegramID, err)
	}
	return nil
}
