package service

import (
	"fmt"
	"log"
	"time"

	"clinica/internal/db"
	"clinica/internal/repository"
	"clinica/internal/schedule"
)

type JobService struct {
	Repo     *repository.JobRepository
	notifier Notifier
}

func NewJobService(repo *repository.JobRepository, notifier Notifier) *JobService {
	return &JobService{Repo: repo, notifier: notifier}
}

// CompletePastAppointments moves scheduled appointments whose slot has
// passed to 'completed'. No-shows are flipped manually by the admin
// afterwards.
func (s *JobService) CompletePastAppointments() error {
	log.Println("Cron Job: Checking for appointments to mark as 'completed'...")

	ids, err := s.Repo.GetScheduledIDsPastSlot()
	if err != nil {
		return fmt.Errorf("cron job: failed to get scheduled appointments past their slot: %w", err)
	}

	if len(ids) == 0 {
		log.Println("Cron Job: No scheduled appointments found past their slot.")
		return nil
	}

	log.Printf("Cron Job: Found %d appointments to mark as 'completed'. IDs: %v", len(ids), ids)

	if err := s.Repo.UpdateAppointmentStatuses(ids, db.StatusCompleted); err != nil {
		return fmt.Errorf("cron job: failed to update appointment statuses: %w", err)
	}

	log.Printf("Cron Job: Successfully updated %d appointments to 'completed'.", len(ids))
	return nil
}

// SendTomorrowReminders notifies every patient with a scheduled
// appointment on the next calendar day.
func (s *JobService) SendTomorrowReminders() error {
	tomorrow := schedule.DateOf(time.Now()).AddDate(0, 0, 1)

	targets, err := s.Repo.ReminderTargets(tomorrow)
	if err != nil {
		return fmt.Errorf("cron job: failed to get reminder targets: %w", err)
	}
	if len(targets) == 0 {
		log.Println("Cron Job: No appointments to remind for tomorrow.")
		return nil
	}

	log.Printf("Cron Job: Sending %d reminders for %s", len(targets), tomorrow.Format("2006-01-02"))
	for _, t := range targets {
		s.notifier.NotifyAppointment(t, EventReminder)
	}
	return nil
}
