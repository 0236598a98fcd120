package service

import (
	"fmt"
	"log"
	"os"
	"strings"

	"clinica/internal/entities"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SenderService delivers appointment email and SMS notifications.
// Sends run in a goroutine and failures are only logged; a booking
// must never fail because a notification did.
type SenderService struct {
}

func NewSenderService() *SenderService {
	return &SenderService{}
}

func (s *SenderService) NotifyAppointment(n entities.AppointmentNotification, event string) {
	clinic := os.Getenv("CLINIC_NAME")
	if clinic == "" {
		clinic = "Clinic"
	}

	var subject, body, sms string
	switch event {
	case EventCancelled:
		subject = fmt.Sprintf("%s: appointment %s cancelled", clinic, n.Code)
		body = fmt.Sprintf(
			"Hello %s,\n\nYour appointment %s has been cancelled.\n\n"+
				"If this was a mistake, please book a new visit.\n\n%s",
			n.PatientName, n.Code, clinic,
		)
		sms = fmt.Sprintf("%s: appointment %s cancelled.", clinic, n.Code)
	case EventReminder:
		subject = fmt.Sprintf("%s: appointment reminder for %s", clinic, n.Date)
		body = fmt.Sprintf(
			"Hello %s,\n\nThis is a reminder of your appointment.\n\n"+
				"Doctor: %s (%s)\nCabinet: %s\nDate: %s\nTime: %s\nCode: %s\n\n%s",
			n.PatientName, n.Doctor, n.Specialization, n.Cabinet, n.Date, n.Time, n.Code, clinic,
		)
		sms = fmt.Sprintf("%s: reminder, %s at %s, Dr. %s, cabinet %s.",
			clinic, n.Date, n.Time, n.Doctor, n.Cabinet)
	default:
		subject = fmt.Sprintf("%s: appointment confirmed - %s", clinic, n.Code)
		body = fmt.Sprintf(
			"Hello %s,\n\nYour appointment is confirmed.\n\n"+
				"Doctor: %s\nCabinet: %s\nDate: %s\nTime: %s\nCode: %s\n\n"+
				"Keep the code to cancel or reschedule.\n\n%s",
			n.PatientName, n.Doctor, n.Cabinet, n.Date, n.Time, n.Code, clinic,
		)
		sms = fmt.Sprintf("%s: appointment %s at %s confirmed. Code: %s.",
			clinic, n.Date, n.Time, n.Code)
	}

	go func() {
		if n.Email != "" {
			if err := SendEmailWithSendGrid(n.Email, n.PatientName, subject, body); err != nil {
				log.Printf("Failed to send %s email for appointment %s: %v", event, n.Code, err)
			}
		}
		if n.Phone != "" {
			if err := SendSMS(n.Phone, sms); err != nil {
				log.Printf("Failed to send %s SMS for appointment %s: %v", event, n.Code, err)
			}
		}
	}()
}

func SendEmailWithSendGrid(toEmailAddress, toName, subject, plainTextContent string) error {
	sendgridAPIKey := os.Getenv("SENDGRID_API_KEY")
	if sendgridAPIKey == "" {
		return fmt.Errorf("SENDGRID_API_KEY is not configured")
	}

	fromEmail := os.Getenv("SENDGRID_FROM_EMAIL")
	if fromEmail == "" {
		return fmt.Errorf("SENDGRID_FROM_EMAIL is not configured")
	}

	fromName := os.Getenv("SENDGRID_FROM_NAME")
	if fromName == "" {
		fromName = "Clinic"
	}

	from := mail.NewEmail(fromName, fromEmail)
	to := mail.NewEmail(toName, toEmailAddress)
	message := mail.NewSingleEmail(from, subject, to, plainTextContent, "")

	client := sendgrid.NewSendClient(sendgridAPIKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email via SendGrid: %w", err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		log.Printf("Email sent to %s (subject: %s), status %d", toEmailAddress, subject, response.StatusCode)
		return nil
	}
	return fmt.Errorf("SendGrid returned status %d: %s", response.StatusCode, response.Body)
}

func SendSMS(toNumber, messageBody string) error {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	fromNumber := os.Getenv("TWILIO_FROM_NUMBER")

	if accountSid == "" || authToken == "" || fromNumber == "" {
		return fmt.Errorf("Twilio credentials are not fully configured")
	}

	if !strings.HasPrefix(toNumber, "+") {
		log.Printf("Destination number %q is not E.164, the SMS may fail", toNumber)
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username:   accountSid,
		Password:   authToken,
		AccountSid: accountSid,
	})

	params := &openapi.CreateMessageParams{}
	params.SetTo(toNumber)
	params.SetFrom(fromNumber)
	params.SetBody(messageBody)

	resp, err := client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	if resp != nil && resp.Sid != nil {
		log.Printf("SMS sent to %s, message SID %s", toNumber, *resp.Sid)
	}
	return nil
}
