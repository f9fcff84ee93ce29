package services

import (
	"fmt"
	"net/smtp"
	"os"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"hoteldesk-backend/models"
)

// NotificationService sends guest-facing emails. Delivery is best-effort:
// without SMTP configuration the message is logged instead of sent, and real
// send failures are dead-lettered for manual replay.
type NotificationService struct {
	DB  *gorm.DB
	Log *zap.SugaredLogger
}

func NewNotificationService(db *gorm.DB, log *zap.SugaredLogger) *NotificationService {
	return &NotificationService{DB: db, Log: log}
}

func (s *NotificationService) send(to, subject, body string) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USERNAME")
	smtpPass := os.Getenv("SMTP_PASSWORD")

	if smtpUser == "" || smtpPass == "" || smtpHost == "" || smtpPort == "" {
		s.Log.Infow("[MOCK EMAIL]", "to", to, "subject", subject)
		return nil
	}

	safe := func(v string) string {
		return strings.ReplaceAll(strings.TrimSpace(v), "\r\n", " ")
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		smtpUser, safe(to), safe(subject), body)
	auth := smtp.PlainAuth("", smtpUser, smtpPass, smtpHost)
	addr := fmt.Sprintf("%s:%s", smtpHost, smtpPort)

	return smtp.SendMail(addr, auth, smtpUser, []string{to}, []byte(msg))
}

// SendBookingConfirmation emails the guest their booking summary.
func (s *NotificationService) SendBookingConfirmation(booking *models.Booking) error {
	body := fmt.Sprintf(
		"Hi %s,\n\nYour booking #%d is confirmed.\nCheck-in: %s\nCheck-out: %s\nNights: %d\nTotal: %s\n\nWe look forward to your stay.\n",
		booking.GuestName, booking.ID,
		booking.CheckIn.Format("2006-01-02"), booking.CheckOut.Format("2006-01-02"),
		booking.Nights, booking.TotalAmount,
	)

	err := s.send(booking.GuestEmail, fmt.Sprintf("Booking confirmation #%d", booking.ID), body)
	if err != nil {
		writeDeadLetter(s.DB, s.Log, models.DeadLetterNotification, models.RefTypeBooking, booking.ID,
			map[string]interface{}{"to": booking.GuestEmail}, err)
	}
	return err
}

// SendInvoiceIssued emails the guest their invoice number and total.
func (s *NotificationService) SendInvoiceIssued(invoice *models.Invoice, to string) error {
	if strings.TrimSpace(to) == "" {
		return nil
	}
	body := fmt.Sprintf(
		"Your invoice %s has been issued.\nTotal amount: %s\nStatus: %s\n",
		invoice.InvoiceNumber, invoice.TotalAmount, invoice.Status,
	)

	err := s.send(to, fmt.Sprintf("Invoice %s", invoice.InvoiceNumber), body)
	if err != nil {
		writeDeadLetter(s.DB, s.Log, models.DeadLetterNotification, models.RefTypeInvoice, invoice.ID,
			map[string]interface{}{"to": to}, err)
	}
	return err
}
