package notification

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// BookingDetails carries the resolved, client-local values rendered into
// booking emails.
type BookingDetails struct {
	UserName  string
	ChefName  string
	Date      string
	StartTime string
	EndTime   string
}

func dialer() (*gomail.Dialer, error) {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")

	port, err := strconv.Atoi(smtpPort)
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP port: %v", err)
	}
	return gomail.NewDialer(smtpHost, port, smtpUser, smtpPass), nil
}

func send(to, subject, body string) error {
	d, err := dialer()
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", os.Getenv("SMTP_USER"))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	return d.DialAndSend(m)
}

// SendBookingConfirmation delivers the confirmation email after a payment
// succeeds. Failures are the caller's to log, never to propagate.
func SendBookingConfirmation(email string, details BookingDetails) error {
	subject := fmt.Sprintf("Your Booking with %s is Confirmed", details.ChefName)
	body := fmt.Sprintf(`Dear %s,

We are pleased to confirm your booking with %s on %s from %s to %s.

We look forward to serving you a delightful culinary experience.

If you have any questions or require further assistance, please don't hesitate to contact us.

Sincerely,
Recipe Mania`, details.UserName, details.ChefName, details.Date, details.StartTime, details.EndTime)

	return send(email, subject, body)
}

// SendBookingReminder is used by the reminder job for upcoming confirmed
// bookings.
func SendBookingReminder(email string, details BookingDetails) error {
	subject := fmt.Sprintf("Reminder: your booking with %s is coming up", details.ChefName)
	body := fmt.Sprintf(`Dear %s,

This is a reminder of your booking with %s on %s from %s to %s.

Sincerely,
Recipe Mania`, details.UserName, details.ChefName, details.Date, details.StartTime, details.EndTime)

	return send(email, subject, body)
}

// SendVerificationEmail sends the 6-digit registration code.
func SendVerificationEmail(email, code string) error {
	body := fmt.Sprintf("Your verification code is: %s. Ignore this email if you did not request a verification code.", code)
	return send(email, "Email Verification Code", body)
}

// SendPasswordResetEmail sends a password reset token.
func SendPasswordResetEmail(email, token string) error {
	body := fmt.Sprintf("Your password reset code is: %s. It expires in 15 minutes. Ignore this email if you did not request a reset.", token)
	return send(email, "Password Reset Code", body)
}
