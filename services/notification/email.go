package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/KowsickReddy/TravelGo/models"
	"github.com/KowsickReddy/TravelGo/utils"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>Booking Confirmation - TravelGo</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h1 style="color: #2563eb;">Booking Confirmed!</h1>
        <p>Dear Traveler,</p>
        <p>Your booking has been confirmed. Here are your booking details:</p>
        <div style="background-color: #f8fafc; padding: 20px; border-radius: 8px; margin: 20px 0;">
            <h2 style="color: #1e40af; margin-top: 0;">Booking Details</h2>
            <p><strong>Booking ID:</strong> #{{.BookingID}}</p>
            <p><strong>Service:</strong> {{.Title}}</p>
            <p><strong>Type:</strong> {{.Type}}</p>
            <p><strong>Location:</strong> {{.Location}}, {{.City}}, {{.State}}</p>
            <p><strong>Date:</strong> {{.Date}}</p>
            <p><strong>Number of People:</strong> {{.People}}</p>
            <p><strong>Total Amount:</strong> {{.Total}}</p>
            <p><strong>Transaction ID:</strong> {{.TransactionID}}</p>
            <p><strong>Payment Status:</strong> Completed</p>
        </div>
        {{if .SpecialRequests}}
        <div style="background-color: #fef3c7; padding: 15px; border-radius: 8px; margin: 20px 0;">
            <h3 style="color: #92400e; margin-top: 0;">Special Requests</h3>
            <p>{{.SpecialRequests}}</p>
        </div>
        {{end}}
        <div style="background-color: #ecfdf5; padding: 15px; border-radius: 8px; margin: 20px 0;">
            <h3 style="color: #065f46; margin-top: 0;">What's Next?</h3>
            <ul style="margin: 0;">
                <li>Save this email for your records</li>
                <li>Carry a valid ID for verification</li>
                <li>Contact us if you need any assistance</li>
            </ul>
        </div>
        <p>Thank you for choosing TravelGo! We hope you have a wonderful journey.</p>
        <div style="border-top: 1px solid #e2e8f0; padding-top: 20px; margin-top: 30px; text-align: center; color: #64748b;">
            <p>TravelGo - Your Ultimate Travel Companion</p>
        </div>
    </div>
</body>
</html>
`))

type confirmationView struct {
	BookingID       string
	Title           string
	Type            string
	Location        string
	City            string
	State           string
	Date            string
	People          int
	Total           string
	TransactionID   string
	SpecialRequests string
}

// SMTPConfig holds the relay settings for EmailSender.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailSender renders booking confirmations as HTML mail and relays them
// over SMTP. smtp.SendMail upgrades the connection with STARTTLS when the
// server offers it.
type EmailSender struct {
	cfg      SMTPConfig
	logger   *zap.Logger
	sendMail sendMailFunc
}

func NewEmailSender(cfg SMTPConfig, logger *zap.Logger) *EmailSender {
	return &EmailSender{cfg: cfg, logger: logger, sendMail: smtp.SendMail}
}

// Configured reports whether SMTP credentials are present.
func (s *EmailSender) Configured() bool {
	return s.cfg.Username != "" && s.cfg.Password != ""
}

func (s *EmailSender) Send(ctx context.Context, notice models.ConfirmationNotice) error {
	if !s.Configured() {
		s.logger.Info("Email not configured, skipping confirmation", zap.String("bookingID", notice.Booking.ID))
		return nil
	}
	if notice.Recipient == "" {
		return fmt.Errorf("booking %s has no recipient address", notice.Booking.ID)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	subject, body, err := RenderConfirmation(notice)
	if err != nil {
		return err
	}
	msg := buildMessage(s.cfg.Username, notice.Recipient, subject, body)

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	if err := s.sendMail(addr, auth, s.cfg.Username, []string{notice.Recipient}, msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", notice.Recipient, err)
	}
	s.logger.Info("Email sent", zap.String("to", notice.Recipient), zap.String("subject", subject))
	return nil
}

// RenderConfirmation returns the subject and HTML body of a confirmation mail.
func RenderConfirmation(notice models.ConfirmationNotice) (string, string, error) {
	b, svc := notice.Booking, notice.Service

	view := confirmationView{
		BookingID:       b.ID,
		Title:           svc.Title,
		Type:            cases.Title(language.English).String(svc.Type),
		Location:        svc.Location,
		City:            svc.City,
		State:           svc.State,
		Date:            b.BookingDate,
		People:          b.NumberOfPeople,
		Total:           utils.FormatCurrency(b.TotalAmount, b.Currency),
		SpecialRequests: b.SpecialRequests,
	}
	if b.TransactionID != nil {
		view.TransactionID = *b.TransactionID
	}

	var buf bytes.Buffer
	if err := confirmationTemplate.Execute(&buf, view); err != nil {
		return "", "", fmt.Errorf("failed to render confirmation for booking %s: %w", b.ID, err)
	}
	subject := fmt.Sprintf("Booking Confirmed - %s (#%s)", svc.Title, b.ID)
	return subject, buf.String(), nil
}

func buildMessage(from, to, subject, html string) []byte {
	var sb strings.Builder
	sb.WriteString("From: " + from + "\r\n")
	sb.WriteString("To: " + to + "\r\n")
	sb.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(html)
	return []byte(sb.String())
}
