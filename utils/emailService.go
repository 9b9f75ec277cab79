package utils

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"time"

	"coursemart/config"
	"coursemart/logger"

	"github.com/pkg/errors"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const sendGridHost = "https://api.sendgrid.com"

// Mailer sends transactional email through SendGrid. A Mailer without an
// API key drops every message.
type Mailer struct {
	APIKey    string
	Host      string
	FromEmail string
	FromName  string
	Timeout   time.Duration
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		APIKey:    cfg.SendGridAPIKey,
		Host:      sendGridHost,
		FromEmail: cfg.EmailSender,
		FromName:  cfg.EmailSenderName,
		Timeout:   10 * time.Second,
	}
}

func (m *Mailer) Enabled() bool { return m != nil && m.APIKey != "" }

// Send delivers one HTML email.
func (m *Mailer) Send(ctx context.Context, toEmail, toName, subject, htmlBody string) error {
	if !m.Enabled() {
		logger.L().Debug("email skipped, sendgrid not configured", "subject", subject)
		return nil
	}

	from := mail.NewEmail(m.FromName, m.FromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, "", htmlBody)

	request := sendgrid.GetRequest(m.APIKey, "/v3/mail/send", m.Host)
	request.Method = http.MethodPost
	request.Body = mail.GetRequestBody(message)

	ctx, cancel := context.WithTimeout(ctx, m.Timeout)
	defer cancel()

	resp, err := sendgrid.MakeRequestWithContext(ctx, request)
	if err != nil {
		return errors.Wrap(err, "sendgrid request")
	}
	if resp.StatusCode >= 300 {
		return errors.Errorf("sendgrid http %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

var mailer *Mailer

// InitMailer builds the process-wide mailer from config.AppConfig.
func InitMailer() {
	mailer = NewMailer(config.AppConfig)
}

// SetMailer replaces the process-wide mailer.
func SetMailer(m *Mailer) { mailer = m }

// SendEmail delivers in the background and logs failures.
func SendEmail(toEmail, toName, subject, htmlBody string) {
	m := mailer
	go func() {
		if err := m.Send(context.Background(), toEmail, toName, subject, htmlBody); err != nil {
			logger.L().Error("email failed", "subject", subject, "error", err.Error())
		}
	}()
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #1F2A44; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1F2A44; line-height: 1.6; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; }
			.btn { display: inline-block; padding: 12px 24px; background-color: #3A7BD5; color: #FFFFFF; text-decoration: none; border-radius: 4px; font-weight: bold; margin-top: 20px; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #3A7BD5; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>COURSEMART</h1></div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">&copy; CourseMart. All rights reserved.</div>
		</div>
	</body>
	</html>
	`, html.EscapeString(title), bodyContent)
}

// --- Triggers ---

func SendWelcomeEmail(email, name string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Welcome to <strong>CourseMart</strong>! Your account has been created.</p>
		<p>Browse the catalogue and enroll in your first course.</p>
	`, html.EscapeString(name))

	SendEmail(email, name, "Welcome to CourseMart", getEmailTemplate("Welcome Onboard!", body))
}

func SendEnrollmentEmail(email, name, courseTitle, courseURL string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>You are now enrolled in <strong>%s</strong>.</p>
		<p>Complete the lessons to track your progress and earn your certificate.</p>
		<a href="%s" class="btn">Start Learning</a>
	`, html.EscapeString(name), html.EscapeString(courseTitle), html.EscapeString(courseURL))

	SendEmail(email, name, "Enrollment Confirmed: "+courseTitle, getEmailTemplate("Enrollment Successful", body))
}

func SendCertificateEmail(email, name, courseTitle, certificateID, verificationURL string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Congratulations on completing <strong>%s</strong>.</p>
		<div class="info-box">
			<strong>Certificate ID:</strong> %s
		</div>
		<a href="%s" class="btn">Verify Certificate</a>
	`, html.EscapeString(name), html.EscapeString(courseTitle), html.EscapeString(certificateID), html.EscapeString(verificationURL))

	SendEmail(email, name, "Your certificate for "+courseTitle, getEmailTemplate("Certificate of Completion", body))
}

func SendOrderConfirmationEmail(email, name, orderNumber, courseTitle, total, currency string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>We received your payment for <strong>%s</strong>.</p>
		<div class="info-box">
			<strong>Order:</strong> %s<br>
			<strong>Total:</strong> %s %s
		</div>
	`, html.EscapeString(name), html.EscapeString(courseTitle), html.EscapeString(orderNumber), html.EscapeString(total), html.EscapeString(currency))

	SendEmail(email, name, "Payment received: "+orderNumber, getEmailTemplate("Payment Confirmed", body))
}

func SendRefundEmail(email, name, orderNumber, amount, currency string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your order <strong>%s</strong> has been refunded.</p>
		<div class="info-box"><strong>Refunded:</strong> %s %s</div>
	`, html.EscapeString(name), html.EscapeString(orderNumber), html.EscapeString(amount), html.EscapeString(currency))

	SendEmail(email, name, "Refund processed: "+orderNumber, getEmailTemplate("Refund Processed", body))
}
