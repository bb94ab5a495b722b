package services

import (
	"bytes"
	"context"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"net/smtp"
	"time"

	"github.com/Dosada05/chess-tournament/models"
	"github.com/resend/resend-go/v2"
)

type TemplateKind string

const (
	TemplateParticipate TemplateKind = "PARTICIPATE"
	TemplateSuccess     TemplateKind = "SUCCESS"
	TemplateApology     TemplateKind = "APOLOGY"
)

// Mailer sends lifecycle emails. Callers treat it as fire-and-forget.
type Mailer interface {
	Notify(ctx context.Context, p *models.Participant, t *models.Tournament, kind TemplateKind) error
}

//go:embed templates/*.html
var templateFS embed.FS

var mailTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

var templateFiles = map[TemplateKind]string{
	TemplateParticipate: "participate.html",
	TemplateSuccess:     "success.html",
	TemplateApology:     "apology.html",
}

var templateSubjects = map[TemplateKind]string{
	TemplateParticipate: "You are invited to %s",
	TemplateSuccess:     "Registration confirmed: %s",
	TemplateApology:     "Registration closed: %s",
}

type mailData struct {
	Name       string
	Tournament string
	StartDate  string
	Deadline   string
}

// renderMail returns the subject and HTML body for a template kind.
func renderMail(p *models.Participant, t *models.Tournament, kind TemplateKind, deadline time.Time) (string, string, error) {
	file, ok := templateFiles[kind]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", kind)
	}
	data := mailData{Name: p.FullName(), Tournament: t.Name}
	if data.Name == "" {
		data.Name = p.Email
	}
	if !t.StartDate.IsZero() {
		data.StartDate = t.StartDate.Format(time.RFC1123)
	}
	if !deadline.IsZero() {
		data.Deadline = deadline.Format(time.RFC1123)
	}

	var body bytes.Buffer
	if err := mailTemplates.ExecuteTemplate(&body, file, data); err != nil {
		return "", "", fmt.Errorf("render %s: %w", kind, err)
	}
	return fmt.Sprintf(templateSubjects[kind], t.Name), body.String(), nil
}

type deadlineKey struct{}

// WithInvitationDeadline attaches the invitation expiry rendered in PARTICIPATE mails.
func WithInvitationDeadline(ctx context.Context, deadline time.Time) context.Context {
	return context.WithValue(ctx, deadlineKey{}, deadline)
}

func deadlineFrom(ctx context.Context) time.Time {
	d, _ := ctx.Value(deadlineKey{}).(time.Time)
	return d
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Notify(ctx context.Context, p *models.Participant, t *models.Tournament, kind TemplateKind) error {
	subject, body, err := renderMail(p, t, kind, deadlineFrom(ctx))
	if err != nil {
		return err
	}
	return m.SendEmail([]string{p.Email}, subject, body)
}

func (m *SMTPMailer) SendEmail(to []string, subject string, body string) error {
	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)

	msg := []byte("To: " + to[0] + "\r\n" +
		"From: " + m.cfg.From + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n" +
		"\r\n" +
		body + "\r\n")

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	tlsconfig := &tls.Config{ServerName: m.cfg.Host}

	var client *smtp.Client
	if m.cfg.Port == 465 {
		conn, err := tls.Dial("tcp", addr, tlsconfig)
		if err != nil {
			return fmt.Errorf("smtp tls dial: %w", err)
		}
		client, err = smtp.NewClient(conn, m.cfg.Host)
		if err != nil {
			conn.Close()
			return fmt.Errorf("smtp client: %w", err)
		}
	} else {
		c, err := smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("smtp dial: %w", err)
		}
		client = c
		if err = client.StartTLS(tlsconfig); err != nil {
			client.Close()
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	defer client.Quit()

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp rcpt to: %w", err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	return w.Close()
}

type ResendMailer struct {
	client *resend.Client
	from   string
}

func NewResendMailer(apiKey, from string) *ResendMailer {
	return &ResendMailer{client: resend.NewClient(apiKey), from: from}
}

func (m *ResendMailer) Notify(ctx context.Context, p *models.Participant, t *models.Tournament, kind TemplateKind) error {
	subject, body, err := renderMail(p, t, kind, deadlineFrom(ctx))
	if err != nil {
		return err
	}
	_, err = m.client.Emails.Send(&resend.SendEmailRequest{
		From:    m.from,
		To:      []string{p.Email},
		Subject: subject,
		Html:    body,
	})
	if err != nil {
		return fmt.Errorf("resend %s to %s: %w", kind, p.Email, err)
	}
	return nil
}

type NopMailer struct{}

func (NopMailer) Notify(context.Context, *models.Participant, *models.Tournament, TemplateKind) error {
	return nil
}
