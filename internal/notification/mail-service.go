package notification

import (
	"bytes"
	"crypto/tls"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/SundayYogurt/visa_service/internal/dto"
	"github.com/SundayYogurt/visa_service/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

var ErrUnknownEvent = errors.New("unknown notification event")

var subjects = map[string]string{
	dto.EventDocumentReviewed:     "Your document has been reviewed",
	dto.EventVerificationStatus:   "Your verification request was updated",
	dto.EventTicketCreated:        "New support ticket",
	dto.EventTicketMessageCreated: "New reply on your ticket",
	dto.EventTicketClosed:         "Support ticket closed",
}

// Sender delivers one already-encoded message.
type Sender interface {
	Send(to string, msg []byte) error
}

type MailService struct {
	sender    Sender
	from      string
	fromName  string
	portalURL string
	templates map[string]*template.Template
}

func NewMailService(sender Sender, from, fromName, portalURL string) (*MailService, error) {
	templates := make(map[string]*template.Template, len(subjects))
	for eventType := range subjects {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+eventType+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", eventType, err)
		}
		templates[eventType] = t
	}

	return &MailService{
		sender:    sender,
		from:      from,
		fromName:  fromName,
		portalURL: strings.TrimRight(portalURL, "/"),
		templates: templates,
	}, nil
}

func (s *MailService) Notify(event dto.NotificationEvent) error {
	tmpl, ok := s.templates[event.Type]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEvent, event.Type)
	}
	if event.RecipientEmail == "" {
		return errors.New("notification has no recipient")
	}

	body, err := s.render(tmpl, event)
	if err != nil {
		return err
	}

	msg := s.compose(event.RecipientEmail, subjects[event.Type], body)
	if err := s.sender.Send(event.RecipientEmail, msg); err != nil {
		return fmt.Errorf("send %s: %w", event.Type, err)
	}

	logger.Info().Str("type", event.Type).Uint("subject_id", event.SubjectID).Msg("notification sent")
	return nil
}

func (s *MailService) render(tmpl *template.Template, event dto.NotificationEvent) (string, error) {
	var buf bytes.Buffer
	err := tmpl.ExecuteTemplate(&buf, "layout", map[string]string{
		"Name":       event.RecipientName,
		"Title":      event.Title,
		"Status":     event.Status,
		"Note":       event.Note,
		"OccurredAt": event.OccurredAt,
		"Link":       s.link(event),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *MailService) link(event dto.NotificationEvent) string {
	switch event.Type {
	case dto.EventDocumentReviewed, dto.EventVerificationStatus:
		return s.portalURL + "/verification"
	default:
		return fmt.Sprintf("%s/tickets/%d", s.portalURL, event.SubjectID)
	}
}

func (s *MailService) compose(to, subject, htmlBody string) []byte {
	from := s.from
	if s.fromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", s.fromName), s.from)
	}
	return []byte(strings.Join([]string{
		"From: " + from,
		"To: " + to,
		"Subject: " + mime.QEncoding.Encode("utf-8", subject),
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		htmlBody,
	}, "\r\n"))
}

// SMTPSender talks to a STARTTLS submission port with a hard deadline on the whole session.
type SMTPSender struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
	Timeout  time.Duration
}

func (s SMTPSender) Send(to string, msg []byte) error {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	addr := net.JoinHostPort(s.Host, s.Port)

	conn, err := net.DialTimeout("tcp", addr, 8*time.Second)
	if err != nil {
		return err
	}
	_ = conn.SetDeadline(time.Now().Add(timeout))

	c, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer func() { _ = c.Quit() }()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.Host, MinVersion: tls.VersionTLS12}); err != nil {
			return err
		}
	}
	if s.User != "" {
		if err := c.Auth(smtp.PlainAuth("", s.User, s.Password, s.Host)); err != nil {
			return err
		}
	}

	if err := c.Mail(s.From); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
