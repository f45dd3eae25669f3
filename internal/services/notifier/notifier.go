// Package notifier отправляет приветственные письма новым пользователям.
package notifier

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/gym-portal/internal/lib/sl"
	"github.com/magabrotheeeer/gym-portal/internal/lib/smtp"
	"github.com/magabrotheeeer/gym-portal/internal/models"
)

const welcomeSubject = "Welcome to the gym"

// Service обрабатывает события о регистрации из очереди уведомлений.
type Service struct {
	transport smtp.Dialer
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(log *slog.Logger, transport smtp.Dialer) *Service {
	return &Service{
		transport: transport,
		log:       log,
	}
}

// HandleUserRegistered разбирает событие и отправляет письмо.
// Пользователь без email пропускается, сообщение подтверждается.
func (s *Service) HandleUserRegistered(body []byte) error {
	const op = "notifier.HandleUserRegistered"
	var event models.UserRegisteredEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if event.Email == "" {
		s.log.Debug("user has no email, skip welcome", slog.Int64("user_id", event.UserID))
		return nil
	}

	if err := s.sendEmail([]string{event.Email}, welcomeSubject, welcomeBody(event)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func welcomeBody(event models.UserRegisteredEvent) string {
	name := event.FullName
	if name == "" {
		name = event.Login
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Hello, %s!\n\n", name)
	fmt.Fprintf(&b, "Your account %q has been created.\n", event.Login)
	if event.MembershipDuration != "" {
		fmt.Fprintf(&b, "Your membership is valid until %s.\n", formatDate(event.MembershipDuration))
	}
	b.WriteString("\nSee you at the gym!")
	return b.String()
}

// formatDate превращает YYYYMMDD в YYYY-MM-DD.
func formatDate(s string) string {
	if len(s) != 8 {
		return s
	}
	return s[:4] + "-" + s[4:6] + "-" + s[6:]
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	from := s.transport.Sender()
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(from); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", from), sl.Err(err))
		return err
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}
	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}
	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("welcome email sent", slog.Any("to", to))
	return nil
}
