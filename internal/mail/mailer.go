package mail

import (
	"crypto/tls"
	"fmt"
	"net/smtp"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/smokefree-backend/internal/logger"
)

// Sender отправляет письма пользователям. Ошибки доставки никогда не
// должны влиять на результат бизнес-операции - вызывающая сторона только
// логирует их.
type Sender interface {
	Send(to, subject, htmlBody string) error
}

// SMTPSender отправляет почту через SMTP с implicit TLS (порт 465).
type SMTPSender struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// NewSMTPSender создаёт SMTP отправитель.
func NewSMTPSender(host, port, username, password, from string) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

// Send доставляет одно HTML письмо.
func (s *SMTPSender) Send(to, subject, htmlBody string) error {
	msg := []byte(
		fmt.Sprintf("From: %s\r\n", s.from) +
			fmt.Sprintf("To: %s\r\n", to) +
			fmt.Sprintf("Subject: %s\r\n", subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=\"utf-8\"\r\n" +
			"\r\n" +
			htmlBody,
	)

	serverAddr := s.host + ":" + s.port

	tlsConfig := &tls.Config{
		ServerName: s.host,
	}

	conn, err := tls.Dial("tcp", serverAddr, tlsConfig)
	if err != nil {
		return fmt.Errorf("mail: не удалось установить TLS соединение: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		return fmt.Errorf("mail: не удалось создать SMTP клиент: %w", err)
	}
	defer client.Quit()

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("mail: ошибка авторизации SMTP: %w", err)
	}

	if err := client.Mail(s.from); err != nil {
		return fmt.Errorf("mail: ошибка MAIL FROM: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("mail: ошибка RCPT TO: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("mail: ошибка DATA: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("mail: ошибка записи сообщения: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("mail: ошибка завершения сообщения: %w", err)
	}

	return nil
}

// LogSender пишет письма в лог вместо реальной отправки. Используется в
// development, чтобы код подтверждения был виден без почтового сервера.
type LogSender struct{}

// NewLogSender создаёт лог-отправитель.
func NewLogSender() *LogSender {
	return &LogSender{}
}

// Send логирует письмо и всегда завершается успешно.
func (s *LogSender) Send(to, subject, htmlBody string) error {
	if logger.Log != nil {
		logger.Log.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
			"body":    htmlBody,
		}).Info("mail: письмо не отправлено (development режим)")
	}
	return nil
}
