package alert

import (
	"context"
	"crypto/tls"
	"fmt"
	"html"
	"log"
	"net/smtp"
	"strings"

	"product-scout/internal/domain"
)

// EmailConfig holds SMTP settings. TLS is "tls" for implicit TLS, anything
// else uses plain SMTP with opportunistic STARTTLS.
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	TLS      string
	To       []string
}

func (c EmailConfig) Enabled() bool {
	return c.Host != "" && c.From != "" && len(c.To) > 0
}

type sendFunc func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error

// EmailSink mails an HTML alert per finding.
type EmailSink struct {
	cfg  EmailConfig
	send sendFunc
}

func NewEmailSink(cfg EmailConfig) *EmailSink {
	s := &EmailSink{cfg: cfg, send: smtp.SendMail}
	if cfg.TLS == "tls" {
		s.send = s.sendWithTLS
	}
	log.Printf("Email alerts enabled (SMTP: %s:%d)", cfg.Host, cfg.Port)
	return s
}

func (s *EmailSink) Name() string { return "email" }

func (s *EmailSink) Send(_ context.Context, f domain.Finding) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var auth smtp.Auth
	if s.cfg.Username != "" && s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	msg := buildMessage(s.cfg.From, s.cfg.To, Subject(f), alertHTML(f), plainText(f))
	if err := s.send(addr, auth, s.cfg.From, s.cfg.To, []byte(msg)); err != nil {
		return fmt.Errorf("send alert email: %w", err)
	}
	return nil
}

func buildMessage(from string, to []string, subject, htmlBody, textBody string) string {
	boundary := "ProductScoutBoundary7f3a9c"
	var msg strings.Builder

	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", boundary)

	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	msg.WriteString(textBody)
	msg.WriteString("\r\n")

	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	msg.WriteString(htmlBody)
	msg.WriteString("\r\n")

	fmt.Fprintf(&msg, "--%s--\r\n", boundary)
	return msg.String()
}

func alertHTML(f domain.Finding) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>%s</h2>", html.EscapeString(f.Name))
	fmt.Fprintf(&b, "<p><strong>Category:</strong> %s</p>", html.EscapeString(f.Category))
	fmt.Fprintf(&b, "<p><strong>Buy:</strong> $%.2f &middot; <strong>Sell:</strong> $%.2f</p>", f.BuyPrice, f.SellPrice)
	fmt.Fprintf(&b, "<p><strong>Profit:</strong> $%.2f (%.1f%% margin)</p>", f.Profit, f.Margin)
	fmt.Fprintf(&b, "<p><strong>Competition:</strong> %s &middot; <strong>Sold:</strong> %d</p>", f.Competition, f.SoldCount)
	if f.SearchURL != "" {
		fmt.Fprintf(&b, "<p><a href=\"%s\">View sold listings</a></p>", html.EscapeString(f.SearchURL))
	}
	if len(f.Suppliers) > 0 {
		b.WriteString("<ul>")
		for _, s := range f.Suppliers {
			fmt.Fprintf(&b, "<li><a href=\"%s\">%s</a> ~$%.2f</li>", html.EscapeString(s.URL), html.EscapeString(s.Source), s.EstimatedPrice)
		}
		b.WriteString("</ul>")
	}
	return b.String()
}

func (s *EmailSink) sendWithTLS(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12})
	if err != nil {
		return fmt.Errorf("TLS dial failed: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return fmt.Errorf("SMTP client failed: %w", err)
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP auth failed: %w", err)
		}
	}
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("SMTP MAIL failed: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("SMTP RCPT failed: %w", err)
		}
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATA failed: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("SMTP write failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("SMTP close failed: %w", err)
	}
	return client.Quit()
}
