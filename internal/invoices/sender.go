package invoices

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/smtp"
	"strings"
	"time"
)

// Sender delivers a rendered invoice over one channel.
type Sender interface {
	Channel() string
	Send(ctx context.Context, snapshot Snapshot, document []byte) error
}

type emailSender struct {
	addr string
	from string
	to   string
}

// NewEmailSender delivers invoices over SMTP. The recipient is the back-office
// billing inbox; per-customer delivery rides on the notification pipeline.
func NewEmailSender(addr, from, to string) (Sender, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, fmt.Errorf("smtp address required")
	}
	if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
		return nil, fmt.Errorf("email from/to required")
	}
	return &emailSender{addr: addr, from: from, to: to}, nil
}

func (s *emailSender) Channel() string { return "email" }

func (s *emailSender) Send(ctx context.Context, snapshot Snapshot, document []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", s.from)
	fmt.Fprintf(&msg, "To: %s\r\n", s.to)
	fmt.Fprintf(&msg, "Subject: Invoice %s\r\n", snapshot.TrackingNumber)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.Write(document)

	if err := smtp.SendMail(s.addr, nil, s.from, []string{s.to}, msg.Bytes()); err != nil {
		return fmt.Errorf("emailing invoice %s: %w", snapshot.TrackingNumber, err)
	}
	return nil
}

type whatsappSender struct {
	url    string
	client *http.Client
}

// NewWhatsAppSender posts invoices to the configured WhatsApp gateway webhook.
func NewWhatsAppSender(url string) (Sender, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("whatsapp gateway url required")
	}
	return &whatsappSender{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (s *whatsappSender) Channel() string { return "whatsapp" }

func (s *whatsappSender) Send(ctx context.Context, snapshot Snapshot, document []byte) error {
	body, err := json.Marshal(map[string]string{
		"tracking_number": snapshot.TrackingNumber,
		"message":         string(document),
	})
	if err != nil {
		return fmt.Errorf("encoding whatsapp payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building whatsapp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("delivering invoice %s via whatsapp: %w", snapshot.TrackingNumber, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("whatsapp gateway returned %d for invoice %s", resp.StatusCode, snapshot.TrackingNumber)
	}
	return nil
}
