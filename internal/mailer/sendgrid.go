package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"wellness-planner/internal/logger"
)

// Client sends transactional email.
type Client interface {
	Send(ctx context.Context, msg Message) (*Result, error)
}

// Config configures the SendGrid client.
type Config struct {
	APIKey          string
	BaseURL         string
	DefaultFrom     string
	DefaultFromName string
	Timeout         time.Duration
}

type Address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type Attachment struct {
	Filename string
	MIMEType string
	Content  []byte
}

// Message is a single email. Each address in To receives the same message.
type Message struct {
	From        Address
	To          []Address
	Subject     string
	Text        string
	HTML        string
	Categories  []string
	Attachments []Attachment
}

type Result struct {
	StatusCode int
	MessageID  string
}

// New creates a SendGrid client.
func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("SENDGRID_API_KEY environment variable not set")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.sendgrid.com"
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &sendGridClient{
		log:        log.With("client", "SendGridClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type sendGridClient struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

// --- SendGrid mail send wire types ---
type mailSendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             Address           `json:"from"`
	Subject          string            `json:"subject"`
	Content          []mailContent     `json:"content"`
	Categories       []string          `json:"categories,omitempty"`
	Attachments      []sgAttachment    `json:"attachments,omitempty"`
}

type personalization struct {
	To []Address `json:"to"`
}

type mailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sgAttachment struct {
	Content     string `json:"content"`
	Type        string `json:"type,omitempty"`
	Filename    string `json:"filename"`
	Disposition string `json:"disposition,omitempty"`
}

// HTTPError is a non-2xx answer from SendGrid.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = "<empty body>"
	}
	if len(msg) > 4000 {
		msg = msg[:4000] + "..."
	}
	return fmt.Sprintf("sendgrid http %d: %s", e.StatusCode, msg)
}

// Send delivers msg in a single attempt.
func (c *sendGridClient) Send(ctx context.Context, msg Message) (*Result, error) {
	if strings.TrimSpace(msg.From.Email) == "" {
		msg.From.Email = c.cfg.DefaultFrom
		if strings.TrimSpace(msg.From.Name) == "" {
			msg.From.Name = c.cfg.DefaultFromName
		}
	}
	if msg.From.Email == "" {
		return nil, fmt.Errorf("sendgrid: From.Email required (or set EMAIL_FROM)")
	}
	if len(msg.To) == 0 {
		return nil, fmt.Errorf("sendgrid: To required")
	}
	if strings.TrimSpace(msg.Subject) == "" {
		return nil, fmt.Errorf("sendgrid: Subject required")
	}

	var contents []mailContent
	if t := strings.TrimSpace(msg.Text); t != "" {
		contents = append(contents, mailContent{Type: "text/plain", Value: t})
	}
	if h := strings.TrimSpace(msg.HTML); h != "" {
		contents = append(contents, mailContent{Type: "text/html", Value: h})
	}
	if len(contents) == 0 {
		return nil, fmt.Errorf("sendgrid: Text or HTML content required")
	}

	atts := make([]sgAttachment, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		if strings.TrimSpace(a.Filename) == "" || len(a.Content) == 0 {
			return nil, fmt.Errorf("sendgrid: attachment %q missing filename or content", a.Filename)
		}
		atts = append(atts, sgAttachment{
			Content:     base64.StdEncoding.EncodeToString(a.Content),
			Type:        a.MIMEType,
			Filename:    a.Filename,
			Disposition: "attachment",
		})
	}

	wire := mailSendRequest{
		Personalizations: []personalization{{To: msg.To}},
		From:             msg.From,
		Subject:          msg.Subject,
		Content:          contents,
		Categories:       msg.Categories,
		Attachments:      atts,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(wire); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v3/mail/send", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sendgrid request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	res := &Result{
		StatusCode: resp.StatusCode,
		MessageID:  strings.TrimSpace(resp.Header.Get("X-Message-Id")),
	}
	c.log.Debug("Email accepted", "status", res.StatusCode, "message_id", res.MessageID)
	return res, nil
}
