package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"gopkg.in/gomail.v2"

	"nfccard-backend/internal/config"
)

// Message is a rendered email ready for a transport.
type Message struct {
	FromName string
	From     string
	To       string
	ToName   string
	Subject  string
	Text     string
	HTML     string
}

// Mailer delivers messages over one transport.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
	// Verify checks the transport is reachable and authenticated.
	Verify(ctx context.Context) error
	Name() string
}

// NewMailer builds the transport selected by cfg.Provider.
func NewMailer(ctx context.Context, cfg config.EmailConfig) (Mailer, error) {
	switch cfg.Provider {
	case "", "smtp":
		return NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password), nil
	case "sendgrid":
		return NewSendGridMailer(cfg.SendGrid.APIKey), nil
	case "ses":
		return NewSESMailer(ctx, cfg.SES.Region, cfg.SES.Endpoint)
	default:
		return nil, fmt.Errorf("unknown email provider: %s", cfg.Provider)
	}
}

type smtpMailer struct {
	dialer *gomail.Dialer
}

func NewSMTPMailer(host string, port int, username, password string) Mailer {
	return &smtpMailer{dialer: gomail.NewDialer(host, port, username, password)}
}

func (m *smtpMailer) Name() string { return "smtp" }

func (m *smtpMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	gm := gomail.NewMessage()
	gm.SetAddressHeader("From", msg.From, msg.FromName)
	if msg.ToName != "" {
		gm.SetAddressHeader("To", msg.To, msg.ToName)
	} else {
		gm.SetHeader("To", msg.To)
	}
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		gm.AddAlternative("text/html", msg.HTML)
	}

	if err := m.dialer.DialAndSend(gm); err != nil {
		return fmt.Errorf("failed to send email via gomail: %w", err)
	}
	return nil
}

func (m *smtpMailer) Verify(ctx context.Context) error {
	sc, err := m.dialer.Dial()
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	return sc.Close()
}

type sendGridMailer struct {
	apiKey string
	client *sendgrid.Client
}

func NewSendGridMailer(apiKey string) Mailer {
	return &sendGridMailer{apiKey: apiKey, client: sendgrid.NewSendClient(apiKey)}
}

func (m *sendGridMailer) Name() string { return "sendgrid" }

func (m *sendGridMailer) Send(ctx context.Context, msg Message) error {
	from := sgmail.NewEmail(msg.FromName, msg.From)
	to := sgmail.NewEmail(msg.ToName, msg.To)
	email := sgmail.NewSingleEmail(from, msg.Subject, to, msg.Text, msg.HTML)

	resp, err := m.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to send email via sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid rejected email: status %d: %s", resp.StatusCode, strings.TrimSpace(resp.Body))
	}
	return nil
}

func (m *sendGridMailer) Verify(ctx context.Context) error {
	req := sendgrid.GetRequest(m.apiKey, "/v3/scopes", "https://api.sendgrid.com")
	req.Method = rest.Get
	resp, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("failed to reach sendgrid: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sendgrid credentials rejected: status %d", resp.StatusCode)
	}
	return nil
}

type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
	GetSendQuota(ctx context.Context, params *ses.GetSendQuotaInput, optFns ...func(*ses.Options)) (*ses.GetSendQuotaOutput, error)
}

type sesMailer struct {
	client sesAPI
}

func NewSESMailer(ctx context.Context, region, endpoint string) (Mailer, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	client := ses.NewFromConfig(cfg, func(o *ses.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return &sesMailer{client: client}, nil
}

func (m *sesMailer) Name() string { return "ses" }

func (m *sesMailer) Send(ctx context.Context, msg Message) error {
	source := msg.From
	if msg.FromName != "" {
		source = fmt.Sprintf("%q <%s>", msg.FromName, msg.From)
	}
	body := &sestypes.Body{
		Text: &sestypes.Content{Data: aws.String(msg.Text), Charset: aws.String("UTF-8")},
	}
	if msg.HTML != "" {
		body.Html = &sestypes.Content{Data: aws.String(msg.HTML), Charset: aws.String("UTF-8")}
	}

	_, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(source),
		Destination: &sestypes.Destination{ToAddresses: []string{msg.To}},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
			Body:    body,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send email via ses: %w", err)
	}
	return nil
}

func (m *sesMailer) Verify(ctx context.Context) error {
	if _, err := m.client.GetSendQuota(ctx, &ses.GetSendQuotaInput{}); err != nil {
		return fmt.Errorf("failed to reach ses: %w", err)
	}
	return nil
}
