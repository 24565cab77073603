package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"nfccard-backend/internal/domain"
	"nfccard-backend/internal/logger"
)

var adminEmailTemplate = template.Must(template.New("admin").Funcs(template.FuncMap{"join": strings.Join}).Parse(`
<h2>New Application Submitted</h2>
<p><strong>Application ID:</strong> {{.ID}}</p>
<p><strong>Full Name:</strong> {{.FullName}}</p>
<p><strong>Business Name:</strong> {{.BusinessName}}</p>
<p><strong>Job Title:</strong> {{.JobTitle}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Phone:</strong> {{.Phone}}</p>
<p><strong>Address:</strong> {{.Address}}</p>
<p><strong>Selected Plan:</strong> {{.SelectedPlan}}</p>
<p><strong>Price:</strong> ₹{{printf "%.2f" .Price}}</p>
<p><strong>Application Date:</strong> {{.ApplicationDate.Format "2006-01-02 15:04 MST"}}</p>
<p><strong>Bio:</strong> {{.Bio}}</p>
<p><strong>Sections Include:</strong> {{join .SectionsInclude ", "}}</p>
{{- if .Website}}<p><strong>Website:</strong> {{.Website}}</p>{{end}}
{{- if .AdditionalNotes}}<p><strong>Notes:</strong> {{.AdditionalNotes}}</p>{{end}}
`))

var confirmationEmailTemplate = template.Must(template.New("confirmation").Parse(`
<p>Hi {{.FullName}},</p>
<p>Thank you for applying for the NFC Digital Business Card.</p>
<p>Our team has received your information and will contact you shortly.</p>
<p>- Team NFC Card</p>
`))

type emailService struct {
	mailer         Mailer
	from           string
	fromName       string
	adminRecipient string
}

func NewEmailService(mailer Mailer, from, fromName, adminRecipient string) EmailService {
	return &emailService{
		mailer:         mailer,
		from:           from,
		fromName:       fromName,
		adminRecipient: adminRecipient,
	}
}

// SendApplicationEmail sends the full application to the administrator.
func (s *emailService) SendApplicationEmail(ctx context.Context, app *domain.Application) error {
	html, err := render(adminEmailTemplate, app)
	if err != nil {
		return err
	}

	var text strings.Builder
	fmt.Fprintf(&text, "New application #%d\n\n", app.ID)
	fmt.Fprintf(&text, "Full Name: %s\nBusiness Name: %s\nJob Title: %s\n", app.FullName, app.BusinessName, app.JobTitle)
	fmt.Fprintf(&text, "Email: %s\nPhone: %s\nAddress: %s\n", app.Email, app.Phone, app.Address)
	fmt.Fprintf(&text, "Selected Plan: %s\nPrice: %.2f\n", app.SelectedPlan, app.Price)
	fmt.Fprintf(&text, "Application Date: %s\n", app.ApplicationDate.Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(&text, "Bio: %s\nSections Include: %s\n", app.Bio, strings.Join(app.SectionsInclude, ", "))

	return s.send(ctx, "application", Message{
		FromName: "NFC Card Admin",
		From:     s.from,
		To:       s.adminRecipient,
		Subject:  fmt.Sprintf("New Application from %s", app.FullName),
		Text:     text.String(),
		HTML:     html,
	})
}

// SendConfirmationEmail acknowledges the submission to the applicant.
func (s *emailService) SendConfirmationEmail(ctx context.Context, app *domain.Application) error {
	html, err := render(confirmationEmailTemplate, app)
	if err != nil {
		return err
	}
	text := fmt.Sprintf("Hi %s,\n\nThank you for applying for the NFC Digital Business Card.\n"+
		"Our team has received your information and will contact you shortly.\n\n- Team NFC Card", app.FullName)

	return s.send(ctx, "confirmation", Message{
		FromName: s.fromName,
		From:     s.from,
		To:       app.Email,
		ToName:   app.FullName,
		Subject:  fmt.Sprintf("Thanks for your application, %s!", app.FullName),
		Text:     text,
		HTML:     html,
	})
}

func (s *emailService) VerifyTransport(ctx context.Context) error {
	logger.ExternalServiceCall(s.mailer.Name(), "verify")
	err := s.mailer.Verify(ctx)
	logger.ExternalServiceResult(s.mailer.Name(), "verify", err)
	return err
}

func (s *emailService) send(ctx context.Context, kind string, msg Message) error {
	logger.ExternalServiceCall(s.mailer.Name(), "send", "kind", kind, "to", msg.To)
	err := s.mailer.Send(ctx, msg)
	logger.ExternalServiceResult(s.mailer.Name(), "send", err, "kind", kind, "to", msg.To)
	return err
}

func render(t *template.Template, app *domain.Application) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, app); err != nil {
		return "", fmt.Errorf("failed to render %s email: %w", t.Name(), err)
	}
	return buf.String(), nil
}
