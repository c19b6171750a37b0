package service

import (
	"fmt"

	"github.com/orghealth/ascent/config"
	"github.com/orghealth/ascent/internal/model"
	"github.com/rs/zerolog/log"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer sends transactional email through SendGrid dynamic templates. All
// sends are best-effort: callers log returned errors and move on, persisted
// state is never rolled back over a failed notification.
type Mailer interface {
	SendInvite(participant *model.Participant, assessment *model.Assessment, teamName string) error
	SendSubmitThanks(participant *model.Participant) error
	SendAdminAlert(adminEmail, memberName, teamName string, submitted, total int64, assessment *model.Assessment) error
	SendReceipt(email string, teamName string, amountMinor int64, currency string) error
}

type sendgridMailer struct {
	cfg *config.Config
}

func NewMailer(cfg *config.Config) Mailer {
	if cfg.SendGrid.APIKey == "" {
		log.Warn().Msg("SENDGRID_API_KEY is not set. Mailer will log instead of sending.")
	}
	return &sendgridMailer{cfg: cfg}
}

func (m *sendgridMailer) send(templateID, toName, toEmail string, data map[string]any) error {
	if m.cfg.SendGrid.APIKey == "" {
		log.Info().Str("template", templateID).Str("to", toEmail).Interface("data", data).Msg("Mailer disabled, skipping send")
		return nil
	}
	if templateID == "" {
		return fmt.Errorf("no template id configured for send to %s", toEmail)
	}

	msg := mail.NewV3Mail()
	msg.SetFrom(mail.NewEmail(m.cfg.SendGrid.FromName, m.cfg.SendGrid.FromEmail))
	msg.SetTemplateID(templateID)

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail(toName, toEmail))
	for k, v := range data {
		p.SetDynamicTemplateData(k, v)
	}
	msg.AddPersonalizations(p)

	client := sendgrid.NewSendClient(m.cfg.SendGrid.APIKey)
	resp, err := client.Send(msg)
	if err != nil {
		return fmt.Errorf("sendgrid send failed: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send rejected with status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

func (m *sendgridMailer) SendInvite(participant *model.Participant, assessment *model.Assessment, teamName string) error {
	surveyURL := fmt.Sprintf("%s/surveys/%s", m.cfg.App.BaseURL, participant.AccessToken)
	return m.send(m.cfg.SendGrid.TemplateInvite, participant.MemberName, participant.MemberEmail, map[string]any{
		"member_name": participant.MemberName,
		"team_name":   teamName,
		"survey_url":  surveyURL,
		"deadline":    assessment.Deadline.Format("January 2006"),
	})
}

func (m *sendgridMailer) SendSubmitThanks(participant *model.Participant) error {
	return m.send(m.cfg.SendGrid.TemplateSubmitThanks, participant.MemberName, participant.MemberEmail, map[string]any{
		"member_name": participant.MemberName,
	})
}

func (m *sendgridMailer) SendAdminAlert(adminEmail, memberName, teamName string, submitted, total int64, assessment *model.Assessment) error {
	return m.send(m.cfg.SendGrid.TemplateAdminAlert, "", adminEmail, map[string]any{
		"member_name": memberName,
		"team_name":   teamName,
		"submitted":   submitted,
		"total":       total,
		"deadline":    assessment.Deadline.Format("January 02, 2006"),
	})
}

func (m *sendgridMailer) SendReceipt(email string, teamName string, amountMinor int64, currency string) error {
	return m.send(m.cfg.SendGrid.TemplateReceipt, "", email, map[string]any{
		"team_name": teamName,
		"amount":    fmt.Sprintf("%.2f", float64(amountMinor)/100),
		"currency":  currency,
	})
}
