package email

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/creditai/pricing-service/internal/config"
	"github.com/creditai/pricing-service/internal/models"
)

// Sender handles sending notification emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// Enabled reports whether SMTP is configured. All sends are skipped by the
// callers when it is not.
func (s *Sender) Enabled() bool {
	return s.cfg.SMTPHost != "" && s.cfg.SMTPUsername != ""
}

// SendDecisionNotice mails the rate decision to the applicant
func (s *Sender) SendDecisionNotice(to string, decision *models.Decision) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Your Credit Application Rate Decision"

	body := fmt.Sprintf("Dear applicant %s,\n\n", decision.ApplicantID)
	body += fmt.Sprintf(
		"Your application for a loan of %.2f has been priced.\n"+
			"Offered annual rate: %.2f%%\n"+
			"Decision reference: %s\n"+
			"Priced at: %s\n",
		decision.LoanAmount, decision.FinalRate*100, decision.ID,
		decision.Timestamp.Format("2006-01-02 15:04:05"),
	)
	if len(decision.Reasoning) > 0 {
		body += "\nAssessment notes:\n"
		for _, reason := range decision.Reasoning {
			body += "  - " + reason + "\n"
		}
	}
	body += "\nBest regards,\nCreditAI Pricing"
	e.Text = []byte(body)

	return s.send(e, to)
}

// SendHighRiskAlert mails the ops mailbox about a decision that crossed the
// high-risk threshold. A missing ops address disables the alert.
func (s *Sender) SendHighRiskAlert(decision *models.Decision) error {
	to := s.cfg.OpsEmail
	if to == "" {
		return nil
	}

	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "High-Risk Pricing Decision"

	body := fmt.Sprintf(
		"Decision %s for applicant %s (%s) has default probability %.2f%%.\n"+
			"Loan amount: %.2f\n"+
			"Final rate: %.2f%%\n"+
			"Expected profit: %.2f\n"+
			"Priced at: %s\n",
		decision.ID, decision.ApplicantID, decision.Country,
		decision.DefaultProbability*100, decision.LoanAmount,
		decision.FinalRate*100, decision.ExpectedProfit,
		decision.Timestamp.Format("2006-01-02 15:04:05"),
	)
	e.Text = []byte(body)

	return s.send(e, to)
}

func (s *Sender) send(e *email.Email, to string) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
