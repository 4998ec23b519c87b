package services

import (
	"fmt"
	"html"
	"strings"
	"sync"
	"syntech_importer/structs"

	"github.com/MonkyMars/gecho"
	"github.com/resend/resend-go/v3"
)

var (
	emailClient *resend.Client
	clientOnce  = sync.Once{}
)

// EmailService mails import run reports to the catalog operators. It is a
// no-op when no API key or recipients are configured.
type EmailService struct {
	logger *gecho.Logger
	cfg    *structs.Config
	client *resend.Client
}

func NewEmailService(logger *gecho.Logger, cfg *structs.Config) *EmailService {
	var client *resend.Client
	if cfg.Email.ApiKey != "" {
		client = getEmailClient(cfg.Email.ApiKey)
	}

	return &EmailService{
		logger: logger,
		cfg:    cfg,
		client: client,
	}
}

// recipientsFor resolves the report recipients for one run. A non-empty
// override from the trigger request applies to that run only and never
// replaces the configured list.
func (es *EmailService) recipientsFor(override []string) []string {
	if len(override) > 0 {
		return override
	}
	return es.cfg.Email.Recipients
}

func getEmailClient(apiKey string) *resend.Client {
	clientOnce.Do(func() {
		emailClient = resend.NewClient(apiKey)
	})
	return emailClient
}

// SendRunReport renders and sends the run summary. Failures are logged and
// swallowed: reporting must never fail an import.
func (es *EmailService) SendRunReport(summary *structs.RunSummary, notify []string) {
	recipients := es.recipientsFor(notify)
	if es.client == nil || len(recipients) == 0 {
		return
	}

	subject := fmt.Sprintf("Syntech import: %d created, %d updated, %d failed", summary.Created, summary.Updated, summary.Failed)
	if summary.FatalError != "" {
		subject = "Syntech import failed"
	}

	params := &resend.SendEmailRequest{
		From:    es.cfg.Email.From,
		To:      recipients,
		Html:    renderRunReport(summary),
		Subject: subject,
	}

	if _, err := es.client.Emails.Send(params); err != nil {
		es.logger.Error("Failed to send run report email",
			gecho.Field("error", err),
			gecho.Field("to", recipients),
		)
		return
	}

	es.logger.Info("Run report email sent", gecho.Field("to", recipients))
}

func renderRunReport(summary *structs.RunSummary) string {
	var b strings.Builder

	b.WriteString(`<!DOCTYPE html><html><head><meta charset="UTF-8"></head><body>`)
	b.WriteString("<h2>Syntech import run</h2>")

	if summary.FatalError != "" {
		fmt.Fprintf(&b, "<p><strong>Run aborted:</strong> %s</p>", html.EscapeString(summary.FatalError))
	}

	b.WriteString("<table border=\"1\" cellpadding=\"6\" cellspacing=\"0\">")
	fmt.Fprintf(&b, "<tr><td>Records seen</td><td>%d</td></tr>", summary.RecordsSeen)
	fmt.Fprintf(&b, "<tr><td>Created</td><td>%d</td></tr>", summary.Created)
	fmt.Fprintf(&b, "<tr><td>Updated</td><td>%d</td></tr>", summary.Updated)
	fmt.Fprintf(&b, "<tr><td>Skipped</td><td>%d</td></tr>", summary.Skipped)
	fmt.Fprintf(&b, "<tr><td>Failed</td><td>%d</td></tr>", summary.Failed)
	fmt.Fprintf(&b, "<tr><td>Media errors</td><td>%d</td></tr>", summary.MediaErrors)
	fmt.Fprintf(&b, "<tr><td>Duration</td><td>%s</td></tr>", summary.Duration)
	b.WriteString("</table>")

	// SKUs and reasons carry feed-derived text and must not become markup
	if len(summary.Failures) > 0 {
		b.WriteString("<h3>Failures</h3><ul>")
		for _, f := range summary.Failures {
			fmt.Fprintf(&b, "<li><strong>%s</strong> (%s): %s</li>", html.EscapeString(f.SKU), f.Outcome, html.EscapeString(f.Reason))
		}
		b.WriteString("</ul>")
	}

	if len(summary.Warnings) > 0 {
		b.WriteString("<h3>Warnings</h3><ul>")
		for _, w := range summary.Warnings {
			fmt.Fprintf(&b, "<li><strong>%s</strong>: %s</li>", html.EscapeString(w.SKU), html.EscapeString(w.Reason))
		}
		b.WriteString("</ul>")
	}

	b.WriteString("</body></html>")

	return b.String()
}
