package services

import (
	"testing"

	"syntech_importer/structs"

	"github.com/stretchr/testify/assert"
)

func newTestEmailService(recipients []string) *EmailService {
	cfg := testConfig("")
	cfg.Email = &structs.EmailConfig{
		From:       "imports@example.com",
		Recipients: recipients,
	}
	return NewEmailService(testLogger(), cfg)
}

func TestRecipientOverrideAppliesPerRun(t *testing.T) {
	es := newTestEmailService([]string{"ops@example.com"})

	assert.Equal(t, []string{"ops@example.com"}, es.recipientsFor(nil))
	assert.Equal(t, []string{"once@example.com"}, es.recipientsFor([]string{"once@example.com"}))
	assert.Equal(t, []string{"ops@example.com"}, es.recipientsFor(nil),
		"an override never sticks to later runs")
}

func TestRunReportEscapesFeedDerivedText(t *testing.T) {
	summary := &structs.RunSummary{
		Failed: 1,
		Failures: []structs.RecordFailure{
			{SKU: `SYN<img src=x onerror=alert(1)>`, Outcome: structs.OutcomeFailed, Reason: `bad <b>data</b>`},
		},
		Warnings: []structs.RecordFailure{
			{SKU: "SYN-2", Outcome: structs.OutcomeUpdated, Reason: `<script>x()</script>`},
		},
		FatalError: `fetch failed: <iframe>`,
	}

	out := renderRunReport(summary)

	assert.NotContains(t, out, "<img")
	assert.Contains(t, out, "&lt;img")
	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "<iframe>")
	assert.Contains(t, out, "&lt;iframe&gt;")
}
