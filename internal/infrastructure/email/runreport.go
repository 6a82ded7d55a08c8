package email

import (
	"context"
	"fmt"
	"html"
	"strings"

	"gopkg.in/gomail.v2"

	"cmms/internal/application/preventive/dto"
	sharedConfig "cmms/internal/shared/config"
	"cmms/internal/shared/logger"
)

// maxReportLogLines caps how much of the operation log goes into a report.
const maxReportLogLines = 50

type messageSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// RunReportMailer emails a summary of automatic generation runs that failed
// or recorded errors to the maintenance planners.
type RunReportMailer struct {
	sender     messageSender
	from       string
	fromName   string
	recipients []string
	logger     logger.Interface
}

func NewRunReportMailer(cfg sharedConfig.EmailConfig, logger logger.Interface) *RunReportMailer {
	return &RunReportMailer{
		sender:     gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:       cfg.FromAddress,
		fromName:   cfg.FromName,
		recipients: cfg.ReportRecipients,
		logger:     logger,
	}
}

func (m *RunReportMailer) NotifyRun(ctx context.Context, result *dto.GenerationResult) error {
	if len(m.recipients) == 0 {
		m.logger.Debugw("no report recipients configured, skipping run report", "run_id", result.RunID)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, m.fromName)
	msg.SetHeader("To", m.recipients...)
	msg.SetHeader("Subject", reportSubject(result))
	msg.SetBody("text/plain", reportPlainBody(result))
	msg.AddAlternative("text/html", reportHTMLBody(result))

	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send run report: %w", err)
	}
	m.logger.Infow("run report sent",
		"run_id", result.RunID,
		"recipients", len(m.recipients),
	)
	return nil
}

func reportSubject(r *dto.GenerationResult) string {
	if r.Failed() {
		return fmt.Sprintf("[CMMS] Preventive generation failed (%s)", r.Trigger)
	}
	return fmt.Sprintf("[CMMS] Preventive generation finished with %d error(s)", r.ErrorCount)
}

func reportLog(r *dto.GenerationResult) []dto.LogEntry {
	entries := make([]dto.LogEntry, 0, len(r.OperationLog))
	for _, e := range r.OperationLog {
		if e.Level != dto.LogInfo {
			entries = append(entries, e)
		}
	}
	if len(entries) > maxReportLogLines {
		entries = entries[:maxReportLogLines]
	}
	return entries
}

func reportPlainBody(r *dto.GenerationResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s (%s) %s\n", r.RunID, r.Trigger, r.State)
	fmt.Fprintf(&b, "Started:  %s\n", r.StartedAt.UTC().Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "Duration: %s\n\n", r.Duration())
	fmt.Fprintf(&b, "Plans processed: %d of %d\n", r.PlansProcessed, r.PlansConsidered)
	fmt.Fprintf(&b, "Created: %d  Skipped: %d  Errors: %d\n", r.CreatedCount, r.SkippedCount, r.ErrorCount)
	if r.Error != "" {
		fmt.Fprintf(&b, "\nFailure: %s\n", r.Error)
	}
	if entries := reportLog(r); len(entries) > 0 {
		b.WriteString("\nWarnings and errors:\n")
		for _, e := range entries {
			b.WriteString("  ")
			b.WriteString(e.String())
			b.WriteString("\n")
		}
	}
	return b.String()
}

func reportHTMLBody(r *dto.GenerationResult) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	fmt.Fprintf(&b, "<h2>Preventive generation %s</h2>", html.EscapeString(string(r.State)))
	fmt.Fprintf(&b, "<p>Run <code>%s</code>, trigger <b>%s</b>, duration %s.</p>",
		html.EscapeString(r.RunID), html.EscapeString(string(r.Trigger)), r.Duration())
	fmt.Fprintf(&b, "<table><tr><td>Plans processed</td><td>%d / %d</td></tr>", r.PlansProcessed, r.PlansConsidered)
	fmt.Fprintf(&b, "<tr><td>Created</td><td>%d</td></tr>", r.CreatedCount)
	fmt.Fprintf(&b, "<tr><td>Skipped</td><td>%d</td></tr>", r.SkippedCount)
	fmt.Fprintf(&b, "<tr><td>Errors</td><td>%d</td></tr></table>", r.ErrorCount)
	if r.Error != "" {
		fmt.Fprintf(&b, "<p><b>Failure:</b> %s</p>", html.EscapeString(r.Error))
	}
	if entries := reportLog(r); len(entries) > 0 {
		b.WriteString("<ul>")
		for _, e := range entries {
			fmt.Fprintf(&b, "<li>%s</li>", html.EscapeString(e.String()))
		}
		b.WriteString("</ul>")
	}
	b.WriteString("</body></html>")
	return b.String()
}
