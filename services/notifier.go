package services

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"research-tracker-api/config"
	"research-tracker-api/levels"
	"research-tracker-api/models"
)

// Notifier tells a researcher about an applied promotion.
type Notifier interface {
	NotifyPromotion(ctx context.Context, user models.User, from, to levels.Level) error
}

// DefaultNotifier mails promotions when SMTP is configured and
// NOTIFY_PROMOTIONS is on.
func DefaultNotifier() Notifier {
	cfg := config.AppConfig
	if cfg != nil && cfg.NotifyPromotions && cfg.SMTPHost != "" && cfg.SMTPFrom != "" {
		return NewMailNotifier(config.SendMail)
	}
	return NopNotifier{}
}

type MailNotifier struct {
	send func(to []string, subject, html string) error
}

func NewMailNotifier(send func(to []string, subject, html string) error) *MailNotifier {
	if send == nil {
		send = config.SendMail
	}
	return &MailNotifier{send: send}
}

func (n *MailNotifier) NotifyPromotion(ctx context.Context, user models.User, from, to levels.Level) error {
	if strings.TrimSpace(user.Email) == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	def := levels.Describe(to)
	subject := fmt.Sprintf("You are now a %s", def.DisplayName)
	return n.send([]string{user.Email}, subject, promotionEmailHTML(user.Name, levels.Describe(from), def))
}

func promotionEmailHTML(name string, from, to levels.Definition) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family:Arial,sans-serif;font-size:15px;color:#111827;">`)
	b.WriteString(`<p style="margin:0 0 18px 0;line-height:1.7;">Hi `)
	b.WriteString(template.HTMLEscapeString(strings.TrimSpace(name)))
	b.WriteString(`,</p>`)
	b.WriteString(`<p style="margin:0 0 18px 0;line-height:1.7;">Your researcher level changed from <strong>`)
	b.WriteString(template.HTMLEscapeString(from.DisplayName))
	b.WriteString(`</strong> to <strong>`)
	b.WriteString(template.HTMLEscapeString(to.DisplayName))
	b.WriteString(`</strong>.</p>`)
	if next, ok := levels.Next(to.Level); ok {
		b.WriteString(`<p style="margin:0;line-height:1.7;color:#6b7280;">Next: `)
		b.WriteString(template.HTMLEscapeString(next.DisplayName))
		b.WriteString(` (`)
		b.WriteString(template.HTMLEscapeString(next.Description))
		b.WriteString(`)</p>`)
	}
	b.WriteString(`</div>`)
	return b.String()
}

type NopNotifier struct{}

func (NopNotifier) NotifyPromotion(context.Context, models.User, levels.Level, levels.Level) error {
	return nil
}
