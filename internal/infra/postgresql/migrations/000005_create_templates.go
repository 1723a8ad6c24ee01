package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/sargasolutions/campaign-engine/internal/repository"
	"github.com/sargasolutions/campaign-engine/internal/template"
	"gorm.io/gorm"
)

func createTemplatesTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000005_create_templates",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.TemplateModel{}); err != nil {
				return err
			}

			for name, html := range seedTemplates {
				model := repository.TemplateModel{Name: name, HTML: html}
				if err := tx.Where("name = ?", name).FirstOrCreate(&model).Error; err != nil {
					return err
				}
			}

			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.TemplateModel{})
		},
	}
}

var seedTemplates = map[string]string{
	template.NewsletterBroadcast: `<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background:#f4f4f7;font-family:Arial,sans-serif;">
  <table width="100%" cellpadding="0" cellspacing="0">
    <tr><td align="center" style="padding:24px;">
      <table width="600" cellpadding="0" cellspacing="0" style="background:#ffffff;border-radius:8px;">
        <tr><td style="padding:32px;">
          <p style="color:#6b7280;font-size:12px;letter-spacing:2px;">{{NEWSLETTER_BADGE}}</p>
          <h1 style="margin:8px 0;color:#111827;">{{NEWSLETTER_TITLE}}</h1>
          <p style="color:#6b7280;">{{NEWSLETTER_SUBTITLE}}</p>
          <div style="color:#374151;line-height:1.6;">{{NEWSLETTER_CONTENT}}</div>
          {{#FEATURED_TITLE}}
          <div style="margin-top:24px;padding:16px;background:#f9fafb;border-radius:6px;">
            <h2 style="margin:0 0 8px;color:#111827;">{{FEATURED_TITLE}}</h2>
            <div style="color:#374151;">{{FEATURED_CONTENT}}</div>
          </div>
          {{/FEATURED_TITLE}}
          {{#SHOW_QUICK_UPDATES}}
          <div style="margin-top:24px;">
            <h3 style="color:#111827;">Quick Updates</h3>
            <p style="color:#374151;"><strong>Technology:</strong> {{TECH_UPDATE}}</p>
            <p style="color:#374151;"><strong>Operations:</strong> {{OPERATIONS_UPDATE}}</p>
            <p style="color:#374151;"><strong>Partnerships:</strong> {{PARTNERSHIPS_UPDATE}}</p>
          </div>
          {{/SHOW_QUICK_UPDATES}}
          {{#CTA_TEXT}}
          <div style="margin-top:24px;text-align:center;">
            <a href="{{CTA_LINK}}" style="display:inline-block;padding:12px 24px;background:#2563eb;color:#ffffff;text-decoration:none;border-radius:6px;">{{CTA_TEXT}}</a>
          </div>
          {{/CTA_TEXT}}
          <p style="margin-top:32px;color:#9ca3af;font-size:12px;">
            Sent to {{EMAIL}}. You are receiving this because you subscribed to our newsletter.
          </p>
        </td></tr>
      </table>
    </td></tr>
  </table>
</body>
</html>`,

	template.NewsletterWelcome: `<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background:#f4f4f7;font-family:Arial,sans-serif;">
  <table width="100%" cellpadding="0" cellspacing="0">
    <tr><td align="center" style="padding:24px;">
      <table width="600" cellpadding="0" cellspacing="0" style="background:#ffffff;border-radius:8px;">
        <tr><td style="padding:32px;">
          <h1 style="color:#111827;">Welcome aboard, {{SUBSCRIBER_NAME}}!</h1>
          <p style="color:#374151;line-height:1.6;">
            Thanks for subscribing. You will now receive our newsletter with product
            news, technology updates, and partnership announcements.
          </p>
          <p style="margin-top:32px;color:#9ca3af;font-size:12px;">
            This confirmation was sent to {{EMAIL}}.
          </p>
        </td></tr>
      </table>
    </td></tr>
  </table>
</body>
</html>`,

	template.ContactConfirmation: `<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background:#f4f4f7;font-family:Arial,sans-serif;">
  <table width="100%" cellpadding="0" cellspacing="0">
    <tr><td align="center" style="padding:24px;">
      <table width="600" cellpadding="0" cellspacing="0" style="background:#ffffff;border-radius:8px;">
        <tr><td style="padding:32px;">
          <h1 style="color:#111827;">We received your message, {{NAME}}</h1>
          <p style="color:#374151;line-height:1.6;">
            Thanks for reaching out. Our team will get back to you shortly.
          </p>
          <div style="margin-top:24px;padding:16px;background:#f9fafb;border-radius:6px;">
            <p style="color:#374151;"><strong>Interest:</strong> {{INTEREST}}</p>
            <p style="color:#374151;"><strong>Message:</strong> {{MESSAGE}}</p>
            <p style="color:#374151;"><strong>Submitted:</strong> {{SUBMITTED}}</p>
          </div>
          <p style="margin-top:32px;color:#9ca3af;font-size:12px;">
            This confirmation was sent to {{EMAIL}}.
          </p>
        </td></tr>
      </table>
    </td></tr>
  </table>
</body>
</html>`,

	template.UnsubscribeConfirmation: `<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background:#f4f4f7;font-family:Arial,sans-serif;">
  <table width="100%" cellpadding="0" cellspacing="0">
    <tr><td align="center" style="padding:24px;">
      <table width="600" cellpadding="0" cellspacing="0" style="background:#ffffff;border-radius:8px;">
        <tr><td style="padding:32px;">
          <h1 style="color:#111827;">You have been unsubscribed</h1>
          <p style="color:#374151;line-height:1.6;">
            {{EMAIL}} will no longer receive our newsletter. If this was a mistake,
            you can subscribe again at any time.
          </p>
        </td></tr>
      </table>
    </td></tr>
  </table>
</body>
</html>`,
}
