// Package mail holds the closed set of email templates. Template selection
// is an enum with an exhaustive switch, so an unrecognized identifier falls
// back to the custom template at compile-checked points rather than through
// a runtime map lookup.
package mail

import (
	"fmt"
	"html"
	"strings"
)

type TemplateID int

const (
	TemplateCustom TemplateID = iota
	TemplatePurchase
	TemplateAnnouncement
)

// Resolve maps a client-supplied template type to a TemplateID. Unknown
// values resolve to TemplateCustom.
func Resolve(templateType string) TemplateID {
	switch strings.ToLower(strings.TrimSpace(templateType)) {
	case "purchase":
		return TemplatePurchase
	case "announcement":
		return TemplateAnnouncement
	default:
		return TemplateCustom
	}
}

type Data struct {
	PlanName   string
	FolderName string
	FolderLink string
	Subject    string
	Message    string
}

func Render(id TemplateID, d Data) (subject, body string) {
	switch id {
	case TemplatePurchase:
		subject = fmt.Sprintf("Your %s is ready", d.PlanName)
		body = fmt.Sprintf(`<div style="font-family:Arial,sans-serif;max-width:600px">
<h2>Thank you for your purchase!</h2>
<p>Your <strong>%s</strong> is ready. The folder <strong>%s</strong> has been shared with you.</p>
<p><a href="%s" style="background:#2563eb;color:#fff;padding:12px 24px;border-radius:6px;text-decoration:none">Open your kit</a></p>
<p>If the button does not work, copy this link into your browser:<br>%s</p>
</div>`,
			html.EscapeString(d.PlanName),
			html.EscapeString(d.FolderName),
			d.FolderLink,
			html.EscapeString(d.FolderLink))
	case TemplateAnnouncement:
		subject = d.Subject
		if subject == "" {
			subject = "New from the Interview Prep team"
		}
		body = fmt.Sprintf(`<div style="font-family:Arial,sans-serif;max-width:600px">
<h2>%s</h2>
<p>%s</p>
<p style="color:#6b7280;font-size:12px">You received this because you purchased one of our interview preparation kits.</p>
</div>`,
			html.EscapeString(subject), htmlParagraphs(d.Message))
	case TemplateCustom:
		fallthrough
	default:
		subject = d.Subject
		if subject == "" {
			subject = "A message from the Interview Prep team"
		}
		body = fmt.Sprintf(`<div style="font-family:Arial,sans-serif;max-width:600px"><p>%s</p></div>`,
			htmlParagraphs(d.Message))
	}
	return subject, body
}

func htmlParagraphs(message string) string {
	escaped := html.EscapeString(message)
	return strings.ReplaceAll(escaped, "\n", "<br>")
}
