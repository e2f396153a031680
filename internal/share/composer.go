package share

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/ngprojetos/inscricao-eventos/internal/models"
)

// WhatsAppEndpoint is the web intent that opens WhatsApp with a prefilled message
const WhatsAppEndpoint = "https://api.whatsapp.com/send"

// Composer builds the invitation texts and share links of an event
type Composer struct {
	title    string
	whatsapp *template.Template
	email    *template.Template
}

type templateData struct {
	PageURL string
}

// NewComposer parses the share templates of the event
func NewComposer(cfg models.Share) (*Composer, error) {
	whatsapp, err := template.New("whatsapp").Option("missingkey=error").Parse(cfg.WhatsAppTemplate)
	if err != nil {
		return nil, fmt.Errorf("invalid whatsapp template: %w", err)
	}
	email, err := template.New("email").Option("missingkey=error").Parse(cfg.EmailTemplate)
	if err != nil {
		return nil, fmt.Errorf("invalid email template: %w", err)
	}
	return &Composer{title: cfg.Title, whatsapp: whatsapp, email: email}, nil
}

func render(tmpl *template.Template, pageURL string) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, templateData{PageURL: pageURL}); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// WhatsAppText renders the WhatsApp invitation for pageURL
func (c *Composer) WhatsAppText(pageURL string) (string, error) {
	return render(c.whatsapp, pageURL)
}

// WhatsAppLink returns the web-intent URL carrying the invitation for pageURL
func (c *Composer) WhatsAppLink(pageURL string) (string, error) {
	text, err := c.WhatsAppText(pageURL)
	if err != nil {
		return "", err
	}
	return WhatsAppEndpoint + "?text=" + EncodeURIComponent(text), nil
}

// DefaultEmailBody renders the email invitation for pageURL
func (c *Composer) DefaultEmailBody(pageURL string) (string, error) {
	return render(c.email, pageURL)
}

// Subject is the email subject line
func (c *Composer) Subject() string {
	return "Convite: " + c.title
}

// MailtoLink returns a mailto URI with no recipient, the event subject and body
func (c *Composer) MailtoLink(body string) string {
	return "mailto:?subject=" + EncodeURIComponent(c.Subject()) + "&body=" + EncodeURIComponent(body)
}

// EncodeURIComponent percent-encodes s as UTF-8, leaving only
// A-Z a-z 0-9 - _ . ! ~ * ' ( ) unescaped. Spaces become %20.
func EncodeURIComponent(s string) string {
	const hex = "0123456789ABCDEF"

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if isUnreserved(ch) {
			b.WriteByte(ch)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[ch>>4])
		b.WriteByte(hex[ch&0x0f])
	}
	return b.String()
}

func isUnreserved(ch byte) bool {
	switch {
	case ch >= 'A' && ch <= 'Z', ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", ch) >= 0
}
