package models

// Event is the configurable copy of the event page. Nothing about the event is
// hardcoded in templates or handlers.
type Event struct {
	Title         string   `yaml:"title"`
	Subtitle      string   `yaml:"subtitle"`
	Heading       string   `yaml:"heading"`
	Description   string   `yaml:"description"`
	Date          string   `yaml:"date"`
	Time          string   `yaml:"time"`
	Venue         string   `yaml:"venue"`
	Address       string   `yaml:"address"`
	Organization  string   `yaml:"organization"`
	LGPDUpdatedAt string   `yaml:"lgpd_updated_at"`
	Cities        []string `yaml:"cities"`
	Share         Share    `yaml:"share"`
}

// Share holds the invitation copy. Templates are text/template sources
// rendered with the live page URL as {{.PageURL}}.
type Share struct {
	Title            string `yaml:"title"`
	WhatsAppTemplate string `yaml:"whatsapp_template"`
	EmailTemplate    string `yaml:"email_template"`
}
