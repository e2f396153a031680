package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/ngprojetos/inscricao-eventos/internal/logging"
	"github.com/ngprojetos/inscricao-eventos/internal/models"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed event.yaml
var defaultEvent []byte

// Event is the event copy loaded at startup
var Event *models.Event

// LoadEvent reads the event copy from EventConfigPath, or from the embedded
// default when no path is configured.
func LoadEvent() error {
	data := defaultEvent
	source := "embedded"

	if AppConfig != nil && AppConfig.EventConfigPath != "" {
		raw, err := os.ReadFile(AppConfig.EventConfigPath)
		if err != nil {
			return fmt.Errorf("failed to read event config %s: %w", AppConfig.EventConfigPath, err)
		}
		data = raw
		source = AppConfig.EventConfigPath
	}

	event, err := ParseEvent(data)
	if err != nil {
		return err
	}

	Event = event
	logging.Logger.Info("event configuration loaded",
		zap.String("source", source),
		zap.String("title", event.Title),
		zap.Int("cities", len(event.Cities)))
	return nil
}

// ParseEvent decodes and validates an event document
func ParseEvent(data []byte) (*models.Event, error) {
	var event models.Event
	if err := yaml.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidEvent, err)
	}
	if err := validateEvent(&event); err != nil {
		return nil, err
	}
	return &event, nil
}

func validateEvent(event *models.Event) error {
	if strings.TrimSpace(event.Title) == "" {
		return fmt.Errorf("%w: title is required", models.ErrInvalidEvent)
	}
	if strings.TrimSpace(event.Share.Title) == "" {
		return fmt.Errorf("%w: share.title is required", models.ErrInvalidEvent)
	}

	templates := map[string]string{
		"share.whatsapp_template": event.Share.WhatsAppTemplate,
		"share.email_template":    event.Share.EmailTemplate,
	}
	for name, source := range templates {
		if strings.TrimSpace(source) == "" {
			return fmt.Errorf("%w: %s is required", models.ErrInvalidEvent, name)
		}
		if _, err := template.New(name).Option("missingkey=error").Parse(source); err != nil {
			return fmt.Errorf("%w: %s: %v", models.ErrInvalidEvent, name, err)
		}
	}

	for i, city := range event.Cities {
		if strings.TrimSpace(city) == "" {
			return fmt.Errorf("%w: cities[%d] is empty", models.ErrInvalidEvent, i)
		}
		if city == models.CitySentinel {
			return fmt.Errorf("%w: cities[%d] collides with the %q option", models.ErrInvalidEvent, i, models.CitySentinel)
		}
	}
	return nil
}
