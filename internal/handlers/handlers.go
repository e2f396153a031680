package handlers

import (
	"context"
	"time"

	"github.com/ngprojetos/inscricao-eventos/internal/flow"
	"github.com/ngprojetos/inscricao-eventos/internal/models"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// SessionStore keeps the visitors' flow sessions
type SessionStore interface {
	LoadOrCreate(ctx context.Context, id string) (*flow.Session, bool, error)
	Save(ctx context.Context, sess *flow.Session) error
}

// RegistrationsSource is the read side of the registration API used by the dashboard
type RegistrationsSource interface {
	Registrations(ctx context.Context, filter models.RegistrationFilter) (*models.RegistrationList, error)
	DetailedRegistrations(ctx context.Context) ([]models.DetailedRegistrationRecord, error)
}

// Messages shown on error pages
const (
	MsgSessionUnavailable = "Não foi possível carregar sua inscrição. Tente novamente em instantes."
	MsgInvalidForm        = "Não foi possível ler o formulário enviado."
	MsgDashboardFailed    = "Erro ao buscar inscrições."
	MsgExportFailed       = "Erro ao gerar a planilha."
)
