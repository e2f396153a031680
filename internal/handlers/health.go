package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ngprojetos/inscricao-eventos/internal/observability"
	"github.com/ngprojetos/inscricao-eventos/internal/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// HealthCheck checks one dependency
type HealthCheck func(ctx context.Context) error

// HealthHandlers reports the state of the server and its dependencies
type HealthHandlers struct {
	checks  map[string]HealthCheck
	timeout time.Duration
}

// NewHealthHandlers creates the health handlers with the named dependency checks
func NewHealthHandlers(checks map[string]HealthCheck) *HealthHandlers {
	return &HealthHandlers{checks: checks, timeout: 2 * time.Second}
}

// HealthCheck godoc
// @Summary Verificação de saúde
// @Description Verifica a saúde do servidor e de suas dependências (Redis e, quando configurado, MongoDB). Retorna status detalhado para cada serviço.
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse "Todos os serviços estão saudáveis"
// @Failure 503 {object} HealthResponse "Um ou mais serviços estão indisponíveis"
// @Router /health [get]
func (h *HealthHandlers) HealthCheck(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "HealthCheck")
	defer span.End()

	span.SetAttributes(
		attribute.String("operation", "health_check"),
		attribute.String("service", "health"),
	)

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	health := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Services:  make(map[string]string, len(h.checks)),
	}

	for name, check := range h.checks {
		_, checkSpan := utils.TraceExternalService(ctx, name, "ping")
		if err := check(ctx); err != nil {
			utils.RecordErrorInSpan(checkSpan, err, map[string]interface{}{
				"service.name":      name,
				"service.operation": "ping",
			})
			observability.Logger().Warn("health check failed", zap.String("service", name), zap.Error(err))
			health.Status = "unhealthy"
			health.Services[name] = "unhealthy"
		} else {
			utils.AddSpanAttribute(checkSpan, "service.status", "healthy")
			health.Services[name] = "healthy"
		}
		checkSpan.End()
	}

	if health.Status != "healthy" {
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}
	c.JSON(http.StatusOK, health)
}
