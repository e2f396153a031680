package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ngprojetos/inscricao-eventos/internal/observability"
	"github.com/ngprojetos/inscricao-eventos/internal/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Maskable fields
const (
	MaskFieldCPF   = "cpf"
	MaskFieldPhone = "phone"
)

// MaskRequest is the input of the masking preview
type MaskRequest struct {
	Field string `json:"field" binding:"required" example:"cpf"`
	Value string `json:"value" example:"12345678909"`
}

// MaskResponse is the masked value and its digits
type MaskResponse struct {
	Masked string `json:"masked" example:"123.456.789-09"`
	Digits string `json:"digits" example:"12345678909"`
}

// MaskField godoc
// @Summary Pré-visualizar máscara
// @Description Aplica a máscara de CPF ou telefone ao valor digitado. Usado pelos formulários para formatar os campos durante a digitação.
// @Tags mask
// @Accept json
// @Produce json
// @Param data body MaskRequest true "Campo e valor"
// @Success 200 {object} MaskResponse "Valor formatado"
// @Failure 400 {object} ErrorResponse "Campo inválido"
// @Router /mask [post]
func MaskField(c *gin.Context) {
	_, span := otel.Tracer("").Start(c.Request.Context(), "MaskField")
	defer span.End()

	var req MaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		observability.Logger().Debug("invalid mask request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Requisição inválida: " + err.Error()})
		return
	}
	span.SetAttributes(attribute.String("mask.field", req.Field))

	var masked string
	switch req.Field {
	case MaskFieldCPF:
		masked = utils.MaskCPF(req.Value)
	case MaskFieldPhone:
		masked = utils.MaskPhone(req.Value)
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Campo desconhecido: use cpf ou phone"})
		return
	}

	c.JSON(http.StatusOK, MaskResponse{Masked: masked, Digits: utils.DigitsOnly(masked)})
}
