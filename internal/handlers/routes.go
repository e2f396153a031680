package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Routes holds the handlers mounted by RegisterRoutes
type Routes struct {
	Flow      *FlowHandlers
	Dashboard *DashboardHandlers
	Health    *HealthHandlers
	// SubmitLimit guards the public form posts when set
	SubmitLimit gin.HandlerFunc
}

// RegisterRoutes mounts the pages and the /v1 JSON endpoints
func RegisterRoutes(router *gin.Engine, r Routes) {
	router.GET("/", r.Flow.ShowPage)
	router.GET("/compartilhar/whatsapp", r.Flow.ShareWhatsApp)

	forms := router.Group("")
	if r.SubmitLimit != nil {
		forms.Use(r.SubmitLimit)
	}
	{
		forms.POST("/inscricao", r.Flow.SubmitRegistration)
		forms.POST("/cadastro-completo", r.Flow.SubmitCompletion)
		forms.POST("/voltar", r.Flow.Return)
		forms.POST("/compartilhar/email", r.Flow.ShareEmail)
	}

	dashboard := router.Group("/dashboard")
	{
		dashboard.GET("", r.Dashboard.ListRegistrations)
		dashboard.GET("/detalhado", r.Dashboard.ListDetailedRegistrations)
		dashboard.GET("/export.xlsx", r.Dashboard.ExportRegistrations)
	}

	v1 := router.Group("/v1", cors.Default())
	{
		v1.GET("/health", r.Health.HealthCheck)
		v1.POST("/mask", MaskField)
	}
}
