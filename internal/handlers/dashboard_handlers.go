package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ngprojetos/inscricao-eventos/internal/export"
	"github.com/ngprojetos/inscricao-eventos/internal/flow"
	"github.com/ngprojetos/inscricao-eventos/internal/models"
	"github.com/ngprojetos/inscricao-eventos/internal/observability"
	"github.com/ngprojetos/inscricao-eventos/internal/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ExportFilename is the attachment name of the spreadsheet export
const ExportFilename = "inscricoes.xlsx"

// DashboardHandlers serves the read-only registrations listings
type DashboardHandlers struct {
	source  RegistrationsSource
	pages   *Pages
	event   *models.Event
	auditor flow.Auditor
}

// NewDashboardHandlers creates the dashboard handlers
func NewDashboardHandlers(source RegistrationsSource, pages *Pages, event *models.Event) *DashboardHandlers {
	return &DashboardHandlers{source: source, pages: pages, event: event, auditor: utils.AuditRecorder{}}
}

type dashboardPage struct {
	page
	List   *models.RegistrationList
	Filter string
	Error  string
}

type detailedPage struct {
	page
	Records []models.DetailedRegistrationRecord
	Error   string
}

// confirmedFilter reads ?confirmed=true|false. Any other value lists everything.
func confirmedFilter(c *gin.Context) (models.RegistrationFilter, string) {
	raw := c.Query("confirmed")
	confirmed, err := strconv.ParseBool(raw)
	if raw == "" || err != nil {
		return models.RegistrationFilter{}, ""
	}
	return models.RegistrationFilter{Confirmed: &confirmed}, strconv.FormatBool(confirmed)
}

// ListRegistrations godoc
// @Summary Painel de inscrições
// @Description Lista as inscrições registradas, opcionalmente filtradas pela confirmação de presença.
// @Tags dashboard
// @Produce html
// @Param confirmed query bool false "Filtrar por confirmação"
// @Success 200 {string} string "Página HTML"
// @Failure 502 {string} string "Erro ao buscar inscrições"
// @Router /dashboard [get]
func (h *DashboardHandlers) ListRegistrations(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "ListRegistrations")
	defer span.End()

	filter, label := confirmedFilter(c)
	span.SetAttributes(attribute.String("dashboard.filter", label))

	data := dashboardPage{page: page{Event: h.event}, Filter: label}

	list, err := h.source.Registrations(ctx, filter)
	if err != nil {
		utils.RecordErrorInSpan(span, err, nil)
		observability.Logger().Error("failed to fetch registrations", zap.Error(err))
		data.Error = MsgDashboardFailed
		h.pages.Render(c, http.StatusBadGateway, PageDashboard, data)
		return
	}

	data.List = list
	h.pages.Render(c, http.StatusOK, PageDashboard, data)
}

// ListDetailedRegistrations godoc
// @Summary Painel de cadastros completos
// @Description Lista os cadastros complementares registrados.
// @Tags dashboard
// @Produce html
// @Success 200 {string} string "Página HTML"
// @Failure 502 {string} string "Erro ao buscar inscrições"
// @Router /dashboard/detalhado [get]
func (h *DashboardHandlers) ListDetailedRegistrations(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "ListDetailedRegistrations")
	defer span.End()

	data := detailedPage{page: page{Event: h.event}}

	records, err := h.source.DetailedRegistrations(ctx)
	if err != nil {
		utils.RecordErrorInSpan(span, err, nil)
		observability.Logger().Error("failed to fetch detailed registrations", zap.Error(err))
		data.Error = MsgDashboardFailed
		h.pages.Render(c, http.StatusBadGateway, PageDetailed, data)
		return
	}

	data.Records = records
	h.pages.Render(c, http.StatusOK, PageDetailed, data)
}

// ExportRegistrations godoc
// @Summary Exportar inscrições
// @Description Gera uma planilha com as inscrições e os cadastros completos.
// @Tags dashboard
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param confirmed query bool false "Filtrar por confirmação"
// @Success 200 {file} file "Planilha"
// @Failure 502 {string} string "Erro ao buscar inscrições"
// @Router /dashboard/export.xlsx [get]
func (h *DashboardHandlers) ExportRegistrations(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "ExportRegistrations")
	defer span.End()

	filter, label := confirmedFilter(c)

	var (
		list     *models.RegistrationList
		detailed []models.DetailedRegistrationRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		list, err = h.source.Registrations(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		detailed, err = h.source.DetailedRegistrations(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		utils.RecordErrorInSpan(span, err, nil)
		observability.Logger().Error("failed to fetch registrations for export", zap.Error(err))
		h.auditor.Record(ctx, utils.AuditActionExport, utils.AuditResourceDashboard, utils.AuditOutcomeFailure, nil)
		h.pages.Render(c, http.StatusBadGateway, PageError, errorPage{page: page{Event: h.event}, Message: MsgDashboardFailed})
		return
	}
	if list == nil {
		list = &models.RegistrationList{}
	}
	if detailed == nil {
		detailed = []models.DetailedRegistrationRecord{}
	}

	_, _, buildDone := utils.TraceOperation(ctx, "export.workbook", map[string]interface{}{
		"export.registrations": len(list.Registrations),
		"export.detailed":      len(detailed),
	})
	workbook, err := export.Workbook(list, detailed)
	buildDone()
	if err != nil {
		utils.RecordErrorInSpan(span, err, nil)
		observability.Logger().Error("failed to build workbook", zap.Error(err))
		h.pages.Render(c, http.StatusInternalServerError, PageError, errorPage{page: page{Event: h.event}, Message: MsgExportFailed})
		return
	}

	h.auditor.Record(ctx, utils.AuditActionExport, utils.AuditResourceDashboard, utils.AuditOutcomeSuccess, map[string]string{
		"filter": label,
		"rows":   strconv.Itoa(len(list.Registrations)),
	})
	c.Header("Content-Disposition", `attachment; filename="`+ExportFilename+`"`)
	c.Data(http.StatusOK, export.ContentType, workbook)
}
