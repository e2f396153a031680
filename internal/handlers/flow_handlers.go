package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ngprojetos/inscricao-eventos/internal/flow"
	"github.com/ngprojetos/inscricao-eventos/internal/models"
	"github.com/ngprojetos/inscricao-eventos/internal/observability"
	"github.com/ngprojetos/inscricao-eventos/internal/session"
	"github.com/ngprojetos/inscricao-eventos/internal/share"
	"github.com/ngprojetos/inscricao-eventos/internal/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// SessionCookieName is the cookie carrying the visitor's session id
const SessionCookieName = "inscricao_sid"

// FlowConfig wires the registration flow handlers
type FlowConfig struct {
	Machine   *flow.Machine
	Sessions  SessionStore
	Composer  *share.Composer
	Navigator share.Navigator
	Auditor   flow.Auditor
	Pages     *Pages
	Event     *models.Event

	// PublicURL replaces scheme and host of the recorded page URL when set
	PublicURL    string
	CookieSecure bool
	CookieMaxAge time.Duration
}

// FlowHandlers serves the registration, completion and share screens
type FlowHandlers struct {
	cfg FlowConfig
}

// NewFlowHandlers creates the flow handlers
func NewFlowHandlers(cfg FlowConfig) *FlowHandlers {
	if cfg.Navigator == nil {
		cfg.Navigator = share.HTTPNavigator{}
	}
	if cfg.Auditor == nil {
		cfg.Auditor = utils.AuditRecorder{}
	}
	return &FlowHandlers{cfg: cfg}
}

type registrationPage struct {
	page
	Session *flow.Session
}

type completionPage struct {
	page
	Session      *flow.Session
	SexoOptions  []string
	CitySentinel string
}

type sharePage struct {
	page
	Session *flow.Session
	Subject string
}

// ShowPage godoc
// @Summary Página de inscrição
// @Description Renderiza a tela atual do fluxo do visitante: inscrição, cadastro complementar ou compartilhamento.
// @Tags inscricao
// @Produce html
// @Success 200 {string} string "Página HTML"
// @Failure 503 {string} string "Sessão indisponível"
// @Router / [get]
func (h *FlowHandlers) ShowPage(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "ShowPage")
	defer span.End()

	ctx, sess, err := h.openSession(ctx, c)
	if err != nil {
		h.sessionUnavailable(c, err)
		return
	}
	span.SetAttributes(attribute.String("flow.state", string(sess.State)))

	// the landing URL is kept until a request arrives with its own query
	if sess.PageURL == "" || c.Request.URL.RawQuery != "" {
		sess.PageURL = h.pageURL(c)
	}

	if sess.State == flow.StateShare && sess.EmailBody == "" {
		body, err := h.cfg.Composer.DefaultEmailBody(sess.PageURL)
		if err != nil {
			observability.Logger().Error("failed to render email invitation", zap.Error(err))
		}
		sess.EmailBody = body
	}

	if err := h.cfg.Sessions.Save(ctx, sess); err != nil {
		h.sessionUnavailable(c, err)
		return
	}

	_, renderSpan := utils.TraceResponseRendering(ctx, string(sess.State))
	defer renderSpan.End()

	base := page{Event: h.cfg.Event}
	switch sess.State {
	case flow.StateCompleteRegistration:
		h.cfg.Pages.Render(c, http.StatusOK, PageCompletion, completionPage{
			page:         base,
			Session:      sess,
			SexoOptions:  models.SexoOptions,
			CitySentinel: models.CitySentinel,
		})
	case flow.StateShare:
		h.cfg.Pages.Render(c, http.StatusOK, PageShare, sharePage{
			page:    base,
			Session: sess,
			Subject: h.cfg.Composer.Subject(),
		})
	default:
		h.cfg.Pages.Render(c, http.StatusOK, PageRegistration, registrationPage{page: base, Session: sess})
	}
}

// SubmitRegistration godoc
// @Summary Enviar inscrição
// @Description Valida e envia a inscrição inicial. Redireciona para a tela seguinte do fluxo.
// @Tags inscricao
// @Accept x-www-form-urlencoded
// @Param name formData string true "Nome"
// @Param email formData string true "Email"
// @Param phone formData string true "Telefone"
// @Param confirmed formData bool false "Confirma presença"
// @Success 303 {string} string "Redireciona para /"
// @Failure 400 {string} string "Formulário ilegível"
// @Router /inscricao [post]
func (h *FlowHandlers) SubmitRegistration(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "SubmitRegistration")
	defer span.End()

	ctx, sess, err := h.openSession(ctx, c)
	if err != nil {
		h.sessionUnavailable(c, err)
		return
	}

	_, parseSpan := utils.TraceInputParsing(ctx, "registration_form")
	var draft models.RegistrationDraft
	if err := c.ShouldBind(&draft); err != nil {
		utils.RecordErrorInSpan(parseSpan, err, nil)
		parseSpan.End()
		h.invalidForm(c, err)
		return
	}
	parseSpan.End()

	err = h.cfg.Machine.SubmitRegistration(ctx, sess, draft)
	h.finish(ctx, c, sess, err)
}

// SubmitCompletion godoc
// @Summary Enviar cadastro complementar
// @Description Valida e envia o cadastro complementar. Redireciona para a tela de compartilhamento em caso de sucesso.
// @Tags inscricao
// @Accept x-www-form-urlencoded
// @Success 303 {string} string "Redireciona para /"
// @Failure 400 {string} string "Formulário ilegível"
// @Router /cadastro-completo [post]
func (h *FlowHandlers) SubmitCompletion(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "SubmitCompletion")
	defer span.End()

	ctx, sess, err := h.openSession(ctx, c)
	if err != nil {
		h.sessionUnavailable(c, err)
		return
	}

	_, parseSpan := utils.TraceInputParsing(ctx, "completion_form")
	var draft models.CompletionDraft
	if err := c.ShouldBind(&draft); err != nil {
		utils.RecordErrorInSpan(parseSpan, err, nil)
		parseSpan.End()
		h.invalidForm(c, err)
		return
	}
	parseSpan.End()

	err = h.cfg.Machine.SubmitCompletion(ctx, sess, draft)
	h.finish(ctx, c, sess, err)
}

// Return godoc
// @Summary Voltar ao início
// @Description Sai da tela de compartilhamento e volta para um formulário de inscrição vazio.
// @Tags inscricao
// @Success 303 {string} string "Redireciona para /"
// @Router /voltar [post]
func (h *FlowHandlers) Return(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "Return")
	defer span.End()

	ctx, sess, err := h.openSession(ctx, c)
	if err != nil {
		h.sessionUnavailable(c, err)
		return
	}

	err = h.cfg.Machine.Return(ctx, sess)
	h.finish(ctx, c, sess, err)
}

// finish stores the outcome of a flow operation and sends the visitor back to
// the page. A rejected operation left nothing worth storing.
func (h *FlowHandlers) finish(ctx context.Context, c *gin.Context, sess *flow.Session, err error) {
	switch {
	case errors.Is(err, models.ErrSubmissionInFlight), errors.Is(err, models.ErrInvalidTransition):
		observability.Logger().Info("flow operation ignored",
			zap.String("state", string(sess.State)),
			zap.Error(err))
	default:
		if saveErr := h.cfg.Sessions.Save(ctx, sess); saveErr != nil {
			h.sessionUnavailable(c, saveErr)
			return
		}
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// ShareEmail godoc
// @Summary Compartilhar por email
// @Description Monta o link mailto com o assunto do evento e o texto editado e navega até ele.
// @Tags compartilhar
// @Accept x-www-form-urlencoded
// @Param email_body formData string false "Texto do convite"
// @Success 303 {string} string "Redireciona para o link mailto"
// @Router /compartilhar/email [post]
func (h *FlowHandlers) ShareEmail(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "ShareEmail")
	defer span.End()

	ctx, sess, err := h.openSession(ctx, c)
	if err != nil {
		h.sessionUnavailable(c, err)
		return
	}
	if sess.State != flow.StateShare {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	// textareas post line breaks as CRLF
	body := strings.ReplaceAll(c.PostForm("email_body"), "\r\n", "\n")
	if body == "" {
		if body, err = h.cfg.Composer.DefaultEmailBody(sess.PageURL); err != nil {
			observability.Logger().Error("failed to render email invitation", zap.Error(err))
		}
	}
	sess.EmailBody = body
	if err := h.cfg.Sessions.Save(ctx, sess); err != nil {
		h.sessionUnavailable(c, err)
		return
	}

	observability.ShareActions.WithLabelValues("email").Inc()
	h.cfg.Auditor.Record(ctx, utils.AuditActionShare, utils.AuditResourceShareEmail, utils.AuditOutcomeSuccess, nil)
	h.cfg.Navigator.Navigate(c, h.cfg.Composer.MailtoLink(body))
}

// ShareWhatsApp godoc
// @Summary Compartilhar no WhatsApp
// @Description Monta o link do WhatsApp com o convite e o endereço da página e o abre em uma nova aba.
// @Tags compartilhar
// @Success 303 {string} string "Redireciona para o WhatsApp"
// @Router /compartilhar/whatsapp [get]
func (h *FlowHandlers) ShareWhatsApp(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "ShareWhatsApp")
	defer span.End()

	ctx, sess, err := h.openSession(ctx, c)
	if err != nil {
		h.sessionUnavailable(c, err)
		return
	}
	if sess.State != flow.StateShare {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	link, err := h.cfg.Composer.WhatsAppLink(sess.PageURL)
	if err != nil {
		observability.Logger().Error("failed to render whatsapp invitation", zap.Error(err))
		h.cfg.Auditor.Record(ctx, utils.AuditActionShare, utils.AuditResourceWhatsApp, utils.AuditOutcomeFailure, nil)
		h.renderError(c, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	observability.ShareActions.WithLabelValues("whatsapp").Inc()
	h.cfg.Auditor.Record(ctx, utils.AuditActionShare, utils.AuditResourceWhatsApp, utils.AuditOutcomeSuccess, nil)
	h.cfg.Navigator.Open(c, link)
}

// openSession loads the visitor's session, creating one when the cookie is
// missing, unknown or expired, and attaches the audit context.
func (h *FlowHandlers) openSession(ctx context.Context, c *gin.Context) (context.Context, *flow.Session, error) {
	_, span := utils.TraceExternalService(ctx, "redis", "load_session")
	defer span.End()

	id, _ := c.Cookie(SessionCookieName)
	if !session.ValidID(id) {
		id = session.NewID()
	}

	sess, created, err := h.cfg.Sessions.LoadOrCreate(ctx, id)
	if err != nil {
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"session.operation": "load"})
		return ctx, nil, err
	}
	utils.AddSpanAttribute(span, "session.created", created)

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, sess.ID, int(h.cfg.CookieMaxAge.Seconds()), "/", "", h.cfg.CookieSecure, true)

	return utils.WithAuditContext(ctx, utils.GetAuditContextFromGin(c, sess.ID)), sess, nil
}

// pageURL is the address the visitor landed on, query parameters included
func (h *FlowHandlers) pageURL(c *gin.Context) string {
	base := h.cfg.PublicURL
	if base == "" {
		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
		if proto := c.GetHeader("X-Forwarded-Proto"); proto == "http" || proto == "https" {
			scheme = proto
		}
		base = scheme + "://" + c.Request.Host
	}
	return base + c.Request.URL.RequestURI()
}

func (h *FlowHandlers) sessionUnavailable(c *gin.Context, err error) {
	observability.Logger().Error("session store unavailable", zap.Error(err))
	h.renderError(c, http.StatusServiceUnavailable, MsgSessionUnavailable)
}

func (h *FlowHandlers) invalidForm(c *gin.Context, err error) {
	observability.Logger().Warn("unreadable form submission", zap.String("path", c.Request.URL.Path), zap.Error(err))
	h.renderError(c, http.StatusBadRequest, MsgInvalidForm)
}

func (h *FlowHandlers) renderError(c *gin.Context, status int, message string) {
	h.cfg.Pages.Render(c, status, PageError, errorPage{page: page{Event: h.cfg.Event}, Message: message})
}
