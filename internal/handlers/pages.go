package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ngprojetos/inscricao-eventos/internal/models"
	"github.com/ngprojetos/inscricao-eventos/internal/observability"
	"github.com/ngprojetos/inscricao-eventos/internal/utils"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names
const (
	PageRegistration = "registration"
	PageCompletion   = "completion"
	PageShare        = "share"
	PageDashboard    = "dashboard"
	PageDetailed     = "detailed"
	PageError        = "error"
)

var pageNames = []string{PageRegistration, PageCompletion, PageShare, PageDashboard, PageDetailed, PageError}

var templateFuncs = template.FuncMap{
	"formatPhone": utils.FormatPhoneForDisplay,
	"formatCPF":   utils.MaskCPF,
	"formatTime":  formatTime,
	"yesNo":       yesNo,
	"isOther": func(v string) bool {
		return strings.EqualFold(v, models.OtherSentinel)
	},
}

// Pages renders the embedded HTML templates. Every page is parsed together
// with the shared layout.
type Pages struct {
	pages map[string]*template.Template
}

// LoadPages parses all page templates
func LoadPages() (*Pages, error) {
	p := &Pages{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s page: %w", name, err)
		}
		p.pages[name] = tmpl
	}
	return p, nil
}

// Render executes a page into the response
func (p *Pages) Render(c *gin.Context, status int, name string, data interface{}) {
	tmpl, ok := p.pages[name]
	if !ok {
		observability.Logger().Error("unknown page", zap.String("page", name))
		c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		observability.Logger().Error("failed to render page", zap.String("page", name), zap.Error(err))
		c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// page carries what the layout needs
type page struct {
	Event *models.Event
}

type errorPage struct {
	page
	Message string
}

func formatTime(t models.Timestamp) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02/01/2006 15:04")
}

func yesNo(v bool) string {
	if v {
		return "Sim"
	}
	return "Não"
}
