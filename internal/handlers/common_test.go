package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/ngprojetos/inscricao-eventos/internal/flow"
	"github.com/ngprojetos/inscricao-eventos/internal/middleware"
	"github.com/ngprojetos/inscricao-eventos/internal/models"
	"github.com/ngprojetos/inscricao-eventos/internal/redisclient"
	"github.com/ngprojetos/inscricao-eventos/internal/services"
	"github.com/ngprojetos/inscricao-eventos/internal/session"
	"github.com/ngprojetos/inscricao-eventos/internal/share"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestEvent() *models.Event {
	return &models.Event{
		Title:        "Audiência Pública: Teste",
		Subtitle:     "Regional e transparente",
		Heading:      "Como será o evento",
		Description:  "Debate aberto sobre a regulação de vagas.",
		Date:         "19 de Setembro de 2025",
		Time:         "09:00h - 12:00h",
		Venue:        "Plenário da Câmara",
		Address:      "Praça Nove de Julho, 26",
		Organization: "Organização do Teste",
		Cities:       []string{"Araçatuba", "Birigui"},
		Share: models.Share{
			Title:            "Audiência Pública: Teste",
			WhatsAppTemplate: "Convite {{.PageURL}}",
			EmailTemplate:    "Olá! Inscreva-se em {{.PageURL}}",
		},
	}
}

type fakeBackend struct {
	mu          sync.Mutex
	registerErr error
	completeErr error
	lists       models.ReferenceLists
	registered  []models.RegistrationDraft
	completed   []models.CompletionPayload
}

func (b *fakeBackend) Register(_ context.Context, draft models.RegistrationDraft) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.registered = append(b.registered, draft)
	return b.registerErr
}

func (b *fakeBackend) FetchReferenceLists(context.Context) (models.ReferenceLists, error) {
	return b.lists, nil
}

func (b *fakeBackend) CompleteRegistration(_ context.Context, payload models.CompletionPayload) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.completed = append(b.completed, payload)
	return b.completeErr
}

type fakeSource struct {
	list        *models.RegistrationList
	detailed    []models.DetailedRegistrationRecord
	err         error
	detailedErr error

	mu      sync.Mutex
	filters []models.RegistrationFilter
}

func (s *fakeSource) Registrations(_ context.Context, filter models.RegistrationFilter) (*models.RegistrationList, error) {
	s.mu.Lock()
	s.filters = append(s.filters, filter)
	s.mu.Unlock()
	return s.list, s.err
}

func (s *fakeSource) DetailedRegistrations(context.Context) ([]models.DetailedRegistrationRecord, error) {
	return s.detailed, s.detailedErr
}

type recordingNavigator struct {
	navigated []string
	opened    []string
}

func (n *recordingNavigator) Navigate(c *gin.Context, target string) {
	n.navigated = append(n.navigated, target)
	c.Status(http.StatusNoContent)
}

func (n *recordingNavigator) Open(c *gin.Context, target string) {
	n.opened = append(n.opened, target)
	c.Status(http.StatusNoContent)
}

type auditEntry struct {
	action, resource, outcome string
}

type recordingAuditor struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (a *recordingAuditor) Record(_ context.Context, action, resource, outcome string, _ map[string]string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, auditEntry{action, resource, outcome})
}

func (a *recordingAuditor) has(action, resource, outcome string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, e := range a.entries {
		if e == (auditEntry{action, resource, outcome}) {
			return true
		}
	}
	return false
}

type testEnv struct {
	t         *testing.T
	router    *gin.Engine
	redis     *miniredis.Miniredis
	store     *session.Store
	guard     *flow.LocalGuard
	backend   *fakeBackend
	source    *fakeSource
	navigator *recordingNavigator
	auditor   *recordingAuditor
	composer  *share.Composer
	cookie    *http.Cookie
}

type envSettings struct {
	flow  FlowConfig
	limit gin.HandlerFunc
}

type envOption func(*envSettings)

func withPublicURL(u string) envOption {
	return func(s *envSettings) { s.flow.PublicURL = u }
}

func withNavigator(n share.Navigator) envOption {
	return func(s *envSettings) { s.flow.Navigator = n }
}

func withSubmitLimit(perMinute int) envOption {
	return func(s *envSettings) {
		s.limit = middleware.SubmissionRateLimit(services.NewSubmissionLimiter(perMinute))
	}
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redisclient.NewClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = client.Close() })

	event := newTestEvent()
	composer, err := share.NewComposer(event.Share)
	require.NoError(t, err)
	pages, err := LoadPages()
	require.NoError(t, err)

	env := &testEnv{
		t:     t,
		redis: mr,
		store: session.NewStore(client, time.Hour),
		guard: flow.NewLocalGuard(),
		backend: &fakeBackend{lists: models.ReferenceLists{
			Areas:   []string{"Saúde", "Outra"},
			Setores: []string{"Regulação", "Outra"},
		}},
		source:    &fakeSource{list: &models.RegistrationList{}},
		navigator: &recordingNavigator{},
		auditor:   &recordingAuditor{},
		composer:  composer,
	}

	settings := envSettings{flow: FlowConfig{
		Machine:      flow.NewMachine(env.backend, env.guard, env.auditor),
		Sessions:     env.store,
		Composer:     composer,
		Navigator:    env.navigator,
		Auditor:      env.auditor,
		Pages:        pages,
		Event:        event,
		CookieMaxAge: time.Hour,
	}}
	for _, opt := range opts {
		opt(&settings)
	}

	dashboard := NewDashboardHandlers(env.source, pages, event)
	dashboard.auditor = env.auditor

	env.router = gin.New()
	RegisterRoutes(env.router, Routes{
		Flow:      NewFlowHandlers(settings.flow),
		Dashboard: dashboard,
		Health: NewHealthHandlers(map[string]HealthCheck{
			"redis": func(ctx context.Context) error { return client.Ping(ctx).Err() },
		}),
		SubmitLimit: settings.limit,
	})
	return env
}

// do sends a request carrying the session cookie and keeps the cookie it gets back
func (e *testEnv) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	e.t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if e.cookie != nil {
		req.AddCookie(e.cookie)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName {
			e.cookie = c
		}
	}
	return w
}

func (e *testEnv) session() *flow.Session {
	e.t.Helper()
	require.NotNil(e.t, e.cookie, "no session cookie issued")
	sess, err := e.store.Load(context.Background(), e.cookie.Value)
	require.NoError(e.t, err)
	return sess
}

func registrationForm(confirmed bool) url.Values {
	form := url.Values{
		"name":  {"Maria Silva"},
		"email": {"maria@example.com"},
		"phone": {"11987654321"},
	}
	if confirmed {
		form.Set("confirmed", "true")
	}
	return form
}

func completionForm() url.Values {
	return url.Values{
		"cpf":                   {"12345678909"},
		"sexo":                  {"Feminino"},
		"whats":                 {"11987654321"},
		"participacao":          {"publico"},
		"cidade":                {models.CitySentinel},
		"cidade_outra":          {"Lins"},
		"area_atuacao":          {"Saúde"},
		"setor":                 {"Regulação"},
		"confirmacao_detalhada": {"confirmo"},
		"aceite_lgpd":           {"true"},
	}
}

// toShare walks a fresh visitor to the share screen
func (e *testEnv) toShare() {
	e.t.Helper()
	e.do(http.MethodGet, "/", nil)
	w := e.do(http.MethodPost, "/inscricao", registrationForm(false))
	require.Equal(e.t, http.StatusSeeOther, w.Code)
	require.Equal(e.t, flow.StateShare, e.session().State)
}
