package flow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ngprojetos/inscricao-eventos/internal/apiclient"
	"github.com/ngprojetos/inscricao-eventos/internal/logging"
	"github.com/ngprojetos/inscricao-eventos/internal/models"
	"github.com/ngprojetos/inscricao-eventos/internal/observability"
	"github.com/ngprojetos/inscricao-eventos/internal/utils"
	"go.uber.org/zap"
)

// Form names, used as busy-flag keys and metric labels
const (
	FormRegistration = "registration"
	FormCompletion   = "completion"
)

// Banner messages
const (
	MsgRegistrationFailed      = "Ocorreu um erro ao registrar. Tente novamente."
	MsgRegistrationUnreachable = "Não foi possível conectar ao servidor. Verifique sua conexão e tente novamente."
	MsgCompletionFailed        = "Falha ao salvar o cadastro."
	MsgCompletionUnreachable   = "Não foi possível conectar ao servidor."
	MsgCompletionSaved         = "Cadastro completo salvo com sucesso!"
)

// Submission outcomes, used as metric labels
const (
	outcomeInvalid     = "invalid"
	outcomeBusy        = "busy"
	outcomeSuccess     = "success"
	outcomeAPIError    = "api_error"
	outcomeUnreachable = "unreachable"
)

// Backend is the part of the registration API the flow drives
type Backend interface {
	Register(ctx context.Context, draft models.RegistrationDraft) error
	FetchReferenceLists(ctx context.Context) (models.ReferenceLists, error)
	CompleteRegistration(ctx context.Context, payload models.CompletionPayload) error
}

// Auditor receives the flow events worth keeping on the audit trail
type Auditor interface {
	Record(ctx context.Context, action, resource, outcome string, metadata map[string]string)
}

type noopAuditor struct{}

func (noopAuditor) Record(context.Context, string, string, string, map[string]string) {}

// Machine applies the flow operations to a session
type Machine struct {
	backend Backend
	guard   Guard
	auditor Auditor
}

// NewMachine builds a Machine. A nil auditor disables the audit trail.
func NewMachine(backend Backend, guard Guard, auditor Auditor) *Machine {
	if auditor == nil {
		auditor = noopAuditor{}
	}
	return &Machine{backend: backend, guard: guard, auditor: auditor}
}

// SubmitRegistration validates and sends the initial registration. On success
// the session moves to COMPLETE_REGISTRATION when the visitor confirmed
// attendance, to SHARE otherwise.
func (m *Machine) SubmitRegistration(ctx context.Context, s *Session, draft models.RegistrationDraft) error {
	if s.State != StateRegistration {
		return fmt.Errorf("%w: registration submitted from %s", models.ErrInvalidTransition, s.State)
	}

	ctx, span := utils.TraceBusinessLogic(ctx, "submit_registration")
	defer span.End()

	logger := logging.Logger.With(
		zap.String("session_id", s.ID),
		zap.String("form", FormRegistration),
	)

	s.clearBanner()
	draft.Phone = strings.TrimSpace(draft.Phone)

	_, validateSpan := utils.TraceInputValidation(ctx, "form", FormRegistration)
	s.FieldErrors = utils.ValidateRegistration(draft)
	validateSpan.End()

	draft.Phone = displayPhone(draft.Phone)
	s.Registration = draft
	if !s.FieldErrors.Valid() {
		observability.FormSubmissions.WithLabelValues(FormRegistration, outcomeInvalid).Inc()
		logger.Debug("registration form rejected", zap.Int("field_errors", len(s.FieldErrors)))
		return models.ErrInvalidRegistration
	}

	release, err := m.acquire(ctx, s.ID, FormRegistration)
	if err != nil {
		if !errors.Is(err, models.ErrSubmissionInFlight) {
			s.ServerError = MsgRegistrationFailed
		}
		return err
	}
	defer release()

	if err := m.backend.Register(ctx, draft); err != nil {
		outcome := failureOutcome(err)
		s.ServerError = banner(err, MsgRegistrationFailed, MsgRegistrationUnreachable)
		observability.FormSubmissions.WithLabelValues(FormRegistration, outcome).Inc()
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"outcome": outcome})
		m.auditor.Record(ctx, utils.AuditActionSubmit, utils.AuditResourceRegistration, utils.AuditOutcomeFailure,
			map[string]string{"email": draft.Email, "reason": outcome})
		logger.Warn("registration failed", zap.String("outcome", outcome), zap.Error(err))
		return err
	}

	observability.FormSubmissions.WithLabelValues(FormRegistration, outcomeSuccess).Inc()
	m.auditor.Record(ctx, utils.AuditActionSubmit, utils.AuditResourceRegistration, utils.AuditOutcomeSuccess,
		map[string]string{"email": draft.Email, "confirmed": strconv.FormatBool(draft.Confirmed)})

	s.User = draft.User()
	s.Registration = models.RegistrationDraft{}
	s.FieldErrors = models.FieldErrors{}

	if !draft.Confirmed {
		m.transition(s, StateShare)
		logger.Info("registration saved, attendance not confirmed")
		return nil
	}

	m.transition(s, StateCompleteRegistration)
	s.Completion = models.NewCompletionDraft(s.User)

	lists, err := m.backend.FetchReferenceLists(ctx)
	s.References = lists
	if err != nil {
		logger.Warn("completion form opened with missing reference lists", zap.Error(err))
	}

	logger.Info("registration saved, completion form opened",
		zap.Int("areas", len(lists.Areas)),
		zap.Int("setores", len(lists.Setores)))
	return nil
}

// SubmitCompletion validates and sends the completion form. On success the
// session moves to SHARE with a confirmation notice.
func (m *Machine) SubmitCompletion(ctx context.Context, s *Session, draft models.CompletionDraft) error {
	if s.State != StateCompleteRegistration {
		return fmt.Errorf("%w: completion submitted from %s", models.ErrInvalidTransition, s.State)
	}

	ctx, span := utils.TraceBusinessLogic(ctx, "submit_completion")
	defer span.End()

	logger := logging.Logger.With(
		zap.String("session_id", s.ID),
		zap.String("form", FormCompletion),
	)

	s.clearBanner()
	draft = draft.WithUser(s.User)
	draft.CPF = utils.MaskCPF(draft.CPF)
	draft.Whats = utils.MaskPhone(draft.Whats)
	draft.InstitTel = utils.MaskPhone(draft.InstitTel)
	s.Completion = draft

	_, validateSpan := utils.TraceInputValidation(ctx, "form", FormCompletion)
	err := utils.ValidateCompletion(draft)
	validateSpan.End()
	if err != nil {
		var verr *utils.ValidationError
		if errors.As(err, &verr) {
			s.ServerError = verr.Message
		}
		observability.FormSubmissions.WithLabelValues(FormCompletion, outcomeInvalid).Inc()
		logger.Debug("completion form rejected", zap.Error(err))
		return err
	}

	release, err := m.acquire(ctx, s.ID, FormCompletion)
	if err != nil {
		if !errors.Is(err, models.ErrSubmissionInFlight) {
			s.ServerError = MsgCompletionFailed
		}
		return err
	}
	defer release()

	payload := utils.NormalizeCompletion(draft)
	if err := m.backend.CompleteRegistration(ctx, payload); err != nil {
		outcome := failureOutcome(err)
		s.ServerError = banner(err, MsgCompletionFailed, MsgCompletionUnreachable)
		observability.FormSubmissions.WithLabelValues(FormCompletion, outcome).Inc()
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"outcome": outcome})
		m.auditor.Record(ctx, utils.AuditActionSubmit, utils.AuditResourceCompletion, utils.AuditOutcomeFailure,
			map[string]string{"registration_email": payload.RegistrationEmail, "reason": outcome})
		logger.Warn("completion failed", zap.String("outcome", outcome), zap.Error(err))
		return err
	}

	observability.FormSubmissions.WithLabelValues(FormCompletion, outcomeSuccess).Inc()
	m.auditor.Record(ctx, utils.AuditActionSubmit, utils.AuditResourceCompletion, utils.AuditOutcomeSuccess,
		map[string]string{
			"registration_email": payload.RegistrationEmail,
			"cpf":                payload.CPF,
			"participacao":       payload.Participacao,
			"cidade":             payload.Cidade,
		})

	m.transition(s, StateShare)
	s.Notice = MsgCompletionSaved
	logger.Info("completion saved")
	return nil
}

// Return leaves the share screen for a fresh registration form
func (m *Machine) Return(ctx context.Context, s *Session) error {
	if s.State != StateShare {
		return fmt.Errorf("%w: return requested from %s", models.ErrInvalidTransition, s.State)
	}

	m.transition(s, StateRegistration)
	s.reset()
	m.auditor.Record(ctx, utils.AuditActionReturn, utils.AuditResourceFlow, utils.AuditOutcomeSuccess, nil)
	return nil
}

func (m *Machine) transition(s *Session, to State) {
	observability.FlowTransitions.WithLabelValues(string(s.State), string(to)).Inc()
	s.State = to
	s.UpdatedAt = time.Now().UTC()
}

// acquire takes the busy flag of one form and returns its release function
func (m *Machine) acquire(ctx context.Context, sessionID, form string) (func(), error) {
	key := GuardKey(sessionID, form)

	ok, err := m.guard.TryAcquire(ctx, key)
	if err != nil {
		logging.Logger.Error("failed to acquire submission guard", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("failed to acquire submission guard: %w", err)
	}
	if !ok {
		observability.FormSubmissions.WithLabelValues(form, outcomeBusy).Inc()
		return nil, models.ErrSubmissionInFlight
	}

	return func() {
		// the request context may already be done
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := m.guard.Release(releaseCtx, key); err != nil {
			logging.Logger.Warn("failed to release submission guard", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

// banner picks the message shown after a failed API call
func banner(err error, fallback, unreachable string) string {
	var apiErr *apiclient.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	case errors.Is(err, models.ErrUnreachable):
		return unreachable
	default:
		return fallback
	}
}

func failureOutcome(err error) string {
	if errors.Is(err, models.ErrUnreachable) {
		return outcomeUnreachable
	}
	return outcomeAPIError
}

// displayPhone masks a typed phone unless masking would drop characters, in
// which case the visitor gets back exactly what they sent.
func displayPhone(raw string) string {
	masked := utils.MaskPhone(raw)
	if utils.DigitsOnly(raw) == utils.DigitsOnly(masked) && strings.Trim(raw, "0123456789()- \t") == "" {
		return masked
	}
	return raw
}
