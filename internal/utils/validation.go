package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ngprojetos/inscricao-eventos/internal/models"
)

// Messages shown to the visitor
const (
	MsgNameRequired       = "O nome é obrigatório."
	MsgEmailRequired      = "O email é obrigatório."
	MsgEmailInvalid       = "O formato do email é inválido."
	MsgPhoneRequired      = "O telefone é obrigatório."
	MsgPhoneInvalid       = "O formato do telefone é inválido (ex: (11) 98765-4321)."
	MsgCompletionRequired = "Por favor, preencha todos os campos obrigatórios (*)."
	MsgLGPDRequired       = "Você deve aceitar os termos de uso e privacidade (LGPD)."
)

var (
	emailRegex = regexp.MustCompile(`\S+@\S+\.\S+`)
	phoneRegex = regexp.MustCompile(`^\(?\d{2}\)?[\s-]?\d{4,5}-?\d{4}$`)
)

// ValidationError is a blocking validation failure with the message to show.
// Err is the sentinel callers match with errors.Is.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidateRegistration checks the initial registration form. Every failing field
// gets its own message; an empty result means the form can be sent.
func ValidateRegistration(draft models.RegistrationDraft) models.FieldErrors {
	errs := models.FieldErrors{}

	if strings.TrimSpace(draft.Name) == "" {
		errs["name"] = MsgNameRequired
	}

	switch {
	case draft.Email == "":
		errs["email"] = MsgEmailRequired
	case !emailRegex.MatchString(draft.Email):
		errs["email"] = MsgEmailInvalid
	}

	switch {
	case draft.Phone == "":
		errs["phone"] = MsgPhoneRequired
	case !phoneRegex.MatchString(draft.Phone):
		errs["phone"] = MsgPhoneInvalid
	}

	return errs
}

// ValidateCompletion checks the completion form and returns the first blocking
// error, or nil. Phone fields are not format-checked here.
func ValidateCompletion(draft models.CompletionDraft) error {
	type requiredField struct {
		field string
		value string
	}
	required := []requiredField{
		{"cpf", draft.CPF},
		{"sexo", draft.Sexo},
		{"confirmacao_detalhada", draft.ConfirmacaoDetalhada},
	}
	if draft.OtherCity() {
		required = append(required, requiredField{"cidade_outra", draft.CidadeOutra})
	}
	if draft.OtherArea() {
		required = append(required, requiredField{"nova_area", draft.NovaArea})
	}
	if draft.OtherSetor() {
		required = append(required, requiredField{"novo_setor", draft.NovoSetor})
	}

	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &ValidationError{Field: r.field, Message: MsgCompletionRequired, Err: models.ErrCompletionRequired}
		}
	}

	if !draft.AceiteLGPD {
		return &ValidationError{Field: "aceite_lgpd", Message: MsgLGPDRequired, Err: models.ErrLGPDNotAccepted}
	}
	return nil
}

// NormalizeCompletion replaces sentinel choices with the typed value and reduces
// document and phone fields to digits.
func NormalizeCompletion(draft models.CompletionDraft) models.CompletionPayload {
	payload := models.CompletionPayload(draft)

	if draft.OtherCity() {
		payload.Cidade = draft.CidadeOutra
	}
	if draft.OtherArea() {
		payload.AreaAtuacao = draft.NovaArea
	}
	if draft.OtherSetor() {
		payload.Setor = draft.NovoSetor
	}

	payload.CPF = DigitsOnly(draft.CPF)
	payload.Whats = DigitsOnly(draft.Whats)
	payload.InstitTel = DigitsOnly(draft.InstitTel)
	return payload
}
