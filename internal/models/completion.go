package models

import "strings"

// Sentinel option values meaning "the visitor will type the value instead".
const (
	CitySentinel  = "_outra"
	OtherSentinel = "outra"
)

// Participation choices
const (
	ParticipacaoPublico    = "publico"
	ParticipacaoAutoridade = "autoridade"
)

// Detailed confirmation choices
const (
	ConfirmacaoConfirmo   = "confirmo"
	ConfirmacaoAguardando = "aguardando"
)

// SexoOptions lists the gender choices offered by the completion form
var SexoOptions = []string{"Masculino", "Feminino", "Outro"}

// CompletionDraft is the supplementary profile form. After normalization the same
// shape is sent to the registration API.
type CompletionDraft struct {
	RegistrationEmail string `json:"registration_email" form:"-"`
	Nome              string `json:"nome" form:"-"`
	CPF               string `json:"cpf" form:"cpf"`
	Sexo              string `json:"sexo" form:"sexo"`
	Whats             string `json:"whats" form:"whats"`
	Email             string `json:"email" form:"-"`
	Participacao      string `json:"participacao" form:"participacao"`

	InstituicaoNome string `json:"instituicao_nome" form:"instituicao_nome"`
	Cidade          string `json:"cidade" form:"cidade"`
	CidadeOutra     string `json:"cidade_outra" form:"cidade_outra"`
	AreaAtuacao     string `json:"area_atuacao" form:"area_atuacao"`
	NovaArea        string `json:"nova_area" form:"nova_area"`
	Setor           string `json:"setor" form:"setor"`
	NovoSetor       string `json:"novo_setor" form:"novo_setor"`
	Cargo           string `json:"cargo" form:"cargo"`
	InstitTel       string `json:"instit_tel" form:"instit_tel"`
	InstitEmail     string `json:"instit_email" form:"instit_email"`

	ConfirmacaoDetalhada string `json:"confirmacao_detalhada" form:"confirmacao_detalhada"`
	AceiteLGPD           bool   `json:"aceite_lgpd" form:"aceite_lgpd"`
	AceiteComunicados    bool   `json:"aceite_comunicados" form:"aceite_comunicados"`
}

// NewCompletionDraft prefills the form with the registered user
func NewCompletionDraft(user RegisteredUser) CompletionDraft {
	return CompletionDraft{
		RegistrationEmail: user.Email,
		Nome:              user.Name,
		Email:             user.Email,
		Participacao:      ParticipacaoPublico,
	}
}

// WithUser copies the fields the visitor cannot edit from the registered user
func (d CompletionDraft) WithUser(user RegisteredUser) CompletionDraft {
	d.RegistrationEmail = user.Email
	d.Nome = user.Name
	d.Email = user.Email
	return d
}

// OtherCity reports whether the city select holds the sentinel
func (d CompletionDraft) OtherCity() bool {
	return d.Cidade == CitySentinel
}

// OtherArea reports whether the area select holds the sentinel
func (d CompletionDraft) OtherArea() bool {
	return strings.EqualFold(d.AreaAtuacao, OtherSentinel)
}

// OtherSetor reports whether the sector select holds the sentinel
func (d CompletionDraft) OtherSetor() bool {
	return strings.EqualFold(d.Setor, OtherSentinel)
}

// CompletionPayload is a completion draft after sentinel substitution and digit
// normalization, ready to be sent to the registration API.
type CompletionPayload CompletionDraft
