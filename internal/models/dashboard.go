package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// RegistrationRecord is one row of the registrations listing. Owned by the
// registration API and read-only here.
type RegistrationRecord struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Confirmed bool      `json:"confirmed"`
	Timestamp Timestamp `json:"timestamp"`
}

// RegistrationList is a snapshot of the registrations listing
type RegistrationList struct {
	Registrations []RegistrationRecord `json:"registrations"`
	Count         int                  `json:"count"`
}

// DetailedRegistrationRecord is one row of the detailed registrations listing
type DetailedRegistrationRecord struct {
	ID                   int       `json:"id"`
	RegistrationEmail    string    `json:"registration_email"`
	CPF                  string    `json:"cpf"`
	Sexo                 string    `json:"sexo"`
	Participacao         string    `json:"participacao"`
	InstituicaoNome      string    `json:"instituicao_nome"`
	Cidade               string    `json:"cidade"`
	AreaAtuacao          string    `json:"area_atuacao"`
	Setor                string    `json:"setor"`
	Cargo                string    `json:"cargo"`
	InstitTel            string    `json:"instit_tel"`
	InstitEmail          string    `json:"instit_email"`
	ConfirmacaoDetalhada string    `json:"confirmacao_detalhada"`
	AceiteLGPD           bool      `json:"aceite_lgpd"`
	AceiteComunicados    bool      `json:"aceite_comunicados"`
	Timestamp            Timestamp `json:"timestamp"`
}

// RegistrationFilter narrows the registrations listing
type RegistrationFilter struct {
	// Confirmed filters by the confirmation flag when non-nil
	Confirmed *bool
}

// timestampLayouts are tried in order. The registration API may answer with
// ISO-8601 or with the RFC 1123 form produced by its JSON encoder.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999-07:00",
	http.TimeFormat,
	time.RFC1123Z,
	time.RFC1123,
}

// Timestamp is a time.Time that tolerates the date formats the API produces
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", raw)
}

// MarshalJSON implements json.Marshaler
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}
