package flow

import (
	"time"

	"github.com/ngprojetos/inscricao-eventos/internal/models"
)

// State is the screen the visitor is on
type State string

const (
	StateRegistration         State = "REGISTRATION"
	StateCompleteRegistration State = "COMPLETE_REGISTRATION"
	StateShare                State = "SHARE"
)

// Valid reports whether s is one of the known states
func (s State) Valid() bool {
	switch s {
	case StateRegistration, StateCompleteRegistration, StateShare:
		return true
	}
	return false
}

// Session is one visitor's pass through the registration flow
type Session struct {
	ID    string                `json:"id"`
	State State                 `json:"state"`
	User  models.RegisteredUser `json:"user"`

	Registration models.RegistrationDraft `json:"registration"`
	FieldErrors  models.FieldErrors       `json:"field_errors,omitempty"`
	Completion   models.CompletionDraft   `json:"completion"`
	References   models.ReferenceLists    `json:"references"`

	// ServerError is the banner shown above the current form
	ServerError string `json:"server_error,omitempty"`
	// Notice is the confirmation shown on the share screen
	Notice string `json:"notice,omitempty"`

	// PageURL is the address of the landing page, shared in invitations
	PageURL string `json:"page_url"`
	// EmailBody is the invitation text as edited on the share screen
	EmailBody string `json:"email_body,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession starts a flow on the registration screen
func NewSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:          id,
		State:       StateRegistration,
		FieldErrors: models.FieldErrors{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// clearBanner drops the messages left by the previous submission
func (s *Session) clearBanner() {
	s.ServerError = ""
	s.Notice = ""
}

// reset returns the session to a fresh registration screen, keeping its
// identity and the landing page URL
func (s *Session) reset() {
	*s = Session{
		ID:          s.ID,
		State:       StateRegistration,
		FieldErrors: models.FieldErrors{},
		PageURL:     s.PageURL,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
