package models

// RegistrationDraft is the initial registration form as typed by the visitor.
type RegistrationDraft struct {
	Name      string `json:"name" form:"name"`
	Email     string `json:"email" form:"email"`
	Phone     string `json:"phone" form:"phone"`
	Confirmed bool   `json:"confirmed" form:"confirmed"`
}

// RegisteredUser is what the flow keeps after a successful initial registration.
type RegisteredUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// IsZero reports whether no user is registered in the flow
func (u RegisteredUser) IsZero() bool {
	return u.Name == "" && u.Email == ""
}

// User derives the registered user from a submitted draft
func (d RegistrationDraft) User() RegisteredUser {
	return RegisteredUser{Name: d.Name, Email: d.Email}
}

// FieldErrors maps a form field name to its validation message.
// An empty map means the form is valid.
type FieldErrors map[string]string

// Valid reports whether there are no field errors
func (fe FieldErrors) Valid() bool {
	return len(fe) == 0
}
