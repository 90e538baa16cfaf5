package postboard

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Limits mirrored from the server side constraints.
const (
	MaxTitleLength    = 255
	MaxUserNameLength = 20
	MinPasswordLength = 5
	MaxPasswordLength = 100
)

// Validate checks the input against the server rules.
func (p PostInput) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required, validation.Length(1, MaxTitleLength)),
		validation.Field(&p.Content, validation.Required),
	)
}

// Validate checks the registration against the server rules.
func (r Registration) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserName, validation.Required, validation.Length(1, MaxUserNameLength)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(MinPasswordLength, MaxPasswordLength)),
	)
}

// Validate checks that both credentials are present.
func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Username, validation.Required, is.Email),
		validation.Field(&c.Password, validation.Required),
	)
}
