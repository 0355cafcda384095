package models

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r CredentialsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 72)),
	)
}

// NormalizeEmail returns the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type DocumentRequest struct {
	Content map[string]interface{} `json:"content"`
}

func (r DocumentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.NotNil),
	)
}

type ChatCreateRequest struct {
	Title    *string `json:"title"`
	Position *string `json:"position"`
}

func (r ChatCreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Length(0, 200)),
		validation.Field(&r.Position, validation.Length(0, 200)),
	)
}

type MessageCreateRequest struct {
	Content string `json:"content"`
}

func (r MessageCreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required),
	)
}
