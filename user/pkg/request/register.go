package request

import (
	"encoding/json"

	"github.com/rs/zerolog"
)

type RegisterRequest struct {
	Name     string `validate:"required"           json:"name"`
	Email    string `validate:"required,email"     json:"email"`
	Password string `validate:"required,min=8"     json:"password"`
}

func (r RegisterRequest) MarshalZerologObject(e *zerolog.Event) {
	e.Str("name", r.Name).Str("email", r.Email).Str("password", "****")
}

func (r RegisterRequest) MarshalJSON() ([]byte, error) {
	r.Password = "****"
	type R RegisterRequest
	return json.Marshal(R(r))
}
