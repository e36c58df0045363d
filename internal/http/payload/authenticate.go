package payload

import (
	"github.com/jellydator/validation"
)

type AuthRequest struct {
	Operator string `json:"operator"`
	Password string `json:"password"`
}

func (a AuthRequest) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Operator, validation.Required),
		validation.Field(&a.Password, validation.Required),
	)
}
