package roster

import (
	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"
)

// PhoneTag is the validation tag for a phone number in international format that
// is assigned in its country.
const PhoneTag = "phone"

// NewValidator returns a validator that also understands PhoneTag.
func NewValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation(PhoneTag, validPhone); err != nil {
		panic(err)
	}
	return v
}

func validPhone(fl validator.FieldLevel) bool {
	num, err := phonenumbers.Parse(fl.Field().String(), "")
	return err == nil && phonenumbers.IsValidNumber(num)
}
