package checkout

import (
	"regexp"

	validator "github.com/go-playground/validator/v10"
)

// Contact carries the guest fields required before an order can be placed.
type Contact struct {
	Name         string `json:"name" validate:"required"`
	Phone        string `json:"phone" validate:"required,id_mobile"`
	Email        string `json:"email" validate:"required,email"`
	AddressLine1 string `json:"addressLine1" validate:"required"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city"`
	Province     string `json:"province"`
	PostalCode   string `json:"postalCode" validate:"required"`
}

var mobilePattern = regexp.MustCompile(`^(\+62|62|0)8[0-9]{7,12}$`)

// NewValidator returns a validator with the mobile-number rule registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("id_mobile", func(fl validator.FieldLevel) bool {
		return mobilePattern.MatchString(fl.Field().String())
	})
	return v
}

// validateContact maps validator output into field-level gate errors.
func validateContact(v *validator.Validate, c Contact) []FieldError {
	err := v.Struct(c)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "contact", Detail: err.Error()}}
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		detail := "invalid"
		switch fe.Tag() {
		case "required":
			detail = "required"
		case "email":
			detail = "must be a valid email address"
		case "id_mobile":
			detail = "must be a valid mobile number"
		}
		fields = append(fields, FieldError{Field: fe.Field(), Detail: detail})
	}
	return fields
}
