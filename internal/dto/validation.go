package dto

import (
	"github.com/SscSPs/backoffice_ledger/internal/core/domain"
	"github.com/go-playground/validator/v10"
)

// RegisterValidations adds the custom binding tags used by the request types.
func RegisterValidations(v *validator.Validate) error {
	return v.RegisterValidation("fundtype", validateFundType)
}

func validateFundType(fl validator.FieldLevel) bool {
	switch val := fl.Field().Interface().(type) {
	case domain.FundType:
		return val.IsValid()
	case string:
		return domain.FundType(val).IsValid()
	default:
		return false
	}
}
