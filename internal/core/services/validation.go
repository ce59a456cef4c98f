package services

import (
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"

	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/domain"
)

var validate *validator.Validate

var (
	bloodTypes = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-", "unknown"}
	organTypes = []string{"kidney", "liver", "heart", "lung", "pancreas", "cornea", "bone_marrow", "tissue", "multiple"}
)

func init() {
	validate = validator.New()
	// Empty values pass; presence is enforced by required_if.
	_ = validate.RegisterValidation("bloodtype", func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		return v == "" || slices.Contains(bloodTypes, v)
	})
	_ = validate.RegisterValidation("organtype", func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		return v == "" || slices.Contains(organTypes, v)
	})
}

func validateInput(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}
