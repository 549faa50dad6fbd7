package dto

import (
	"github.com/agridane/erp_backend/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidators wires domain-aware validation tags into gin's
// binding validator. Called once from main.
func RegisterCustomValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("reportformat", func(fl validator.FieldLevel) bool {
		_, err := domain.NormalizeFormat(fl.Field().String())
		return err == nil
	})
}
