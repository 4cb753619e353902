package scenario

import (
	"github.com/go-playground/validator/v10"

	"github.com/andrescamacho/hauler-go/internal/domain/shared"
	"github.com/andrescamacho/hauler-go/internal/domain/work"
)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("resource", func(fl validator.FieldLevel) bool {
		_, err := shared.ParseResourceKind(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("work_kind", func(fl validator.FieldLevel) bool {
		_, err := work.ParseKind(fl.Field().String())
		return err == nil
	})
	return v
}
