package validation

import (
	"time"

	"github.com/go-playground/validator/v10"

	"equipment-system/pkg/clock"
)

func registerRules(v *validator.Validate, clk clock.Clock) error {
	return v.RegisterValidation("notfuture", notFuture(clk))
}

// notFuture rejects timestamps later than now. Non-time fields pass.
func notFuture(clk clock.Clock) validator.Func {
	return func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		if !ok {
			return true
		}
		return !t.After(clk.Now())
	}
}
