package validation

import (
	"github.com/go-playground/validator/v10"

	"equipment-system/pkg/clock"
)

// CustomValidator adapts validator.Validate to echo.Validator.
type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// New builds the validator. Date rules compare against clk.
func New(clk clock.Clock) *CustomValidator {
	v := validator.New()

	registerNullTypes(v)

	// the server must not start with a broken rule set
	if err := registerRules(v, clk); err != nil {
		panic("register validation rules: " + err.Error())
	}

	return &CustomValidator{validator: v}
}
