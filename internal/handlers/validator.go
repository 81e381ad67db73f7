package handlers

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/tienda/internal/domain"
)

// Validator adapts go-playground/validator to echo.Validator. Failures wrap
// domain.ErrValidation.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

func (cv *Validator) Validate(i interface{}) error {
	if err := cv.v.Struct(i); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

type credentials struct {
	Email    string `json:"correo" form:"correo" validate:"required"`
	Password string `json:"contraseña" form:"contraseña" validate:"required,max=72"`
}

type registration struct {
	Name     string `json:"nombre" form:"nombre" validate:"required"`
	Email    string `json:"correo" form:"correo" validate:"required,email"`
	Password string `json:"contraseña" form:"contraseña" validate:"required,max=72"`
}

type accountUpdate struct {
	Name     *string `json:"nombre" validate:"omitempty,min=1"`
	Email    *string `json:"correo" validate:"omitempty,email"`
	Password *string `json:"contraseña" validate:"omitempty,min=1,max=72"`
}

// bindValid binds the request into dst and validates it.
func bindValid(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return c.Validate(dst)
}
