package types

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

type Validater interface {
	Validate() map[string]string
}

type SearchParams struct {
	Query     string   `json:"query"`
	Limit     int      `json:"limit" validate:"omitempty,min=1,max=100"`
	Threshold *float64 `json:"threshold" validate:"omitempty,min=-1,max=1"`
}

type ReindexParams struct {
	Title   string `json:"title" validate:"required,max=200"`
	OwnerID string `json:"owner_id" validate:"required"`
	Content string `json:"content" validate:"required"`
}

func Validate(v Validater) map[string]string {
	return v.Validate()
}

func (params *SearchParams) Validate() map[string]string {
	return validateStruct(params)
}

func (params *ReindexParams) Validate() map[string]string {
	return validateStruct(params)
}

func validateStruct(v any) map[string]string {
	validate := validator.New()
	if err := validate.Struct(v); err != nil {
		errs := err.(validator.ValidationErrors)
		errors := make(map[string]string)
		for _, e := range errs {
			errors[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
		}
		return errors
	}
	return nil
}

func NewValidationError(errors map[string]string) ValidationError {
	return ValidationError{
		Status: http.StatusUnprocessableEntity,
		Errors: errors,
	}
}

type ValidationError struct {
	Status int               `json:"status"`
	Errors map[string]string `json:"errors"`
}

func (e ValidationError) Error() string {
	return "validation failed"
}
