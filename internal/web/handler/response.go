package handler

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/catalog-admin/catalog-admin/internal/auth"
	"github.com/catalog-admin/catalog-admin/internal/db/controller/catalog"
	"github.com/catalog-admin/catalog-admin/internal/rbac"
)

// Response is the JSON envelope of the API.
type Response struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    any               `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// ValidationError lists invalid request fields with a short reason each.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for f, msg := range e.Fields {
		parts = append(parts, f+": "+msg)
	}

	return "validation failed: " + strings.Join(parts, ", ")
}

// Invalid returns a ValidationError for a single field.
func Invalid(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// NewValidator returns a validator reporting fields by their json name.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// Bind decodes the JSON body into dst and validates it.
func Bind(c fiber.Ctx, v *validator.Validate, dst any) error {
	if err := c.Bind().JSON(dst); err != nil {
		return Invalid("body", "malformed JSON")
	}

	err := v.Struct(dst)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = describe(fe)
		}

		return &ValidationError{Fields: fields}
	}

	return err //nolint:wrapcheck
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return "is required"
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "email":
		return "must be a valid email"
	case "eqfield":
		return "must match " + fe.Param()
	default:
		return "is invalid"
	}
}

// ParamID reads a positive integer route parameter.
func ParamID(c fiber.Ctx, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, Invalid(name, "must be a positive integer")
	}

	return id, nil
}

// OK answers 200 with data.
func OK(c fiber.Ctx, message string, data any) error {
	return c.JSON(Response{Success: true, Message: message, Data: data})
}

// Created answers 201 with data.
func Created(c fiber.Ctx, message string, data any) error {
	return c.Status(fiber.StatusCreated).JSON(Response{Success: true, Message: message, Data: data})
}

// StatusOf maps an error to its HTTP status.
func StatusOf(err error) int {
	var verr *ValidationError

	switch {
	case errors.As(err, &verr),
		errors.Is(err, catalog.ErrCategoryNameEmpty):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, rbac.ErrDuplicateName),
		errors.Is(err, rbac.ErrInUse),
		errors.Is(err, rbac.ErrHasAssignedUsers),
		errors.Is(err, catalog.ErrCategoryAlreadyExists),
		errors.Is(err, catalog.ErrProductAlreadyExists):
		return fiber.StatusConflict
	case errors.Is(err, rbac.ErrRoleNotFound),
		errors.Is(err, rbac.ErrPermissionNotFound),
		errors.Is(err, rbac.ErrUserNotFound),
		errors.Is(err, catalog.ErrCategoryNotFound),
		errors.Is(err, catalog.ErrProductNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, rbac.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, rbac.ErrPermissionDenied),
		errors.Is(err, auth.ErrUserAccountDisabled):
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// Error answers with the status and message matching err.
// Unexpected errors are logged and hidden behind a generic message.
func Error(c fiber.Ctx, err error) error {
	status := StatusOf(err)
	resp := Response{Message: err.Error()}

	var verr *ValidationError
	if errors.As(err, &verr) {
		resp.Message = "The given data was invalid"
		resp.Errors = verr.Fields
	}

	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")

		resp.Message = "Internal Server Error"
	}

	return c.Status(status).JSON(resp)
}

// AsValidation turns a "not found" error about an id given in the request
// body into a ValidationError on field.
func AsValidation(err error, field string, notFound ...error) error {
	for _, nf := range notFound {
		if errors.Is(err, nf) {
			return Invalid(field, err.Error())
		}
	}

	return err
}
