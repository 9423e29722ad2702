package handler

import (
	"errors"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/learnora/learnora-api/internal/middleware"
	"github.com/learnora/learnora-api/internal/utils"
)

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
		if id, ok := v.(int); ok {
			if id < 0 {
				return 0
			}
			return uint(id)
		}
	}
	return 0
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

// validationFieldErrors flattens validator output into per-field entries
// matching the JSON casing of the request payload.
func validationFieldErrors(err error) []utils.FieldError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	fields := make([]utils.FieldError, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		fields = append(fields, utils.FieldError{
			Field:   fieldPath(fieldErr.Namespace()),
			Message: validationMessage(fieldErr),
		})
	}
	return fields
}

// fieldPath converts a validator namespace such as
// "CustomPathPayload.Phases[0].Steps[1].Title" into the snake_case form
// clients see in JSON, e.g. "phases[0].steps[1].title".
func fieldPath(namespace string) string {
	if idx := strings.Index(namespace, "."); idx >= 0 {
		namespace = namespace[idx+1:]
	}
	var b strings.Builder
	b.Grow(len(namespace) + 4)
	for i, r := range namespace {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := rune(namespace[i-1])
				if prev != '.' && prev != '[' && !unicode.IsUpper(prev) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func validationMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fieldErr.Param(), " ", ", ")
	case "min":
		if fieldErr.Kind() == reflect.Slice {
			return "must contain at least " + fieldErr.Param() + " items"
		}
		return "must be at least " + fieldErr.Param() + " characters"
	case "max":
		if fieldErr.Kind() == reflect.Slice {
			return "must contain at most " + fieldErr.Param() + " items"
		}
		return "must be at most " + fieldErr.Param() + " characters"
	default:
		return "is invalid"
	}
}
