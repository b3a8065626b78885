package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"lodgebook/pkg/logger"
	"lodgebook/pkg/model"

	"github.com/go-playground/validator/v10"
)

// minimumStay is the shortest bookable range. Anything under a full day is
// rejected at intake.
const minimumStay = 24 * time.Hour

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type RequestValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewRequestValidator(log *logger.Logger) *RequestValidator {
	v := validator.New()

	log.Info("Reservation request validator initialized successfully")

	return &RequestValidator{
		validate: v,
		logger:   log,
	}
}

func (v *RequestValidator) Validate(request *model.RequestForReservation) error {
	if err := v.validate.Struct(request); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if !request.DateTo.After(request.DateFrom) {
		return ValidationErrors{
			ValidationError{
				Field:   "DateTo",
				Message: "date_to must be after date_from",
			},
		}
	}

	if request.DateTo.Sub(request.DateFrom) < minimumStay {
		return ValidationErrors{
			ValidationError{
				Field:   "DateTo",
				Message: "stay must span at least one full day",
			},
		}
	}

	return nil
}

func (v *RequestValidator) ValidateStatusUpdate(update *model.RequestStatusUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *RequestValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "uuid4":
			message = fmt.Sprintf("%s must be a valid UUID", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "gtfield":
			message = fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
