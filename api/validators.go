package api

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/invoicebox/backend/dto"
	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/usecases/auth"
)

// InitValidators registers the custom binding tags and makes validation errors report the
// json name of the fields. It must run once, before the router serves requests.
func InitValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(fieldNameFromTag)
		_ = v.RegisterValidation("notblank", validateNotBlank)
		_ = v.RegisterValidation("permission", validatePermission)
		_ = v.RegisterValidation("password", validatePassword)
	}
}

func fieldNameFromTag(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if len(name) > 0 {
		if name == "-" {
			return ""
		}
		return name
	}

	name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
	if len(name) > 0 {
		return name
	}

	return ""
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validatePermission(fl validator.FieldLevel) bool {
	return models.IsAssignablePermission(models.Permission(fl.Field().String()))
}

func validatePassword(fl validator.FieldLevel) bool {
	return auth.ValidatePassword(fl.Field().String()) == nil
}

// adaptFieldValidationError maps a validation failure to a human readable message
func adaptFieldValidationError(fe validator.FieldError) string {
	switch fe.ActualTag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be empty"
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "should be a UUID"
	case "oneof":
		return fmt.Sprintf("must be one of %s", strings.Join(strings.Split(fe.Param(), " "), ", "))
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must have at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "permission":
		return fmt.Sprintf("must be one of %s", strings.Join(
			dto.AdaptPermissionsDto(models.AssignablePermissions), ", "))
	case "password":
		return "must have at least 10 characters, with an upper case letter, a lower case letter, a digit and a symbol"
	}
	return "is invalid"
}

// adaptValidationErrors turns the validator output into a field to message map
func adaptValidationErrors(errs validator.ValidationErrors) models.FieldValidationError {
	out := make(models.FieldValidationError, len(errs))
	for _, fe := range errs {
		field := fe.Field()
		if field == "" {
			field = fe.StructField()
		}
		out[field] = adaptFieldValidationError(fe)
	}
	return out
}
