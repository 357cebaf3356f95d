package services

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fastapi1403/building-management/internal/models"
	"github.com/fastapi1403/building-management/internal/utils"
)

// NewValidator reports fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(tenantLeaseValidation, models.Tenant{})
	return v
}

func tenantLeaseValidation(sl validator.StructLevel) {
	t := sl.Current().Interface().(models.Tenant)
	if t.LeaseInverted() {
		sl.ReportError(t.LeaseEndDate, "lease_end_date", "LeaseEndDate", "gtefield", "lease_start_date")
	}
}

// ToValidationError converts validator output, keeping the first failing field.
func ToValidationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &utils.ValidationError{Field: fe.Field(), Reason: reasonFor(fe)}
	}
	return &utils.ValidationError{Reason: err.Error()}
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be >= " + fe.Param()
	case "gt":
		return "must be > " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "gtefield":
		return "must not precede " + fe.Param()
	}
	return "failed " + fe.Tag() + " check"
}
