package services

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate   = newValidator()
	emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

var fieldMessages = map[string]string{
	"name.required":     "Name is required",
	"name.min":          "Name must be at least 2 characters",
	"name.max":          "Name must be at most 100 characters",
	"email.required":    "Email is required",
	"email.email":       "Invalid email address",
	"email.max":         "Email must be at most 255 characters",
	"phone.max":         "Phone number must be at most 20 characters",
	"date.required":     "Date is required",
	"time.required":     "Time is required",
	"guests.min":        "At least 1 guest required",
	"guests.max":        "Maximum 20 guests",
	"message.max":       "Message must be at most 1000 characters",
	"status.required":   "Status is required",
	"username.required": "Username is required",
	"password.required": "Password is required",
}

// validateStruct runs the tag rules on s and converts failures into a
// ValidationError with one entry per field.
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return invalidInput(fields)
}

func fieldMessage(fe validator.FieldError) string {
	if msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	return fe.Field() + " is invalid"
}

func invalidInput(fields []FieldError) *ValidationError {
	verr := &ValidationError{Message: "Invalid input", Fields: fields}
	if len(fields) > 0 {
		verr.Details = fields[0].Message
	}
	return verr
}

// checkEmailShape applies the stricter local@domain.tld rule on top of the
// validator's RFC check.
func checkEmailShape(email string) error {
	if emailShape.MatchString(email) {
		return nil
	}
	return invalidInput([]FieldError{{Field: "email", Message: fieldMessages["email.email"]}})
}

// NormalizeEmail trims and lower-cases an address before it is stored or looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
