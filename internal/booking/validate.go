package booking

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names so they match the API payload.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("phone", validPhone); err != nil {
		panic(err)
	}
	return v
}

// validPhone accepts 7 to 15 digits with any separators.
func validPhone(fl validator.FieldLevel) bool {
	n := countDigits(fl.Field().String())
	return n >= 7 && n <= 15
}

var requiredMessages = map[string]string{
	"name":  "El nombre es obligatorio",
	"email": "El correo es obligatorio",
	"phone": "El teléfono es obligatorio",
	"date":  "La fecha es obligatoria",
	"time":  "El horario es obligatorio",
}

var invalidMessages = map[string]string{
	"name":    "El nombre no es válido",
	"email":   "El correo no es válido",
	"phone":   "El teléfono no es válido",
	"date":    "La fecha no es válida",
	"time":    "El horario no es válido",
	"service": "El servicio no es válido",
}

// checkStruct runs the struct's validate tags and records the first failure
// of each field in verr.
func checkStruct(s any, verr *ValidationError) {
	var fieldErrs validator.ValidationErrors
	if !errors.As(validate.Struct(s), &fieldErrs) {
		return
	}
	for _, fe := range fieldErrs {
		field := fe.Field()
		if _, seen := verr.Fields[field]; seen {
			continue
		}
		msg := invalidMessages[field]
		if fe.Tag() == "required" {
			msg = requiredMessages[field]
		}
		if msg == "" {
			msg = "Valor no válido"
		}
		verr.add(field, msg)
	}
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
