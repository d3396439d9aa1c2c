package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Validator wraps go-playground/validator with the Brazilian document tags
// cpf, cnpj, cep, br_phone, plate and renavam.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := &Validator{validate: validator.New()}
	v.validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	v.registerCustomValidations()
	return v
}

// Validate returns nil or a single error listing every failed field.
func (v *Validator) Validate(i interface{}) error {
	errs := v.ValidateStructured(i)
	if len(errs) == 0 {
		return nil
	}
	parts := make([]string, 0, len(errs))
	for f, m := range errs {
		parts = append(parts, f+": "+m)
	}
	return fmt.Errorf("validation failed: %s", strings.Join(parts, "; "))
}

// ValidateStructured returns a map of field -> error message for the frontend.
// Keys are the namespaced json paths, e.g. "address.zip".
func (v *Validator) ValidateStructured(i interface{}) map[string]string {
	errs := make(map[string]string)
	if err := v.validate.Struct(i); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, e := range validationErrors {
				errs[fieldPath(e.Namespace())] = message(e)
			}
		} else {
			errs["_global"] = err.Error()
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "Campo obrigatório"
	case "email":
		return "Email inválido"
	case "cpf":
		return "CPF inválido"
	case "cnpj":
		return "CNPJ inválido"
	case "cep":
		return "CEP deve ter 8 dígitos"
	case "br_phone":
		return "Telefone inválido"
	case "plate":
		return "Placa inválida"
	case "renavam":
		return "RENAVAM inválido"
	case "oneof":
		return fmt.Sprintf("Valor deve ser um de: %s", e.Param())
	case "len":
		return fmt.Sprintf("Deve ter %s caracteres", e.Param())
	case "gte":
		return fmt.Sprintf("Deve ser maior ou igual a %s", e.Param())
	case "lte":
		return fmt.Sprintf("Deve ser menor ou igual a %s", e.Param())
	}
	return fmt.Sprintf("falhou na validação '%s'", e.Tag())
}

func (v *Validator) registerCustomValidations() {
	// decimal.Decimal validates as float64 for gte/lte checks
	v.validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if val, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := val.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	docs := map[string]func(string) error{
		"cpf":      ValidateCPF,
		"cnpj":     ValidateCNPJ,
		"cep":      ValidateCEP,
		"br_phone": ValidatePhone,
		"plate":    ValidatePlate,
		"renavam":  ValidateRenavam,
	}
	for tag, fn := range docs {
		fn := fn
		_ = v.validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return fn(fl.Field().String()) == nil
		})
	}
}
