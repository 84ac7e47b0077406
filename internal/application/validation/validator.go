// Package validation traduce las etiquetas `validate:` de los DTO a errores de dominio.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/jhoicas/pedidos-api/internal/domain"
)

// searchTermPattern letras (incluye acentos), dígitos, espacios y . , - _ @ +
var searchTermPattern = regexp.MustCompile(`^[\p{L}\p{N}\s.,\-_@+]*$`)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Usar el nombre JSON (o query) del campo en los errores.
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "query"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
		_ = validate.RegisterValidation("searchterm", func(fl validator.FieldLevel) bool {
			return searchTermPattern.MatchString(fl.Field().String())
		})
	})
	return validate
}

// Struct valida s según sus etiquetas. Devuelve domain.ValidationErrors (o nil).
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validar entrada: %w", err)
	}
	out := make(domain.ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, domain.NewFieldError(fieldPath(fe), message(fe)))
	}
	return out.OrErr()
}

// fieldPath deja solo los nombres JSON: "CreateOrderRequest.lines[0].quantity" -> "lines[0].quantity".
// Los segmentos en mayúscula (struct raíz y structs embebidos) se descartan.
func fieldPath(fe validator.FieldError) string {
	parts := strings.Split(fe.Namespace(), ".")
	kept := parts[:0]
	for _, p := range parts {
		if p != "" && unicode.IsUpper([]rune(p)[0]) {
			continue
		}
		kept = append(kept, p)
	}
	if len(kept) == 0 {
		return fe.Field()
	}
	return strings.Join(kept, ".")
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es obligatorio"
	case "email":
		return "no es un email válido"
	case "min":
		if fe.Kind() == reflect.String {
			return "debe tener al menos " + fe.Param() + " caracteres"
		}
		if fe.Kind() == reflect.Slice {
			return "debe tener al menos " + fe.Param() + " elemento(s)"
		}
		return "debe ser al menos " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "no puede superar " + fe.Param() + " caracteres"
		}
		if fe.Kind() == reflect.Slice {
			return "no puede superar " + fe.Param() + " elementos"
		}
		return "no puede ser mayor que " + fe.Param()
	case "oneof":
		return "debe ser uno de: " + fe.Param()
	case "datetime":
		return "debe tener el formato " + fe.Param()
	case "searchterm":
		return "contiene caracteres no permitidos"
	}
	return "no es válido (" + fe.Tag() + ")"
}
