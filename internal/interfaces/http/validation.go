package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

// validate es la instancia compartida que aplica las etiquetas `validate` de los DTO.
var validate *validator.Validate

func init() {
	validate = validator.New()
	// Los mensajes usan el nombre JSON del campo, no el de Go.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			name = strings.SplitN(f.Tag.Get("query"), ",", 2)[0]
		}
		if name == "-" {
			return ""
		}
		return name
	})
}

// checkStruct valida v y convierte las violaciones en domain.ErrInvalidInput.
func checkStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(parts, "; "))
}

// parseBody decodifica el JSON del cuerpo en out y lo valida.
// Responde 400 INVALID_BODY si no decodifica y 400 VALIDATION_ERROR si viola las reglas.
func parseBody(c *fiber.Ctx, out any) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, badBody(c)
	}
	if err := checkStruct(out); err != nil {
		return false, writeError(c, err)
	}
	return true, nil
}

var errBadBody = errors.New("cuerpo inválido")

// inputError responde según lo que devolvió un decodificador de entrada.
func inputError(c *fiber.Ctx, err error) error {
	if errors.Is(err, errBadBody) {
		return badBody(c)
	}
	return writeError(c, err)
}
