package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-bodegas/internal/application/dto"
	"github.com/jhoicas/inventario-bodegas/internal/domain"
	"github.com/shopspring/decimal"
)

// LocalError guarda el error de un 5xx para que lo registre el request logger.
const LocalError = "request_error"

var validate = validator.New()

func init() {
	// Los mensajes de validación usan el nombre JSON del campo.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// parseAndValidate lee el body JSON y aplica las etiquetas validate.
// Si falla ya escribió la respuesta 400 y devuelve false.
func parseAndValidate(c *fiber.Ctx, out interface{}) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validate.Struct(out); err != nil {
		return false, writeValidation(c, err)
	}
	return true, nil
}

// parseQuery lee los query params (limit=abc no cae a los valores por defecto) y los valida.
// Si falla ya escribió la respuesta 400 y devuelve false.
func parseQuery(c *fiber.Ctx, out interface{}) (bool, error) {
	if err := c.QueryParser(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_PARAMS", Message: "parámetros de consulta inválidos"})
	}
	if err := validate.Struct(out); err != nil {
		return false, writeValidation(c, err)
	}
	return true, nil
}

func writeValidation(c *fiber.Ctx, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	fields := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = fe.Tag()
	}
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Code:    "VALIDATION",
		Message: "datos inválidos",
		Details: fields,
	})
}

// fieldPath quita el nombre del struct raíz: "CreateItemRequest.name" -> "name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// writeError traduce un error de la capa de aplicación a status + dto.ErrorResponse.
func writeError(c *fiber.Ctx, err error) error {
	status, body := mapError(err)
	if status >= fiber.StatusInternalServerError {
		c.Locals(LocalError, err)
	}
	return c.Status(status).JSON(body)
}

func mapError(err error) (int, dto.ErrorResponse) {
	var insufficient *domain.InsufficientStockError
	if errors.As(err, &insufficient) {
		return fiber.StatusConflict, dto.ErrorResponse{
			Code:    "INSUFFICIENT_STOCK",
			Message: insufficient.Error(),
			Details: map[string]any{
				"item_id":   insufficient.ItemID,
				"item_name": insufficient.ItemName,
				"available": insufficient.Available,
				"requested": insufficient.Requested,
			},
		}
	}
	var mismatch *domain.ItemWarehouseMismatchError
	if errors.As(err, &mismatch) {
		return fiber.StatusUnprocessableEntity, dto.ErrorResponse{
			Code:    "ITEM_WAREHOUSE_MISMATCH",
			Message: mismatch.Error(),
			Details: map[string]any{
				"item_id":        mismatch.ItemID,
				"item_name":      mismatch.ItemName,
				"warehouse_name": mismatch.WarehouseName,
			},
		}
	}

	switch {
	case errors.Is(err, domain.ErrWarehouseNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "WAREHOUSE_NOT_FOUND", Message: err.Error()}
	case errors.Is(err, domain.ErrItemNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "ITEM_NOT_FOUND", Message: err.Error()}
	case errors.Is(err, domain.ErrUserNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "USER_NOT_FOUND", Message: err.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()}
	case errors.Is(err, domain.ErrEmptyWithdrawal):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "EMPTY_WITHDRAWAL", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidQuantity):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "INVALID_QUANTITY", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()}
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"}
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()}
	case errors.Is(err, domain.ErrStorage):
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "STORAGE_FAILURE", Message: "falla de almacenamiento, no se aplicó ningún cambio"}
	}
	return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"}
}
