package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-bodegas/internal/application/dto"
	"github.com/jhoicas/inventario-bodegas/internal/domain/entity"
)

// userLookup es el contrato mínimo que necesita el middleware para verificar la cuenta.
// Lo implementa repository.UserRepository.
type userLookup interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
}

// RequireActiveUser verifica que el usuario del token siga existiendo y activo.
// Debe usarse DESPUÉS de AuthMiddleware (necesita LocalUserID).
//
// Comportamiento:
//   - 401 Unauthorized → usuario inexistente o desactivado después de emitir el token.
//   - 503 Service Unavailable → fallo de infraestructura al consultar el almacén.
func RequireActiveUser(users userLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := GetUserID(c)
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "user_id no encontrado en el token",
			})
		}

		u, err := users.GetByID(c.UserContext(), userID)
		if err != nil {
			c.Locals(LocalError, err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "SESSION_CHECK_FAILED",
				Message: "no se pudo verificar la sesión, intente más tarde",
			})
		}

		if u == nil || !u.IsActive {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "INACTIVE_USER",
				Message: "el usuario no existe o está inactivo",
			})
		}

		return c.Next()
	}
}
