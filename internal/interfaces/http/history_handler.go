package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-bodegas/internal/application/dto"
	"github.com/jhoicas/inventario-bodegas/internal/application/history"
	"github.com/jhoicas/inventario-bodegas/internal/domain/repository"
)

// HistoryHandler consulta la auditoría de movimientos.
type HistoryHandler struct {
	uc *history.QueryUseCase
}

// NewHistoryHandler construye el handler.
func NewHistoryHandler(uc *history.QueryUseCase) *HistoryHandler {
	return &HistoryHandler{uc: uc}
}

// ListByWarehouse godoc
// @Summary      Historial de una bodega
// @Tags         history
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  path   string  true   "ID de la bodega"
// @Param        action_type   query  string  false  "withdrawal | addition | adjustment"
// @Param        from          query  string  false  "desde (RFC3339 o YYYY-MM-DD)"
// @Param        to            query  string  false  "hasta (RFC3339 o YYYY-MM-DD)"
// @Param        limit         query  int     false  "límite"
// @Param        offset        query  int     false  "desplazamiento"
// @Success      200           {array}  dto.HistoryResponse
// @Failure      400           {object}  dto.ErrorResponse
// @Failure      404           {object}  dto.ErrorResponse
// @Router       /api/history/warehouse/{warehouse_id} [get]
func (h *HistoryHandler) ListByWarehouse(c *fiber.Ctx) error {
	var page dto.PageRequest
	if ok, err := parseQuery(c, &page); !ok {
		return err
	}
	filter := repository.HistoryFilter{
		ActionType: c.Query("action_type"),
		Limit:      page.Limit,
		Offset:     page.Offset,
	}
	var err error
	if filter.From, err = parseDateParam(c.Query("from"), false); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido"})
	}
	if filter.To, err = parseDateParam(c.Query("to"), true); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido"})
	}
	out, err := h.uc.ListByWarehouse(c.UserContext(), c.Params("warehouse_id"), filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// parseDateParam acepta RFC3339 o YYYY-MM-DD. Con endOfDay una fecha sin hora
// cubre el día completo.
func parseDateParam(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
