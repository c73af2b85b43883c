package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-bodegas/internal/application/dto"
	"github.com/jhoicas/inventario-bodegas/internal/application/withdrawal"
	"github.com/jhoicas/inventario-bodegas/internal/domain/entity"
)

// WithdrawalHandler expone el motor de retiros y sus consultas.
type WithdrawalHandler struct {
	uc *withdrawal.UseCase
}

// NewWithdrawalHandler construye el handler.
func NewWithdrawalHandler(uc *withdrawal.UseCase) *WithdrawalHandler {
	return &WithdrawalHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar retiro de herramientas
// @Description  Valida y aplica todas las líneas como una unidad: si una falla no se descuenta nada.
// @Description  El usuario sale del token; un operador con bodega asignada solo retira de ella.
// @Tags         withdrawals
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateWithdrawalRequest  true  "bodega, obra e ítems"
// @Success      201   {object}  dto.WithdrawalResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/withdrawals [post]
func (h *WithdrawalHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateWithdrawalRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}

	session := entity.User{Role: GetRole(c), WarehouseID: GetWarehouseID(c)}
	if !session.CanWithdrawFrom(in.WarehouseID) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Code:    "FORBIDDEN",
			Message: "solo puede retirar de su bodega asignada",
			Details: map[string]any{"assigned_warehouse_id": session.WarehouseID},
		})
	}

	lines := make([]withdrawal.LineInput, 0, len(in.Items))
	for _, l := range in.Items {
		lines = append(lines, withdrawal.LineInput{ItemID: l.ItemID, Quantity: l.Quantity})
	}
	w, err := h.uc.Submit(c.UserContext(), withdrawal.SubmitInput{
		WarehouseID: in.WarehouseID,
		Obra:        in.Obra,
		Notes:       in.Notes,
		UserID:      GetUserID(c),
		Lines:       lines,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(withdrawal.ToResponse(w))
}

// GetByID godoc
// @Summary      Obtener retiro
// @Tags         withdrawals
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del retiro"
// @Success      200  {object}  dto.WithdrawalResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/withdrawals/{id} [get]
func (h *WithdrawalHandler) GetByID(c *fiber.Ctx) error {
	w, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(withdrawal.ToResponse(w))
}

// ListByWarehouse godoc
// @Summary      Listar retiros de una bodega
// @Tags         withdrawals
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  path   string  true   "ID de la bodega"
// @Param        limit         query  int     false  "límite"
// @Param        offset        query  int     false  "desplazamiento"
// @Success      200           {array}  dto.WithdrawalResponse
// @Failure      400           {object}  dto.ErrorResponse
// @Failure      404           {object}  dto.ErrorResponse
// @Router       /api/withdrawals/warehouse/{warehouse_id} [get]
func (h *WithdrawalHandler) ListByWarehouse(c *fiber.Ctx) error {
	var page dto.PageRequest
	if ok, err := parseQuery(c, &page); !ok {
		return err
	}
	out, err := h.uc.ListByWarehouse(c.UserContext(), c.Params("warehouse_id"), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DownloadPDF godoc
// @Summary      Descargar comprobante PDF del retiro
// @Tags         withdrawals
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del retiro"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/withdrawals/{id}/pdf [get]
func (h *WithdrawalHandler) DownloadPDF(c *fiber.Ctx) error {
	pdf, filename, err := h.uc.Receipt(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(pdf)
}
