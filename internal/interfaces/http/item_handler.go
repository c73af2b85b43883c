package http

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-bodegas/internal/application/dto"
	"github.com/jhoicas/inventario-bodegas/internal/application/inventory"
)

// ItemHandler maneja catálogo, búsquedas y entradas/ajustes de stock.
type ItemHandler struct {
	uc *inventory.ItemUseCase
}

// NewItemHandler construye el handler.
func NewItemHandler(uc *inventory.ItemUseCase) *ItemHandler {
	return &ItemHandler{uc: uc}
}

// Create godoc
// @Summary      Crear ítem
// @Description  obra y n_factura vacíos toman el nombre y el código de la bodega. Si stock > 0 se registra una entrada inicial en el historial.
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateItemRequest  true  "Datos del ítem"
// @Success      201   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/items [post]
func (h *ItemHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateItemRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.uc.CreateItem(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener ítem por ID
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del ítem"
// @Success      200  {object}  dto.ItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id} [get]
func (h *ItemHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByBarcode godoc
// @Summary      Buscar ítem por código de barras
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        barcode  path  string  true  "Código de barras"
// @Success      200      {object}  dto.ItemResponse
// @Failure      404      {object}  dto.ErrorResponse
// @Router       /api/items/barcode/{barcode} [get]
func (h *ItemHandler) GetByBarcode(c *fiber.Ctx) error {
	out, err := h.uc.GetByBarcode(c.UserContext(), c.Params("barcode"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Search godoc
// @Summary      Buscar ítems por nombre, factura o código
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        q             query  string  false  "texto a buscar"
// @Param        warehouse_id  query  string  false  "filtrar por bodega"
// @Param        limit         query  int     false  "límite"
// @Param        offset        query  int     false  "desplazamiento"
// @Success      200           {object}  dto.ItemListResponse
// @Failure      400           {object}  dto.ErrorResponse
// @Router       /api/items/search [get]
func (h *ItemHandler) Search(c *fiber.Ctx) error {
	var page dto.PageRequest
	if ok, err := parseQuery(c, &page); !ok {
		return err
	}
	out, err := h.uc.Search(c.UserContext(), c.Query("q"), c.Query("warehouse_id"), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListByWarehouse godoc
// @Summary      Listar ítems de una bodega
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  path   string  true   "ID de la bodega"
// @Param        limit         query  int     false  "límite"
// @Param        offset        query  int     false  "desplazamiento"
// @Success      200           {object}  dto.ItemListResponse
// @Failure      400           {object}  dto.ErrorResponse
// @Failure      404           {object}  dto.ErrorResponse
// @Router       /api/items/warehouse/{warehouse_id} [get]
func (h *ItemHandler) ListByWarehouse(c *fiber.Ctx) error {
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

// ListByObra godoc
// @Summary      Listar ítems de una obra dentro de una bodega
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        obra          path  string  true  "Obra"
// @Param        warehouse_id  path  string  true  "ID de la bodega"
// @Success      200           {array}  dto.ItemResponse
// @Router       /api/items/obra/{obra}/warehouse/{warehouse_id} [get]
func (h *ItemHandler) ListByObra(c *fiber.Ctx) error {
	// fiber no decodifica los parámetros de ruta ("Casa%20A").
	obra, err := url.PathUnescape(c.Params("obra"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "obra inválida"})
	}
	out, err := h.uc.ListByObra(c.UserContext(), obra, c.Params("warehouse_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// AddStock godoc
// @Summary      Registrar entrada de stock
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del ítem"
// @Param        body  body  dto.AddStockRequest  true  "cantidad y notas"
// @Success      200   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/items/{id}/additions [post]
func (h *ItemHandler) AddStock(c *fiber.Ctx) error {
	var in dto.AddStockRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.uc.AddStock(c.UserContext(), GetUserID(c), c.Params("id"), in.Quantity, in.Notes)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// AdjustStock godoc
// @Summary      Ajustar stock por conteo físico
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del ítem"
// @Param        body  body  dto.AdjustStockRequest  true  "nuevo stock y notas"
// @Success      200   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/items/{id}/adjustments [post]
func (h *ItemHandler) AdjustStock(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.uc.AdjustStock(c.UserContext(), GetUserID(c), c.Params("id"), *in.NewStock, in.Notes)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
