package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-bodegas/internal/application/auth"
	"github.com/jhoicas/inventario-bodegas/internal/application/history"
	"github.com/jhoicas/inventario-bodegas/internal/application/inventory"
	"github.com/jhoicas/inventario-bodegas/internal/application/usecase"
	"github.com/jhoicas/inventario-bodegas/internal/application/withdrawal"
	"github.com/jhoicas/inventario-bodegas/internal/domain/entity"
	"github.com/jhoicas/inventario-bodegas/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	WarehouseUC  *usecase.WarehouseUseCase
	UserUC       *usecase.UserUseCase
	ItemUC       *inventory.ItemUseCase
	WithdrawalUC *withdrawal.UseCase
	HistoryUC    *history.QueryUseCase
	Users        repository.UserRepository
	JWTSecret    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token de un usuario activo)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret), RequireActiveUser(deps.Users))
	adminOnly := RequireRole(entity.RoleAdmin)

	users := protected.Group("/users")
	userHandler := NewUserHandler(deps.UserUC)
	users.Get("/me", userHandler.Me)
	users.Post("/", adminOnly, userHandler.Create)

	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)
	warehouses.Post("/", adminOnly, warehouseHandler.Create)
	warehouses.Patch("/:id/active", adminOnly, warehouseHandler.SetActive)

	// Las rutas fijas van antes de /:id.
	items := protected.Group("/items")
	itemHandler := NewItemHandler(deps.ItemUC)
	items.Post("/", itemHandler.Create)
	items.Get("/search", itemHandler.Search)
	items.Get("/barcode/:barcode", itemHandler.GetByBarcode)
	items.Get("/warehouse/:warehouse_id", itemHandler.ListByWarehouse)
	items.Get("/obra/:obra/warehouse/:warehouse_id", itemHandler.ListByObra)
	items.Get("/:id", itemHandler.GetByID)
	items.Post("/:id/additions", itemHandler.AddStock)
	items.Post("/:id/adjustments", adminOnly, itemHandler.AdjustStock)

	withdrawals := protected.Group("/withdrawals")
	withdrawalHandler := NewWithdrawalHandler(deps.WithdrawalUC)
	withdrawals.Post("/", withdrawalHandler.Create)
	withdrawals.Get("/warehouse/:warehouse_id", withdrawalHandler.ListByWarehouse)
	withdrawals.Get("/:id", withdrawalHandler.GetByID)
	withdrawals.Get("/:id/pdf", withdrawalHandler.DownloadPDF)

	historyHandler := NewHistoryHandler(deps.HistoryUC)
	protected.Get("/history/warehouse/:warehouse_id", historyHandler.ListByWarehouse)
}
