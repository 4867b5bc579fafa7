package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/farmabit/magistral-api/internal/application/batches"
	"github.com/farmabit/magistral-api/internal/application/manipulation"
	"github.com/farmabit/magistral-api/internal/application/stock"
	"github.com/farmabit/magistral-api/internal/application/traceability"
	"github.com/farmabit/magistral-api/internal/application/usecase"
	"github.com/farmabit/magistral-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	MaterialUC *usecase.MaterialUseCase
	SupplierUC *usecase.SupplierUseCase
	RegistryUC *batches.RegistryUseCase
	LedgerUC   *stock.LedgerUseCase
	QueriesUC  *stock.QueriesUseCase
	WorkflowUC *manipulation.WorkflowUseCase
	TraceUC    *traceability.UseCase
	JWTSecret  string
}

// Router registra las rutas de la API. Toda la API exige Bearer token; las
// operaciones de calidad y las autorizadas quedan detrás de RequireRole.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	pharmacist := RequireRole(jwt.RoleAdmin, jwt.RolePharmacist)

	// Materias primas y proveedores
	materialHandler := NewMaterialHandler(deps.MaterialUC, deps.SupplierUC)
	materials := api.Group("/materials")
	materials.Post("/", pharmacist, materialHandler.CreateMaterial)
	materials.Get("/", materialHandler.ListMaterials)
	materials.Get("/:id", materialHandler.GetMaterial)
	materials.Put("/:id", pharmacist, materialHandler.UpdateMaterial)

	suppliers := api.Group("/suppliers")
	suppliers.Post("/", pharmacist, materialHandler.CreateSupplier)
	suppliers.Get("/", materialHandler.ListSuppliers)
	suppliers.Get("/:id", materialHandler.GetSupplier)

	// Lotes: la recepción es operativa, la liberación de calidad es del farmacéutico
	batchHandler := NewBatchHandler(deps.RegistryUC)
	batchGroup := api.Group("/batches")
	batchGroup.Post("/", batchHandler.Receive)
	batchGroup.Get("/", batchHandler.ListByMaterial)
	batchGroup.Get("/quarantine", batchHandler.ListInQuarantine)
	batchGroup.Get("/expiring", batchHandler.ListExpiring)
	batchGroup.Get("/:id", batchHandler.GetByID)
	batchGroup.Post("/:id/approve", pharmacist, batchHandler.Approve)
	batchGroup.Post("/:id/reject", pharmacist, batchHandler.Reject)
	batchGroup.Post("/:id/expire", pharmacist, batchHandler.Expire)
	batchGroup.Delete("/:id", pharmacist, batchHandler.Delete)

	// Libro de movimientos y consultas de existencias
	stockHandler := NewStockHandler(deps.LedgerUC, deps.QueriesUC)
	stockGroup := api.Group("/stock")
	stockGroup.Post("/entries", stockHandler.RegisterEntry)
	stockGroup.Post("/exits", stockHandler.RegisterExit)
	stockGroup.Post("/adjustments", pharmacist, stockHandler.RegisterAdjustment)
	stockGroup.Post("/losses", pharmacist, stockHandler.RegisterLoss)
	stockGroup.Get("/kardex", stockHandler.Kardex)
	stockGroup.Get("/balance/:material_id", stockHandler.Balance)
	stockGroup.Get("/below-minimum", stockHandler.ListBelowMinimum)

	// Órdenes de manipulación: etapas operativas abiertas al técnico, controles al farmacéutico
	manipulationHandler := NewManipulationHandler(deps.WorkflowUC)
	orders := api.Group("/orders")
	orders.Post("/", manipulationHandler.Create)
	orders.Get("/", manipulationHandler.List)
	orders.Get("/:id", manipulationHandler.GetByID)
	orders.Get("/:id/summary", manipulationHandler.GetSummary)
	orders.Post("/:id/production", manipulationHandler.StartProduction)
	orders.Post("/:id/weighing", manipulationHandler.StartWeighing)
	orders.Post("/:id/weighing/check", pharmacist, manipulationHandler.CheckWeighing)
	orders.Post("/:id/mixing", manipulationHandler.StartMixing)
	orders.Post("/:id/packaging", manipulationHandler.StartPackaging)
	orders.Post("/:id/labeling", manipulationHandler.StartLabeling)
	orders.Post("/:id/final-check", pharmacist, manipulationHandler.FinalCheck)
	orders.Post("/:id/cancel", pharmacist, manipulationHandler.Cancel)

	// Trazabilidad
	traceHandler := NewTraceabilityHandler(deps.TraceUC)
	trace := api.Group("/traceability")
	trace.Get("/batches/:id", traceHandler.TraceBatch)
	trace.Get("/orders/:id", traceHandler.TraceOrder)
}
