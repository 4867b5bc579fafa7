package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/farmabit/magistral-api/internal/application/dto"
	"github.com/farmabit/magistral-api/internal/application/stock"
)

// StockHandler maneja el libro de movimientos y las consultas de existencias.
type StockHandler struct {
	ledger  *stock.LedgerUseCase
	queries *stock.QueriesUseCase
}

func NewStockHandler(ledger *stock.LedgerUseCase, queries *stock.QueriesUseCase) *StockHandler {
	return &StockHandler{ledger: ledger, queries: queries}
}

// RegisterEntry godoc
// @Summary      Asentar una entrada de stock contra un lote
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterEntryRequest  true  "entrada"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/entries [post]
func (h *StockHandler) RegisterEntry(c *fiber.Ctx) error {
	var in dto.RegisterEntryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	mov, err := h.ledger.RecordEntry(c.Context(), stock.EntryInput{
		MaterialID:     in.MaterialID,
		BatchID:        in.BatchID,
		Quantity:       in.Quantity,
		Reason:         in.Reason,
		SupplierID:     in.SupplierID,
		DocumentNumber: in.DocumentNumber,
		ActorID:        GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(mov))
}

// RegisterExit godoc
// @Summary      Asentar una salida manual de stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterExitRequest  true  "salida"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/exits [post]
func (h *StockHandler) RegisterExit(c *fiber.Ctx) error {
	var in dto.RegisterExitRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	mov, err := h.ledger.RecordExit(c.Context(), stock.ExitInput{
		MaterialID:     in.MaterialID,
		BatchID:        in.BatchID,
		Quantity:       in.Quantity,
		Reason:         in.Reason,
		ActorID:        GetUserID(c),
		AuthorizedBy:   in.AuthorizedBy,
		OrderID:        in.OrderID,
		DocumentNumber: in.DocumentNumber,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(mov))
}

// RegisterAdjustment godoc
// @Summary      Asentar un ajuste de inventario autorizado
// @Description  El delta lleva signo. Los ajustes negativos nunca dejan saldos bajo cero.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterAdjustmentRequest  true  "ajuste"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/adjustments [post]
func (h *StockHandler) RegisterAdjustment(c *fiber.Ctx) error {
	var in dto.RegisterAdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	mov, err := h.ledger.RecordAdjustment(c.Context(), stock.AdjustmentInput{
		MaterialID:   in.MaterialID,
		BatchID:      in.BatchID,
		Delta:        in.Delta,
		Reason:       in.Reason,
		ActorID:      GetUserID(c),
		AuthorizedBy: in.AuthorizedBy,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(mov))
}

// RegisterLoss godoc
// @Summary      Asentar una pérdida (vencimiento, derrame, rotura)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterLossRequest  true  "pérdida"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/losses [post]
func (h *StockHandler) RegisterLoss(c *fiber.Ctx) error {
	var in dto.RegisterLossRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	mov, err := h.ledger.RecordLoss(c.Context(), stock.LossInput{
		MaterialID:   in.MaterialID,
		BatchID:      in.BatchID,
		Quantity:     in.Quantity,
		LossType:     in.LossType,
		Reason:       in.Reason,
		ActorID:      GetUserID(c),
		AuthorizedBy: in.AuthorizedBy,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(mov))
}

// Kardex godoc
// @Summary      Kardex de una materia prima
// @Description  Movimientos del material en orden cronológico inverso, con filtro opcional de fechas.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        material_id  query  string  true   "ID de la materia prima"
// @Param        from         query  string  false  "desde (RFC3339)"
// @Param        to           query  string  false  "hasta (RFC3339)"
// @Param        limit        query  int     false  "máximo de resultados"
// @Param        offset       query  int     false  "desplazamiento"
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/stock/kardex [get]
func (h *StockHandler) Kardex(c *fiber.Ctx) error {
	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido, se espera RFC3339"})
		}
		from = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido, se espera RFC3339"})
		}
		to = &t
	}
	limit, _ := strconv.Atoi(c.Query("limit", "100"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	movs, err := h.queries.Kardex(c.Context(), c.Query("material_id"), from, to, limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toMovementResponses(movs))
}

// Balance godoc
// @Summary      Saldo agregado de una materia prima
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        material_id  path  string  true  "ID de la materia prima"
// @Success      200  {object}  dto.MaterialResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/balance/{material_id} [get]
func (h *StockHandler) Balance(c *fiber.Ctx) error {
	material, err := h.queries.Balance(c.Context(), c.Params("material_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toMaterialResponse(material))
}

// ListBelowMinimum godoc
// @Summary      Materias primas bajo el stock mínimo
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.MaterialResponse
// @Router       /api/stock/below-minimum [get]
func (h *StockHandler) ListBelowMinimum(c *fiber.Ctx) error {
	materials, err := h.queries.ListBelowMinimum(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toMaterialResponses(materials))
}
