package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/farmabit/magistral-api/internal/application/dto"
	"github.com/farmabit/magistral-api/internal/application/traceability"
)

// TraceabilityHandler expone las consultas de trazabilidad lote-orden.
type TraceabilityHandler struct {
	trace *traceability.UseCase
}

func NewTraceabilityHandler(trace *traceability.UseCase) *TraceabilityHandler {
	return &TraceabilityHandler{trace: trace}
}

// TraceBatch godoc
// @Summary      Trazabilidad completa de un lote
// @Description  Todos los movimientos del lote y las órdenes que consumieron de él.
// @Tags         traceability
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del lote"
// @Success      200  {object}  dto.BatchTraceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/traceability/batches/{id} [get]
func (h *TraceabilityHandler) TraceBatch(c *fiber.Ctx) error {
	trace, err := h.trace.TraceBatch(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	orders := make([]dto.ConsumingOrderDTO, 0, len(trace.ConsumingOrders))
	for _, co := range trace.ConsumingOrders {
		orders = append(orders, dto.ConsumingOrderDTO{
			OrderID:     co.OrderID,
			OrderNumber: co.OrderNumber,
			Quantity:    co.Quantity,
		})
	}
	return c.JSON(dto.BatchTraceResponse{
		Batch:           toBatchResponse(trace.Batch),
		Movements:       toMovementResponses(trace.Movements),
		ConsumingOrders: orders,
	})
}

// TraceOrder godoc
// @Summary      Trazabilidad de una orden de manipulación
// @Description  Movimientos vinculados a la orden y cada lote de origen con su total consumido.
// @Tags         traceability
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderTraceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/traceability/orders/{id} [get]
func (h *TraceabilityHandler) TraceOrder(c *fiber.Ctx) error {
	trace, err := h.trace.TraceOrder(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	consumed := make([]dto.ConsumedBatchDTO, 0, len(trace.ConsumedBatches))
	for _, cb := range trace.ConsumedBatches {
		consumed = append(consumed, dto.ConsumedBatchDTO{
			Batch:    toBatchResponse(cb.Batch),
			Quantity: cb.Quantity,
		})
	}
	return c.JSON(dto.OrderTraceResponse{
		Order:           toOrderResponse(trace.Order),
		Movements:       toMovementResponses(trace.Movements),
		ConsumedBatches: consumed,
	})
}
