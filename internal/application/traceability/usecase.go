package traceability

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/farmabit/magistral-api/internal/domain"
	"github.com/farmabit/magistral-api/internal/domain/entity"
	"github.com/farmabit/magistral-api/internal/domain/repository"
)

// UseCase reconstruye la trazabilidad de lotes y órdenes leyendo el libro de
// movimientos. Solo lectura: nunca muta estado.
type UseCase struct {
	batchRepo    repository.BatchRepository
	movementRepo repository.StockMovementRepository
	orderRepo    repository.ManipulationOrderRepository
}

// NewUseCase construye las consultas de trazabilidad.
func NewUseCase(
	batchRepo repository.BatchRepository,
	movementRepo repository.StockMovementRepository,
	orderRepo repository.ManipulationOrderRepository,
) *UseCase {
	return &UseCase{batchRepo: batchRepo, movementRepo: movementRepo, orderRepo: orderRepo}
}

// ConsumingOrder total consumido de un lote por una orden de manipulación.
type ConsumingOrder struct {
	OrderID     string
	OrderNumber string
	Quantity    decimal.Decimal // total consumido del lote (positivo)
}

// BatchTrace cadena completa de un lote: todos sus movimientos en orden cronológico
// y las órdenes que consumieron de él con el total por orden.
type BatchTrace struct {
	Batch           *entity.Batch
	Movements       []*entity.StockMovement
	ConsumingOrders []ConsumingOrder
}

// TraceBatch reconstruye la historia de un lote. Los movimientos vienen ascendentes
// por fecha; por cada orden distinta referenciada por un CONSUMPTION se acumula el
// total consumido de este lote.
func (uc *UseCase) TraceBatch(ctx context.Context, batchID string) (*BatchTrace, error) {
	if batchID == "" {
		return nil, domain.ErrInvalidInput
	}
	batch, err := uc.batchRepo.GetByID(batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, domain.ErrNotFound
	}
	movements, err := uc.movementRepo.ListByBatch(batchID)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]decimal.Decimal)
	var orderIDs []string // preserva el orden de primera aparición
	for _, mov := range movements {
		if mov.Type != entity.MovementTypeConsumption || mov.OrderID == "" {
			continue
		}
		if _, ok := totals[mov.OrderID]; !ok {
			orderIDs = append(orderIDs, mov.OrderID)
		}
		totals[mov.OrderID] = totals[mov.OrderID].Add(mov.Quantity.Neg())
	}

	consuming := make([]ConsumingOrder, 0, len(orderIDs))
	for _, id := range orderIDs {
		co := ConsumingOrder{OrderID: id, Quantity: totals[id]}
		if order, err := uc.orderRepo.GetByID(id); err == nil && order != nil {
			co.OrderNumber = order.OrderNumber
		}
		consuming = append(consuming, co)
	}

	return &BatchTrace{Batch: batch, Movements: movements, ConsumingOrders: consuming}, nil
}

// ConsumedBatch lote consumido por una orden con el total descontado.
type ConsumedBatch struct {
	Batch    *entity.Batch
	Quantity decimal.Decimal
}

// OrderTrace cadena de una orden: sus movimientos de consumo y los lotes de origen.
type OrderTrace struct {
	Order           *entity.ManipulationOrder
	Movements       []*entity.StockMovement
	ConsumedBatches []ConsumedBatch
}

// TraceOrder reconstruye, para una orden, los movimientos vinculados y cada lote
// consumido con su total. Es la consulta inversa de TraceBatch.
func (uc *UseCase) TraceOrder(ctx context.Context, orderID string) (*OrderTrace, error) {
	if orderID == "" {
		return nil, domain.ErrInvalidInput
	}
	order, err := uc.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	movements, err := uc.movementRepo.ListByOrder(orderID)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]decimal.Decimal)
	var batchIDs []string
	for _, mov := range movements {
		if mov.Type != entity.MovementTypeConsumption || mov.BatchID == "" {
			continue
		}
		if _, ok := totals[mov.BatchID]; !ok {
			batchIDs = append(batchIDs, mov.BatchID)
		}
		totals[mov.BatchID] = totals[mov.BatchID].Add(mov.Quantity.Neg())
	}

	consumed := make([]ConsumedBatch, 0, len(batchIDs))
	for _, id := range batchIDs {
		batch, err := uc.batchRepo.GetByID(id)
		if err != nil {
			return nil, err
		}
		consumed = append(consumed, ConsumedBatch{Batch: batch, Quantity: totals[id]})
	}

	return &OrderTrace{Order: order, Movements: movements, ConsumedBatches: consumed}, nil
}
