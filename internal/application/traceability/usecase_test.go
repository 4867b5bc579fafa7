package traceability_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmabit/magistral-api/internal/application/apptest"
	"github.com/farmabit/magistral-api/internal/application/stock"
	"github.com/farmabit/magistral-api/internal/application/traceability"
	"github.com/farmabit/magistral-api/internal/domain"
	"github.com/farmabit/magistral-api/internal/domain/entity"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func newTrace(s *apptest.Store) *traceability.UseCase {
	return traceability.NewUseCase(s.BatchRepo(), s.MovementRepo(), s.OrderRepo())
}

func seed(s *apptest.Store) (matID, batchID string) {
	matID, batchID = s.NewID(), s.NewID()
	s.Materials[matID] = entity.RawMaterial{
		ID: matID, Name: "Clotrimazol", UnitMeasure: "g", CurrentStock: dec(1000), Active: true,
	}
	s.Batches[batchID] = entity.Batch{
		ID: batchID, MaterialID: matID, SupplierID: "prov-1", BatchNumber: "CT-77",
		ReceivedQuantity: dec(1000), CurrentQuantity: dec(1000),
		Status: entity.BatchStatusApproved, ExpiryDate: time.Now().AddDate(1, 0, 0),
	}
	return matID, batchID
}

// Historia canónica: entrada de 1000, salida de 300, consumo de 50 por una orden.
// La traza debe devolver los tres movimientos en ese orden y la orden consumidora
// con su total.
func TestTraceBatch_HistoriaCompleta(t *testing.T) {
	s := apptest.NewStore()
	matID, batchID := seed(s)
	ledger := stock.NewLedgerUseCase(&apptest.TxRunner{Store: s})
	ctx := context.Background()

	orderID := s.NewID()
	s.Orders[orderID] = entity.ManipulationOrder{
		ID: orderID, OrderNumber: "OM-20260901-0001", Status: entity.OrderStatusWeighing,
	}

	// El lote arrancó con su agregado ya realizado: asentamos la ENTRY a mano para
	// que la historia arranque desde la recepción.
	b := s.Batches[batchID]
	b.CurrentQuantity = decimal.Zero
	s.Batches[batchID] = b
	m := s.Materials[matID]
	m.CurrentStock = decimal.Zero
	s.Materials[matID] = m
	_, err := ledger.RecordEntry(ctx, stock.EntryInput{
		MaterialID: matID, BatchID: batchID, Quantity: dec(1000),
		Reason: "recepción de lote CT-77", SupplierID: "prov-1", ActorID: "emp-1",
	})
	require.NoError(t, err)

	_, err = ledger.RecordExit(ctx, stock.ExitInput{
		MaterialID: matID, BatchID: batchID, Quantity: dec(300), Reason: "despacho", ActorID: "emp-1",
	})
	require.NoError(t, err)

	_, err = ledger.RecordConsumption(ctx, orderID, []stock.ConsumptionItem{
		{MaterialID: matID, BatchID: batchID, Quantity: dec(50)},
	}, "tec-1")
	require.NoError(t, err)

	trace, err := newTrace(s).TraceBatch(ctx, batchID)
	require.NoError(t, err)

	require.Len(t, trace.Movements, 3, "la historia debe estar completa y en orden")
	assert.Equal(t, entity.MovementTypeEntry, trace.Movements[0].Type)
	assert.True(t, trace.Movements[0].Quantity.Equal(dec(1000)))
	assert.Equal(t, entity.MovementTypeExit, trace.Movements[1].Type)
	assert.True(t, trace.Movements[1].Quantity.Equal(dec(-300)))
	assert.Equal(t, entity.MovementTypeConsumption, trace.Movements[2].Type)
	assert.True(t, trace.Movements[2].Quantity.Equal(dec(-50)))

	require.Len(t, trace.ConsumingOrders, 1)
	assert.Equal(t, orderID, trace.ConsumingOrders[0].OrderID)
	assert.Equal(t, "OM-20260901-0001", trace.ConsumingOrders[0].OrderNumber)
	assert.True(t, trace.ConsumingOrders[0].Quantity.Equal(dec(50)),
		"el total consumido por la orden se informa en positivo")
}

// Dos consumos de la misma orden se acumulan en una sola entrada; órdenes distintas
// quedan en orden de primera aparición.
func TestTraceBatch_AcumulaPorOrden(t *testing.T) {
	s := apptest.NewStore()
	matID, batchID := seed(s)
	ledger := stock.NewLedgerUseCase(&apptest.TxRunner{Store: s})
	ctx := context.Background()

	o1, o2 := s.NewID(), s.NewID()
	s.Orders[o1] = entity.ManipulationOrder{ID: o1, OrderNumber: "OM-20260901-0001"}
	s.Orders[o2] = entity.ManipulationOrder{ID: o2, OrderNumber: "OM-20260901-0002"}

	for _, c := range []struct {
		order string
		qty   int64
	}{{o1, 20}, {o2, 5}, {o1, 10}} {
		_, err := ledger.RecordConsumption(ctx, c.order, []stock.ConsumptionItem{
			{MaterialID: matID, BatchID: batchID, Quantity: dec(c.qty)},
		}, "tec-1")
		require.NoError(t, err)
	}

	trace, err := newTrace(s).TraceBatch(ctx, batchID)
	require.NoError(t, err)

	require.Len(t, trace.ConsumingOrders, 2)
	assert.Equal(t, o1, trace.ConsumingOrders[0].OrderID)
	assert.True(t, trace.ConsumingOrders[0].Quantity.Equal(dec(30)))
	assert.Equal(t, o2, trace.ConsumingOrders[1].OrderID)
	assert.True(t, trace.ConsumingOrders[1].Quantity.Equal(dec(5)))
}

func TestTraceBatch_Inexistente(t *testing.T) {
	s := apptest.NewStore()
	_, err := newTrace(s).TraceBatch(context.Background(), "fantasma")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = newTrace(s).TraceBatch(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Consulta inversa: desde la orden hacia los lotes de origen.
func TestTraceOrder_LotesDeOrigen(t *testing.T) {
	s := apptest.NewStore()
	matA, batchA := seed(s)
	matB, batchB := seed(s)
	ledger := stock.NewLedgerUseCase(&apptest.TxRunner{Store: s})
	ctx := context.Background()

	orderID := s.NewID()
	s.Orders[orderID] = entity.ManipulationOrder{
		ID: orderID, OrderNumber: "OM-20260901-0003", Status: entity.OrderStatusWeighing,
	}

	_, err := ledger.RecordConsumption(ctx, orderID, []stock.ConsumptionItem{
		{MaterialID: matA, BatchID: batchA, Quantity: dec(40)},
		{MaterialID: matB, BatchID: batchB, Quantity: dec(15)},
	}, "tec-1")
	require.NoError(t, err)

	trace, err := newTrace(s).TraceOrder(ctx, orderID)
	require.NoError(t, err)

	assert.Equal(t, "OM-20260901-0003", trace.Order.OrderNumber)
	require.Len(t, trace.Movements, 2)
	require.Len(t, trace.ConsumedBatches, 2)

	byID := map[string]decimal.Decimal{}
	for _, cb := range trace.ConsumedBatches {
		byID[cb.Batch.ID] = cb.Quantity
	}
	assert.True(t, byID[batchA].Equal(dec(40)))
	assert.True(t, byID[batchB].Equal(dec(15)))
}

func TestTraceOrder_SinConsumos(t *testing.T) {
	s := apptest.NewStore()
	orderID := s.NewID()
	s.Orders[orderID] = entity.ManipulationOrder{ID: orderID, OrderNumber: "OM-20260901-0009"}

	trace, err := newTrace(s).TraceOrder(context.Background(), orderID)
	require.NoError(t, err)
	assert.Empty(t, trace.Movements)
	assert.Empty(t, trace.ConsumedBatches)
}
