package stock_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmabit/magistral-api/internal/application/apptest"
	"github.com/farmabit/magistral-api/internal/application/stock"
	"github.com/farmabit/magistral-api/internal/domain"
	"github.com/farmabit/magistral-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de escenario
// ──────────────────────────────────────────────────────────────────────────────

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// seedMaterialAndBatch siembra una materia prima con un lote aprobado de 1000 y
// el agregado ya realizado (como si la recepción + aprobación hubieran pasado).
func seedMaterialAndBatch(s *apptest.Store, status string, qty int64) (matID, batchID string) {
	matID = s.NewID()
	batchID = s.NewID()
	s.Materials[matID] = entity.RawMaterial{
		ID: matID, Name: "Minoxidil", UnitMeasure: "g",
		CurrentStock: dec(qty), Active: true,
	}
	s.Batches[batchID] = entity.Batch{
		ID: batchID, MaterialID: matID, SupplierID: "prov-1",
		BatchNumber: "L-001", ReceivedQuantity: dec(qty), CurrentQuantity: dec(qty),
		Status: status, ExpiryDate: time.Now().AddDate(1, 0, 0),
	}
	return matID, batchID
}

// assertReconciled verifica el invariante de conciliación: el agregado de cada
// materia prima es la suma de las cantidades de sus lotes no rechazados.
func assertReconciled(t *testing.T, s *apptest.Store) {
	t.Helper()
	for id, m := range s.Materials {
		sum := decimal.Zero
		for _, b := range s.Batches {
			if b.MaterialID == id && b.Status != entity.BatchStatusRejected {
				sum = sum.Add(b.CurrentQuantity)
			}
		}
		assert.True(t, m.CurrentStock.Equal(sum),
			"agregado de %s debe conciliar: stock=%s suma_lotes=%s", m.Name, m.CurrentStock, sum)
	}
}

// assertMovementArithmetic verifica StockAfter == StockBefore + Quantity en todo el libro.
func assertMovementArithmetic(t *testing.T, s *apptest.Store) {
	t.Helper()
	for _, mov := range s.Movements {
		assert.True(t, mov.StockAfter.Equal(mov.StockBefore.Add(mov.Quantity)),
			"aritmética del movimiento %s: before=%s qty=%s after=%s",
			mov.ID, mov.StockBefore, mov.Quantity, mov.StockAfter)
	}
}

func newLedger(s *apptest.Store) *stock.LedgerUseCase {
	return stock.NewLedgerUseCase(&apptest.TxRunner{Store: s})
}

// ──────────────────────────────────────────────────────────────────────────────
// Salidas (escenario 2 del dominio)
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordExit_DescuentaLoteYAgregado(t *testing.T) {
	s := apptest.NewStore()
	matID, batchID := seedMaterialAndBatch(s, entity.BatchStatusApproved, 1000)
	ledger := newLedger(s)

	mov, err := ledger.RecordExit(context.Background(), stock.ExitInput{
		MaterialID: matID, BatchID: batchID, Quantity: dec(300),
		Reason: "venta", ActorID: "emp-1",
	})
	require.NoError(t, err)

	assert.True(t, mov.Quantity.Equal(dec(-300)), "la salida se asienta con cantidad negativa")
	assert.True(t, mov.StockBefore.Equal(dec(1000)))
	assert.True(t, mov.StockAfter.Equal(dec(700)))
	assert.True(t, s.Batches[batchID].CurrentQuantity.Equal(dec(700)))
	assert.True(t, s.Materials[matID].CurrentStock.Equal(dec(700)))
	assertReconciled(t, s)
	assertMovementArithmetic(t, s)
}

func TestRecordExit_InsuficienteNoCambiaNada(t *testing.T) {
	s := apptest.NewStore()
	matID, batchID := seedMaterialAndBatch(s, entity.BatchStatusApproved, 1000)
	ledger := newLedger(s)

	_, err := ledger.RecordExit(context.Background(), stock.ExitInput{
		MaterialID: matID, BatchID: batchID, Quantity: dec(300), Reason: "venta", ActorID: "emp-1",
	})
	require.NoError(t, err)

	// Pedir 800 con 700 disponibles debe fallar sin tocar nada.
	_, err = ledger.RecordExit(context.Background(), stock.ExitInput{
		MaterialID: matID, BatchID: batchID, Quantity: dec(800), Reason: "venta", ActorID: "emp-1",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientQuantity)
	assert.True(t, s.Batches[batchID].CurrentQuantity.Equal(dec(700)),
		"el lote no debe cambiar tras una salida rechazada")
	assert.Len(t, s.Movements, 1, "la salida rechazada no debe asentar movimiento")
	assertReconciled(t, s)
}

func TestRecordExit_LoteNoAprobado(t *testing.T) {
	for _, status := range []string{entity.BatchStatusQuarantine, entity.BatchStatusRejected, entity.BatchStatusExpired} {
		t.Run(status, func(t *testing.T) {
			s := apptest.NewStore()
			matID, batchID := seedMaterialAndBatch(s, status, 500)
			ledger := newLedger(s)

			_, err := ledger.RecordExit(context.Background(), stock.ExitInput{
				MaterialID: matID, BatchID: batchID, Quantity: dec(10), Reason: "venta", ActorID: "emp-1",
			})
			assert.ErrorIs(t, err, domain.ErrInvalidState)
			assert.Empty(t, s.Movements)
		})
	}
}

func TestRecordExit_CantidadInvalida(t *testing.T) {
	s := apptest.NewStore()
	matID, batchID := seedMaterialAndBatch(s, entity.BatchStatusApproved, 100)
	ledger := newLedger(s)

	_, err := ledger.RecordExit(context.Background(), stock.ExitInput{
		MaterialID: matID, BatchID: batchID, Quantity: dec(0), Reason: "venta", ActorID: "emp-1",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = ledger.RecordExit(context.Background(), stock.ExitInput{
		MaterialID: matID, BatchID: batchID, Quantity: dec(-5), Reason: "venta", ActorID: "emp-1",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Entradas
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordEntry_NoSuperaLoRecibido(t *testing.T) {
	s := apptest.NewStore()
	matID, batchID := seedMaterialAndBatch(s, entity.BatchStatusApproved, 1000)
	ledger := newLedger(s)

	// El lote ya está a tope (1000/1000): cualquier reingreso lo excedería.
	_, err := ledger.RecordEntry(context.Background(), stock.EntryInput{
		MaterialID: matID, BatchID: batchID, Quantity: dec(1), Reason: "reingreso", ActorID: "emp-1",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assertReconciled(t, s)
}

func TestRecordEntry_ReingresoParcial(t *testing.T) {
	s := apptest.NewStore()
	matID, batchID := seedMaterialAndBatch(s, entity.BatchStatusApproved, 1000)
	ledger := newLedger(s)

	_, err := ledger.RecordExit(context.Background(), stock.ExitInput{
		MaterialID: matID, BatchID: batchID, Quantity: dec(200), Reason: "despacho", ActorID: "emp-1",
	})
	require.NoError(t, err)

	mov, err := ledger.RecordEntry(context.Background(), stock.EntryInput{
		MaterialID: matID, BatchID: batchID, Quantity: dec(150), Reason: "devolución", ActorID: "emp-1",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeEntry, mov.Type)
	assert.True(t, s.Batches[batchID].CurrentQuantity.Equal(dec(950)))
	assertReconciled(t, s)
	assertMovementArithmetic(t, s)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ajustes y pérdidas
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordAdjustment_NegativoNoBajaDeCero(t *testing.T) {
	s := apptest.NewStore()
	matID, batchID := seedMaterialAndBatch(s, entity.BatchStatusApproved, 100)
	ledger := newLedger(s)

	_, err := ledger.RecordAdjustment(context.Background(), stock.AdjustmentInput{
		MaterialID: matID, BatchID: batchID, Delta: dec(-150),
		Reason: "inventario físico", ActorID: "emp-1", AuthorizedBy: "farm-1",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientQuantity)
	assert.Empty(t, s.Movements)

	mov, err := ledger.RecordAdjustment(context.Background(), stock.AdjustmentInput{
		MaterialID: matID, BatchID: batchID, Delta: dec(-40),
		Reason: "inventario físico", ActorID: "emp-1", AuthorizedBy: "farm-1",
	})
	require.NoError(t, err)
	assert.True(t, mov.Quantity.Equal(dec(-40)))
	assert.True(t, s.Batches[batchID].CurrentQuantity.Equal(dec(60)))
	assertReconciled(t, s)
}

func TestRecordAdjustment_RequiereAutorizacion(t *testing.T) {
	s := apptest.NewStore()
	matID, batchID := seedMaterialAndBatch(s, entity.BatchStatusApproved, 100)
	ledger := newLedger(s)

	_, err := ledger.RecordAdjustment(context.Background(), stock.AdjustmentInput{
		MaterialID: matID, BatchID: batchID, Delta: dec(-10),
		Reason: "sin autorizar", ActorID: "emp-1",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecordLoss_VencimientoExpiraElLote(t *testing.T) {
	s := apptest.NewStore()
	matID, batchID := seedMaterialAndBatch(s, entity.BatchStatusApproved, 500)
	ledger := newLedger(s)

	mov, err := ledger.RecordLoss(context.Background(), stock.LossInput{
		MaterialID: matID, BatchID: batchID, Quantity: dec(500),
		LossType: entity.LossTypeExpiration, Reason: "vencido",
		ActorID: "emp-1", AuthorizedBy: "farm-1",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeLoss, mov.Type)
	assert.Equal(t, entity.LossTypeExpiration, mov.LossType)
	assert.Equal(t, entity.BatchStatusExpired, s.Batches[batchID].Status,
		"una pérdida por vencimiento debe transicionar el lote a EXPIRED")
	assert.True(t, s.Batches[batchID].CurrentQuantity.IsZero())
	assertReconciled(t, s)
}

func TestRecordLoss_DerrameNoCambiaEstado(t *testing.T) {
	s := apptest.NewStore()
	matID, batchID := seedMaterialAndBatch(s, entity.BatchStatusApproved, 500)
	ledger := newLedger(s)

	_, err := ledger.RecordLoss(context.Background(), stock.LossInput{
		MaterialID: matID, BatchID: batchID, Quantity: dec(20),
		LossType: entity.LossTypeSpill, Reason: "derrame en mesada",
		ActorID: "emp-1", AuthorizedBy: "farm-1",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.BatchStatusApproved, s.Batches[batchID].Status)
	assert.True(t, s.Batches[batchID].CurrentQuantity.Equal(dec(480)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Consumo multi-ítem (pesada)
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordConsumption_MultiItem(t *testing.T) {
	s := apptest.NewStore()
	matA, batchA := seedMaterialAndBatch(s, entity.BatchStatusApproved, 1000)
	matB, batchB := seedMaterialAndBatch(s, entity.BatchStatusApproved, 200)
	ledger := newLedger(s)

	movs, err := ledger.RecordConsumption(context.Background(), "orden-1", []stock.ConsumptionItem{
		{MaterialID: matA, BatchID: batchA, Quantity: dec(50)},
		{MaterialID: matB, BatchID: batchB, Quantity: dec(30)},
	}, "emp-1")
	require.NoError(t, err)
	require.Len(t, movs, 2)

	for _, mov := range movs {
		assert.Equal(t, entity.MovementTypeConsumption, mov.Type)
		assert.Equal(t, "orden-1", mov.OrderID, "cada consumo queda vinculado a la orden")
	}
	assert.True(t, s.Batches[batchA].CurrentQuantity.Equal(dec(950)))
	assert.True(t, s.Batches[batchB].CurrentQuantity.Equal(dec(170)))
	assertReconciled(t, s)
	assertMovementArithmetic(t, s)
}

// Atomicidad: si el ítem 2 de 3 sobregira, no se persiste ningún movimiento.
func TestRecordConsumption_TodoONada(t *testing.T) {
	s := apptest.NewStore()
	matA, batchA := seedMaterialAndBatch(s, entity.BatchStatusApproved, 1000)
	matB, batchB := seedMaterialAndBatch(s, entity.BatchStatusApproved, 10)
	matC, batchC := seedMaterialAndBatch(s, entity.BatchStatusApproved, 1000)
	ledger := newLedger(s)

	_, err := ledger.RecordConsumption(context.Background(), "orden-1", []stock.ConsumptionItem{
		{MaterialID: matA, BatchID: batchA, Quantity: dec(50)},
		{MaterialID: matB, BatchID: batchB, Quantity: dec(999)}, // sobregiro
		{MaterialID: matC, BatchID: batchC, Quantity: dec(50)},
	}, "emp-1")
	assert.ErrorIs(t, err, domain.ErrInsufficientQuantity)

	assert.Empty(t, s.Movements, "no debe persistirse ningún movimiento de los ítems 1 y 3")
	assert.True(t, s.Batches[batchA].CurrentQuantity.Equal(dec(1000)))
	assert.True(t, s.Batches[batchC].CurrentQuantity.Equal(dec(1000)))
	assertReconciled(t, s)
}

// Gating: consumir de un lote en cuarentena o rechazado siempre falla sin movimientos.
func TestRecordConsumption_LoteNoAprobado(t *testing.T) {
	for _, status := range []string{entity.BatchStatusQuarantine, entity.BatchStatusRejected} {
		t.Run(status, func(t *testing.T) {
			s := apptest.NewStore()
			matID, batchID := seedMaterialAndBatch(s, status, 500)
			ledger := newLedger(s)

			_, err := ledger.RecordConsumption(context.Background(), "orden-1", []stock.ConsumptionItem{
				{MaterialID: matID, BatchID: batchID, Quantity: dec(5)},
			}, "emp-1")
			assert.ErrorIs(t, err, domain.ErrInvalidState)
			assert.Empty(t, s.Movements, "el gating de calidad no debe producir movimientos")
		})
	}
}

// Dos ítems contra el mismo lote se acumulan para la validación de disponibilidad.
func TestRecordConsumption_MismoLoteAcumula(t *testing.T) {
	s := apptest.NewStore()
	matID, batchID := seedMaterialAndBatch(s, entity.BatchStatusApproved, 100)
	ledger := newLedger(s)

	_, err := ledger.RecordConsumption(context.Background(), "orden-1", []stock.ConsumptionItem{
		{MaterialID: matID, BatchID: batchID, Quantity: dec(60)},
		{MaterialID: matID, BatchID: batchID, Quantity: dec(60)},
	}, "emp-1")
	assert.ErrorIs(t, err, domain.ErrInsufficientQuantity,
		"60+60 contra un lote de 100 debe rechazarse completo")
	assert.Empty(t, s.Movements)

	movs, err := ledger.RecordConsumption(context.Background(), "orden-1", []stock.ConsumptionItem{
		{MaterialID: matID, BatchID: batchID, Quantity: dec(60)},
		{MaterialID: matID, BatchID: batchID, Quantity: dec(40)},
	}, "emp-1")
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.True(t, s.Batches[batchID].CurrentQuantity.IsZero())
	// Los StockBefore/StockAfter deben encadenar sobre el mismo agregado.
	assert.True(t, movs[1].StockBefore.Equal(movs[0].StockAfter))
	assertMovementArithmetic(t, s)
}

// Invariante de no-negatividad tras una secuencia mixta de operaciones.
func TestLedger_NuncaNegativo(t *testing.T) {
	s := apptest.NewStore()
	matID, batchID := seedMaterialAndBatch(s, entity.BatchStatusApproved, 100)
	ledger := newLedger(s)
	ctx := context.Background()

	_, _ = ledger.RecordExit(ctx, stock.ExitInput{MaterialID: matID, BatchID: batchID, Quantity: dec(70), Reason: "x", ActorID: "e"})
	_, _ = ledger.RecordLoss(ctx, stock.LossInput{MaterialID: matID, BatchID: batchID, Quantity: dec(50), LossType: entity.LossTypeSpill, Reason: "x", ActorID: "e", AuthorizedBy: "f"})
	_, _ = ledger.RecordConsumption(ctx, "o1", []stock.ConsumptionItem{{MaterialID: matID, BatchID: batchID, Quantity: dec(40)}}, "e")
	_, _ = ledger.RecordAdjustment(ctx, stock.AdjustmentInput{MaterialID: matID, BatchID: batchID, Delta: dec(-40), Reason: "x", ActorID: "e", AuthorizedBy: "f"})

	assert.False(t, s.Batches[batchID].CurrentQuantity.IsNegative(),
		"la cantidad del lote nunca puede quedar negativa")
	assert.False(t, s.Materials[matID].CurrentStock.IsNegative(),
		"el agregado nunca puede quedar negativo")
	assertReconciled(t, s)
	assertMovementArithmetic(t, s)
}

// ──────────────────────────────────────────────────────────────────────────────
// Lotes en estado terminal: cantidad congelada
// ──────────────────────────────────────────────────────────────────────────────

// Un ajuste contra un lote rechazado rompería la conciliación: el rechazo ya
// descontó su cantidad del agregado y el lote quedó congelado para auditoría.
func TestRecordAdjustment_LoteRechazadoCongelado(t *testing.T) {
	s := apptest.NewStore()
	matID, _ := seedMaterialAndBatch(s, entity.BatchStatusApproved, 500)
	rejectedID := s.NewID()
	s.Batches[rejectedID] = entity.Batch{
		ID: rejectedID, MaterialID: matID, SupplierID: "prov-1",
		BatchNumber: "L-002", ReceivedQuantity: dec(100), CurrentQuantity: dec(100),
		Status: entity.BatchStatusRejected, ExpiryDate: time.Now().AddDate(1, 0, 0),
	}
	ledger := newLedger(s)

	_, err := ledger.RecordAdjustment(context.Background(), stock.AdjustmentInput{
		MaterialID: matID, BatchID: rejectedID, Delta: dec(-50),
		Reason: "conteo físico", ActorID: "emp-1", AuthorizedBy: "farm-1",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	assert.True(t, s.Batches[rejectedID].CurrentQuantity.Equal(dec(100)),
		"la cantidad del lote rechazado queda congelada")
	assert.True(t, s.Materials[matID].CurrentStock.Equal(dec(500)),
		"el agregado no debe descontarse dos veces")
	assert.Empty(t, s.Movements)
	assertReconciled(t, s)
}

// Entradas y pérdidas tampoco admiten lotes rechazados ni vencidos.
func TestLedger_EntradaYPerdidaContraLoteTerminal(t *testing.T) {
	for _, status := range []string{entity.BatchStatusRejected, entity.BatchStatusExpired} {
		t.Run(status, func(t *testing.T) {
			s := apptest.NewStore()
			matID, batchID := seedMaterialAndBatch(s, status, 200)
			b := s.Batches[batchID]
			b.CurrentQuantity = dec(150)
			s.Batches[batchID] = b
			ledger := newLedger(s)
			ctx := context.Background()

			_, err := ledger.RecordEntry(ctx, stock.EntryInput{
				MaterialID: matID, BatchID: batchID, Quantity: dec(50),
				Reason: "reingreso", ActorID: "emp-1",
			})
			assert.ErrorIs(t, err, domain.ErrInvalidState)

			_, err = ledger.RecordLoss(ctx, stock.LossInput{
				MaterialID: matID, BatchID: batchID, Quantity: dec(50),
				LossType: entity.LossTypeSpill, Reason: "derrame", ActorID: "emp-1", AuthorizedBy: "farm-1",
			})
			assert.ErrorIs(t, err, domain.ErrInvalidState)

			assert.True(t, s.Batches[batchID].CurrentQuantity.Equal(dec(150)))
			assert.Empty(t, s.Movements)
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Vencimiento por fecha: aprobado no basta
// ──────────────────────────────────────────────────────────────────────────────

// Un lote aprobado cuya fecha de vencimiento ya pasó no es consumible, aunque el
// barrido todavía no lo haya transicionado a EXPIRED.
func TestRecordConsumption_AprobadoPeroVencidoPorFecha(t *testing.T) {
	s := apptest.NewStore()
	matID, batchID := seedMaterialAndBatch(s, entity.BatchStatusApproved, 300)
	b := s.Batches[batchID]
	b.ExpiryDate = time.Now().AddDate(0, 0, -30)
	s.Batches[batchID] = b
	ledger := newLedger(s)

	_, err := ledger.RecordConsumption(context.Background(), "orden-1", []stock.ConsumptionItem{
		{MaterialID: matID, BatchID: batchID, Quantity: dec(50)},
	}, "emp-1")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Empty(t, s.Movements, "ningún consumo debe asentarse contra un lote vencido")
	assert.True(t, s.Batches[batchID].CurrentQuantity.Equal(dec(300)))
}

func TestRecordExit_AprobadoPeroVencidoPorFecha(t *testing.T) {
	s := apptest.NewStore()
	matID, batchID := seedMaterialAndBatch(s, entity.BatchStatusApproved, 300)
	b := s.Batches[batchID]
	b.ExpiryDate = time.Now().Add(-time.Hour)
	s.Batches[batchID] = b
	ledger := newLedger(s)

	_, err := ledger.RecordExit(context.Background(), stock.ExitInput{
		MaterialID: matID, BatchID: batchID, Quantity: dec(50),
		Reason: "venta", ActorID: "emp-1",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Empty(t, s.Movements)
}
