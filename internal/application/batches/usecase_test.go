package batches_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmabit/magistral-api/internal/application/apptest"
	"github.com/farmabit/magistral-api/internal/application/batches"
	"github.com/farmabit/magistral-api/internal/application/stock"
	"github.com/farmabit/magistral-api/internal/domain"
	"github.com/farmabit/magistral-api/internal/domain/entity"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func newRegistry(s *apptest.Store) *batches.RegistryUseCase {
	tx := &apptest.TxRunner{Store: s}
	return batches.NewRegistryUseCase(
		tx,
		stock.NewLedgerUseCase(tx),
		s.BatchRepo(),
		s.MaterialRepo(),
		&apptest.SupplierRepo{S: s},
	)
}

func seedRefs(s *apptest.Store) (matID, supID string) {
	matID, supID = s.NewID(), s.NewID()
	s.Materials[matID] = entity.RawMaterial{
		ID: matID, Name: "Ketoconazol", UnitMeasure: "g", Active: true,
	}
	s.Suppliers[supID] = entity.Supplier{ID: supID, Name: "Droguería Sur", Active: true}
	return matID, supID
}

func receiveInput(matID, supID string) batches.ReceiveInput {
	return batches.ReceiveInput{
		MaterialID:       matID,
		SupplierID:       supID,
		BatchNumber:      "KC-2026-01",
		InvoiceNumber:    "FAC-881",
		ReceivedQuantity: dec(500),
		UnitCost:         decimal.NewFromFloat(1.25),
		ExpiryDate:       time.Now().AddDate(1, 0, 0),
		ActorID:          "emp-1",
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Recepción
// ──────────────────────────────────────────────────────────────────────────────

func TestReceive_CreaLoteEnCuarentenaConEntry(t *testing.T) {
	s := apptest.NewStore()
	matID, supID := seedRefs(s)
	reg := newRegistry(s)

	batch, err := reg.Receive(context.Background(), receiveInput(matID, supID))
	require.NoError(t, err)

	assert.Equal(t, entity.BatchStatusQuarantine, batch.Status,
		"todo lote nace en cuarentena")
	assert.True(t, s.Batches[batch.ID].CurrentQuantity.Equal(dec(500)),
		"el movimiento ENTRY realiza la cantidad recibida")
	assert.True(t, s.Materials[matID].CurrentStock.Equal(dec(500)),
		"el agregado cuenta lotes en cuarentena (no consumibles, pero existentes)")

	require.Len(t, s.Movements, 1)
	mov := s.Movements[0]
	assert.Equal(t, entity.MovementTypeEntry, mov.Type)
	assert.True(t, mov.Quantity.Equal(dec(500)))
	assert.True(t, mov.StockBefore.IsZero())
	assert.True(t, mov.StockAfter.Equal(dec(500)))
	assert.Equal(t, supID, mov.SupplierID)
}

func TestReceive_DuplicadoPorMaterialYNumero(t *testing.T) {
	s := apptest.NewStore()
	matID, supID := seedRefs(s)
	reg := newRegistry(s)
	ctx := context.Background()

	_, err := reg.Receive(ctx, receiveInput(matID, supID))
	require.NoError(t, err)

	_, err = reg.Receive(ctx, receiveInput(matID, supID))
	assert.ErrorIs(t, err, domain.ErrDuplicateBatch)
	assert.Len(t, s.Batches, 1, "el duplicado no debe dejar lote ni movimiento")
	assert.Len(t, s.Movements, 1)

	// El mismo número de lote contra OTRA materia prima sí es válido.
	mat2 := s.NewID()
	s.Materials[mat2] = entity.RawMaterial{ID: mat2, Name: "Urea", UnitMeasure: "g", Active: true}
	in := receiveInput(mat2, supID)
	_, err = reg.Receive(ctx, in)
	assert.NoError(t, err)
}

func TestReceive_ReferenciasInexistentes(t *testing.T) {
	s := apptest.NewStore()
	matID, supID := seedRefs(s)
	reg := newRegistry(s)

	in := receiveInput("no-existe", supID)
	_, err := reg.Receive(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	in = receiveInput(matID, "no-existe")
	_, err = reg.Receive(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReceive_Validaciones(t *testing.T) {
	s := apptest.NewStore()
	matID, supID := seedRefs(s)
	reg := newRegistry(s)

	in := receiveInput(matID, supID)
	in.ReceivedQuantity = dec(0)
	_, err := reg.Receive(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in = receiveInput(matID, supID)
	in.ExpiryDate = time.Time{}
	_, err = reg.Receive(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Liberación de calidad
// ──────────────────────────────────────────────────────────────────────────────

func TestApprove_LiberaCuarentena(t *testing.T) {
	s := apptest.NewStore()
	matID, supID := seedRefs(s)
	reg := newRegistry(s)
	ctx := context.Background()

	batch, err := reg.Receive(ctx, receiveInput(matID, supID))
	require.NoError(t, err)

	err = reg.Approve(ctx, batch.ID, "CERT-100", "análisis conforme", "farm-1")
	require.NoError(t, err)

	got := s.Batches[batch.ID]
	assert.Equal(t, entity.BatchStatusApproved, got.Status)
	assert.Equal(t, "CERT-100", got.CertificateNumber)
	assert.Equal(t, "farm-1", got.ApprovedBy)
	require.NotNil(t, got.ApprovedAt)
	assert.Contains(t, got.Notes, "análisis conforme")

	// Aprobar dos veces no es una transición válida.
	err = reg.Approve(ctx, batch.ID, "CERT-101", "", "farm-1")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestReject_CongelaLoteYDescuentaAgregado(t *testing.T) {
	s := apptest.NewStore()
	matID, supID := seedRefs(s)
	reg := newRegistry(s)
	ctx := context.Background()

	batch, err := reg.Receive(ctx, receiveInput(matID, supID))
	require.NoError(t, err)

	err = reg.Reject(ctx, batch.ID, "fuera de especificación", "farm-1")
	require.NoError(t, err)

	got := s.Batches[batch.ID]
	assert.Equal(t, entity.BatchStatusRejected, got.Status)
	assert.True(t, got.CurrentQuantity.Equal(dec(500)),
		"la cantidad del lote rechazado queda congelada para auditoría")
	assert.True(t, s.Materials[matID].CurrentStock.IsZero(),
		"el agregado deja de contar el lote rechazado")

	// ENTRY de recepción + ADJUSTMENT de rechazo.
	require.Len(t, s.Movements, 2)
	adj := s.Movements[1]
	assert.Equal(t, entity.MovementTypeAdjustment, adj.Type)
	assert.True(t, adj.Quantity.Equal(dec(-500)))
	assert.Contains(t, adj.Reason, "rechazo de lote")

	// Un lote rechazado no vuelve a cuarentena ni se aprueba.
	assert.ErrorIs(t, reg.Approve(ctx, batch.ID, "CERT-1", "", "farm-1"), domain.ErrInvalidState)
	assert.ErrorIs(t, reg.Reject(ctx, batch.ID, "de nuevo", "farm-1"), domain.ErrInvalidState)
}

// ──────────────────────────────────────────────────────────────────────────────
// Vencimiento
// ──────────────────────────────────────────────────────────────────────────────

func TestExpire_LoteVencidoAsientaPerdida(t *testing.T) {
	s := apptest.NewStore()
	matID, supID := seedRefs(s)
	reg := newRegistry(s)
	ctx := context.Background()

	in := receiveInput(matID, supID)
	batch, err := reg.Receive(ctx, in)
	require.NoError(t, err)
	require.NoError(t, reg.Approve(ctx, batch.ID, "CERT-1", "", "farm-1"))

	// Todavía vigente: no puede expirarse.
	assert.ErrorIs(t, reg.Expire(ctx, batch.ID), domain.ErrInvalidState)

	// Lo vencemos a mano.
	b := s.Batches[batch.ID]
	b.ExpiryDate = time.Now().AddDate(0, 0, -1)
	s.Batches[batch.ID] = b

	require.NoError(t, reg.Expire(ctx, batch.ID))

	got := s.Batches[batch.ID]
	assert.Equal(t, entity.BatchStatusExpired, got.Status)
	assert.True(t, got.CurrentQuantity.IsZero())
	assert.True(t, s.Materials[matID].CurrentStock.IsZero())

	loss := s.Movements[len(s.Movements)-1]
	assert.Equal(t, entity.MovementTypeLoss, loss.Type)
	assert.Equal(t, entity.LossTypeExpiration, loss.LossType)
	assert.Equal(t, "system", loss.CreatedBy, "el vencimiento es una transición de sistema")
}

func TestExpireOverdue_BarreSoloVencidos(t *testing.T) {
	s := apptest.NewStore()
	matID, supID := seedRefs(s)
	reg := newRegistry(s)
	ctx := context.Background()

	vigente := receiveInput(matID, supID)
	b1, err := reg.Receive(ctx, vigente)
	require.NoError(t, err)
	require.NoError(t, reg.Approve(ctx, b1.ID, "CERT-1", "", "farm-1"))

	vencido := receiveInput(matID, supID)
	vencido.BatchNumber = "KC-2025-09"
	b2, err := reg.Receive(ctx, vencido)
	require.NoError(t, err)
	require.NoError(t, reg.Approve(ctx, b2.ID, "CERT-2", "", "farm-1"))
	bb := s.Batches[b2.ID]
	bb.ExpiryDate = time.Now().AddDate(0, 0, -3)
	s.Batches[b2.ID] = bb

	n, err := reg.ExpireOverdue(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, entity.BatchStatusApproved, s.Batches[b1.ID].Status)
	assert.Equal(t, entity.BatchStatusExpired, s.Batches[b2.ID].Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Eliminación
// ──────────────────────────────────────────────────────────────────────────────

func TestDelete_SoloSinHistoriaDeUso(t *testing.T) {
	s := apptest.NewStore()
	matID, supID := seedRefs(s)
	reg := newRegistry(s)
	tx := &apptest.TxRunner{Store: s}
	ledger := stock.NewLedgerUseCase(tx)
	ctx := context.Background()

	batch, err := reg.Receive(ctx, receiveInput(matID, supID))
	require.NoError(t, err)
	require.NoError(t, reg.Approve(ctx, batch.ID, "CERT-1", "", "farm-1"))

	// Con un consumo encima ya no se puede eliminar.
	_, err = ledger.RecordExit(ctx, stock.ExitInput{
		MaterialID: matID, BatchID: batch.ID, Quantity: dec(10), Reason: "despacho", ActorID: "emp-1",
	})
	require.NoError(t, err)
	assert.ErrorIs(t, reg.Delete(ctx, batch.ID, "farm-1"), domain.ErrHasUsageHistory)
	assert.Contains(t, s.Batches, batch.ID)
}

func TestDelete_LoteIntactoCorrigeAgregado(t *testing.T) {
	s := apptest.NewStore()
	matID, supID := seedRefs(s)
	reg := newRegistry(s)
	ctx := context.Background()

	batch, err := reg.Receive(ctx, receiveInput(matID, supID))
	require.NoError(t, err)

	require.NoError(t, reg.Delete(ctx, batch.ID, "farm-1"))

	assert.NotContains(t, s.Batches, batch.ID)
	assert.True(t, s.Materials[matID].CurrentStock.IsZero())
	// La historia no se borra: ENTRY + ADJUSTMENT de eliminación.
	require.Len(t, s.Movements, 2)
	assert.Equal(t, entity.MovementTypeAdjustment, s.Movements[1].Type)
	assert.True(t, s.Movements[1].Quantity.Equal(dec(-500)))
}

// La cantidad intacta no basta para permitir la eliminación: un lote salido y
// reingresado por completo vuelve a su cantidad original pero tiene historia en
// el libro, y esa historia es la que manda.
func TestDelete_ReingresoCompletoSigueTeniendoHistoria(t *testing.T) {
	s := apptest.NewStore()
	matID, supID := seedRefs(s)
	reg := newRegistry(s)
	tx := &apptest.TxRunner{Store: s}
	ledger := stock.NewLedgerUseCase(tx)
	ctx := context.Background()

	batch, err := reg.Receive(ctx, receiveInput(matID, supID))
	require.NoError(t, err)
	require.NoError(t, reg.Approve(ctx, batch.ID, "CERT-1", "", "farm-1"))

	_, err = ledger.RecordExit(ctx, stock.ExitInput{
		MaterialID: matID, BatchID: batch.ID, Quantity: dec(100), Reason: "despacho", ActorID: "emp-1",
	})
	require.NoError(t, err)
	_, err = ledger.RecordEntry(ctx, stock.EntryInput{
		MaterialID: matID, BatchID: batch.ID, Quantity: dec(100), Reason: "devolución", ActorID: "emp-1",
	})
	require.NoError(t, err)

	got, err := reg.GetByID(ctx, batch.ID)
	require.NoError(t, err)
	require.True(t, got.CurrentQuantity.Equal(got.ReceivedQuantity), "la cantidad volvió a la original")

	assert.ErrorIs(t, reg.Delete(ctx, batch.ID, "farm-1"), domain.ErrHasUsageHistory)
	assert.Contains(t, s.Batches, batch.ID)
}

func TestDelete_Inexistente(t *testing.T) {
	s := apptest.NewStore()
	seedRefs(s)
	reg := newRegistry(s)

	assert.ErrorIs(t, reg.Delete(context.Background(), "fantasma", "farm-1"), domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestListInQuarantine(t *testing.T) {
	s := apptest.NewStore()
	matID, supID := seedRefs(s)
	reg := newRegistry(s)
	ctx := context.Background()

	b1, err := reg.Receive(ctx, receiveInput(matID, supID))
	require.NoError(t, err)
	in2 := receiveInput(matID, supID)
	in2.BatchNumber = "KC-2026-02"
	b2, err := reg.Receive(ctx, in2)
	require.NoError(t, err)
	require.NoError(t, reg.Approve(ctx, b1.ID, "CERT-1", "", "farm-1"))

	pend, err := reg.ListInQuarantine(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, pend, 1)
	assert.Equal(t, b2.ID, pend[0].ID)
}
