package batches

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/farmabit/magistral-api/internal/application/stock"
	"github.com/farmabit/magistral-api/internal/domain"
	"github.com/farmabit/magistral-api/internal/domain/entity"
	"github.com/farmabit/magistral-api/internal/domain/repository"
)

// RegistryUseCase administra el ciclo de vida de los lotes: recepción en cuarentena,
// liberación o rechazo de calidad, vencimiento y eliminación. Todo efecto de cantidad
// se delega al libro de movimientos dentro de la misma transacción.
type RegistryUseCase struct {
	txRunner     stock.TxRunner
	ledger       *stock.LedgerUseCase
	batchRepo    repository.BatchRepository
	materialRepo repository.RawMaterialRepository
	supplierRepo repository.SupplierRepository
}

// NewRegistryUseCase construye el registro de lotes.
func NewRegistryUseCase(
	txRunner stock.TxRunner,
	ledger *stock.LedgerUseCase,
	batchRepo repository.BatchRepository,
	materialRepo repository.RawMaterialRepository,
	supplierRepo repository.SupplierRepository,
) *RegistryUseCase {
	return &RegistryUseCase{
		txRunner:     txRunner,
		ledger:       ledger,
		batchRepo:    batchRepo,
		materialRepo: materialRepo,
		supplierRepo: supplierRepo,
	}
}

// ReceiveInput datos de recepción de un lote.
type ReceiveInput struct {
	MaterialID        string
	SupplierID        string
	BatchNumber       string
	InvoiceNumber     string
	ReceivedQuantity  decimal.Decimal
	UnitCost          decimal.Decimal
	ExpiryDate        time.Time
	ManufactureDate   *time.Time
	CertificateNumber string
	ActorID           string
}

// Receive da de alta un lote en cuarentena y asienta el movimiento ENTRY en la misma
// transacción: el efecto de stock se realiza en el libro, no se duplica aquí.
func (uc *RegistryUseCase) Receive(ctx context.Context, in ReceiveInput) (*entity.Batch, error) {
	if in.MaterialID == "" || in.SupplierID == "" || in.BatchNumber == "" || in.ActorID == "" {
		return nil, domain.ErrInvalidInput
	}
	if !in.ReceivedQuantity.GreaterThan(decimal.Zero) || in.UnitCost.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if in.ExpiryDate.IsZero() {
		return nil, domain.ErrInvalidInput
	}

	// Referencias validadas fuera de la transacción, como existencia simple.
	material, err := uc.materialRepo.GetByID(in.MaterialID)
	if err != nil || material == nil {
		return nil, domain.ErrNotFound
	}
	supplier, err := uc.supplierRepo.GetByID(in.SupplierID)
	if err != nil || supplier == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	batch := &entity.Batch{
		MaterialID:        in.MaterialID,
		SupplierID:        in.SupplierID,
		BatchNumber:       in.BatchNumber,
		InvoiceNumber:     in.InvoiceNumber,
		ReceivedQuantity:  in.ReceivedQuantity,
		CurrentQuantity:   decimal.Zero, // la cantidad la realiza el movimiento ENTRY
		UnitCost:          in.UnitCost,
		Status:            entity.BatchStatusQuarantine,
		ExpiryDate:        in.ExpiryDate,
		ManufactureDate:   in.ManufactureDate,
		CertificateNumber: in.CertificateNumber,
		CreatedBy:         in.ActorID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	err = uc.txRunner.Run(ctx, func(r stock.Repos) error {
		exists, err := r.Batches.ExistsByNumber(in.MaterialID, in.BatchNumber)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrDuplicateBatch
		}
		if err := r.Batches.Create(batch); err != nil {
			return err
		}
		_, err = uc.ledger.EntryInTx(r, stock.EntryInput{
			MaterialID:     in.MaterialID,
			BatchID:        batch.ID,
			Quantity:       in.ReceivedQuantity,
			Reason:         "recepción de lote " + in.BatchNumber,
			SupplierID:     in.SupplierID,
			DocumentNumber: in.InvoiceNumber,
			ActorID:        in.ActorID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// Approve libera un lote en cuarentena: asienta certificado, actor y fecha de aprobación.
func (uc *RegistryUseCase) Approve(ctx context.Context, batchID, certificateNumber, notes, actorID string) error {
	if batchID == "" || certificateNumber == "" || actorID == "" {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.Run(ctx, func(r stock.Repos) error {
		batch, err := r.Batches.GetForUpdate(batchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return domain.ErrNotFound
		}
		if batch.Status != entity.BatchStatusQuarantine {
			return domain.ErrInvalidState
		}
		now := time.Now()
		batch.Status = entity.BatchStatusApproved
		batch.CertificateNumber = certificateNumber
		batch.ApprovedBy = actorID
		batch.ApprovedAt = &now
		batch.Notes = appendNote(batch.Notes, notes)
		batch.UpdatedAt = now
		return r.Batches.Update(batch)
	})
}

// Reject rechaza un lote en cuarentena. La cantidad del lote queda congelada para
// auditoría, pero el agregado de la materia prima deja de contarla: se asienta un
// ADJUSTMENT negativo por la cantidad remanente (el agregado solo suma lotes no
// rechazados) sin tocar CurrentQuantity del lote.
func (uc *RegistryUseCase) Reject(ctx context.Context, batchID, reason, actorID string) error {
	if batchID == "" || reason == "" || actorID == "" {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.Run(ctx, func(r stock.Repos) error {
		batch, err := r.Batches.GetForUpdate(batchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return domain.ErrNotFound
		}
		if batch.Status != entity.BatchStatusQuarantine {
			return domain.ErrInvalidState
		}
		material, err := r.Materials.GetForUpdate(batch.MaterialID)
		if err != nil {
			return err
		}
		if material == nil {
			return domain.ErrNotFound
		}
		now := time.Now()
		if batch.CurrentQuantity.GreaterThan(decimal.Zero) {
			mov := &entity.StockMovement{
				MaterialID:   batch.MaterialID,
				BatchID:      batch.ID,
				Type:         entity.MovementTypeAdjustment,
				Quantity:     batch.CurrentQuantity.Neg(),
				StockBefore:  material.CurrentStock,
				StockAfter:   material.CurrentStock.Sub(batch.CurrentQuantity),
				Reason:       "rechazo de lote: " + reason,
				AuthorizedBy: actorID,
				CreatedBy:    actorID,
				CreatedAt:    now,
			}
			if mov.StockAfter.IsNegative() {
				return domain.ErrInsufficientQuantity
			}
			if err := r.Movements.Create(mov); err != nil {
				return err
			}
			if err := r.Materials.UpdateStock(material.ID, mov.StockAfter); err != nil {
				return err
			}
		}
		batch.Status = entity.BatchStatusRejected
		batch.Notes = appendNote(batch.Notes, "RECHAZADO: "+reason)
		batch.UpdatedAt = now
		return r.Batches.Update(batch)
	})
}

// Expire transiciona un lote aprobado y vencido a EXPIRED, asentando una pérdida por
// vencimiento por toda la cantidad remanente. Transición de sistema, no de operador.
func (uc *RegistryUseCase) Expire(ctx context.Context, batchID string) error {
	if batchID == "" {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.Run(ctx, func(r stock.Repos) error {
		batch, err := r.Batches.GetForUpdate(batchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return domain.ErrNotFound
		}
		if batch.Status != entity.BatchStatusApproved {
			return domain.ErrInvalidState
		}
		now := time.Now()
		if !batch.IsExpiredAt(now) {
			return domain.ErrInvalidState
		}
		if batch.CurrentQuantity.GreaterThan(decimal.Zero) {
			_, err = uc.ledger.LossInTx(r, stock.LossInput{
				MaterialID: batch.MaterialID,
				BatchID:    batch.ID,
				Quantity:   batch.CurrentQuantity,
				LossType:   entity.LossTypeExpiration,
				Reason:     "vencimiento de lote " + batch.BatchNumber,
				ActorID:    systemActor,
			})
			return err
		}
		batch.Status = entity.BatchStatusExpired
		batch.UpdatedAt = now
		return r.Batches.Update(batch)
	})
}

// ExpireOverdue barre los lotes aprobados ya vencidos y los expira uno por uno, cada
// uno en su propia transacción. Devuelve cuántos expiró y el primer error encontrado
// tras intentar todos.
func (uc *RegistryUseCase) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	overdue, err := uc.batchRepo.ListExpiring(now)
	if err != nil {
		return 0, err
	}
	expired := 0
	var firstErr error
	for _, b := range overdue {
		if err := uc.Expire(ctx, b.ID); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("expirar lote %s: %w", b.BatchNumber, err)
			}
			continue
		}
		expired++
	}
	return expired, firstErr
}

// Delete elimina un lote que nunca tuvo movimientos posteriores a su recepción
// (cantidad intacta). El agregado se corrige con un ADJUSTMENT negativo: el libro
// nunca borra historia, ni siquiera al eliminar el lote recién recibido.
func (uc *RegistryUseCase) Delete(ctx context.Context, batchID, actorID string) error {
	if batchID == "" || actorID == "" {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.Run(ctx, func(r stock.Repos) error {
		batch, err := r.Batches.GetForUpdate(batchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return domain.ErrNotFound
		}
		if !batch.NeverMoved() {
			return domain.ErrHasUsageHistory
		}
		// La cantidad intacta no alcanza: un lote salido y reingresado por completo
		// vuelve a su cantidad original pero sí tiene historia. Se cuenta contra el
		// libro: solo el ENTRY de recepción (más el ADJUSTMENT del rechazo, si lo hubo).
		moves, err := r.Movements.CountByBatch(batchID)
		if err != nil {
			return err
		}
		baseline := 1
		if batch.Status == entity.BatchStatusRejected {
			baseline = 2
		}
		if moves > baseline {
			return domain.ErrHasUsageHistory
		}
		material, err := r.Materials.GetForUpdate(batch.MaterialID)
		if err != nil {
			return err
		}
		if material == nil {
			return domain.ErrNotFound
		}
		if batch.Status != entity.BatchStatusRejected && batch.CurrentQuantity.GreaterThan(decimal.Zero) {
			mov := &entity.StockMovement{
				MaterialID:   batch.MaterialID,
				BatchID:      batch.ID,
				Type:         entity.MovementTypeAdjustment,
				Quantity:     batch.CurrentQuantity.Neg(),
				StockBefore:  material.CurrentStock,
				StockAfter:   material.CurrentStock.Sub(batch.CurrentQuantity),
				Reason:       "eliminación de lote " + batch.BatchNumber,
				AuthorizedBy: actorID,
				CreatedBy:    actorID,
				CreatedAt:    time.Now(),
			}
			if mov.StockAfter.IsNegative() {
				return domain.ErrInsufficientQuantity
			}
			if err := r.Movements.Create(mov); err != nil {
				return err
			}
			if err := r.Materials.UpdateStock(material.ID, mov.StockAfter); err != nil {
				return err
			}
		}
		return r.Batches.Delete(batchID)
	})
}

// GetByID devuelve un lote por su ID.
func (uc *RegistryUseCase) GetByID(ctx context.Context, batchID string) (*entity.Batch, error) {
	b, err := uc.batchRepo.GetByID(batchID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

// ListByMaterial lista los lotes de una materia prima.
func (uc *RegistryUseCase) ListByMaterial(ctx context.Context, materialID string, limit, offset int) ([]*entity.Batch, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return uc.batchRepo.ListByMaterial(materialID, limit, offset)
}

// ListInQuarantine lista los lotes pendientes de liberación de calidad.
func (uc *RegistryUseCase) ListInQuarantine(ctx context.Context, limit, offset int) ([]*entity.Batch, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return uc.batchRepo.ListByStatus(entity.BatchStatusQuarantine, limit, offset)
}

// ListExpiring lista lotes aprobados con remanente que vencen dentro de withinDays.
func (uc *RegistryUseCase) ListExpiring(ctx context.Context, withinDays int) ([]*entity.Batch, error) {
	if withinDays < 0 {
		return nil, domain.ErrInvalidInput
	}
	return uc.batchRepo.ListExpiring(time.Now().AddDate(0, 0, withinDays))
}

// Actor reservado para transiciones de sistema (barrido de vencidos).
const systemActor = "system"

func appendNote(existing, note string) string {
	if note == "" {
		return existing
	}
	if existing == "" {
		return note
	}
	return existing + "\n" + note
}
