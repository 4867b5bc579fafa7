package stock

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/farmabit/magistral-api/internal/domain"
	"github.com/farmabit/magistral-api/internal/domain/entity"
)

// LedgerUseCase es el único punto de entrada para todo cambio de cantidad del sistema.
// Cada operación corre en una transacción: bloquea las filas de lote y materia prima
// (SELECT FOR UPDATE), valida los invariantes contra ese estado recién leído, y escribe
// movimiento + cantidad del lote + agregado juntos. StockBefore/StockAfter se calculan
// siempre del agregado bloqueado, nunca de una lectura previa.
type LedgerUseCase struct {
	txRunner TxRunner
}

// NewLedgerUseCase construye el libro de movimientos.
func NewLedgerUseCase(txRunner TxRunner) *LedgerUseCase {
	return &LedgerUseCase{txRunner: txRunner}
}

// EntryInput entrada de stock contra un lote (recepción o reingreso).
type EntryInput struct {
	MaterialID     string
	BatchID        string
	Quantity       decimal.Decimal
	Reason         string
	SupplierID     string
	DocumentNumber string
	ActorID        string
}

// ExitInput salida manual de stock contra un lote aprobado.
type ExitInput struct {
	MaterialID     string
	BatchID        string
	Quantity       decimal.Decimal
	Reason         string
	ActorID        string
	AuthorizedBy   string
	OrderID        string
	DocumentNumber string
}

// AdjustmentInput corrección autorizada con delta con signo.
type AdjustmentInput struct {
	MaterialID   string
	BatchID      string
	Delta        decimal.Decimal
	Reason       string
	ActorID      string
	AuthorizedBy string
}

// LossInput pérdida registrada contra un lote.
type LossInput struct {
	MaterialID   string
	BatchID      string
	Quantity     decimal.Decimal
	LossType     string
	Reason       string
	ActorID      string
	AuthorizedBy string
}

// ConsumptionItem un componente consumido por la orden: lote concreto y cantidad.
type ConsumptionItem struct {
	MaterialID string
	BatchID    string
	Quantity   decimal.Decimal
	Notes      string
}

// RecordEntry registra una entrada: aumenta lote y agregado y asienta el movimiento ENTRY.
func (uc *LedgerUseCase) RecordEntry(ctx context.Context, in EntryInput) (*entity.StockMovement, error) {
	if !in.Quantity.GreaterThan(decimal.Zero) || in.MaterialID == "" || in.BatchID == "" || in.ActorID == "" {
		return nil, domain.ErrInvalidInput
	}
	var mov *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		var err error
		mov, err = uc.EntryInTx(r, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// EntryInTx ejecuta la entrada usando los repositorios de la transacción del caller.
// Lo usa BatchRegistry para que alta de lote y movimiento ENTRY sean una sola unidad.
func (uc *LedgerUseCase) EntryInTx(r Repos, in EntryInput) (*entity.StockMovement, error) {
	batch, err := r.Batches.GetForUpdate(in.BatchID)
	if err != nil {
		return nil, err
	}
	if batch == nil || batch.MaterialID != in.MaterialID {
		return nil, domain.ErrNotFound
	}
	if err := guardFrozen(batch); err != nil {
		return nil, err
	}
	material, err := r.Materials.GetForUpdate(in.MaterialID)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, domain.ErrNotFound
	}
	newBatchQty := batch.CurrentQuantity.Add(in.Quantity)
	// Invariante: la cantidad del lote nunca supera lo recibido.
	if newBatchQty.GreaterThan(batch.ReceivedQuantity) {
		return nil, domain.ErrInvalidInput
	}
	mov := &entity.StockMovement{
		MaterialID:     in.MaterialID,
		BatchID:        in.BatchID,
		Type:           entity.MovementTypeEntry,
		Quantity:       in.Quantity,
		Reason:         in.Reason,
		SupplierID:     in.SupplierID,
		DocumentNumber: in.DocumentNumber,
		CreatedBy:      in.ActorID,
		CreatedAt:      time.Now(),
	}
	if err := applyMovement(r, material, batch, newBatchQty, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// RecordExit registra una salida manual: exige lote aprobado con vencimiento vigente
// y cantidad disponible.
func (uc *LedgerUseCase) RecordExit(ctx context.Context, in ExitInput) (*entity.StockMovement, error) {
	if !in.Quantity.GreaterThan(decimal.Zero) || in.MaterialID == "" || in.BatchID == "" || in.ActorID == "" {
		return nil, domain.ErrInvalidInput
	}
	var mov *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		batch, material, err := lockPair(r, in.MaterialID, in.BatchID)
		if err != nil {
			return err
		}
		if !batch.IsConsumable(time.Now()) {
			return domain.ErrInvalidState
		}
		if in.Quantity.GreaterThan(batch.CurrentQuantity) || in.Quantity.GreaterThan(material.CurrentStock) {
			return domain.ErrInsufficientQuantity
		}
		mov = &entity.StockMovement{
			MaterialID:     in.MaterialID,
			BatchID:        in.BatchID,
			Type:           entity.MovementTypeExit,
			Quantity:       in.Quantity.Neg(),
			Reason:         in.Reason,
			OrderID:        in.OrderID,
			DocumentNumber: in.DocumentNumber,
			AuthorizedBy:   in.AuthorizedBy,
			CreatedBy:      in.ActorID,
			CreatedAt:      time.Now(),
		}
		return applyMovement(r, material, batch, batch.CurrentQuantity.Sub(in.Quantity), mov)
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// RecordAdjustment registra una corrección con delta con signo. Falla si la cantidad
// resultante del lote o del agregado quedaría negativa, o superaría lo recibido.
func (uc *LedgerUseCase) RecordAdjustment(ctx context.Context, in AdjustmentInput) (*entity.StockMovement, error) {
	if in.Delta.IsZero() || in.MaterialID == "" || in.BatchID == "" || in.ActorID == "" || in.AuthorizedBy == "" {
		return nil, domain.ErrInvalidInput
	}
	var mov *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		batch, material, err := lockPair(r, in.MaterialID, in.BatchID)
		if err != nil {
			return err
		}
		if err := guardFrozen(batch); err != nil {
			return err
		}
		newBatchQty := batch.CurrentQuantity.Add(in.Delta)
		if newBatchQty.IsNegative() || material.CurrentStock.Add(in.Delta).IsNegative() {
			return domain.ErrInsufficientQuantity
		}
		if newBatchQty.GreaterThan(batch.ReceivedQuantity) {
			return domain.ErrInvalidInput
		}
		mov = &entity.StockMovement{
			MaterialID:   in.MaterialID,
			BatchID:      in.BatchID,
			Type:         entity.MovementTypeAdjustment,
			Quantity:     in.Delta,
			Reason:       in.Reason,
			AuthorizedBy: in.AuthorizedBy,
			CreatedBy:    in.ActorID,
			CreatedAt:    time.Now(),
		}
		return applyMovement(r, material, batch, newBatchQty, mov)
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// RecordLoss registra una pérdida. Si el tipo es EXPIRATION además transiciona el lote
// a EXPIRED dentro de la misma transacción.
func (uc *LedgerUseCase) RecordLoss(ctx context.Context, in LossInput) (*entity.StockMovement, error) {
	if !in.Quantity.GreaterThan(decimal.Zero) || in.MaterialID == "" || in.BatchID == "" || in.ActorID == "" {
		return nil, domain.ErrInvalidInput
	}
	switch in.LossType {
	case entity.LossTypeExpiration, entity.LossTypeSpill, entity.LossTypeBreakage, entity.LossTypeOther:
	default:
		return nil, domain.ErrInvalidInput
	}
	var mov *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		var err error
		mov, err = uc.LossInTx(r, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// LossInTx ejecuta la pérdida en la transacción del caller (lo usa el barrido de vencidos).
func (uc *LedgerUseCase) LossInTx(r Repos, in LossInput) (*entity.StockMovement, error) {
	batch, material, err := lockPair(r, in.MaterialID, in.BatchID)
	if err != nil {
		return nil, err
	}
	if err := guardFrozen(batch); err != nil {
		return nil, err
	}
	if in.Quantity.GreaterThan(batch.CurrentQuantity) || in.Quantity.GreaterThan(material.CurrentStock) {
		return nil, domain.ErrInsufficientQuantity
	}
	mov := &entity.StockMovement{
		MaterialID:   in.MaterialID,
		BatchID:      in.BatchID,
		Type:         entity.MovementTypeLoss,
		LossType:     in.LossType,
		Quantity:     in.Quantity.Neg(),
		Reason:       in.Reason,
		AuthorizedBy: in.AuthorizedBy,
		CreatedBy:    in.ActorID,
		CreatedAt:    time.Now(),
	}
	if err := applyMovement(r, material, batch, batch.CurrentQuantity.Sub(in.Quantity), mov); err != nil {
		return nil, err
	}
	if in.LossType == entity.LossTypeExpiration && batch.Status != entity.BatchStatusExpired {
		batch.Status = entity.BatchStatusExpired
		if err := r.Batches.Update(batch); err != nil {
			return nil, err
		}
	}
	return mov, nil
}

// RecordConsumption procesa el consumo multi-ítem de una orden como una sola unidad
// atómica: bloquea todos los lotes (en orden determinista para evitar deadlocks),
// valida todos los ítems contra el estado bloqueado, y recién entonces escribe un
// movimiento CONSUMPTION por ítem. Si un ítem falla, no se persiste ninguno.
func (uc *LedgerUseCase) RecordConsumption(ctx context.Context, orderID string, items []ConsumptionItem, actorID string) ([]*entity.StockMovement, error) {
	if orderID == "" || actorID == "" || len(items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, it := range items {
		if it.MaterialID == "" || it.BatchID == "" || !it.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
	}
	var movs []*entity.StockMovement
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		var err error
		movs, err = uc.ConsumptionInTx(r, orderID, items, actorID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return movs, nil
}

// ConsumptionInTx ejecuta el consumo en la transacción del caller. Lo usa el flujo de
// manipulación en la etapa de pesada (la pesada ES el punto de consumo).
func (uc *LedgerUseCase) ConsumptionInTx(r Repos, orderID string, items []ConsumptionItem, actorID string) ([]*entity.StockMovement, error) {
	// 1. Bloquear todos los lotes en orden determinista (por ID) antes de validar nada.
	batchIDs := make([]string, 0, len(items))
	seenBatch := make(map[string]bool, len(items))
	for _, it := range items {
		if !seenBatch[it.BatchID] {
			seenBatch[it.BatchID] = true
			batchIDs = append(batchIDs, it.BatchID)
		}
	}
	sort.Strings(batchIDs)
	batches := make(map[string]*entity.Batch, len(batchIDs))
	for _, id := range batchIDs {
		b, err := r.Batches.GetForUpdate(id)
		if err != nil {
			return nil, err
		}
		if b == nil {
			return nil, domain.ErrNotFound
		}
		batches[id] = b
	}

	// 2. Bloquear las materias primas involucradas, también en orden determinista.
	materialIDs := make([]string, 0, len(items))
	seenMat := make(map[string]bool, len(items))
	for _, it := range items {
		if !seenMat[it.MaterialID] {
			seenMat[it.MaterialID] = true
			materialIDs = append(materialIDs, it.MaterialID)
		}
	}
	sort.Strings(materialIDs)
	materials := make(map[string]*entity.RawMaterial, len(materialIDs))
	for _, id := range materialIDs {
		m, err := r.Materials.GetForUpdate(id)
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, domain.ErrNotFound
		}
		materials[id] = m
	}

	// 3. Validar todos los ítems contra el estado bloqueado. Consumos por lote y por
	// materia se acumulan porque varios ítems pueden golpear el mismo lote o materia.
	now := time.Now()
	batchTotals := make(map[string]decimal.Decimal, len(items))
	materialTotals := make(map[string]decimal.Decimal, len(items))
	for _, it := range items {
		b := batches[it.BatchID]
		if b.MaterialID != it.MaterialID {
			return nil, domain.ErrInvalidInput
		}
		if !b.IsConsumable(now) {
			return nil, domain.ErrInvalidState
		}
		batchTotals[it.BatchID] = batchTotals[it.BatchID].Add(it.Quantity)
		materialTotals[it.MaterialID] = materialTotals[it.MaterialID].Add(it.Quantity)
	}
	for id, total := range batchTotals {
		if total.GreaterThan(batches[id].CurrentQuantity) {
			return nil, domain.ErrInsufficientQuantity
		}
	}
	for id, total := range materialTotals {
		if total.GreaterThan(materials[id].CurrentStock) {
			return nil, domain.ErrInsufficientQuantity
		}
	}

	// 4. Escribir: un movimiento CONSUMPTION por ítem, con StockBefore/StockAfter
	// encadenados sobre el agregado de cada materia prima.
	movs := make([]*entity.StockMovement, 0, len(items))
	for _, it := range items {
		m := materials[it.MaterialID]
		b := batches[it.BatchID]
		mov := &entity.StockMovement{
			MaterialID: it.MaterialID,
			BatchID:    it.BatchID,
			Type:       entity.MovementTypeConsumption,
			Quantity:   it.Quantity.Neg(),
			Reason:     it.Notes,
			OrderID:    orderID,
			CreatedBy:  actorID,
			CreatedAt:  now,
		}
		if err := applyMovement(r, m, b, b.CurrentQuantity.Sub(it.Quantity), mov); err != nil {
			return nil, err
		}
		movs = append(movs, mov)
	}
	return movs, nil
}

// applyMovement asienta un movimiento ya validado: calcula StockBefore/StockAfter del
// agregado bloqueado, persiste el movimiento y actualiza lote y materia prima en memoria
// y en BD. Los invariantes de no-negatividad deben venir verificados por el caller.
func applyMovement(r Repos, material *entity.RawMaterial, batch *entity.Batch, newBatchQty decimal.Decimal, mov *entity.StockMovement) error {
	mov.StockBefore = material.CurrentStock
	mov.StockAfter = material.CurrentStock.Add(mov.Quantity)
	if mov.StockAfter.IsNegative() || newBatchQty.IsNegative() {
		return domain.ErrInsufficientQuantity
	}
	if err := r.Movements.Create(mov); err != nil {
		return err
	}
	batch.CurrentQuantity = newBatchQty
	if err := r.Batches.UpdateQuantity(batch.ID, newBatchQty); err != nil {
		return err
	}
	material.CurrentStock = mov.StockAfter
	return r.Materials.UpdateStock(material.ID, mov.StockAfter)
}

// guardFrozen rechaza movimientos contra lotes en estado terminal: la cantidad de un
// lote rechazado queda congelada para auditoría y la de uno vencido ya se asentó como
// pérdida al expirar.
func guardFrozen(b *entity.Batch) error {
	if b.Status == entity.BatchStatusRejected || b.Status == entity.BatchStatusExpired {
		return domain.ErrInvalidState
	}
	return nil
}

// lockPair bloquea lote y materia prima y valida su relación.
func lockPair(r Repos, materialID, batchID string) (*entity.Batch, *entity.RawMaterial, error) {
	batch, err := r.Batches.GetForUpdate(batchID)
	if err != nil {
		return nil, nil, err
	}
	if batch == nil {
		return nil, nil, domain.ErrNotFound
	}
	if batch.MaterialID != materialID {
		return nil, nil, domain.ErrInvalidInput
	}
	material, err := r.Materials.GetForUpdate(materialID)
	if err != nil {
		return nil, nil, err
	}
	if material == nil {
		return nil, nil, domain.ErrNotFound
	}
	return batch, material, nil
}
