package manipulation

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/farmabit/magistral-api/internal/application/stock"
	"github.com/farmabit/magistral-api/internal/domain"
	"github.com/farmabit/magistral-api/internal/domain/entity"
	"github.com/farmabit/magistral-api/internal/domain/magistral"
	"github.com/farmabit/magistral-api/internal/domain/repository"
)

// WorkflowUseCase orquesta una orden de manipulación a través de sus etapas productivas.
// Cada transición corre en una transacción que bloquea la fila de la orden (las
// transiciones se serializan por orden); la pesada además consume lotes a través del
// libro de movimientos, en esa misma transacción.
type WorkflowUseCase struct {
	txRunner    stock.TxRunner
	ledger      *stock.LedgerUseCase
	orderRepo   repository.ManipulationOrderRepository
	stepRepo    repository.ManipulationStepRepository
	formulaRepo repository.FormulaRepository
}

// NewWorkflowUseCase construye el flujo de manipulación.
func NewWorkflowUseCase(
	txRunner stock.TxRunner,
	ledger *stock.LedgerUseCase,
	orderRepo repository.ManipulationOrderRepository,
	stepRepo repository.ManipulationStepRepository,
	formulaRepo repository.FormulaRepository,
) *WorkflowUseCase {
	return &WorkflowUseCase{
		txRunner:    txRunner,
		ledger:      ledger,
		orderRepo:   orderRepo,
		stepRepo:    stepRepo,
		formulaRepo: formulaRepo,
	}
}

// CreateOrderInput datos de creación de una orden de manipulación.
type CreateOrderInput struct {
	FormulaID          string
	CustomerName       string
	PrescriptionNumber string
	PrescriberName     string
	QuantityToProduce  decimal.Decimal
	UnitMeasure        string
	ExpectedAt         *time.Time
	Instructions       string
	ActorID            string
}

// Create da de alta la orden en PENDING con número OM generado de forma atómica.
func (uc *WorkflowUseCase) Create(ctx context.Context, in CreateOrderInput) (*entity.ManipulationOrder, error) {
	if in.ActorID == "" || !in.QuantityToProduce.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if in.FormulaID != "" {
		f, err := uc.formulaRepo.GetByID(in.FormulaID)
		if err != nil {
			return nil, err
		}
		if f == nil {
			return nil, domain.ErrNotFound
		}
	}
	now := time.Now()
	order := &entity.ManipulationOrder{
		FormulaID:          in.FormulaID,
		CustomerName:       in.CustomerName,
		PrescriptionNumber: in.PrescriptionNumber,
		PrescriberName:     in.PrescriberName,
		QuantityToProduce:  in.QuantityToProduce,
		UnitMeasure:        in.UnitMeasure,
		Status:             entity.OrderStatusPending,
		OrderedAt:          now,
		ExpectedAt:         in.ExpectedAt,
		RequestedBy:        in.ActorID,
		Instructions:       in.Instructions,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	err := uc.txRunner.Run(ctx, func(r stock.Repos) error {
		seq, err := r.Sequences.Next(magistral.SequenceScope(magistral.OrderNumberPrefix, now))
		if err != nil {
			return err
		}
		order.OrderNumber = magistral.FormatSequenced(magistral.OrderNumberPrefix, now, seq)
		return r.Orders.Create(order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// StartProduction mueve la orden de PENDING a IN_PRODUCTION y estampa StartDate.
func (uc *WorkflowUseCase) StartProduction(ctx context.Context, orderID, actorID string) (*entity.ManipulationOrder, error) {
	var order *entity.ManipulationOrder
	err := uc.txRunner.Run(ctx, func(r stock.Repos) error {
		var err error
		order, err = lockAndGuard(r, orderID, entity.OrderStatusInProduction)
		if err != nil {
			return err
		}
		stampStartDate(order)
		order.Status = entity.OrderStatusInProduction
		order.ManipulatedBy = actorID
		order.UpdatedAt = time.Now()
		return r.Orders.Update(order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// WeighingInput pesada de componentes contra lotes concretos, con datos de balanza.
type WeighingInput struct {
	Components       []stock.ConsumptionItem
	ScaleID          string
	ScaleCalibration string
	ActorID          string
}

// StartWeighing ejecuta la etapa de pesada. La pesada ES el punto de consumo: los
// componentes se descuentan de sus lotes aquí, vía el libro de movimientos, en la
// misma transacción que crea la etapa y avanza la orden. Si un componente falla la
// validación no se persiste nada (ni movimientos, ni etapa, ni transición).
func (uc *WorkflowUseCase) StartWeighing(ctx context.Context, orderID string, in WeighingInput) (*entity.ManipulationOrder, error) {
	if len(in.Components) == 0 || in.ActorID == "" {
		return nil, domain.ErrInvalidInput
	}
	var order *entity.ManipulationOrder
	err := uc.txRunner.Run(ctx, func(r stock.Repos) error {
		var err error
		order, err = lockAndGuard(r, orderID, entity.OrderStatusWeighing)
		if err != nil {
			return err
		}
		if _, err := uc.ledger.ConsumptionInTx(r, order.ID, in.Components, in.ActorID); err != nil {
			return err
		}
		payload := entity.WeighingData{
			ScaleID:          in.ScaleID,
			ScaleCalibration: in.ScaleCalibration,
		}
		for _, c := range in.Components {
			payload.Components = append(payload.Components, entity.ComponentWeighing{
				MaterialID: c.MaterialID,
				BatchID:    c.BatchID,
				Quantity:   c.Quantity,
				Notes:      c.Notes,
			})
		}
		step := &entity.ManipulationStep{
			OrderID:     order.ID,
			Type:        entity.StepTypeWeighing,
			Payload:     payload,
			PerformedBy: in.ActorID,
			CreatedAt:   time.Now(),
		}
		if err := r.Steps.Create(step); err != nil {
			return err
		}
		stampStartDate(order)
		order.Status = entity.OrderStatusWeighing
		order.ManipulatedBy = in.ActorID
		order.UpdatedAt = time.Now()
		return r.Orders.Update(order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// CheckWeighing asienta el resultado del control intermedio sobre la última pesada.
// No avanza la orden ni revierte consumos: un control reprobado es una señal de
// calidad para los operadores, no un rollback automático.
func (uc *WorkflowUseCase) CheckWeighing(ctx context.Context, orderID string, passed bool, checkerID, notes string) error {
	if orderID == "" || checkerID == "" {
		return domain.ErrInvalidInput
	}
	step, err := uc.stepRepo.LatestByType(orderID, entity.StepTypeWeighing)
	if err != nil {
		return err
	}
	if step == nil {
		return domain.ErrNotFound
	}
	return uc.stepRepo.SetIntermediateCheck(step.ID, passed, checkerID, notes)
}

// StartMixing avanza la orden a MIXING registrando los parámetros de mezclado.
func (uc *WorkflowUseCase) StartMixing(ctx context.Context, orderID string, data entity.MixingData, actorID string) (*entity.ManipulationOrder, error) {
	return uc.advanceStage(ctx, orderID, entity.OrderStatusMixing, data, actorID)
}

// StartPackaging avanza la orden a PACKAGING registrando los datos de envasado.
func (uc *WorkflowUseCase) StartPackaging(ctx context.Context, orderID string, data entity.PackagingData, actorID string) (*entity.ManipulationOrder, error) {
	return uc.advanceStage(ctx, orderID, entity.OrderStatusPackaging, data, actorID)
}

// StartLabeling avanza la orden a LABELING registrando los datos de etiquetado.
func (uc *WorkflowUseCase) StartLabeling(ctx context.Context, orderID string, data entity.LabelingData, actorID string) (*entity.ManipulationOrder, error) {
	return uc.advanceStage(ctx, orderID, entity.OrderStatusLabeling, data, actorID)
}

// advanceStage etapa sin efectos de stock: crea el registro de etapa y transiciona.
func (uc *WorkflowUseCase) advanceStage(ctx context.Context, orderID, toStatus string, payload entity.StepPayload, actorID string) (*entity.ManipulationOrder, error) {
	if actorID == "" {
		return nil, domain.ErrInvalidInput
	}
	var order *entity.ManipulationOrder
	err := uc.txRunner.Run(ctx, func(r stock.Repos) error {
		var err error
		order, err = lockAndGuard(r, orderID, toStatus)
		if err != nil {
			return err
		}
		step := &entity.ManipulationStep{
			OrderID:     order.ID,
			Type:        payload.StepType(),
			Payload:     payload,
			PerformedBy: actorID,
			CreatedAt:   time.Now(),
		}
		if err := r.Steps.Create(step); err != nil {
			return err
		}
		order.Status = toStatus
		order.UpdatedAt = time.Now()
		return r.Orders.Update(order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// FinalCheckInput control de calidad final del farmacéutico.
type FinalCheckInput struct {
	Data                 entity.FinalCheckData
	ApprovedByPharmacist bool
	PharmacistID         string
	Notes                string
	ExpiryDate           *time.Time // si es nil y hay aprobación, se deriva
}

// FinalCheck ejecuta el control final. Si el farmacéutico aprueba, la orden pasa a
// COMPLETED: se estampa CompletionDate (una sola vez, idempotente), se genera el lote
// del producto terminado y se deriva el vencimiento cuando no viene explícito. Si
// reprueba, la orden queda en FINAL_CHECK a la espera de reproceso.
func (uc *WorkflowUseCase) FinalCheck(ctx context.Context, orderID string, in FinalCheckInput) (*entity.ManipulationOrder, error) {
	if orderID == "" || in.PharmacistID == "" {
		return nil, domain.ErrInvalidInput
	}
	var order *entity.ManipulationOrder
	err := uc.txRunner.Run(ctx, func(r stock.Repos) error {
		var err error
		order, err = r.Orders.GetForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		// Reintento sobre una orden ya completada y aprobada: no-op idempotente,
		// CompletionDate no se vuelve a estampar.
		if order.Status == entity.OrderStatusCompleted && in.ApprovedByPharmacist {
			return nil
		}
		if !magistral.CanTransition(order.Status, entity.OrderStatusFinalCheck) {
			if magistral.IsTerminal(order.Status) {
				return domain.ErrOrderFinalized
			}
			return domain.ErrInvalidState
		}
		now := time.Now()
		passed := in.ApprovedByPharmacist
		step := &entity.ManipulationStep{
			OrderID:                 order.ID,
			Type:                    entity.StepTypeFinalCheck,
			Payload:                 in.Data,
			PassedIntermediateCheck: &passed,
			CheckedBy:               in.PharmacistID,
			Notes:                   in.Notes,
			PerformedBy:             in.PharmacistID,
			CreatedAt:               now,
		}
		if err := r.Steps.Create(step); err != nil {
			return err
		}
		order.CheckedBy = in.PharmacistID
		if !in.ApprovedByPharmacist {
			order.Status = entity.OrderStatusFinalCheck
			order.PassedQualityControl = false
			order.UpdatedAt = now
			return r.Orders.Update(order)
		}

		order.Status = entity.OrderStatusCompleted
		order.PassedQualityControl = true
		order.PharmacistID = in.PharmacistID
		if order.CompletionDate == nil {
			order.CompletionDate = &now
		}
		if order.ProductBatchNumber == "" {
			seq, err := r.Sequences.Next(magistral.SequenceScope(magistral.ProductBatchNumberPrefix, now))
			if err != nil {
				return err
			}
			order.ProductBatchNumber = magistral.FormatSequenced(magistral.ProductBatchNumberPrefix, now, seq)
		}
		if in.ExpiryDate != nil {
			order.ProductExpiryDate = in.ExpiryDate
		} else {
			expiry, err := uc.deriveExpiry(r, order, *order.CompletionDate)
			if err != nil {
				return err
			}
			order.ProductExpiryDate = &expiry
		}
		order.UpdatedAt = now
		return r.Orders.Update(order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// deriveExpiry aplica la regla del dominio: mínimo entre vida útil de la fórmula y el
// vencimiento más próximo de los lotes consumidos por la orden.
func (uc *WorkflowUseCase) deriveExpiry(r stock.Repos, order *entity.ManipulationOrder, productionDate time.Time) (time.Time, error) {
	shelfLifeDays := 0
	if order.FormulaID != "" {
		f, err := uc.formulaRepo.GetByID(order.FormulaID)
		if err != nil {
			return time.Time{}, err
		}
		if f != nil {
			shelfLifeDays = f.ShelfLifeDays
		}
	}
	movs, err := r.Movements.ListByOrder(order.ID)
	if err != nil {
		return time.Time{}, err
	}
	var expiries []time.Time
	seen := make(map[string]bool)
	for _, mov := range movs {
		if mov.Type != entity.MovementTypeConsumption || mov.BatchID == "" || seen[mov.BatchID] {
			continue
		}
		seen[mov.BatchID] = true
		b, err := r.Batches.GetByID(mov.BatchID)
		if err != nil {
			return time.Time{}, err
		}
		if b != nil {
			expiries = append(expiries, b.ExpiryDate)
		}
	}
	return magistral.DeriveProductExpiry(productionDate, shelfLifeDays, expiries), nil
}

// Cancel cancela la orden desde cualquier estado no terminal, anotando el motivo en la
// bitácora. No revierte consumos ya asentados: una reversión, si se desea, debe ser un
// ADJUSTMENT explícito (el libro nunca edita historia en silencio).
func (uc *WorkflowUseCase) Cancel(ctx context.Context, orderID, reason, actorID string) (*entity.ManipulationOrder, error) {
	if orderID == "" || reason == "" || actorID == "" {
		return nil, domain.ErrInvalidInput
	}
	var order *entity.ManipulationOrder
	err := uc.txRunner.Run(ctx, func(r stock.Repos) error {
		var err error
		order, err = r.Orders.GetForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if order.IsTerminal() {
			return domain.ErrOrderFinalized
		}
		now := time.Now()
		order.Status = entity.OrderStatusCancelled
		if order.Instructions != "" {
			order.Instructions += "\n"
		}
		order.Instructions += "CANCELADA (" + actorID + "): " + reason
		order.UpdatedAt = now
		return r.Orders.Update(order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// GetByID devuelve una orden por su ID.
func (uc *WorkflowUseCase) GetByID(ctx context.Context, orderID string) (*entity.ManipulationOrder, error) {
	o, err := uc.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

// List lista órdenes, opcionalmente filtradas por estado.
func (uc *WorkflowUseCase) List(ctx context.Context, status string, limit, offset int) ([]*entity.ManipulationOrder, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return uc.orderRepo.List(status, limit, offset)
}

// lockAndGuard bloquea la orden y valida la transición hacia toStatus.
// Estados terminales devuelven ErrOrderFinalized; transiciones inválidas, ErrInvalidState.
func lockAndGuard(r stock.Repos, orderID, toStatus string) (*entity.ManipulationOrder, error) {
	if orderID == "" {
		return nil, domain.ErrInvalidInput
	}
	order, err := r.Orders.GetForUpdate(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if order.IsTerminal() {
		return nil, domain.ErrOrderFinalized
	}
	if !magistral.CanTransition(order.Status, toStatus) {
		return nil, domain.ErrInvalidState
	}
	return order, nil
}

// stampStartDate estampa la fecha de inicio de producción una sola vez.
func stampStartDate(order *entity.ManipulationOrder) {
	if order.StartDate == nil {
		now := time.Now()
		order.StartDate = &now
	}
}
