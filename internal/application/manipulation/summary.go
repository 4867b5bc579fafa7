package manipulation

import (
	"context"

	"github.com/farmabit/magistral-api/internal/domain"
	"github.com/farmabit/magistral-api/internal/domain/entity"
	"github.com/farmabit/magistral-api/internal/domain/magistral"
)

// OrderSummary estado agregado de una orden: última etapa de cada tipo, si puede
// avanzar y hacia dónde.
type OrderSummary struct {
	Order       *entity.ManipulationOrder
	LatestSteps map[string]*entity.ManipulationStep // por tipo de etapa
	CanProceed  bool
	NextStage   string // siguiente estado del flujo productivo; vacío si terminal
}

// Orden productivo de los estados para calcular la siguiente etapa.
var productionPath = []string{
	entity.OrderStatusPending,
	entity.OrderStatusInProduction,
	entity.OrderStatusWeighing,
	entity.OrderStatusMixing,
	entity.OrderStatusPackaging,
	entity.OrderStatusLabeling,
	entity.OrderStatusFinalCheck,
	entity.OrderStatusCompleted,
}

// GetSummary arma el resumen de flujo de una orden. CanProceed es falso si la orden
// está en estado terminal o si la última etapa con punto de control de la etapa
// actual quedó reprobada y sin repetir.
func (uc *WorkflowUseCase) GetSummary(ctx context.Context, orderID string) (*OrderSummary, error) {
	order, err := uc.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	steps, err := uc.stepRepo.ListByOrder(orderID)
	if err != nil {
		return nil, err
	}
	latest := make(map[string]*entity.ManipulationStep)
	for _, s := range steps {
		latest[s.Type] = s // ListByOrder viene ascendente; queda el más reciente
	}

	summary := &OrderSummary{
		Order:       order,
		LatestSteps: latest,
		NextStage:   nextStage(order.Status),
	}
	summary.CanProceed = !magistral.IsTerminal(order.Status) && !gateFailed(order.Status, latest)
	return summary, nil
}

// gateFailed indica si la etapa actual tiene un punto de control asentado en reprobado.
func gateFailed(status string, latest map[string]*entity.ManipulationStep) bool {
	var gate *entity.ManipulationStep
	switch status {
	case entity.OrderStatusWeighing:
		gate = latest[entity.StepTypeWeighing]
	case entity.OrderStatusFinalCheck:
		gate = latest[entity.StepTypeFinalCheck]
	default:
		return false
	}
	return gate != nil && gate.PassedIntermediateCheck != nil && !*gate.PassedIntermediateCheck
}

func nextStage(status string) string {
	for i, s := range productionPath {
		if s == status && i+1 < len(productionPath) {
			return productionPath[i+1]
		}
	}
	return ""
}
