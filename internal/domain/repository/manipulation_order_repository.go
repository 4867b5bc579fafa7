package repository

import "github.com/farmabit/magistral-api/internal/domain/entity"

// ManipulationOrderRepository define el puerto de persistencia para órdenes de manipulación.
type ManipulationOrderRepository interface {
	Create(o *entity.ManipulationOrder) error
	GetByID(id string) (*entity.ManipulationOrder, error)
	// GetForUpdate bloquea la fila de la orden: serializa las transiciones de etapa
	// por orden (SELECT FOR UPDATE).
	GetForUpdate(id string) (*entity.ManipulationOrder, error)
	Update(o *entity.ManipulationOrder) error
	List(status string, limit, offset int) ([]*entity.ManipulationOrder, error)
}

// ManipulationStepRepository define el puerto para las etapas ejecutadas de una orden.
// Las etapas son append-only; la única mutación permitida es asentar el resultado del
// punto de control intermedio sobre una etapa ya creada.
type ManipulationStepRepository interface {
	Create(s *entity.ManipulationStep) error
	GetByID(id string) (*entity.ManipulationStep, error)
	ListByOrder(orderID string) ([]*entity.ManipulationStep, error)
	// LatestByType devuelve la etapa más reciente de un tipo para la orden (nil si no hay).
	LatestByType(orderID, stepType string) (*entity.ManipulationStep, error)
	SetIntermediateCheck(stepID string, passed bool, checkedBy, notes string) error
}
