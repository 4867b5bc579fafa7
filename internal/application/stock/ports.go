package stock

import (
	"context"

	"github.com/farmabit/magistral-api/internal/domain/repository"
)

// Repos agrupa los repositorios atados a una misma transacción de BD.
// El callback de TxRunner recibe esta vista transaccional: todo lo que se escriba
// a través de ella se confirma o se revierte como una unidad.
type Repos struct {
	Materials repository.RawMaterialRepository
	Batches   repository.BatchRepository
	Movements repository.StockMovementRepository
	Orders    repository.ManipulationOrderRepository
	Steps     repository.ManipulationStepRepository
	Sequences repository.SequenceRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios
// atados a esa tx. Garantiza atomicidad para el libro de movimientos: movimiento,
// cantidad del lote y agregado de la materia prima se escriben juntos o ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}
