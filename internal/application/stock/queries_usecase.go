package stock

import (
	"context"
	"time"

	"github.com/farmabit/magistral-api/internal/domain"
	"github.com/farmabit/magistral-api/internal/domain/entity"
	"github.com/farmabit/magistral-api/internal/domain/repository"
)

// QueriesUseCase consultas de solo lectura sobre el libro y los saldos: kardex por
// materia prima, saldo actual y lista de materias bajo stock mínimo.
type QueriesUseCase struct {
	materialRepo repository.RawMaterialRepository
	movementRepo repository.StockMovementRepository
}

// NewQueriesUseCase construye las consultas de stock.
func NewQueriesUseCase(materialRepo repository.RawMaterialRepository, movementRepo repository.StockMovementRepository) *QueriesUseCase {
	return &QueriesUseCase{materialRepo: materialRepo, movementRepo: movementRepo}
}

// Kardex devuelve los movimientos de una materia prima en un rango de fechas.
func (uc *QueriesUseCase) Kardex(ctx context.Context, materialID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	if materialID == "" {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return uc.movementRepo.ListByMaterial(materialID, from, to, limit, offset)
}

// Balance devuelve la materia prima con su agregado materializado actual.
func (uc *QueriesUseCase) Balance(ctx context.Context, materialID string) (*entity.RawMaterial, error) {
	m, err := uc.materialRepo.GetByID(materialID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	return m, nil
}

// ListBelowMinimum devuelve las materias primas activas con stock bajo el mínimo,
// para la lista de reposición del laboratorio.
func (uc *QueriesUseCase) ListBelowMinimum(ctx context.Context) ([]*entity.RawMaterial, error) {
	return uc.materialRepo.ListBelowMinimum()
}
