package usecase

import (
	"time"

	"github.com/google/uuid"

	"github.com/farmabit/magistral-api/internal/application/dto"
	"github.com/farmabit/magistral-api/internal/domain"
	"github.com/farmabit/magistral-api/internal/domain/entity"
	"github.com/farmabit/magistral-api/internal/domain/repository"
)

// MaterialUseCase casos de uso CRUD para materias primas. El stock actual no es
// editable por aquí: solo lo muta el libro de movimientos.
type MaterialUseCase struct {
	repo repository.RawMaterialRepository
}

// NewMaterialUseCase construye el caso de uso.
func NewMaterialUseCase(repo repository.RawMaterialRepository) *MaterialUseCase {
	return &MaterialUseCase{repo: repo}
}

// Create da de alta una materia prima con stock cero.
func (uc *MaterialUseCase) Create(in dto.CreateMaterialRequest) (*dto.MaterialResponse, error) {
	if in.Name == "" || in.UnitMeasure == "" {
		return nil, domain.ErrInvalidInput
	}
	switch in.ControlClass {
	case "":
		in.ControlClass = entity.ControlClassCommon
	case entity.ControlClassCommon, entity.ControlClassControlled:
	default:
		return nil, domain.ErrInvalidInput
	}
	if in.MinimumStock.IsNegative() || in.MaximumStock.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	material := &entity.RawMaterial{
		ID:           uuid.New().String(),
		Name:         in.Name,
		UnitMeasure:  in.UnitMeasure,
		MinimumStock: in.MinimumStock,
		MaximumStock: in.MaximumStock,
		ControlClass: in.ControlClass,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(material); err != nil {
		return nil, err
	}
	return ToMaterialResponse(material), nil
}

// GetByID obtiene una materia prima por ID.
func (uc *MaterialUseCase) GetByID(id string) (*dto.MaterialResponse, error) {
	material, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, domain.ErrNotFound
	}
	return ToMaterialResponse(material), nil
}

// Update actualiza los campos editables (nunca CurrentStock).
func (uc *MaterialUseCase) Update(id string, in dto.UpdateMaterialRequest) (*dto.MaterialResponse, error) {
	material, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		material.Name = *in.Name
	}
	if in.UnitMeasure != nil {
		material.UnitMeasure = *in.UnitMeasure
	}
	if in.MinimumStock != nil {
		material.MinimumStock = *in.MinimumStock
	}
	if in.MaximumStock != nil {
		material.MaximumStock = *in.MaximumStock
	}
	if in.ControlClass != nil {
		switch *in.ControlClass {
		case entity.ControlClassCommon, entity.ControlClassControlled:
			material.ControlClass = *in.ControlClass
		default:
			return nil, domain.ErrInvalidInput
		}
	}
	if in.Active != nil {
		material.Active = *in.Active
	}
	material.UpdatedAt = time.Now()
	if err := uc.repo.Update(material); err != nil {
		return nil, err
	}
	return ToMaterialResponse(material), nil
}

// List lista materias primas.
func (uc *MaterialUseCase) List(activeOnly bool, limit, offset int) ([]*dto.MaterialResponse, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	materials, err := uc.repo.List(activeOnly, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.MaterialResponse, 0, len(materials))
	for _, m := range materials {
		out = append(out, ToMaterialResponse(m))
	}
	return out, nil
}

// ToMaterialResponse mapea la entidad al DTO de respuesta.
func ToMaterialResponse(m *entity.RawMaterial) *dto.MaterialResponse {
	return &dto.MaterialResponse{
		ID:           m.ID,
		Name:         m.Name,
		UnitMeasure:  m.UnitMeasure,
		CurrentStock: m.CurrentStock,
		MinimumStock: m.MinimumStock,
		MaximumStock: m.MaximumStock,
		ControlClass: m.ControlClass,
		BelowMinimum: m.BelowMinimum(),
		Active:       m.Active,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
