// Package apptest provee dobles en memoria de los puertos de persistencia, con un
// TxRunner que simula commit/rollback por copia del estado. Solo para tests.
package apptest

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/farmabit/magistral-api/internal/application/stock"
	"github.com/farmabit/magistral-api/internal/domain/entity"
)

// Store estado compartido de todos los fakes. Las entidades se guardan y devuelven
// por copia: una mutación solo persiste pasando por Update/Create, igual que con la
// base real.
type Store struct {
	Materials map[string]entity.RawMaterial
	Suppliers map[string]entity.Supplier
	Batches   map[string]entity.Batch
	Movements []entity.StockMovement
	Orders    map[string]entity.ManipulationOrder
	Steps     map[string]entity.ManipulationStep
	Formulas  map[string]entity.Formula
	Sequences map[string]int

	nextID int
}

// NewStore construye un estado vacío.
func NewStore() *Store {
	return &Store{
		Materials: make(map[string]entity.RawMaterial),
		Suppliers: make(map[string]entity.Supplier),
		Batches:   make(map[string]entity.Batch),
		Orders:    make(map[string]entity.ManipulationOrder),
		Steps:     make(map[string]entity.ManipulationStep),
		Formulas:  make(map[string]entity.Formula),
		Sequences: make(map[string]int),
	}
}

// NewID genera IDs deterministas (id-1, id-2, ...) para aserciones estables.
func (s *Store) NewID() string {
	s.nextID++
	return "id-" + strconv.Itoa(s.nextID)
}

// Repos devuelve la vista de repositorios sobre este estado.
func (s *Store) Repos() stock.Repos {
	return stock.Repos{
		Materials: &materialRepo{s},
		Batches:   &batchRepo{s},
		Movements: &movementRepo{s},
		Orders:    &orderRepo{s},
		Steps:     &stepRepo{s},
		Sequences: &sequenceRepo{s},
	}
}

// snapshot copia el estado completo para poder revertirlo.
func (s *Store) snapshot() *Store {
	c := &Store{
		Materials: make(map[string]entity.RawMaterial, len(s.Materials)),
		Suppliers: make(map[string]entity.Supplier, len(s.Suppliers)),
		Batches:   make(map[string]entity.Batch, len(s.Batches)),
		Movements: append([]entity.StockMovement(nil), s.Movements...),
		Orders:    make(map[string]entity.ManipulationOrder, len(s.Orders)),
		Steps:     make(map[string]entity.ManipulationStep, len(s.Steps)),
		Formulas:  make(map[string]entity.Formula, len(s.Formulas)),
		Sequences: make(map[string]int, len(s.Sequences)),
		nextID:    s.nextID,
	}
	for k, v := range s.Materials {
		c.Materials[k] = v
	}
	for k, v := range s.Suppliers {
		c.Suppliers[k] = v
	}
	for k, v := range s.Batches {
		c.Batches[k] = v
	}
	for k, v := range s.Orders {
		c.Orders[k] = v
	}
	for k, v := range s.Steps {
		c.Steps[k] = v
	}
	for k, v := range s.Formulas {
		c.Formulas[k] = v
	}
	for k, v := range s.Sequences {
		c.Sequences[k] = v
	}
	return c
}

func (s *Store) restore(from *Store) {
	s.Materials = from.Materials
	s.Suppliers = from.Suppliers
	s.Batches = from.Batches
	s.Movements = from.Movements
	s.Orders = from.Orders
	s.Steps = from.Steps
	s.Formulas = from.Formulas
	s.Sequences = from.Sequences
	s.nextID = from.nextID
}

// TxRunner simula la transacción: si fn falla, restaura el estado previo completo
// (la semántica todo-o-nada que da la base real).
type TxRunner struct {
	Store *Store
}

// Run implementa stock.TxRunner.
func (t *TxRunner) Run(ctx context.Context, fn func(r stock.Repos) error) error {
	snap := t.Store.snapshot()
	if err := fn(t.Store.Repos()); err != nil {
		t.Store.restore(snap)
		return err
	}
	return nil
}

// ── repos ─────────────────────────────────────────────────────────────────────

type materialRepo struct{ s *Store }

func (r *materialRepo) Create(m *entity.RawMaterial) error {
	if m.ID == "" {
		m.ID = r.s.NewID()
	}
	r.s.Materials[m.ID] = *m
	return nil
}

func (r *materialRepo) GetByID(id string) (*entity.RawMaterial, error) {
	m, ok := r.s.Materials[id]
	if !ok {
		return nil, nil
	}
	c := m
	return &c, nil
}

func (r *materialRepo) GetForUpdate(id string) (*entity.RawMaterial, error) {
	return r.GetByID(id)
}

func (r *materialRepo) Update(m *entity.RawMaterial) error {
	r.s.Materials[m.ID] = *m
	return nil
}

func (r *materialRepo) UpdateStock(id string, newStock decimal.Decimal) error {
	m := r.s.Materials[id]
	m.CurrentStock = newStock
	r.s.Materials[id] = m
	return nil
}

func (r *materialRepo) List(activeOnly bool, limit, offset int) ([]*entity.RawMaterial, error) {
	var out []*entity.RawMaterial
	for _, m := range r.s.Materials {
		if activeOnly && !m.Active {
			continue
		}
		c := m
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *materialRepo) ListBelowMinimum() ([]*entity.RawMaterial, error) {
	var out []*entity.RawMaterial
	for _, m := range r.s.Materials {
		if m.Active && m.CurrentStock.LessThan(m.MinimumStock) {
			c := m
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type batchRepo struct{ s *Store }

func (r *batchRepo) Create(b *entity.Batch) error {
	if b.ID == "" {
		b.ID = r.s.NewID()
	}
	r.s.Batches[b.ID] = *b
	return nil
}

func (r *batchRepo) GetByID(id string) (*entity.Batch, error) {
	b, ok := r.s.Batches[id]
	if !ok {
		return nil, nil
	}
	c := b
	return &c, nil
}

func (r *batchRepo) GetForUpdate(id string) (*entity.Batch, error) {
	return r.GetByID(id)
}

func (r *batchRepo) ExistsByNumber(materialID, batchNumber string) (bool, error) {
	for _, b := range r.s.Batches {
		if b.MaterialID == materialID && b.BatchNumber == batchNumber {
			return true, nil
		}
	}
	return false, nil
}

func (r *batchRepo) Update(b *entity.Batch) error {
	r.s.Batches[b.ID] = *b
	return nil
}

func (r *batchRepo) UpdateQuantity(id string, newQuantity decimal.Decimal) error {
	b := r.s.Batches[id]
	b.CurrentQuantity = newQuantity
	r.s.Batches[id] = b
	return nil
}

func (r *batchRepo) Delete(id string) error {
	delete(r.s.Batches, id)
	return nil
}

func (r *batchRepo) ListByMaterial(materialID string, limit, offset int) ([]*entity.Batch, error) {
	var out []*entity.Batch
	for _, b := range r.s.Batches {
		if b.MaterialID == materialID {
			c := b
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *batchRepo) ListByStatus(status string, limit, offset int) ([]*entity.Batch, error) {
	var out []*entity.Batch
	for _, b := range r.s.Batches {
		if b.Status == status {
			c := b
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *batchRepo) ListExpiring(before time.Time) ([]*entity.Batch, error) {
	var out []*entity.Batch
	for _, b := range r.s.Batches {
		if b.Status == entity.BatchStatusApproved && b.CurrentQuantity.GreaterThan(decimal.Zero) && !b.ExpiryDate.After(before) {
			c := b
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type movementRepo struct{ s *Store }

func (r *movementRepo) Create(m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = r.s.NewID()
	}
	r.s.Movements = append(r.s.Movements, *m)
	return nil
}

func (r *movementRepo) ListByBatch(batchID string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for i := range r.s.Movements {
		if r.s.Movements[i].BatchID == batchID {
			c := r.s.Movements[i]
			out = append(out, &c)
		}
	}
	return out, nil // el slice ya está en orden de inserción (fecha asc)
}

func (r *movementRepo) ListByMaterial(materialID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for i := range r.s.Movements {
		m := r.s.Movements[i]
		if m.MaterialID != materialID {
			continue
		}
		if from != nil && m.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && m.CreatedAt.After(*to) {
			continue
		}
		c := m
		out = append(out, &c)
	}
	return out, nil
}

func (r *movementRepo) ListByOrder(orderID string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for i := range r.s.Movements {
		if r.s.Movements[i].OrderID == orderID {
			c := r.s.Movements[i]
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *movementRepo) CountByBatch(batchID string) (int, error) {
	n := 0
	for i := range r.s.Movements {
		if r.s.Movements[i].BatchID == batchID {
			n++
		}
	}
	return n, nil
}

type orderRepo struct{ s *Store }

func (r *orderRepo) Create(o *entity.ManipulationOrder) error {
	if o.ID == "" {
		o.ID = r.s.NewID()
	}
	r.s.Orders[o.ID] = *o
	return nil
}

func (r *orderRepo) GetByID(id string) (*entity.ManipulationOrder, error) {
	o, ok := r.s.Orders[id]
	if !ok {
		return nil, nil
	}
	c := o
	return &c, nil
}

func (r *orderRepo) GetForUpdate(id string) (*entity.ManipulationOrder, error) {
	return r.GetByID(id)
}

func (r *orderRepo) Update(o *entity.ManipulationOrder) error {
	r.s.Orders[o.ID] = *o
	return nil
}

func (r *orderRepo) List(status string, limit, offset int) ([]*entity.ManipulationOrder, error) {
	var out []*entity.ManipulationOrder
	for _, o := range r.s.Orders {
		if status != "" && o.Status != status {
			continue
		}
		c := o
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type stepRepo struct{ s *Store }

func (r *stepRepo) Create(st *entity.ManipulationStep) error {
	if st.ID == "" {
		st.ID = r.s.NewID()
	}
	r.s.Steps[st.ID] = *st
	return nil
}

func (r *stepRepo) GetByID(id string) (*entity.ManipulationStep, error) {
	st, ok := r.s.Steps[id]
	if !ok {
		return nil, nil
	}
	c := st
	return &c, nil
}

func (r *stepRepo) ListByOrder(orderID string) ([]*entity.ManipulationStep, error) {
	var out []*entity.ManipulationStep
	for _, st := range r.s.Steps {
		if st.OrderID == orderID {
			c := st
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *stepRepo) LatestByType(orderID, stepType string) (*entity.ManipulationStep, error) {
	steps, _ := r.ListByOrder(orderID)
	var latest *entity.ManipulationStep
	for _, st := range steps {
		if st.Type == stepType {
			latest = st
		}
	}
	return latest, nil
}

func (r *stepRepo) SetIntermediateCheck(stepID string, passed bool, checkedBy, notes string) error {
	st, ok := r.s.Steps[stepID]
	if !ok {
		return nil
	}
	st.PassedIntermediateCheck = &passed
	st.CheckedBy = checkedBy
	st.Notes = notes
	r.s.Steps[stepID] = st
	return nil
}

type sequenceRepo struct{ s *Store }

func (r *sequenceRepo) Next(scope string) (int, error) {
	r.s.Sequences[scope]++
	return r.s.Sequences[scope], nil
}

// SupplierRepo fake del puerto de proveedores (fuera de stock.Repos).
type SupplierRepo struct{ S *Store }

func (r *SupplierRepo) Create(sp *entity.Supplier) error {
	if sp.ID == "" {
		sp.ID = r.S.NewID()
	}
	r.S.Suppliers[sp.ID] = *sp
	return nil
}

func (r *SupplierRepo) GetByID(id string) (*entity.Supplier, error) {
	sp, ok := r.S.Suppliers[id]
	if !ok {
		return nil, nil
	}
	c := sp
	return &c, nil
}

func (r *SupplierRepo) List(activeOnly bool, limit, offset int) ([]*entity.Supplier, error) {
	var out []*entity.Supplier
	for _, sp := range r.S.Suppliers {
		if activeOnly && !sp.Active {
			continue
		}
		c := sp
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// FormulaRepo fake del catálogo de fórmulas.
type FormulaRepo struct{ S *Store }

func (r *FormulaRepo) GetByID(id string) (*entity.Formula, error) {
	f, ok := r.S.Formulas[id]
	if !ok {
		return nil, nil
	}
	c := f
	return &c, nil
}

// MaterialRepo expone el fake de materias primas fuera de una transacción.
func (s *Store) MaterialRepo() *materialRepo { return &materialRepo{s} }

// BatchRepo expone el fake de lotes fuera de una transacción.
func (s *Store) BatchRepo() *batchRepo { return &batchRepo{s} }

// MovementRepo expone el fake de movimientos fuera de una transacción.
func (s *Store) MovementRepo() *movementRepo { return &movementRepo{s} }

// OrderRepo expone el fake de órdenes fuera de una transacción.
func (s *Store) OrderRepo() *orderRepo { return &orderRepo{s} }

// StepRepo expone el fake de etapas fuera de una transacción.
func (s *Store) StepRepo() *stepRepo { return &stepRepo{s} }
