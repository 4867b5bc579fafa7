package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/farmabit/magistral-api/internal/application/stock"
)

var _ stock.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con los repos atados a la tx y hace Commit o
// Rollback. Los errores de bloqueo/serialización se traducen a ErrConcurrencyConflict
// para que el caller pueda reintentar.
func (r *TxRunner) Run(ctx context.Context, fn func(repos stock.Repos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := stock.Repos{
		Materials: NewRawMaterialRepository(tx),
		Batches:   NewBatchRepository(tx),
		Movements: NewStockMovementRepository(tx),
		Orders:    NewManipulationOrderRepository(tx),
		Steps:     NewManipulationStepRepository(tx),
		Sequences: NewSequenceRepository(tx),
	}

	if err := fn(repos); err != nil {
		return translateConcurrency(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return translateConcurrency(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}
