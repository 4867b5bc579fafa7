package magistral_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/farmabit/magistral-api/internal/domain/magistral"
)

func fecha(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Sin lotes que venzan antes, manda la vida útil de la fórmula.
func TestDeriveProductExpiry_VidaUtilFormula(t *testing.T) {
	produccion := fecha(2026, 3, 10)
	got := magistral.DeriveProductExpiry(produccion, 30, []time.Time{
		fecha(2027, 1, 1),
		fecha(2026, 12, 1),
	})
	assert.Equal(t, fecha(2026, 4, 9), got)
}

// Un lote consumido que vence antes acorta el vencimiento del preparado.
func TestDeriveProductExpiry_LoteMasProximoManda(t *testing.T) {
	produccion := fecha(2026, 3, 10)
	got := magistral.DeriveProductExpiry(produccion, 90, []time.Time{
		fecha(2026, 4, 1), // vence antes que produccion+90d
		fecha(2027, 1, 1),
	})
	assert.Equal(t, fecha(2026, 4, 1), got)
}

func TestDeriveProductExpiry_SinLotes(t *testing.T) {
	produccion := fecha(2026, 3, 10)
	got := magistral.DeriveProductExpiry(produccion, 15, nil)
	assert.Equal(t, fecha(2026, 3, 25), got)
}

// ── numeración ────────────────────────────────────────────────────────────────

func TestFormatSequenced(t *testing.T) {
	dia := fecha(2026, 9, 1)
	assert.Equal(t, "OM-20260901-0007", magistral.FormatSequenced(magistral.OrderNumberPrefix, dia, 7))
	assert.Equal(t, "MAG-20260901-0042", magistral.FormatSequenced(magistral.ProductBatchNumberPrefix, dia, 42))
}

func TestSequenceScope_PorDia(t *testing.T) {
	assert.Equal(t, "MAG-20260901", magistral.SequenceScope(magistral.ProductBatchNumberPrefix, fecha(2026, 9, 1)))
	assert.NotEqual(t,
		magistral.SequenceScope(magistral.OrderNumberPrefix, fecha(2026, 9, 1)),
		magistral.SequenceScope(magistral.OrderNumberPrefix, fecha(2026, 9, 2)),
		"días distintos deben tener alcances de secuencia distintos")
}
