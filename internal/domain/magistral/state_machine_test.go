package magistral_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/farmabit/magistral-api/internal/domain/entity"
	"github.com/farmabit/magistral-api/internal/domain/magistral"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tabla de transiciones del flujo de manipulación
// ──────────────────────────────────────────────────────────────────────────────

func TestCanTransition_FlujoFeliz(t *testing.T) {
	camino := []struct{ from, to string }{
		{entity.OrderStatusPending, entity.OrderStatusInProduction},
		{entity.OrderStatusInProduction, entity.OrderStatusWeighing},
		{entity.OrderStatusWeighing, entity.OrderStatusMixing},
		{entity.OrderStatusMixing, entity.OrderStatusPackaging},
		{entity.OrderStatusPackaging, entity.OrderStatusLabeling},
		{entity.OrderStatusLabeling, entity.OrderStatusFinalCheck},
		{entity.OrderStatusFinalCheck, entity.OrderStatusCompleted},
	}
	for _, paso := range camino {
		assert.True(t, magistral.CanTransition(paso.from, paso.to),
			"debe permitirse %s → %s", paso.from, paso.to)
	}
}

// La pesada puede arrancar directo desde PENDING (sin pasar por IN_PRODUCTION).
func TestCanTransition_PesadaDesdePending(t *testing.T) {
	assert.True(t, magistral.CanTransition(entity.OrderStatusPending, entity.OrderStatusWeighing))
}

// Un control final reprobado deja la orden en FINAL_CHECK (reintento permitido).
func TestCanTransition_FinalCheckReintento(t *testing.T) {
	assert.True(t, magistral.CanTransition(entity.OrderStatusFinalCheck, entity.OrderStatusFinalCheck))
}

func TestCanTransition_NoSaltaEtapas(t *testing.T) {
	casos := []struct{ from, to string }{
		{entity.OrderStatusPending, entity.OrderStatusMixing},
		{entity.OrderStatusWeighing, entity.OrderStatusPackaging},
		{entity.OrderStatusMixing, entity.OrderStatusFinalCheck},
		{entity.OrderStatusWeighing, entity.OrderStatusCompleted},
		{entity.OrderStatusMixing, entity.OrderStatusWeighing}, // no se retrocede
	}
	for _, c := range casos {
		assert.False(t, magistral.CanTransition(c.from, c.to),
			"no debe permitirse %s → %s", c.from, c.to)
	}
}

// Completitud del estado terminal: de COMPLETED o CANCELLED no sale ninguna
// transición, hacia ningún estado conocido, ni siquiera hacia CANCELLED.
func TestCanTransition_TerminalesSinSalida(t *testing.T) {
	for _, terminal := range []string{entity.OrderStatusCompleted, entity.OrderStatusCancelled} {
		for _, destino := range magistral.Statuses() {
			assert.False(t, magistral.CanTransition(terminal, destino),
				"estado terminal %s no debe transicionar a %s", terminal, destino)
		}
	}
}

// CANCELLED es alcanzable desde cualquier estado no terminal.
func TestCanTransition_CancelacionDesdeNoTerminales(t *testing.T) {
	for _, estado := range magistral.Statuses() {
		if magistral.IsTerminal(estado) {
			continue
		}
		assert.True(t, magistral.CanTransition(estado, entity.OrderStatusCancelled),
			"debe poder cancelarse desde %s", estado)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, magistral.IsTerminal(entity.OrderStatusCompleted))
	assert.True(t, magistral.IsTerminal(entity.OrderStatusCancelled))
	assert.False(t, magistral.IsTerminal(entity.OrderStatusPending))
	assert.False(t, magistral.IsTerminal(entity.OrderStatusFinalCheck))
}
