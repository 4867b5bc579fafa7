package magistral

import "github.com/farmabit/magistral-api/internal/domain/entity"

// Tabla de transiciones del flujo de manipulación. Es la única fuente de verdad:
// los casos de uso consultan CanTransition y nunca mutan Status por su cuenta.
//
// PENDING → IN_PRODUCTION → WEIGHING → MIXING → PACKAGING → LABELING → FINAL_CHECK → COMPLETED
// Cualquier estado no terminal → CANCELLED.
// Un control final reprobado deja la orden en FINAL_CHECK a la espera de reintento.
var transitions = map[string][]string{
	entity.OrderStatusPending:      {entity.OrderStatusInProduction, entity.OrderStatusWeighing},
	entity.OrderStatusInProduction: {entity.OrderStatusWeighing},
	entity.OrderStatusWeighing:     {entity.OrderStatusMixing},
	entity.OrderStatusMixing:       {entity.OrderStatusPackaging},
	entity.OrderStatusPackaging:    {entity.OrderStatusLabeling},
	entity.OrderStatusLabeling:     {entity.OrderStatusFinalCheck},
	entity.OrderStatusFinalCheck:   {entity.OrderStatusFinalCheck, entity.OrderStatusCompleted},
	entity.OrderStatusCompleted:    {},
	entity.OrderStatusCancelled:    {},
}

// IsTerminal indica si el estado no admite ninguna transición de salida.
func IsTerminal(status string) bool {
	return status == entity.OrderStatusCompleted || status == entity.OrderStatusCancelled
}

// CanTransition valida una transición del flujo de manipulación.
// CANCELLED es alcanzable desde cualquier estado no terminal.
func CanTransition(from, to string) bool {
	if IsTerminal(from) {
		return false
	}
	if to == entity.OrderStatusCancelled {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Statuses devuelve todos los estados conocidos de una orden.
func Statuses() []string {
	return []string{
		entity.OrderStatusPending,
		entity.OrderStatusInProduction,
		entity.OrderStatusWeighing,
		entity.OrderStatusMixing,
		entity.OrderStatusPackaging,
		entity.OrderStatusLabeling,
		entity.OrderStatusFinalCheck,
		entity.OrderStatusCompleted,
		entity.OrderStatusCancelled,
	}
}
