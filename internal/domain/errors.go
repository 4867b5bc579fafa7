package domain

import "errors"

// Errores de dominio (sin dependencias externas). Toda violación de regla se detecta
// antes de escribir y se devuelve síncrona al llamador; nunca hay aplicación parcial.
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrInvalidState         = errors.New("operación no permitida en el estado actual")
	ErrInsufficientQuantity = errors.New("cantidad insuficiente en lote o stock")
	ErrDuplicateBatch       = errors.New("número de lote duplicado para la materia prima")
	ErrHasUsageHistory      = errors.New("el lote tiene movimientos registrados")
	ErrOrderFinalized       = errors.New("la orden está en un estado terminal")
	ErrConcurrencyConflict  = errors.New("conflicto de concurrencia, reintentar la operación")
	ErrUnauthorized         = errors.New("no autorizado")
	ErrForbidden            = errors.New("acceso denegado")
)
