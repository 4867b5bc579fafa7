package entity

import "time"

// Supplier representa un proveedor de materias primas. El núcleo solo lo referencia
// desde lotes y movimientos; su gestión completa vive en otro sistema.
type Supplier struct {
	ID        string
	Name      string
	TaxID     string
	Email     string
	Phone     string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
