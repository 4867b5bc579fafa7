package magistral

import "time"

// DeriveProductExpiry calcula el vencimiento del preparado terminado cuando el
// farmacéutico no lo indica explícitamente en el control final:
// el mínimo entre (fecha de producción + vida útil de la fórmula) y el vencimiento
// más próximo de los lotes consumidos. Con vida útil cero y sin lotes devuelve la
// fecha de producción (el llamador decide si eso es un error de datos).
func DeriveProductExpiry(productionDate time.Time, shelfLifeDays int, batchExpiries []time.Time) time.Time {
	expiry := productionDate.AddDate(0, 0, shelfLifeDays)
	for _, be := range batchExpiries {
		if be.Before(expiry) {
			expiry = be
		}
	}
	return expiry
}
