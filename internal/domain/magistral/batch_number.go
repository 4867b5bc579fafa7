package magistral

import (
	"fmt"
	"time"
)

// Prefijos de numeración por alcance. El contador por día lo entrega la capa de
// persistencia de forma atómica; aquí solo se formatea.
const (
	OrderNumberPrefix        = "OM"  // orden de manipulación
	ProductBatchNumberPrefix = "MAG" // lote de producto terminado
)

// SequenceScope arma la clave del contador diario para un prefijo dado.
func SequenceScope(prefix string, day time.Time) string {
	return fmt.Sprintf("%s-%s", prefix, day.Format("20060102"))
}

// FormatSequenced produce un número determinista PREFIJO-AAAAMMDD-NNNN.
// Dos llamadas concurrentes nunca colisionan porque seq proviene de un
// incremento atómico por alcance.
func FormatSequenced(prefix string, day time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, day.Format("20060102"), seq)
}
