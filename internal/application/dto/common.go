package dto

// ErrorResponse respuesta de error estructurada: código estable para el cliente y
// mensaje legible para el operador. Retryable marca los conflictos de concurrencia
// que el cliente puede reintentar.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}
