package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Issues presentes solo en errores de validación (un elemento por campo).
	Issues []FieldIssueDTO `json:"issues,omitempty"`
}

// FieldIssueDTO problema de validación etiquetado por campo.
type FieldIssueDTO struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
