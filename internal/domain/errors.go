package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound                = errors.New("recurso no encontrado")
	ErrInvalidInput            = errors.New("entrada inválida")
	ErrDuplicate               = errors.New("recurso duplicado")
	ErrUnauthorized            = errors.New("no autorizado")
	ErrConflict                = errors.New("conflicto con el estado actual")
	ErrImmutableInvoice        = errors.New("la factura ya no es editable (estado distinto de DRAFT)")
	ErrInvalidStatusTransition = errors.New("transición de estado no permitida")
	ErrTaxConfiguration        = errors.New("configuración de impuestos inválida")
)

// FieldIssue es un problema de validación asociado a un campo concreto.
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError acumula todos los problemas fiscales detectados en una factura.
// No es fail-fast: el caller recibe la lista completa para presentarla de una vez.
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "validación fallida"
	}
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, is.Field+": "+is.Message)
	}
	return "validación fallida: " + strings.Join(parts, "; ")
}

// NewValidationError construye el error a partir de los issues acumulados.
// Devuelve nil si no hay ninguno, para poder usarlo directamente como retorno.
func NewValidationError(issues []FieldIssue) error {
	if len(issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: issues}
}

// StatusTransitionError detalla una transición ilegal del ciclo de vida.
// errors.Is(err, ErrInvalidStatusTransition) funciona sobre este tipo.
type StatusTransitionError struct {
	From string
	To   string
}

func (e *StatusTransitionError) Error() string {
	return fmt.Sprintf("transición de estado no permitida: %s -> %s", e.From, e.To)
}

func (e *StatusTransitionError) Unwrap() error { return ErrInvalidStatusTransition }
