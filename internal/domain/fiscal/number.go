// Package fiscal implementa la lógica fiscal pura de facturación española:
// numeración serie-año-secuencia, cálculo de IVA/IRPF y validación de fechas.
// Todas las funciones son deterministas y sin efectos secundarios.
package fiscal

import (
	"fmt"
	"regexp"
	"strconv"
)

// DefaultPadding dígitos mínimos de la secuencia en la forma canónica.
const DefaultPadding = 4

// Patrones de número de factura. La forma canónica es SERIE-AAAA-NNNN
// (serie alfanumérica, año de 4 dígitos, secuencia de al menos 3 dígitos).
// La forma legada AAAA-NNNN se acepta en entrada y se normaliza al re-construir.
var (
	canonicalNumberRe = regexp.MustCompile(`^([A-Za-z0-9]+)-(\d{4})-(\d{3,})$`)
	legacyNumberRe    = regexp.MustCompile(`^(\d{4})-(\d{3,})$`)
)

// InvoiceNumber es el número de factura descompuesto (objeto de valor).
type InvoiceNumber struct {
	Series     string
	FiscalYear int
	Sequence   int
}

// String devuelve la forma canónica con el padding por defecto.
func (n InvoiceNumber) String() string {
	return BuildNumber(n.Series, n.FiscalYear, n.Sequence, DefaultPadding)
}

// BuildNumber construye la forma canónica "SERIE-AAAA-NNNN" con la secuencia
// rellenada con ceros hasta padding dígitos.
func BuildNumber(series string, fiscalYear, sequence, padding int) string {
	if padding <= 0 {
		padding = DefaultPadding
	}
	return fmt.Sprintf("%s-%d-%0*d", series, fiscalYear, padding, sequence)
}

// ParseNumber descompone un número de factura. Intenta primero la forma
// canónica y después la legada (sin serie); en la legada la serie pasa a ser
// fallbackSeries. Devuelve ok=false si no coincide con ningún patrón: un
// "no reconocido" no es un error, el caller decide si lo es en su contexto.
func ParseNumber(raw, fallbackSeries string) (InvoiceNumber, bool) {
	if m := canonicalNumberRe.FindStringSubmatch(raw); m != nil {
		year, _ := strconv.Atoi(m[2])
		seq, _ := strconv.Atoi(m[3])
		return InvoiceNumber{Series: m[1], FiscalYear: year, Sequence: seq}, true
	}
	if m := legacyNumberRe.FindStringSubmatch(raw); m != nil {
		year, _ := strconv.Atoi(m[1])
		seq, _ := strconv.Atoi(m[2])
		return InvoiceNumber{Series: fallbackSeries, FiscalYear: year, Sequence: seq}, true
	}
	return InvoiceNumber{}, false
}
