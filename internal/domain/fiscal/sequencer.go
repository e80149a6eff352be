package fiscal

import (
	"fmt"
	"sort"
)

// NextNumber calcula el siguiente número para (series, fiscalYear) a partir del
// snapshot de números existentes: max(secuencias del grupo) + 1, o 1 si el
// grupo está vacío. Determinista y sin estado: la corrección frente a
// escritores concurrentes depende de que el caller serialice la secuencia
// leer-calcular-escribir por (serie, año fiscal).
func NextNumber(existing []string, series string, fiscalYear, padding int) InvoiceNumber {
	maxSeq := 0
	for _, raw := range existing {
		num, ok := ParseNumber(raw, series)
		if !ok || num.Series != series || num.FiscalYear != fiscalYear {
			continue
		}
		if num.Sequence > maxSeq {
			maxSeq = num.Sequence
		}
	}
	return InvoiceNumber{Series: series, FiscalYear: fiscalYear, Sequence: maxSeq + 1}
}

// SequenceGroup agrupa las secuencias de un (serie, año fiscal).
type SequenceGroup struct {
	Series     string
	FiscalYear int
	Sequences  []int // ordenadas ascendente, con repeticiones si hay duplicados
}

// AuditReport resultado de la auditoría de numeración de un libro de facturas.
// Los duplicados son errores (nunca permitidos); los huecos son avisos
// (pueden existir legalmente, p.ej. borradores anulados).
type AuditReport struct {
	Duplicates []string // un mensaje por número duplicado
	Gaps       []string // un mensaje por grupo con huecos, listando los enteros que faltan
}

// Clean indica que la numeración no tiene duplicados (los huecos no cuentan).
func (r *AuditReport) Clean() bool { return len(r.Duplicates) == 0 }

// AuditNumbers agrupa los números por (serie, año) y detecta duplicados y
// huecos de secuencia. Los números no reconocidos se ignoran: auditar no es
// validar. Los mensajes formatean la secuencia con padding dígitos
// (<=0 aplica el padding por defecto).
func AuditNumbers(existing []string, fallbackSeries string, padding int) *AuditReport {
	groups := groupSequences(existing, fallbackSeries)
	report := &AuditReport{}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		g := groups[k]
		sort.Ints(g.Sequences)

		seen := map[int]bool{}
		var missing []int
		prev := 0
		for _, seq := range g.Sequences {
			if seen[seq] {
				report.Duplicates = append(report.Duplicates, fmt.Sprintf(
					"número duplicado %s", BuildNumber(g.Series, g.FiscalYear, seq, padding)))
				continue
			}
			seen[seq] = true
			if prev > 0 {
				for m := prev + 1; m < seq; m++ {
					missing = append(missing, m)
				}
			}
			prev = seq
		}
		if len(missing) > 0 {
			report.Gaps = append(report.Gaps, fmt.Sprintf(
				"serie %s-%d: faltan las secuencias %v", g.Series, g.FiscalYear, missing))
		}
	}
	return report
}

func groupSequences(existing []string, fallbackSeries string) map[string]*SequenceGroup {
	groups := map[string]*SequenceGroup{}
	for _, raw := range existing {
		num, ok := ParseNumber(raw, fallbackSeries)
		if !ok {
			continue
		}
		key := fmt.Sprintf("%s-%d", num.Series, num.FiscalYear)
		g, exists := groups[key]
		if !exists {
			g = &SequenceGroup{Series: num.Series, FiscalYear: num.FiscalYear}
			groups[key] = g
		}
		g.Sequences = append(g.Sequences, num.Sequence)
	}
	return groups
}
