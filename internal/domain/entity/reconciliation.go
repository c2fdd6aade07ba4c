package entity

// Reconciliation compara el stock cacheado de un producto con lo que dicta su libro:
// Expected = BaseStock + TotalEntries - TotalExits.
type Reconciliation struct {
	ProductID    int64
	BaseStock    int64
	TotalEntries int64
	TotalExits   int64
	Expected     int64
	Actual       int64
}

// NewReconciliation calcula el stock esperado a partir de los totales del libro.
func NewReconciliation(p *Product, totalEntries, totalExits int64) *Reconciliation {
	return &Reconciliation{
		ProductID:    p.ID,
		BaseStock:    p.BaseStock,
		TotalEntries: totalEntries,
		TotalExits:   totalExits,
		Expected:     p.BaseStock + totalEntries - totalExits,
		Actual:       p.CurrentStock,
	}
}

// Consistent indica si el stock cacheado coincide con el libro.
func (r *Reconciliation) Consistent() bool {
	return r.Expected == r.Actual
}

// Drift devuelve Actual - Expected (0 si es consistente).
func (r *Reconciliation) Drift() int64 {
	return r.Actual - r.Expected
}
