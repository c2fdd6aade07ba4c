package ledger_test

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func tornillo(stock int64) entity.Product {
	return entity.Product{
		ID:           1,
		Nombre:       "Tornillo 3/8",
		Precio:       decimal.RequireFromString("1250.50"),
		MinStock:     5,
		MaxStock:     100,
		CurrentStock: stock,
	}
}

func newEngine(store *memoryStore) *ledger.Engine {
	return ledger.NewEngine(store, store.reader())
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenarios
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordEntry_IncrementaYAgregaFila(t *testing.T) {
	store := newMemoryStore(tornillo(10))
	eng := newEngine(store)

	p, err := eng.RecordEntry(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(15), p.CurrentStock)

	entries, exits, err := eng.ListMovements(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Empty(t, exits)
	assert.Equal(t, int64(1), entries[0].ProductID)
	assert.Equal(t, int64(5), entries[0].Cantidad)
	assert.Equal(t, entity.MovementEntry, entries[0].Kind)
	assert.False(t, entries[0].Fecha.IsZero(), "la fecha la asigna el motor")
}

func TestRecordExit_StockInsuficienteNoModificaNada(t *testing.T) {
	store := newMemoryStore(tornillo(15))
	eng := newEngine(store)

	_, err := eng.RecordExit(context.Background(), 1, 20)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var insuf *domain.InsufficientStockError
	require.True(t, errors.As(err, &insuf))
	assert.Equal(t, int64(20), insuf.Requested)
	assert.Equal(t, int64(15), insuf.Available)

	p, err := eng.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(15), p.CurrentStock)
	_, _, rows := ledgerTotals(store.snapshot(), 1)
	assert.Zero(t, rows, "no debe agregarse fila de salida")
}

func TestRecordExit_DescuentaHastaCero(t *testing.T) {
	eng := newEngine(newMemoryStore(tornillo(5)))

	p, err := eng.RecordExit(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.CurrentStock)

	_, err = eng.RecordExit(context.Background(), 1, 1)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestProductoInexistente_NotFound(t *testing.T) {
	eng := newEngine(newMemoryStore(tornillo(10)))
	ctx := context.Background()

	_, err := eng.RecordEntry(ctx, 999, 5)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = eng.RecordExit(ctx, 999, 5)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = eng.GetProduct(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, _, err = eng.ListMovements(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = eng.Reconcile(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCantidadNoPositiva_ValidationError(t *testing.T) {
	store := newMemoryStore(tornillo(10))
	eng := newEngine(store)
	ctx := context.Background()

	for _, q := range []int64{0, -1, -100} {
		_, err := eng.RecordEntry(ctx, 1, q)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "entrada %d", q)
		_, err = eng.RecordExit(ctx, 1, q)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "salida %d", q)
	}
	_, err := eng.RecordEntryInput(ctx, 1, "12abc")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = eng.RecordExitInput(ctx, 1, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	p, err := eng.RecordEntryInput(ctx, 1, " 3 ")
	require.NoError(t, err)
	assert.Equal(t, int64(13), p.CurrentStock)
	p, err = eng.RecordExitInput(ctx, 1, "13")
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.CurrentStock)
}

// ──────────────────────────────────────────────────────────────────────────────
// Propiedades
// ──────────────────────────────────────────────────────────────────────────────

func TestInvariante_SecuenciaAleatoria(t *testing.T) {
	store := newMemoryStore(tornillo(10))
	eng := newEngine(store)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		q := int64(rng.Intn(12) + 1)
		if rng.Intn(2) == 0 {
			_, _ = eng.RecordEntry(ctx, 1, q)
		} else {
			_, err := eng.RecordExit(ctx, 1, q)
			if err != nil {
				require.ErrorIs(t, err, domain.ErrInsufficientStock)
			}
		}
		st := store.snapshot()
		in, out, _ := ledgerTotals(st, 1)
		p := st.products[1]
		require.GreaterOrEqual(t, p.CurrentStock, int64(0), "stock nunca negativo")
		require.Equal(t, p.BaseStock+in-out, p.CurrentStock, "invariante del libro en paso %d", i)
	}

	rec, err := eng.Reconcile(ctx, 1)
	require.NoError(t, err)
	assert.True(t, rec.Consistent())
}

func TestAtomicidad_FallaAlEscribirLibro(t *testing.T) {
	store := newMemoryStore(tornillo(10))
	store.failOn = entity.MovementEntry
	eng := newEngine(store)

	_, err := eng.RecordEntry(context.Background(), 1, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.ErrorIs(t, err, errDiskFull, "la causa original se conserva")

	var se *domain.StorageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "ledger.RecordEntry", se.Op)

	st := store.snapshot()
	assert.Equal(t, int64(10), st.products[1].CurrentStock, "el update de stock se revierte")
	assert.Empty(t, st.moves)

	// La operación es reintentable una vez que el almacenamiento se recupera.
	store.failOn = ""
	p, err := eng.RecordEntry(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(15), p.CurrentStock)
}

func TestAtomicidad_FallaAlIniciarTransaccion(t *testing.T) {
	store := newMemoryStore(tornillo(10))
	store.failBegin = errors.New("database is locked")
	eng := newEngine(store)

	_, err := eng.RecordExit(context.Background(), 1, 1)
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.Equal(t, int64(10), store.snapshot().products[1].CurrentStock)
}

func TestCarrera_DosSalidasDelStockCompleto(t *testing.T) {
	store := newMemoryStore(tornillo(5))
	eng := newEngine(store)

	var (
		wg   sync.WaitGroup
		errs = make([]error, 2)
	)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = eng.RecordExit(context.Background(), 1, 5)
		}(i)
	}
	wg.Wait()

	var ok, insuf int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			insuf++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, insuf)
	assert.Equal(t, int64(0), store.snapshot().products[1].CurrentStock)
}

func TestCancelacion_LaTransaccionTermina(t *testing.T) {
	store := newMemoryStore(tornillo(10))
	eng := newEngine(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p, err := eng.RecordEntry(ctx, 1, 2)
	require.NoError(t, err, "un contexto cancelado no interrumpe la transacción")
	assert.Equal(t, int64(12), p.CurrentStock)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestListMovements_OrdenDeInsercion(t *testing.T) {
	eng := newEngine(newMemoryStore(tornillo(0)))
	ctx := context.Background()

	for _, q := range []int64{3, 1, 2} {
		_, err := eng.RecordEntry(ctx, 1, q)
		require.NoError(t, err)
	}
	_, err := eng.RecordExit(ctx, 1, 4)
	require.NoError(t, err)

	entries, exits, err := eng.ListMovements(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Len(t, exits, 1)
	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1].ID, entries[i].ID)
		assert.False(t, entries[i].Fecha.Before(entries[i-1].Fecha))
	}
	assert.Equal(t, []int64{3, 1, 2}, []int64{entries[0].Cantidad, entries[1].Cantidad, entries[2].Cantidad})
}

func TestListMovements_ProductoSinMovimientos(t *testing.T) {
	eng := newEngine(newMemoryStore(tornillo(0)))
	entries, exits, err := eng.ListMovements(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.NotNil(t, exits)
	assert.Empty(t, entries)
	assert.Empty(t, exits)
}

func TestListProducts_OrdenadoPorID(t *testing.T) {
	a := tornillo(1)
	b := tornillo(2)
	b.ID = 2
	c := tornillo(3)
	c.ID = 3
	eng := newEngine(newMemoryStore(c, a, b))

	list, err := eng.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{list[0].ID, list[1].ID, list[2].ID})
}

func TestListProducts_Vacio(t *testing.T) {
	eng := newEngine(newMemoryStore())
	list, err := eng.ListProducts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestReconcileAll_DetectaDescuadre(t *testing.T) {
	store := newMemoryStore(tornillo(10))
	eng := newEngine(store)
	_, err := eng.RecordEntry(context.Background(), 1, 4)
	require.NoError(t, err)

	// Se corrompe el stock cacheado por fuera del motor.
	store.mu.Lock()
	p := store.state.products[1]
	p.CurrentStock = 99
	store.state.products[1] = p
	store.mu.Unlock()

	recs, err := eng.ReconcileAll(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.False(t, recs[0].Consistent())
	assert.Equal(t, int64(14), recs[0].Expected)
	assert.Equal(t, int64(99), recs[0].Actual)
}

func TestMonotonicClock_NoRetrocede(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	ticks := []time.Time{base, base.Add(-time.Hour), base.Add(time.Second)}
	i := 0
	clock := ledger.NewMonotonicClock(func() time.Time {
		t := ticks[i]
		i++
		return t
	})

	assert.Equal(t, base, clock.Now())
	assert.Equal(t, base, clock.Now(), "un reloj de pared que retrocede no hace retroceder la fecha")
	assert.Equal(t, base.Add(time.Second), clock.Now())
}

func TestWithClock_FechaDelMovimiento(t *testing.T) {
	fixed := time.Date(2026, 3, 15, 8, 30, 0, 0, time.UTC)
	store := newMemoryStore(tornillo(0))
	eng := ledger.NewEngine(store, store.reader(), ledger.WithClock(ledger.NewMonotonicClock(func() time.Time { return fixed })))

	_, err := eng.RecordEntry(context.Background(), 1, 1)
	require.NoError(t, err)
	entries, _, err := eng.ListMovements(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, fixed, entries[0].Fecha)
}
