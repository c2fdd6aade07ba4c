package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/sqlite"
	"github.com/jhoicas/stock-ledger/pkg/config"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func openTestDB(t *testing.T) (*sql.DB, config.SQLiteConfig) {
	t.Helper()
	cfg := config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "inventario.db"), BusyTimeoutMS: 5000}
	db, err := sqlite.Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.NewSchemaManager(db, nil).EnsureSchema(context.Background()))
	return db, cfg
}

func seed(t *testing.T, db *sql.DB, p entity.Product) {
	t.Helper()
	if p.BaseStock == 0 {
		p.BaseStock = p.CurrentStock
	}
	require.NoError(t, sqlite.NewProductRepository(db).Create(context.Background(), &p))
}

func martillo(stock int64) entity.Product {
	return entity.Product{
		ID:           1,
		Nombre:       "Martillo de uña",
		Precio:       decimal.RequireFromString("18900.5"),
		MinStock:     2,
		MaxStock:     50,
		CurrentStock: stock,
	}
}

func newEngine(db *sql.DB) *ledger.Engine {
	return ledger.NewEngine(sqlite.NewTxRunner(db), sqlite.NewProductRepository(db))
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}

// ──────────────────────────────────────────────────────────────────────────────
// Esquema
// ──────────────────────────────────────────────────────────────────────────────

func TestEnsureSchema_IdempotenteNoBorraDatos(t *testing.T) {
	db, _ := openTestDB(t)
	seed(t, db, martillo(10))
	_, err := newEngine(db).RecordEntry(context.Background(), 1, 3)
	require.NoError(t, err)

	// Gestores nuevos (sin compuerta compartida) vuelven a ejecutar el DDL.
	for i := 0; i < 3; i++ {
		require.NoError(t, sqlite.NewSchemaManager(db, nil).EnsureSchema(context.Background()))
	}

	var tables []string
	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`)
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		tables = append(tables, name)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"products", "stock_entries", "stock_exits"}, tables)
	assert.Equal(t, 1, countRows(t, db, "products"))
	assert.Equal(t, 1, countRows(t, db, "stock_entries"))
}

func TestEnsureSchema_ReabrirArchivoConservaDatos(t *testing.T) {
	db, cfg := openTestDB(t)
	seed(t, db, martillo(7))
	require.NoError(t, db.Close())

	db2, err := sqlite.Open(context.Background(), cfg)
	require.NoError(t, err)
	defer db2.Close()
	require.NoError(t, sqlite.NewSchemaManager(db2, nil).EnsureSchema(context.Background()))

	p, err := newEngine(db2).GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(7), p.CurrentStock)
	assert.True(t, decimal.RequireFromString("18900.5").Equal(p.Precio))
}

func TestLibros_SoloInsercion(t *testing.T) {
	db, _ := openTestDB(t)
	seed(t, db, martillo(10))
	_, err := newEngine(db).RecordExit(context.Background(), 1, 2)
	require.NoError(t, err)

	_, err = db.Exec(`UPDATE stock_exits SET cantidad = 1`)
	assert.Error(t, err, "las filas del libro no se modifican")
	_, err = db.Exec(`DELETE FROM stock_exits`)
	assert.Error(t, err, "las filas del libro no se borran")
	assert.Equal(t, 1, countRows(t, db, "stock_exits"))
}

func TestCheck_StockNoNegativoEnLaBase(t *testing.T) {
	db, _ := openTestDB(t)
	seed(t, db, martillo(1))
	_, err := db.Exec(`UPDATE products SET currentStock = -1 WHERE id = 1`)
	assert.Error(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Repositorios
// ──────────────────────────────────────────────────────────────────────────────

func TestProductRepo_CreateDuplicado(t *testing.T) {
	db, _ := openTestDB(t)
	seed(t, db, martillo(1))
	p := martillo(1)
	err := sqlite.NewProductRepository(db).Create(context.Background(), &p)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestProductRepo_CreateAsignaID(t *testing.T) {
	db, _ := openTestDB(t)
	repo := sqlite.NewProductRepository(db)
	p := martillo(0)
	p.ID = 0
	require.NoError(t, repo.Create(context.Background(), &p))
	assert.Positive(t, p.ID)

	got, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Martillo de uña", got.Nombre)
}

func TestProductRepo_DecrementStockCondicional(t *testing.T) {
	db, _ := openTestDB(t)
	seed(t, db, martillo(3))
	repo := sqlite.NewProductRepository(db)

	p, err := repo.DecrementStock(context.Background(), 1, 4)
	require.NoError(t, err)
	assert.Nil(t, p, "no alcanza el stock: cero filas")

	p, err = repo.DecrementStock(context.Background(), 1, 3)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, int64(0), p.CurrentStock)

	p, err = repo.IncrementStock(context.Background(), 42, 1)
	require.NoError(t, err)
	assert.Nil(t, p, "producto inexistente")
}

// ──────────────────────────────────────────────────────────────────────────────
// Motor del ledger sobre SQLite
// ──────────────────────────────────────────────────────────────────────────────

func TestLedger_EscenariosBasicos(t *testing.T) {
	db, _ := openTestDB(t)
	seed(t, db, martillo(10))
	eng := newEngine(db)
	ctx := context.Background()

	p, err := eng.RecordEntry(ctx, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(15), p.CurrentStock)

	_, err = eng.RecordExit(ctx, 1, 20)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	p, err = eng.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(15), p.CurrentStock)
	assert.Equal(t, 0, countRows(t, db, "stock_exits"))

	_, err = eng.RecordEntry(ctx, 999, 5)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	entries, exits, err := eng.ListMovements(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Empty(t, exits)
	assert.Equal(t, int64(1), entries[0].ProductID)
	assert.Equal(t, int64(5), entries[0].Cantidad)
	assert.Equal(t, entity.MovementEntry, entries[0].Kind)
}

func TestLedger_FechasYOrden(t *testing.T) {
	db, _ := openTestDB(t)
	seed(t, db, martillo(0))
	eng := newEngine(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := eng.RecordEntry(ctx, 1, int64(i+1))
		require.NoError(t, err)
	}
	entries, _, err := eng.ListMovements(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1].ID, entries[i].ID)
		assert.False(t, entries[i].Fecha.Before(entries[i-1].Fecha))
		assert.Equal(t, int64(i+1), entries[i].Cantidad)
	}
}

func TestLedger_FallaInyectadaRevierteTodo(t *testing.T) {
	db, _ := openTestDB(t)
	seed(t, db, martillo(10))
	eng := newEngine(db)

	// Sin la tabla del libro, el INSERT falla después del UPDATE de stock.
	_, err := db.Exec(`DROP TABLE stock_entries`)
	require.NoError(t, err)

	_, err = eng.RecordEntry(context.Background(), 1, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorage)

	p, err := eng.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(10), p.CurrentStock, "el stock no refleja el intento fallido")
}

func TestLedger_CarreraDeSalidas(t *testing.T) {
	db, _ := openTestDB(t)
	seed(t, db, martillo(5))
	eng := newEngine(db)

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
	assert.Equal(t, 1, ok, "exactamente una salida debe pasar")
	assert.Equal(t, 1, insuf)

	p, err := eng.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.CurrentStock)
	assert.Equal(t, 1, countRows(t, db, "stock_exits"))
}

func TestLedger_MuchasSalidasConcurrentes(t *testing.T) {
	db, _ := openTestDB(t)
	seed(t, db, martillo(20))
	eng := newEngine(db)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var err error
			if i%5 == 0 {
				_, err = eng.RecordEntry(context.Background(), 1, 1)
			} else {
				_, err = eng.RecordExit(context.Background(), 1, 1)
			}
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		}(i)
	}
	wg.Wait()

	rec, err := eng.Reconcile(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, rec.Consistent(), "esperado %d, actual %d", rec.Expected, rec.Actual)
	assert.GreaterOrEqual(t, rec.Actual, int64(0))
	assert.Equal(t, 10, int(rec.TotalEntries))
}
