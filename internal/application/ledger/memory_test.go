package ledger_test

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var errDiskFull = errors.New("disk I/O error")

// memoryState es el contenido "en disco" del almacenamiento falso.
type memoryState struct {
	products map[int64]entity.Product
	moves    []entity.StockMovement
	nextID   int64
}

func (s memoryState) clone() memoryState {
	c := memoryState{products: make(map[int64]entity.Product, len(s.products)), nextID: s.nextID}
	for k, v := range s.products {
		c.products[k] = v
	}
	c.moves = append([]entity.StockMovement(nil), s.moves...)
	return c
}

// memoryStore serializa las transacciones con un mutex y sólo publica el estado en Commit.
type memoryStore struct {
	mu        sync.Mutex
	state     memoryState
	failOn    entity.MovementKind // Append de este tipo falla (inyección de fallas)
	failBegin error
}

func newMemoryStore(products ...entity.Product) *memoryStore {
	s := &memoryStore{state: memoryState{products: map[int64]entity.Product{}}}
	for _, p := range products {
		if p.BaseStock == 0 {
			p.BaseStock = p.CurrentStock
		}
		s.state.products[p.ID] = p
	}
	return s
}

func (s *memoryStore) Run(_ context.Context, fn func(repository.ProductRepository, repository.StockMovementRepository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failBegin != nil {
		return s.failBegin
	}
	work := s.state.clone()
	tx := &memoryTx{state: &work, failOn: s.failOn}
	if err := fn(tx, tx); err != nil {
		return err // rollback: work se descarta
	}
	s.state = work
	return nil
}

func (s *memoryStore) snapshot() memoryState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// reader expone los métodos de lectura fuera de transacción.
func (s *memoryStore) reader() repository.ProductRepository {
	return &memoryReader{store: s}
}

type memoryReader struct {
	store *memoryStore
}

func (r *memoryReader) tx() *memoryTx {
	st := r.store.snapshot()
	return &memoryTx{state: &st}
}

func (r *memoryReader) Create(ctx context.Context, p *entity.Product) error {
	return errors.New("solo lectura")
}
func (r *memoryReader) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	return r.tx().GetByID(ctx, id)
}
func (r *memoryReader) List(ctx context.Context) ([]*entity.Product, error) {
	return r.tx().List(ctx)
}
func (r *memoryReader) IncrementStock(ctx context.Context, id, qty int64) (*entity.Product, error) {
	return nil, errors.New("solo lectura")
}
func (r *memoryReader) DecrementStock(ctx context.Context, id, qty int64) (*entity.Product, error) {
	return nil, errors.New("solo lectura")
}

type memoryTx struct {
	state  *memoryState
	failOn entity.MovementKind
}

func (t *memoryTx) Create(_ context.Context, p *entity.Product) error {
	t.state.products[p.ID] = *p
	return nil
}

func (t *memoryTx) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	p, ok := t.state.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (t *memoryTx) List(_ context.Context) ([]*entity.Product, error) {
	var list []*entity.Product
	for _, p := range t.state.products {
		p := p
		list = append(list, &p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (t *memoryTx) IncrementStock(_ context.Context, id, qty int64) (*entity.Product, error) {
	p, ok := t.state.products[id]
	if !ok {
		return nil, nil
	}
	p.CurrentStock += qty
	t.state.products[id] = p
	return &p, nil
}

func (t *memoryTx) DecrementStock(_ context.Context, id, qty int64) (*entity.Product, error) {
	p, ok := t.state.products[id]
	if !ok || p.CurrentStock < qty {
		return nil, nil
	}
	p.CurrentStock -= qty
	t.state.products[id] = p
	return &p, nil
}

func (t *memoryTx) Append(_ context.Context, m *entity.StockMovement) error {
	if t.failOn != "" && t.failOn == m.Kind {
		return errDiskFull
	}
	t.state.nextID++
	m.ID = t.state.nextID
	t.state.moves = append(t.state.moves, *m)
	return nil
}

func (t *memoryTx) ListByProduct(_ context.Context, kind entity.MovementKind, productID int64) ([]*entity.StockMovement, error) {
	var list []*entity.StockMovement
	for _, m := range t.state.moves {
		if m.Kind == kind && m.ProductID == productID {
			m := m
			list = append(list, &m)
		}
	}
	return list, nil
}

func (t *memoryTx) SumByProduct(_ context.Context, kind entity.MovementKind, productID int64) (int64, error) {
	var sum int64
	for _, m := range t.state.moves {
		if m.Kind == kind && m.ProductID == productID {
			sum += m.Cantidad
		}
	}
	return sum, nil
}

// ledgerTotals suma los libros de un producto directamente sobre el estado confirmado.
func ledgerTotals(st memoryState, productID int64) (in, out int64, rows int) {
	for _, m := range st.moves {
		if m.ProductID != productID {
			continue
		}
		rows++
		if m.Kind == entity.MovementEntry {
			in += m.Cantidad
		} else {
			out += m.Cantidad
		}
	}
	return in, out, rows
}
