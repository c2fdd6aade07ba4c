// Package schema contiene la compuerta de inicialización compartida por los backends de
// almacenamiento: el esquema se crea una sola vez por proceso.
package schema

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Manager crea las tablas del ledger si no existen. Idempotente.
type Manager interface {
	EnsureSchema(ctx context.Context) error
}

// Gate ejecuta una inicialización una sola vez con éxito. Los llamadores concurrentes
// comparten la misma ejecución (single-flight); si falla, la siguiente llamada reintenta.
type Gate struct {
	group singleflight.Group
	done  atomic.Bool
}

// Do ejecuta fn salvo que ya haya terminado con éxito antes.
func (g *Gate) Do(ctx context.Context, fn func(context.Context) error) error {
	if g.done.Load() {
		return nil
	}
	_, err, _ := g.group.Do("init", func() (any, error) {
		if g.done.Load() {
			return nil, nil
		}
		if err := fn(ctx); err != nil {
			return nil, err
		}
		g.done.Store(true)
		return nil, nil
	})
	return err
}

// Done indica si la inicialización ya se completó.
func (g *Gate) Done() bool {
	return g.done.Load()
}
