// seed importa el catálogo de productos desde un CSV al almacenamiento configurado.
// Es la única vía para crear productos; el stock inicial queda como stock base del ledger.
//
// Uso: go run ./cmd/seed -file productos.csv [-latin1]
// Columnas: id,nombre,precio,minStock,maxStock,currentStock (separador , o ;)
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/stock-ledger/internal/application/catalog"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/storage"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func main() {
	file := flag.String("file", "productos.csv", "ruta del CSV de catálogo")
	latin1 := flag.Bool("latin1", false, "el archivo está en ISO-8859-1 (exportado desde Excel)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level}).Named("seed")

	f, err := os.Open(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	var r io.Reader = f
	if *latin1 {
		r = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	}
	seeds, err := catalog.ParseCSV(r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg.Storage, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir almacenamiento: %v\n", err)
		os.Exit(1)
	}
	defer backend.Close()

	res, err := catalog.NewImportUseCase(backend.TxRunner, log).Import(ctx, seeds)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Importar catálogo: %v\n", err)
		backend.Close()
		os.Exit(1)
	}
	fmt.Printf("Importados %d productos en %s (%s)\n", res.Imported, backend.Driver, *file)
}
