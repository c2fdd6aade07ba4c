package catalog_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/catalog"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

func TestParseCSV_Coma(t *testing.T) {
	in := "id,nombre,precio,minStock,maxStock,currentStock\n" +
		"1,Martillo,18900.50,2,30,10\n" +
		"\n" +
		",Destornillador,4500,0,0,0\n"
	seeds, err := catalog.ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, seeds, 2)
	assert.Equal(t, int64(1), seeds[0].ID)
	assert.Equal(t, "Martillo", seeds[0].Nombre)
	assert.True(t, decimal.RequireFromString("18900.5").Equal(seeds[0].Precio))
	assert.Equal(t, int64(10), seeds[0].CurrentStock)
	assert.Equal(t, int64(0), seeds[1].ID)
}

func TestParseCSV_PuntoYComaYComaDecimal(t *testing.T) {
	in := "\uFEFFID;Nombre;Precio;MinStock;MaxStock;CurrentStock\n" +
		"7;Pintura azul;32000,75;1;8;4\n"
	seeds, err := catalog.ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, seeds, 1)
	assert.Equal(t, int64(7), seeds[0].ID)
	assert.True(t, decimal.RequireFromString("32000.75").Equal(seeds[0].Precio))
}

func TestParseCSV_Errores(t *testing.T) {
	_, err := catalog.ParseCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = catalog.ParseCSV(strings.NewReader("id,nombre\n1,X\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = catalog.ParseCSV(strings.NewReader("id,nombre,precio,minStock,maxStock,currentStock\n1,X,10,0,5,dos\n"))
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "línea 2")
}
