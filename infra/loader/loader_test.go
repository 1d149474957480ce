package loader

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/tailings/infra/logger"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const deposits = `NOMBRE,TONELAJE_AUTORIZADO,VOLUMEN_AUTORIZADO
Talabre,1.5,1200
Las Tortolas,2,3400.5
Ovejeria,0.25,80
`

func TestLoadConvertsTonnesOnly(t *testing.T) {
	path := writeFile(t, "deposits.csv", deposits)
	l := New(Options{}, nil)

	mass, err := l.Load(path, DefaultConversionColumn, 3)
	require.NoError(t, err)
	assert.Equal(t, map[int]float64{1: 1500, 2: 2000, 3: 250}, mass)

	volume, err := l.Load(path, "VOLUMEN_AUTORIZADO", 3)
	require.NoError(t, err)
	assert.Equal(t, map[int]float64{1: 1200, 2: 3400.5, 3: 80}, volume)
}

func TestLoadIsIdempotent(t *testing.T) {
	path := writeFile(t, "deposits.csv", deposits)
	first, err := Load(path, "VOLUMEN_AUTORIZADO", 3)
	require.NoError(t, err)
	second, err := Load(path, "VOLUMEN_AUTORIZADO", 3)
	require.NoError(t, err)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("second load differs (-first +second):\n%s", diff)
	}
}

func TestLoadKeepsActualRowCount(t *testing.T) {
	content := "TONELAJE_AUTORIZADO\n"
	for i := 1; i <= 5; i++ {
		content += strconv.Itoa(i) + "\n"
	}
	path := writeFile(t, "five.csv", content)

	var buf bytes.Buffer
	l := New(Options{}, logger.NewWithWriter("loader", &buf))
	got, err := l.Load(path, DefaultConversionColumn, 10)
	require.NoError(t, err)
	assert.Len(t, got, 5)
	for k := 1; k <= 5; k++ {
		assert.Equal(t, float64(k)*1000, got[k])
	}
	assert.Contains(t, buf.String(), `"rows":5`)
	assert.Contains(t, buf.String(), `"expected":10`)
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestLoadNullCells(t *testing.T) {
	path := writeFile(t, "nulls.csv", "A,B\n1,\n2,NaN\n3,NA\n4,null\n5,7\n")
	var buf bytes.Buffer
	got, err := New(Options{}, logger.NewWithWriter("loader", &buf)).Load(path, "B", 5)
	require.NoError(t, err)
	assert.Equal(t, map[int]float64{1: 0, 2: 0, 3: 0, 4: 0, 5: 7}, got)
	assert.Contains(t, buf.String(), `"nulls":4`)
}

func TestLoadMissingColumn(t *testing.T) {
	path := writeFile(t, "deposits.csv", deposits)
	got, err := Load(path, "CAPACIDAD", 3)

	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, path, se.Source)
	assert.Equal(t, "CAPACIDAD", se.Column)
	assert.Contains(t, se.Error(), "TONELAJE_AUTORIZADO")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.csv")
	got, err := Load(path, DefaultConversionColumn, 1)

	var nf *SourceNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, path, nf.Path)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestLoadMalformedValue(t *testing.T) {
	path := writeFile(t, "bad.csv", "A\n1\nabc\n3\n")
	got, err := Load(path, "A", 3)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "A", le.Column)
	var ne *strconv.NumError
	assert.ErrorAs(t, err, &ne)
	assert.Contains(t, err.Error(), "row 2")
	assert.Empty(t, got)
}

func TestLoadEmptyFile(t *testing.T) {
	path := writeFile(t, "empty.csv", "")
	_, err := Load(path, "A", 1)
	var le *LoadError
	assert.ErrorAs(t, err, &le)
}

func TestLoadSemicolonDecimalCommaAndBOM(t *testing.T) {
	path := writeFile(t, "es.csv", "\ufeff TONELAJE_AUTORIZADO ;VOLUMEN\n1,5;2,25\n3;4\n")
	l := New(Options{Delimiter: ';'}, nil)

	data, err := l.LoadDeposits(path, DefaultConversionColumn, "volumen", 2)
	require.NoError(t, err)
	assert.Equal(t, map[int]float64{1: 1500, 2: 3000}, data.Mass)
	assert.Equal(t, map[int]float64{1: 2.25, 2: 4}, data.Volume)
}

func TestLoadDepositsStopsOnFirstError(t *testing.T) {
	path := writeFile(t, "deposits.csv", deposits)
	_, err := New(Options{}, nil).LoadDeposits(path, DefaultConversionColumn, "NOPE", 3)
	var se *SchemaError
	assert.ErrorAs(t, err, &se)
}

func TestVector(t *testing.T) {
	assert.Equal(t, []float64{1, 0, 3}, Vector(map[int]float64{1: 1, 3: 3, 4: 9}, 3))
}
