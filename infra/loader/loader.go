package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/kilianp07/tailings/infra/logger"
)

// DefaultConversionColumn holds authorised tonnage in tonnes.
const DefaultConversionColumn = "TONELAJE_AUTORIZADO"

// TonnesToKilograms is the default factor applied to the conversion column.
const TonnesToKilograms = 1000.0

var nullTokens = map[string]bool{"": true, "nan": true, "na": true, "null": true}

// Options configure how sources are parsed.
type Options struct {
	// Delimiter separates fields; defaults to ','.
	Delimiter rune
	// ConversionColumn is scaled by ConversionFactor on load.
	ConversionColumn string
	ConversionFactor float64
}

// SetDefaults fills zero values.
func (o *Options) SetDefaults() {
	if o.Delimiter == 0 {
		o.Delimiter = ','
	}
	if o.ConversionColumn == "" {
		o.ConversionColumn = DefaultConversionColumn
	}
	if o.ConversionFactor == 0 {
		o.ConversionFactor = TonnesToKilograms
	}
}

// Loader reads per-deposit columns from delimited files. It keeps no state
// between calls.
type Loader struct {
	opts Options
	log  logger.Logger
}

// New returns a Loader. A nil log discards diagnostics.
func New(opts Options, log logger.Logger) *Loader {
	opts.SetDefaults()
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Loader{opts: opts, log: log}
}

// Load reads column from source with the default options.
func Load(source, column string, expected int) (map[int]float64, error) {
	return New(Options{}, logger.New("loader")).Load(source, column, expected)
}

// Load reads one numeric column and returns its values keyed 1..n in row
// order. A row count different from expected is logged and the actual count
// wins; dimension checks against the model sets happen later. Null cells
// load as 0. On any error the returned map is empty.
func (l *Loader) Load(source, column string, expected int) (map[int]float64, error) {
	header, records, err := l.read(source, column)
	if err != nil {
		return map[int]float64{}, err
	}
	idx := lookup(header, column)
	if idx < 0 {
		return map[int]float64{}, &SchemaError{Source: source, Column: column, Available: header}
	}

	factor := 1.0
	if strings.EqualFold(strings.TrimSpace(column), l.opts.ConversionColumn) {
		factor = l.opts.ConversionFactor
	}
	out := make(map[int]float64, len(records))
	nulls := 0
	for n, rec := range records {
		cell := strings.TrimSpace(rec[idx])
		if nullTokens[strings.ToLower(cell)] {
			nulls++
			out[n+1] = 0
			continue
		}
		v, err := parseNumber(cell)
		if err != nil {
			return map[int]float64{}, &LoadError{Path: source, Column: column, Err: fmt.Errorf("row %d: %w", n+1, err)}
		}
		out[n+1] = v * factor
	}

	if nulls > 0 {
		l.log.Warnw("null cells loaded as 0", map[string]any{"source": source, "column": column, "nulls": nulls})
	}
	if expected > 0 && len(records) != expected {
		l.log.Warnw("row count differs from expected dimension", map[string]any{
			"source": source, "column": column, "rows": len(records), "expected": expected,
		})
	}
	l.log.Debugw("column loaded", map[string]any{"source": source, "column": column, "rows": len(records), "factor": factor})
	return out, nil
}

// DepositData holds the per-deposit capacities of one source.
type DepositData struct {
	Mass   map[int]float64
	Volume map[int]float64
}

// LoadDeposits reads the mass and volume columns of source.
func (l *Loader) LoadDeposits(source, massColumn, volumeColumn string, expected int) (DepositData, error) {
	mass, err := l.Load(source, massColumn, expected)
	if err != nil {
		return DepositData{}, err
	}
	volume, err := l.Load(source, volumeColumn, expected)
	if err != nil {
		return DepositData{}, err
	}
	return DepositData{Mass: mass, Volume: volume}, nil
}

// Vector returns m as a 0-based slice of length n; missing keys are 0.
func Vector(m map[int]float64, n int) []float64 {
	out := make([]float64, n)
	for k, v := range m {
		if k >= 1 && k <= n {
			out[k-1] = v
		}
	}
	return out
}

func (l *Loader) read(source, column string) ([]string, [][]string, error) {
	f, err := os.Open(source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, &SourceNotFoundError{Path: source}
		}
		return nil, nil, &LoadError{Path: source, Column: column, Err: err}
	}
	defer f.Close()

	// Spreadsheet exports frequently start with a UTF-8 byte order mark.
	r := csv.NewReader(transform.NewReader(f, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	r.Comma = l.opts.Delimiter
	r.TrimLeadingSpace = true
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty file")
		}
		return nil, nil, &LoadError{Path: source, Column: column, Err: err}
	}
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, &LoadError{Path: source, Column: column, Err: err}
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	return header, records, nil
}

func lookup(header []string, column string) int {
	column = strings.TrimSpace(column)
	for i, h := range header {
		if h == column {
			return i
		}
	}
	for i, h := range header {
		if strings.EqualFold(h, column) {
			return i
		}
	}
	return -1
}

// parseNumber accepts a decimal point or, when no point is present, a single
// decimal comma.
func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err == nil {
		if math.IsInf(v, 0) {
			return 0, fmt.Errorf("non-finite value %q", s)
		}
		return v, nil
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		if v, err2 := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64); err2 == nil {
			return v, nil
		}
	}
	return 0, err
}
