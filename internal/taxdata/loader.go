// Package taxdata loads per-year tax tables from CSV files and caches them.
package taxdata

import (
	"embed"
	"encoding/csv"
	"io"
	"io/fs"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/rpcore/internal/domain"
)

//go:embed data/*.csv
var embedded embed.FS

// Default returns a loader over the tables compiled into the binary.
func Default() *Loader {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		panic(eris.Wrap(err, "taxdata: embedded tables"))
	}
	return NewLoader(sub)
}

type cacheKey struct {
	file string
	year int
}

// Loader reads tables from a filesystem and caches each parsed (file, year)
// pair. Cached values are never mutated after insertion, so concurrent
// projections can share one Loader.
type Loader struct {
	fsys fs.FS

	mu    sync.RWMutex
	cache map[cacheKey]interface{}
	years map[Table][]int
}

// NewLoader returns a loader reading "<table>_<year>.csv" files from fsys.
func NewLoader(fsys fs.FS) *Loader {
	return &Loader{
		fsys:  fsys,
		cache: make(map[cacheKey]interface{}),
		years: make(map[Table][]int),
	}
}

// AvailableYears lists the years for which table has a file, ascending.
func (l *Loader) AvailableYears(table Table) ([]int, error) {
	l.mu.RLock()
	years, ok := l.years[table]
	l.mu.RUnlock()
	if ok {
		return years, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if years, ok := l.years[table]; ok {
		return years, nil
	}
	matches, err := fs.Glob(l.fsys, string(table)+"_*.csv")
	if err != nil {
		return nil, eris.Wrapf(err, "taxdata: list %s", table)
	}
	prefix := string(table) + "_"
	for _, m := range matches {
		y, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(m, prefix), ".csv"))
		if err != nil {
			continue
		}
		years = append(years, y)
	}
	sort.Ints(years)
	l.years[table] = years
	return years, nil
}

// resolve finds the latest table year at or below year.
func (l *Loader) resolve(table Table, year int) (Source, error) {
	years, err := l.AvailableYears(table)
	if err != nil {
		return Source{}, err
	}
	src := Source{Table: table, Requested: year}
	for i := len(years) - 1; i >= 0; i-- {
		if years[i] <= year {
			src.Year = years[i]
			return src, nil
		}
	}
	return src, &domain.TableMissingError{Table: string(table), Year: year}
}

type parseFunc func(file string, rows []record) (interface{}, error)

// load returns the parsed table for the resolved year, parsing on first use.
// Misses are serialized under the write lock and re-checked before parsing.
func (l *Loader) load(table Table, year int, parse parseFunc) (interface{}, Source, error) {
	src, err := l.resolve(table, year)
	if err != nil {
		return nil, src, err
	}
	key := cacheKey{file: string(table), year: src.Year}

	l.mu.RLock()
	v, ok := l.cache[key]
	l.mu.RUnlock()
	if ok {
		return v, src, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if v, ok := l.cache[key]; ok {
		return v, src, nil
	}
	file := table.FileName(src.Year)
	rows, err := readCSV(l.fsys, file)
	if err != nil {
		return nil, src, err
	}
	v, err = parse(file, rows)
	if err != nil {
		return nil, src, err
	}
	l.cache[key] = v
	return v, src, nil
}

// record is one CSV row addressed by column name.
type record struct {
	line   int
	fields map[string]string
}

func readCSV(fsys fs.FS, file string) ([]record, error) {
	f, err := fsys.Open(file)
	if err != nil {
		return nil, eris.Wrapf(err, "taxdata: open %s", file)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &domain.TableSchemaError{File: file, Reason: "empty file"}
	}
	if err != nil {
		return nil, eris.Wrapf(err, "taxdata: read header of %s", file)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}

	var rows []record
	line := 1
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, eris.Wrapf(err, "taxdata: read %s line %d", file, line)
		}
		rec := record{line: line, fields: make(map[string]string, len(header))}
		for i, col := range header {
			if i < len(fields) {
				rec.fields[col] = strings.TrimSpace(fields[i])
			}
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func requireColumns(file string, rows []record, cols ...string) error {
	if len(rows) == 0 {
		return &domain.TableSchemaError{File: file, Reason: "no data rows"}
	}
	for _, col := range cols {
		if _, ok := rows[0].fields[col]; !ok {
			return &domain.TableSchemaError{File: file, Column: col, Reason: "required column missing"}
		}
	}
	return nil
}

func (r record) decimal(file, col string) (decimal.Decimal, error) {
	raw := r.fields[col]
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, &domain.TableSchemaError{File: file, Line: r.line, Column: col,
			Reason: "not a decimal: " + strconv.Quote(raw)}
	}
	return d, nil
}

func (r record) optionalDecimal(file, col string) (decimal.Decimal, error) {
	if r.fields[col] == "" {
		return decimal.Zero, nil
	}
	return r.decimal(file, col)
}

func (r record) bool(file, col string) (bool, error) {
	switch strings.ToLower(r.fields[col]) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, &domain.TableSchemaError{File: file, Line: r.line, Column: col,
		Reason: "not true/false: " + strconv.Quote(r.fields[col])}
}

func (r record) int(file, col string) (int, error) {
	n, err := strconv.Atoi(r.fields[col])
	if err != nil {
		return 0, &domain.TableSchemaError{File: file, Line: r.line, Column: col,
			Reason: "not an integer: " + strconv.Quote(r.fields[col])}
	}
	return n, nil
}
