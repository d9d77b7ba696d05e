package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	dataframe "github.com/rocketlaunchr/dataframe-go"
	"github.com/rocketlaunchr/dataframe-go/imports"

	"github.com/mallahova/data-analysis-app/src/errs"
	"github.com/mallahova/data-analysis-app/src/logging"
)

// Reader parses one file format into a Dataset.
type Reader interface {
	Read(r io.Reader) (*Dataset, error)
}

// CSVReader reads delimited files. Column types are inferred; empty cells
// become nulls.
type CSVReader struct {
	// Delimiter is the field separator. Zero means comma.
	Delimiter rune
}

func (cr CSVReader) Read(r io.Reader) (*Dataset, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	comma := cr.Delimiter
	if comma == 0 {
		comma = ','
	}
	df, err := imports.LoadFromCSV(context.Background(), bytes.NewReader(raw), imports.CSVLoadOptions{
		Comma:            comma,
		TrimLeadingSpace: true,
		InferDataTypes:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return fromDataFrame(df)
}

// fromDataFrame converts a parsed dataframe into the Dataset model. A series
// is numeric when every non-nil value is a number; everything else becomes a
// categorical column via the series' string rendering.
func fromDataFrame(df *dataframe.DataFrame) (*Dataset, error) {
	cols := make([]Column, 0, len(df.Series))
	for _, s := range df.Series {
		n := s.NRows()
		numeric := true
		for i := 0; i < n; i++ {
			switch s.Value(i).(type) {
			case nil, float64, float32, int64, int:
			default:
				numeric = false
			}
			if !numeric {
				break
			}
		}
		if numeric {
			vals := make([]float64, n)
			for i := 0; i < n; i++ {
				switch t := s.Value(i).(type) {
				case nil:
					vals[i] = math.NaN()
				case float64:
					vals[i] = t
				case float32:
					vals[i] = float64(t)
				case int64:
					vals[i] = float64(t)
				case int:
					vals[i] = float64(t)
				}
			}
			cols = append(cols, NewNumericColumn(s.Name(), vals))
			continue
		}
		strs := make([]string, n)
		nulls := make([]bool, n)
		for i := 0; i < n; i++ {
			if s.Value(i) == nil {
				nulls[i] = true
				continue
			}
			strs[i] = s.ValueString(i)
		}
		cols = append(cols, NewCategoricalColumnWithNulls(s.Name(), strs, nulls))
	}
	return New(cols...)
}

// JSONReader reads a records-oriented JSON array: [{"col": value, ...}, ...].
// Column order follows first appearance; keys absent from a record are null.
type JSONReader struct{}

func (JSONReader) Read(r io.Reader) (*Dataset, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, fmt.Errorf("%w: records-oriented JSON array expected", errs.ErrInvalidArgument)
	}

	var order []string
	values := map[string][]any{}
	rows := 0
	for dec.More() {
		if tok, err = dec.Token(); err != nil {
			return nil, fmt.Errorf("read json: %w", err)
		}
		if d, ok := tok.(json.Delim); !ok || d != '{' {
			return nil, fmt.Errorf("%w: records-oriented JSON array expected", errs.ErrInvalidArgument)
		}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("read json: %w", err)
			}
			key := keyTok.(string)
			var v any
			if err := dec.Decode(&v); err != nil {
				return nil, fmt.Errorf("read json: %w", err)
			}
			switch v.(type) {
			case nil, string, bool, json.Number:
			default:
				return nil, fmt.Errorf("%w: nested JSON values are not supported (column %q)", errs.ErrInvalidArgument, key)
			}
			if _, seen := values[key]; !seen {
				order = append(order, key)
				// Pad columns that first appear mid-stream.
				values[key] = make([]any, rows)
			}
			values[key] = append(values[key], v)
		}
		if _, err = dec.Token(); err != nil { // closing '}'
			return nil, fmt.Errorf("read json: %w", err)
		}
		rows++
		for _, k := range order {
			if len(values[k]) < rows {
				values[k] = append(values[k], nil)
			}
		}
	}
	if _, err = dec.Token(); err != nil { // closing ']'
		return nil, fmt.Errorf("read json: %w", err)
	}

	cols := make([]Column, 0, len(order))
	for _, name := range order {
		cols = append(cols, jsonColumn(name, values[name]))
	}
	return New(cols...)
}

func jsonColumn(name string, vals []any) Column {
	numeric := true
	for _, v := range vals {
		if v == nil {
			continue
		}
		if _, ok := v.(json.Number); !ok {
			numeric = false
			break
		}
	}
	if numeric {
		nums := make([]float64, len(vals))
		for i, v := range vals {
			if v == nil {
				nums[i] = math.NaN()
				continue
			}
			f, err := v.(json.Number).Float64()
			if err != nil {
				nums[i] = math.NaN()
			} else {
				nums[i] = f
			}
		}
		return NewNumericColumn(name, nums)
	}
	strs := make([]string, len(vals))
	nulls := make([]bool, len(vals))
	for i, v := range vals {
		switch t := v.(type) {
		case nil:
			nulls[i] = true
		case string:
			strs[i] = t
		case bool:
			strs[i] = fmt.Sprintf("%t", t)
		case json.Number:
			strs[i] = t.String()
		}
	}
	return NewCategoricalColumnWithNulls(name, strs, nulls)
}

// ReaderFor picks a reader by file extension: .csv or .json. Anything else
// fails with ErrUnsupportedFileType.
func ReaderFor(filename string) (Reader, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return CSVReader{}, nil
	case ".json":
		return JSONReader{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errs.ErrUnsupportedFileType, filepath.Ext(filename))
	}
}

// ReadFile loads a dataset from path, dispatching the reader by extension.
func ReadFile(path string) (*Dataset, error) {
	rd, err := ReaderFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	ds, err := rd.Read(f)
	if err != nil {
		return nil, err
	}
	logging.Infof("loaded %s: %d rows, %d columns", filepath.Base(path), ds.NumRows(), ds.NumColumns())
	return ds, nil
}
