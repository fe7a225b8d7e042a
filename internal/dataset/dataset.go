// Package dataset loads historical revenue and expense series from disk.
package dataset

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrUnknownFormat = errors.New("unknown dataset format")
	ErrEmpty         = errors.New("dataset has no rows")
)

// Dataset is a labeled pair of historical series.
type Dataset struct {
	Labels   []string
	Revenue  []float64
	Expenses []float64

	// Period is the horizon stored with the data, 0 when absent.
	Period int
}

// Len returns the number of aligned points.
func (d Dataset) Len() int {
	return min(len(d.Revenue), len(d.Expenses))
}

// Clone returns a deep copy.
func (d Dataset) Clone() Dataset {
	return Dataset{
		Labels:   append([]string(nil), d.Labels...),
		Revenue:  append([]float64(nil), d.Revenue...),
		Expenses: append([]float64(nil), d.Expenses...),
		Period:   d.Period,
	}
}

// Default returns the seven-month sample the editor starts with.
func Default() Dataset {
	return Dataset{
		Labels:   []string{"January", "February", "March", "April", "May", "June", "July"},
		Revenue:  []float64{100, 200, 300, 400, 500, 600, 700},
		Expenses: []float64{50, 100, 150, 200, 250, 300, 350},
		Period:   1,
	}
}

// Format identifies a dataset encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatCSV  Format = "csv"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".csv", ".tsv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
}

// Load reads the dataset at path. "-" reads CSV from stdin.
func Load(path string) (Dataset, error) {
	if path == "-" {
		return Decode(os.Stdin, FormatCSV)
	}

	format, err := FormatOf(path)
	if err != nil {
		return Dataset{}, err
	}

	f, err := os.Open(path) //nolint:gosec // user-supplied input path
	if err != nil {
		return Dataset{}, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	d, err := Decode(f, format)
	if err != nil {
		return Dataset{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Decode parses r in the given format.
func Decode(r io.Reader, format Format) (Dataset, error) {
	var (
		d   Dataset
		err error
	)
	switch format {
	case FormatTOML:
		d, err = decodeTOML(r)
	case FormatCSV:
		d, err = decodeCSV(r)
	default:
		return Dataset{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return Dataset{}, err
	}
	if len(d.Revenue) == 0 && len(d.Expenses) == 0 {
		return Dataset{}, ErrEmpty
	}
	return d, nil
}
