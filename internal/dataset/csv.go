package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/theirongolddev/pnlcast/internal/forecast"
)

var ErrMissingColumn = errors.New("missing column")

type columns struct {
	label, revenue, expenses int
}

// positional is used when the first row is data rather than a header.
var positional = columns{label: 0, revenue: 1, expenses: 2}

func decodeCSV(r io.Reader) (Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	records, err := cr.ReadAll()
	if err != nil {
		return Dataset{}, fmt.Errorf("parsing csv: %w", err)
	}
	if len(records) == 0 {
		return Dataset{}, ErrEmpty
	}

	cols := positional
	body := records
	if len(records[0]) == 2 && numeric(records[0][0]) {
		cols = columns{label: -1, revenue: 0, expenses: 1}
	}
	if isHeader(records[0]) {
		cols, err = headerColumns(records[0])
		if err != nil {
			return Dataset{}, err
		}
		body = records[1:]
	}

	var d Dataset
	for _, rec := range body {
		if blank(rec) {
			continue
		}
		d.Labels = append(d.Labels, field(rec, cols.label))
		d.Revenue = append(d.Revenue, forecast.Coerce(field(rec, cols.revenue)))
		d.Expenses = append(d.Expenses, forecast.Coerce(field(rec, cols.expenses)))
	}
	return d, nil
}

// isHeader treats a first row as a header when its revenue column is not a
// number.
func isHeader(rec []string) bool {
	if len(rec) < 2 {
		return true
	}
	return !numeric(rec[1])
}

func numeric(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}

func headerColumns(rec []string) (columns, error) {
	cols := columns{label: -1, revenue: -1, expenses: -1}
	for i, name := range rec {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "label", "period", "month", "date":
			cols.label = i
		case "revenue", "income", "sales":
			cols.revenue = i
		case "expenses", "expense", "costs", "cost":
			cols.expenses = i
		}
	}
	if cols.revenue < 0 {
		return cols, fmt.Errorf("%w: revenue", ErrMissingColumn)
	}
	if cols.expenses < 0 {
		return cols, fmt.Errorf("%w: expenses", ErrMissingColumn)
	}
	return cols, nil
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
