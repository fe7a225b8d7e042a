package dataset

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"

	"github.com/theirongolddev/pnlcast/internal/forecast"
)

// tomlFile accepts either parallel arrays or a list of [[point]] tables.
//
//	labels   = ["Jan", "Feb"]
//	revenue  = [100, 200]
//	expenses = [50, "100"]
//
//	[[point]]
//	label = "Mar"
//	revenue = 300
//	expenses = 150
type tomlFile struct {
	Period   any         `toml:"period"`
	Labels   []string    `toml:"labels"`
	Revenue  []any       `toml:"revenue"`
	Expenses []any       `toml:"expenses"`
	Points   []tomlPoint `toml:"point"`
}

type tomlPoint struct {
	Label    string `toml:"label"`
	Revenue  any    `toml:"revenue"`
	Expenses any    `toml:"expenses"`
}

func decodeTOML(r io.Reader) (Dataset, error) {
	var raw tomlFile
	if _, err := toml.NewDecoder(r).Decode(&raw); err != nil {
		return Dataset{}, fmt.Errorf("parsing toml: %w", err)
	}

	d := Dataset{
		Labels:   append([]string(nil), raw.Labels...),
		Revenue:  forecast.CoerceAll(raw.Revenue),
		Expenses: forecast.CoerceAll(raw.Expenses),
	}
	for _, p := range raw.Points {
		d.Labels = append(d.Labels, p.Label)
		d.Revenue = append(d.Revenue, forecast.Coerce(p.Revenue))
		d.Expenses = append(d.Expenses, forecast.Coerce(p.Expenses))
	}

	if raw.Period != nil {
		p, err := forecast.ParsePeriod(raw.Period)
		if err != nil {
			return Dataset{}, err
		}
		d.Period = p
	}
	return d, nil
}
