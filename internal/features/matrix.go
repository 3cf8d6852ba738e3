package features

import "math"

// Matrix is a dense feature matrix with a fixed column order, one row per
// match (newest first, matching the row table).
type Matrix struct {
	Columns []string
	Rows    [][]float64
}

// Prepare builds the feature matrix from a row table. With predictiveOnly
// set, only the training features become columns; otherwise the full
// catalog does. An empty table yields the headers and no rows. Missing and
// non-finite values read as zero.
func Prepare(table []Row, predictiveOnly bool) Matrix {
	columns := Combined()
	if predictiveOnly {
		columns = append([]string(nil), Predictive...)
	}

	m := Matrix{Columns: columns, Rows: make([][]float64, 0, len(table))}
	for _, row := range table {
		m.Rows = append(m.Rows, vectorize(row.Values, columns))
	}
	return m
}

// PrepareRow vectorizes a single stats map against the catalog columns,
// used to score averaged stats against the trained model.
func PrepareRow(stats map[string]float64, predictiveOnly bool) []float64 {
	columns := Combined()
	if predictiveOnly {
		columns = Predictive
	}
	return vectorize(stats, columns)
}

func vectorize(values map[string]float64, columns []string) []float64 {
	vec := make([]float64, len(columns))
	for i, col := range columns {
		v := values[col]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		vec[i] = v
	}
	return vec
}

// Labels extracts the win column as 0/1 targets aligned with the table.
func Labels(table []Row) []float64 {
	y := make([]float64, len(table))
	for i, row := range table {
		if row.Win {
			y[i] = 1
		}
	}
	return y
}
