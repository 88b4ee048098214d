package data

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Errors returned when turning a table into model input.
var (
	ErrNonNumeric    = errors.New("data: column is not numeric")
	ErrLabelNotFound = errors.New("data: label column not found")
	ErrInvalidLabel  = errors.New("data: label column must hold integers")
)

// naValues are read as missing, matching the pandas read_csv defaults that matter here.
var naValues = []string{"", "NA", "NaN", "nan", "<nil>"}

// ReadCSV loads a CSV stream with a header row. Columns listed in stringCols
// skip type detection and stay categorical strings.
func ReadCSV(r io.Reader, stringCols ...string) (dataframe.DataFrame, error) {
	opts := []dataframe.LoadOption{dataframe.NaNValues(naValues)}
	if len(stringCols) > 0 {
		types := make(map[string]series.Type, len(stringCols))
		for _, c := range stringCols {
			types[c] = series.String
		}
		opts = append(opts, dataframe.WithTypes(types))
	}
	df := dataframe.ReadCSV(r, opts...)
	if df.Err != nil {
		return df, fmt.Errorf("data: read csv: %w", df.Err)
	}
	return df, nil
}

// LoadCSV is ReadCSV over a file.
func LoadCSV(path string, stringCols ...string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	defer f.Close()
	return ReadCSV(f, stringCols...)
}

// WriteCSV writes df with a header row to path.
func WriteCSV(path string, df dataframe.DataFrame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := df.WriteCSV(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("data: write csv: %w", err)
	}
	return f.Close()
}

// SplitXY separates the integer label column from the numeric features.
// Missing feature values become NaN. Feature names come back in column order.
func SplitXY(df dataframe.DataFrame, label string) (X [][]float64, y []int, names []string, err error) {
	if df.Err != nil {
		return nil, nil, nil, df.Err
	}
	found := false
	var cols [][]float64
	for _, name := range df.Names() {
		if name == label {
			found = true
			continue
		}
		s := df.Col(name)
		switch s.Type() {
		case series.Int, series.Float, series.Bool:
			cols = append(cols, s.Float())
			names = append(names, name)
		default:
			return nil, nil, nil, fmt.Errorf("%w: %q", ErrNonNumeric, name)
		}
	}
	if !found {
		return nil, nil, nil, fmt.Errorf("%w: %q", ErrLabelNotFound, label)
	}
	y, err = df.Col(label).Int()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", ErrInvalidLabel, err)
	}

	n := df.Nrow()
	X = make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, len(cols))
		for j, c := range cols {
			row[j] = c[i]
		}
		X[i] = row
	}
	return X, y, names, nil
}
