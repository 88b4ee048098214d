package dataprep

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Encoding methods accepted by EncodeColumns.
const (
	MethodOneHot    = "onehot"
	MethodLabel     = "label"
	MethodFrequency = "freq"
)

type oneHotConfig struct {
	sep     string
	dummyNA bool
}

// OneHotOption configures OneHotEncode.
type OneHotOption func(*oneHotConfig)

// WithPrefixSeparator sets the separator between column name and category.
func WithPrefixSeparator(sep string) OneHotOption {
	return func(c *oneHotConfig) { c.sep = sep }
}

// WithDummyNA adds a "<column>_nan" indicator for missing values.
func WithDummyNA() OneHotOption {
	return func(c *oneHotConfig) { c.dummyNA = true }
}

// OneHotEncode replaces every named column with one 0/1 indicator column
// per distinct category, named "<column>_<category>". Indicator columns are
// appended on the right in sorted category order; row order and the other
// columns are left as they are.
//
// A table cannot hold rows without columns, so encoding a table's only
// column when every value is missing fails with ErrNoColumns and returns
// df unchanged.
func OneHotEncode(df dataframe.DataFrame, columns []string, opts ...OneHotOption) (dataframe.DataFrame, error) {
	if df.Err != nil {
		return df, df.Err
	}
	cfg := oneHotConfig{sep: "_"}
	for _, o := range opts {
		o(&cfg)
	}

	for _, name := range columns {
		if !hasColumn(df, name) {
			return df, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
		}
		col := df.Col(name)
		values, missing := columnValues(col)
		cats := sortedCategories(values, missing, isNumericType(col.Type()))

		kept := make([]series.Series, 0, df.Ncol()-1+len(cats))
		taken := make(map[string]struct{}, df.Ncol())
		for _, other := range df.Names() {
			if other == name {
				continue
			}
			kept = append(kept, df.Col(other))
			taken[other] = struct{}{}
		}

		index := make(map[string]int, len(cats))
		indicators := make([][]int, len(cats))
		for k, c := range cats {
			index[c] = k
			indicators[k] = make([]int, len(values))
		}
		var naIndicator []int
		if cfg.dummyNA {
			naIndicator = make([]int, len(values))
		}
		for i, v := range values {
			if missing[i] {
				if naIndicator != nil {
					naIndicator[i] = 1
				}
				continue
			}
			indicators[index[v]][i] = 1
		}

		for k, c := range cats {
			s, err := newIndicator(name+cfg.sep+c, indicators[k], taken)
			if err != nil {
				return df, err
			}
			kept = append(kept, s)
		}
		if naIndicator != nil {
			s, err := newIndicator(name+cfg.sep+"nan", naIndicator, taken)
			if err != nil {
				return df, err
			}
			kept = append(kept, s)
		}

		if len(kept) == 0 {
			return df, fmt.Errorf("%w: %q has no categories", ErrNoColumns, name)
		}
		out := dataframe.New(kept...)
		if out.Err != nil {
			return df, fmt.Errorf("dataprep: one-hot %q: %w", name, out.Err)
		}
		df = out
	}
	return df, nil
}

func newIndicator(name string, values []int, taken map[string]struct{}) (series.Series, error) {
	if _, dup := taken[name]; dup {
		return series.Series{}, fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
	}
	taken[name] = struct{}{}
	return series.New(values, series.Int, name), nil
}

// EncodeColumns encodes the named categorical columns in place of the
// originals using one of MethodOneHot, MethodLabel or MethodFrequency.
func EncodeColumns(df dataframe.DataFrame, columns []string, method string) (dataframe.DataFrame, error) {
	if method == MethodOneHot || method == "" {
		return OneHotEncode(df, columns)
	}
	if df.Err != nil {
		return df, df.Err
	}
	for _, name := range columns {
		if !hasColumn(df, name) {
			return df, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
		}
		values := df.Col(name).Records()
		var s series.Series
		switch method {
		case MethodLabel:
			labels, _ := LabelEncode(values)
			s = series.New(labels, series.Int, name)
		case MethodFrequency:
			freq, _ := FrequencyEncode(values)
			s = series.New(freq, series.Float, name)
		default:
			return df, fmt.Errorf("dataprep: unknown encoding method %q", method)
		}
		df = df.Mutate(s)
		if df.Err != nil {
			return df, fmt.Errorf("dataprep: encode %q: %w", name, df.Err)
		}
	}
	return df, nil
}

// EncodeCategorical one-hot encodes a slice of string categories.
// Vector positions follow the sorted category list that is returned.
func EncodeCategorical(data []string) ([][]float64, []string) {
	cats := sortedCategories(data, make([]bool, len(data)), false)
	unique := make(map[string]int, len(cats))
	for i, c := range cats {
		unique[c] = i
	}
	out := make([][]float64, len(data))
	for i, v := range data {
		vec := make([]float64, len(cats))
		vec[unique[v]] = 1
		out[i] = vec
	}
	return out, cats
}

// LabelEncode encodes categories as integers in order of first appearance.
func LabelEncode(data []string) ([]int, map[string]int) {
	unique := map[string]int{}
	out := make([]int, len(data))
	for i, v := range data {
		if _, ok := unique[v]; !ok {
			unique[v] = len(unique)
		}
		out[i] = unique[v]
	}
	return out, unique
}

// FrequencyEncode encodes categories by their frequency.
func FrequencyEncode(data []string) ([]float64, map[string]float64) {
	counts := map[string]float64{}
	for _, v := range data {
		counts[v]++
	}
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = counts[v] / float64(len(data))
	}
	return out, counts
}

// ---------------------------
// helpers
// ---------------------------

func hasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

func isNumericType(t series.Type) bool {
	return t == series.Int || t == series.Float
}

// columnValues returns the string form of every element plus an NA mask.
// Floats are written the shortest way that keeps a decimal point, so 3 and
// 12.5 become "3.0" and "12.5".
func columnValues(s series.Series) ([]string, []bool) {
	values := s.Records()
	missing := make([]bool, s.Len())
	for i := range missing {
		e := s.Elem(i)
		missing[i] = e.IsNA()
		if s.Type() == series.Float && !missing[i] {
			values[i] = formatCategory(e.Float())
		}
	}
	return values, missing
}

func formatCategory(f float64) string {
	v := strconv.FormatFloat(f, 'f', -1, 64)
	if math.IsInf(f, 0) || strings.Contains(v, ".") {
		return v
	}
	return v + ".0"
}

// sortedCategories returns the distinct non-missing values, ordered
// numerically for numeric columns and lexically otherwise.
func sortedCategories(values []string, missing []bool, numeric bool) []string {
	seen := make(map[string]struct{})
	cats := make([]string, 0)
	for i, v := range values {
		if missing[i] {
			continue
		}
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			cats = append(cats, v)
		}
	}
	if numeric {
		sort.SliceStable(cats, func(a, b int) bool {
			fa, errA := strconv.ParseFloat(cats[a], 64)
			fb, errB := strconv.ParseFloat(cats[b], 64)
			if errA != nil || errB != nil {
				return cats[a] < cats[b]
			}
			return fa < fb
		})
	} else {
		sort.Strings(cats)
	}
	return cats
}
