package dataprep

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Default field names of the account-creation date.
const (
	DefaultYearField     = "year_account_created"
	DefaultMonthField    = "month_account_created"
	DefaultDayField      = "day_account_created"
	DefaultHolidayPrefix = "days_to_"
)

// HolidayGenerator appends, for every holiday of a record's year, the
// signed number of days from the record's date to that holiday.
type HolidayGenerator struct {
	Calendar   Calendar
	YearField  string
	MonthField string
	DayField   string
	Prefix     string
}

// NewHolidayGenerator returns a generator over the US calendar using the
// account-creation field names.
func NewHolidayGenerator() *HolidayGenerator {
	return &HolidayGenerator{
		Calendar:   NewUSCalendar(),
		YearField:  DefaultYearField,
		MonthField: DefaultMonthField,
		DayField:   DefaultDayField,
		Prefix:     DefaultHolidayPrefix,
	}
}

// SanitizeHolidayName keeps letters, digits and spaces, lowercases the
// result and turns spaces into underscores.
func SanitizeHolidayName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.ReplaceAll(strings.ToLower(b.String()), " ", "_")
}

// ColumnName is the feature name used for a holiday.
func (g *HolidayGenerator) ColumnName(holiday string) string {
	return g.Prefix + SanitizeHolidayName(holiday)
}

// ProcessRecord adds one field per holiday to rec and returns it.
func (g *HolidayGenerator) ProcessRecord(rec map[string]interface{}) (map[string]interface{}, error) {
	year, err := intField(rec, g.YearField)
	if err != nil {
		return rec, err
	}
	month, err := intField(rec, g.MonthField)
	if err != nil {
		return rec, err
	}
	day, err := intField(rec, g.DayField)
	if err != nil {
		return rec, err
	}
	date, err := civilDate(year, month, day)
	if err != nil {
		return rec, err
	}
	holidays, err := g.Calendar.Holidays(year)
	if err != nil {
		return rec, err
	}
	for _, h := range holidays {
		rec[g.ColumnName(h.Name)] = daysBetween(date, h.Date)
	}
	return rec, nil
}

// Apply does what ProcessRecord does for every row of df. Holiday columns
// are appended in the order they are first met. When rows span years with
// different holiday sets, columns missing for some rows are Float with NaN.
func (g *HolidayGenerator) Apply(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	if df.Err != nil {
		return df, df.Err
	}
	cols := make([][]int, 3)
	for i, name := range []string{g.YearField, g.MonthField, g.DayField} {
		if !hasColumn(df, name) {
			return df, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
		}
		v, err := df.Col(name).Int()
		if err != nil {
			return df, fmt.Errorf("%w: %q: %v", ErrInvalidField, name, err)
		}
		cols[i] = v
	}

	n := df.Nrow()
	byYear := make(map[int][]Holiday)
	var order []string
	values := make(map[string][]float64)
	present := make(map[string]int)

	for row := 0; row < n; row++ {
		year, month, day := cols[0][row], cols[1][row], cols[2][row]
		date, err := civilDate(year, month, day)
		if err != nil {
			return df, fmt.Errorf("row %d: %w", row, err)
		}
		holidays, ok := byYear[year]
		if !ok {
			holidays, err = g.Calendar.Holidays(year)
			if err != nil {
				return df, fmt.Errorf("row %d: %w", row, err)
			}
			byYear[year] = holidays
		}
		for _, h := range holidays {
			name := g.ColumnName(h.Name)
			col, ok := values[name]
			if !ok {
				col = make([]float64, n)
				for i := range col {
					col[i] = math.NaN()
				}
				values[name] = col
				order = append(order, name)
			}
			if math.IsNaN(col[row]) {
				present[name]++
			}
			col[row] = float64(daysBetween(date, h.Date))
		}
	}

	for _, name := range order {
		var s series.Series
		if present[name] == n {
			ints := make([]int, n)
			for i, v := range values[name] {
				ints[i] = int(v)
			}
			s = series.New(ints, series.Int, name)
		} else {
			s = series.New(values[name], series.Float, name)
		}
		df = df.Mutate(s)
		if df.Err != nil {
			return df, fmt.Errorf("dataprep: add %q: %w", name, df.Err)
		}
	}
	return df, nil
}

// civilDate validates and builds a UTC midnight date.
func civilDate(year, month, day int) (time.Time, error) {
	if err := checkYear(year); err != nil {
		return time.Time{}, err
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidDate, year, month, day)
	}
	return t, nil
}

// daysBetween is the signed whole-day distance from `from` to `to`.
func daysBetween(from, to time.Time) int {
	return int(math.Round(to.Sub(from).Hours() / 24))
}

func intField(rec map[string]interface{}, name string) (int, error) {
	v, ok := rec[name]
	if !ok || v == nil {
		return 0, fmt.Errorf("%w: %q", ErrMissingField, name)
	}
	switch x := v.(type) {
	case int:
		return x, nil
	case int8:
		return int(x), nil
	case int16:
		return int(x), nil
	case int32:
		return int(x), nil
	case int64:
		return int(x), nil
	case uint:
		return int(x), nil
	case uint8:
		return int(x), nil
	case uint16:
		return int(x), nil
	case uint32:
		return int(x), nil
	case uint64:
		return int(x), nil
	case float32:
		return integralFloat(name, float64(x))
	case float64:
		return integralFloat(name, x)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, fmt.Errorf("%w: %q=%q", ErrInvalidField, name, x)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%w: %q has type %T", ErrInvalidField, name, v)
	}
}

func integralFloat(name string, f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %q=%v", ErrInvalidField, name, f)
	}
	return int(f), nil
}
