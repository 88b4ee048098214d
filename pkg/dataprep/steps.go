package dataprep

import "github.com/go-gota/gota/dataframe"

// EncodeStep encodes categorical columns as a pipeline step.
type EncodeStep struct {
	Columns []string
	Method  string // MethodOneHot when empty
	Options []OneHotOption
}

func (s EncodeStep) Name() string {
	if s.Method == "" {
		return MethodOneHot
	}
	return s.Method
}

func (s EncodeStep) Apply(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	if s.Method == "" || s.Method == MethodOneHot {
		return OneHotEncode(df, s.Columns, s.Options...)
	}
	return EncodeColumns(df, s.Columns, s.Method)
}

// Name lets a HolidayGenerator run as a pipeline step.
func (g *HolidayGenerator) Name() string { return "holidays" }
