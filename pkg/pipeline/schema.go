package pipeline

import (
	"github.com/go-gota/gota/dataframe"
)

// Schema describes the structure of a dataset.
type Schema struct {
	FeatureNames []string
	Types        []string // gota series types: "int", "float", "string", "bool"
}

// SchemaOf reads the column names and types of df.
func SchemaOf(df dataframe.DataFrame) Schema {
	s := Schema{FeatureNames: df.Names()}
	for _, t := range df.Types() {
		s.Types = append(s.Types, string(t))
	}
	return s
}

// Added lists the columns of s that are not in before, in order.
func (s Schema) Added(before Schema) []string {
	old := make(map[string]struct{}, len(before.FeatureNames))
	for _, n := range before.FeatureNames {
		old[n] = struct{}{}
	}
	var out []string
	for _, n := range s.FeatureNames {
		if _, ok := old[n]; !ok {
			out = append(out, n)
		}
	}
	return out
}
