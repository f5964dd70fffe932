package domain

import "math"

// UnknownCategory fills categorical columns that are missing after normalization.
const UnknownCategory = "Unknown"

type FeatureKind int

const (
	KindNumeric FeatureKind = iota
	KindCategorical
)

// Feature is one column of a normalized row. Missing numeric values are NaN.
type Feature struct {
	Name   string
	Kind   FeatureKind
	Number float64
	Text   string
}

// Value returns the JSON-friendly value of the feature: nil for a missing or
// non-finite number, the float otherwise, or the category text.
func (f Feature) Value() any {
	if f.Kind == KindCategorical {
		return f.Text
	}
	if math.IsNaN(f.Number) || math.IsInf(f.Number, 0) {
		return nil
	}
	return f.Number
}

// FeatureVector is the ordered row handed to the scoring oracle.
type FeatureVector []Feature

func (v FeatureVector) Columns() []string {
	cols := make([]string, len(v))
	for i, f := range v {
		cols[i] = f.Name
	}
	return cols
}

func (v FeatureVector) Values() []any {
	vals := make([]any, len(v))
	for i, f := range v {
		vals[i] = f.Value()
	}
	return vals
}

// Lookup returns the feature with the given column name.
func (v FeatureVector) Lookup(name string) (Feature, bool) {
	for _, f := range v {
		if f.Name == name {
			return f, true
		}
	}
	return Feature{}, false
}

// FeatureSchema fixes the set, order and type of the model's input columns.
type FeatureSchema struct {
	Columns     []string
	Numeric     map[string]bool
	Categorical map[string]bool
}

// NewFeatureSchema builds the column layout from model metadata. The derived
// emp_length_num and term_num columns are appended when the model lists them
// as numeric but the feature set does not include them.
func NewFeatureSchema(meta ModelMetadata) FeatureSchema {
	s := FeatureSchema{
		Columns:     append([]string(nil), meta.FeatureSet...),
		Numeric:     make(map[string]bool, len(meta.NumericColumns)),
		Categorical: make(map[string]bool, len(meta.CategoricalColumns)),
	}
	for _, c := range meta.NumericColumns {
		s.Numeric[c] = true
	}
	for _, c := range meta.CategoricalColumns {
		s.Categorical[c] = true
	}

	present := make(map[string]bool, len(s.Columns))
	for _, c := range s.Columns {
		present[c] = true
	}
	for _, extra := range []string{ColumnEmpLengthNum, ColumnTermNum} {
		if s.Numeric[extra] && !present[extra] {
			s.Columns = append(s.Columns, extra)
		}
	}
	return s
}
