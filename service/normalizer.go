package service

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"loan-advisor/domain"
)

// Normalizer turns raw payloads into the feature rows the model was trained on.
type Normalizer struct {
	schema domain.FeatureSchema
}

func NewNormalizer(schema domain.FeatureSchema) *Normalizer {
	return &Normalizer{schema: schema}
}

func (n *Normalizer) Schema() domain.FeatureSchema {
	return n.schema
}

// Normalize never fails: unparseable values become NaN or "Unknown".
func (n *Normalizer) Normalize(payload domain.ApplicantPayload) domain.FeatureVector {
	return n.NormalizeBatch([]domain.ApplicantPayload{payload})[0]
}

// NormalizeBatch normalizes several payloads and imputes missing numeric
// values with the column median of the batch, as the training pipeline does.
// For a single row the median is the value itself, so present values are kept
// and absent ones stay NaN.
func (n *Normalizer) NormalizeBatch(payloads []domain.ApplicantPayload) []domain.FeatureVector {
	rows := make([]domain.FeatureVector, len(payloads))
	for i, p := range payloads {
		rows[i] = n.row(p)
	}

	for col, name := range n.schema.Columns {
		if !n.schema.Numeric[name] {
			continue
		}
		med := columnMedian(rows, col)
		for _, r := range rows {
			if math.IsNaN(r[col].Number) {
				r[col].Number = med
			}
		}
	}
	return rows
}

func (n *Normalizer) row(p domain.ApplicantPayload) domain.FeatureVector {
	raw := prepare(p)
	out := make(domain.FeatureVector, len(n.schema.Columns))
	for i, name := range n.schema.Columns {
		v, ok := raw[name]
		switch {
		case n.schema.Numeric[name]:
			num := math.NaN()
			if ok {
				num = toNumeric(v)
			}
			out[i] = domain.Feature{Name: name, Kind: domain.KindNumeric, Number: num}
		case n.schema.Categorical[name]:
			out[i] = domain.Feature{Name: name, Kind: domain.KindCategorical, Text: toCategory(v, ok)}
		default:
			// Columns outside both lists keep numbers as numbers and
			// anything else as text.
			if num, isNum := numberOf(v); ok && isNum {
				out[i] = domain.Feature{Name: name, Kind: domain.KindNumeric, Number: num}
			} else if ok && v != nil {
				out[i] = domain.Feature{Name: name, Kind: domain.KindCategorical, Text: fmt.Sprint(v)}
			} else {
				out[i] = domain.Feature{Name: name, Kind: domain.KindNumeric, Number: math.NaN()}
			}
		}
	}
	return out
}

// prepare applies the per-field parsing rules before schema projection.
func prepare(p domain.ApplicantPayload) map[string]any {
	row := map[string]any{
		domain.FieldLoanAmount:         p[domain.FieldLoanAmount],
		domain.FieldInterestRate:       ParsePercent(p[domain.FieldInterestRate]),
		domain.FieldFicoLow:            p[domain.FieldFicoLow],
		domain.FieldFicoHigh:           p[domain.FieldFicoHigh],
		domain.FieldAnnualIncome:       p[domain.FieldAnnualIncome],
		domain.FieldDTI:                parseDTI(p[domain.FieldDTI]),
		domain.FieldRevolUtil:          ParsePercent(p[domain.FieldRevolUtil]),
		domain.ColumnEmpLengthNum:      ParseEmpLength(p[domain.FieldEmpLength]),
		domain.ColumnTermNum:           ParseTerm(p[domain.FieldTerm]),
		domain.FieldGrade:              p[domain.FieldGrade],
		domain.FieldSubGrade:           p[domain.FieldSubGrade],
		domain.FieldHomeOwnership:      p[domain.FieldHomeOwnership],
		domain.FieldVerificationStatus: p[domain.FieldVerificationStatus],
		domain.FieldPurpose:            p[domain.FieldPurpose],
	}
	return row
}

// ParsePercent strips a trailing % and parses the rest. Missing or
// unparseable input yields NaN.
func ParsePercent(v any) float64 {
	if v == nil {
		return math.NaN()
	}
	if num, ok := numberOf(v); ok {
		return num
	}
	s := strings.TrimSpace(fmt.Sprint(v))
	s = strings.TrimSuffix(s, "%")
	return parseFinite(s)
}

// parseDTI treats only percent strings as percents; everything else is
// already on the 0-100 scale and is coerced as is.
func parseDTI(v any) float64 {
	if s, ok := v.(string); ok && strings.Contains(s, "%") {
		return ParsePercent(s)
	}
	return toNumeric(v)
}

// ParseTerm reads the month count from values like "36 months".
func ParseTerm(v any) float64 {
	if v == nil {
		return math.NaN()
	}
	if num, ok := numberOf(v); ok {
		return num
	}
	return parseDigitRun(fmt.Sprint(v))
}

// ParseEmpLength maps employment length text to years: "< 1 year" is 0.5,
// "10+ years" is 10, "n/a" is missing.
func ParseEmpLength(v any) float64 {
	if v == nil {
		return math.NaN()
	}
	if num, ok := numberOf(v); ok {
		return num
	}
	s := strings.ToLower(strings.TrimSpace(fmt.Sprint(v)))
	switch {
	case s == "n/a", s == "na", s == "none", s == "":
		return math.NaN()
	case strings.HasPrefix(s, "<"):
		return 0.5
	case strings.Contains(s, "10+"):
		return 10.0
	}
	return parseDigitRun(s)
}

// parseDigitRun parses the first run of digits (and decimal points) in s.
func parseDigitRun(s string) float64 {
	start := strings.IndexFunc(s, isNumberRune)
	if start < 0 {
		return math.NaN()
	}
	end := start
	for end < len(s) && isNumberRune(rune(s[end])) {
		end++
	}
	return parseFinite(s[start:end])
}

// parseFinite parses s as a float. Infinities, including overflowing
// literals like "1e999", count as unparseable.
func parseFinite(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(f, 0) {
		return math.NaN()
	}
	return f
}

func isNumberRune(r rune) bool {
	return (r >= '0' && r <= '9') || r == '.'
}

// numberOf reports whether v is already a JSON or Go number. Non-finite
// numbers come back as NaN.
func numberOf(v any) (float64, bool) {
	f, ok := rawNumber(v)
	if ok && math.IsInf(f, 0) {
		return math.NaN(), true
	}
	return f, ok
}

func rawNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return math.NaN(), true
		}
		return f, true
	}
	return 0, false
}

// toNumeric coerces numbers and numeric strings; anything else is NaN.
func toNumeric(v any) float64 {
	if v == nil {
		return math.NaN()
	}
	if num, ok := numberOf(v); ok {
		return num
	}
	if s, ok := v.(string); ok {
		return parseFinite(s)
	}
	return math.NaN()
}

// toFloat is toNumeric with an explicit ok flag instead of NaN.
func toFloat(v any) (float64, bool) {
	f := toNumeric(v)
	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func toCategory(v any, present bool) string {
	if !present || v == nil {
		return domain.UnknownCategory
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func columnMedian(rows []domain.FeatureVector, col int) float64 {
	vals := make([]float64, 0, len(rows))
	for _, r := range rows {
		if !math.IsNaN(r[col].Number) {
			vals = append(vals, r[col].Number)
		}
	}
	if len(vals) == 0 {
		return math.NaN()
	}
	sort.Float64s(vals)
	mid := len(vals) / 2
	if len(vals)%2 == 1 {
		return vals[mid]
	}
	return (vals[mid-1] + vals[mid]) / 2
}
