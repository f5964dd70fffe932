package service

import (
	"context"
	"math"
	"sync/atomic"

	"loan-advisor/domain"
)

// scorerFunc adapts a plain function to Scorer.
type scorerFunc func(ctx context.Context, payload domain.ApplicantPayload) (float64, error)

func (f scorerFunc) Probability(ctx context.Context, payload domain.ApplicantPayload) (float64, error) {
	return f(ctx, payload)
}

// byAmount scores payloads as loan_amnt / divisor.
func byAmount(divisor float64) scorerFunc {
	return func(_ context.Context, p domain.ApplicantPayload) (float64, error) {
		amt, _ := toFloat(p[domain.FieldLoanAmount])
		return amt / divisor, nil
	}
}

func constantScorer(pd float64) scorerFunc {
	return func(context.Context, domain.ApplicantPayload) (float64, error) {
		return pd, nil
	}
}

func testMetadata() domain.ModelMetadata {
	return domain.ModelMetadata{
		FeatureSet: []string{
			domain.FieldLoanAmount, domain.FieldInterestRate, domain.FieldAnnualIncome,
			domain.FieldDTI, domain.FieldRevolUtil, domain.FieldFicoLow,
			domain.FieldGrade, domain.FieldPurpose,
		},
		NumericColumns: []string{
			domain.FieldLoanAmount, domain.FieldInterestRate, domain.FieldAnnualIncome,
			domain.FieldDTI, domain.FieldRevolUtil,
			domain.ColumnEmpLengthNum, domain.ColumnTermNum,
		},
		CategoricalColumns: []string{domain.FieldGrade, domain.FieldPurpose},
	}
}

func testNormalizer() *Normalizer {
	return NewNormalizer(domain.NewFeatureSchema(testMetadata()))
}

// riskOracle is a deterministic linear model over a few normalized columns.
type riskOracle struct {
	calls atomic.Int64
}

func (o *riskOracle) Probability(_ context.Context, fv domain.FeatureVector) (float64, error) {
	o.calls.Add(1)
	num := func(name string) float64 {
		f, ok := fv.Lookup(name)
		if !ok || math.IsNaN(f.Number) {
			return 0
		}
		return f.Number
	}
	pd := 0.05 + num(domain.FieldRevolUtil)/400 + num(domain.FieldDTI)/200 + num(domain.FieldLoanAmount)/200000
	if num(domain.ColumnTermNum) >= 60 {
		pd += 0.1
	}
	return math.Min(1, math.Max(0, pd)), nil
}

func (o *riskOracle) Calls() int {
	return int(o.calls.Load())
}

func scenarioOnePayload() domain.ApplicantPayload {
	return domain.ApplicantPayload{
		domain.FieldLoanAmount:   8000.0,
		domain.FieldInterestRate: "7.5%",
		domain.FieldFicoLow:      780.0,
		domain.FieldFicoHigh:     784.0,
		domain.FieldAnnualIncome: 120000.0,
		domain.FieldDTI:          "6%",
		domain.FieldRevolUtil:    "5%",
		domain.FieldEmpLength:    "10+ years",
		domain.FieldTerm:         "36 months",
		domain.FieldGrade:        "A",
	}
}

func ptr(f float64) *float64 { return &f }
