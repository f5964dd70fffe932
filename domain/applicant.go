package domain

// Payload field names as submitted by the application form.
const (
	FieldLoanAmount         = "loan_amnt"
	FieldInterestRate       = "int_rate"
	FieldFicoLow            = "fico_range_low"
	FieldFicoHigh           = "fico_range_high"
	FieldAnnualIncome       = "annual_inc"
	FieldDTI                = "dti"
	FieldRevolUtil          = "revol_util"
	FieldEmpLength          = "emp_length"
	FieldTerm               = "term"
	FieldGrade              = "grade"
	FieldSubGrade           = "sub_grade"
	FieldHomeOwnership      = "home_ownership"
	FieldVerificationStatus = "verification_status"
	FieldPurpose            = "purpose"
	FieldFirstName          = "first_name"
	FieldLastName           = "last_name"
)

// Derived feature columns produced by normalization.
const (
	ColumnEmpLengthNum = "emp_length_num"
	ColumnTermNum      = "term_num"
)

// ApplicantPayload is a raw loan application. Values arrive as JSON numbers,
// plain strings or percent-suffixed strings.
type ApplicantPayload map[string]any

// Clone returns a deep copy of the payload.
func (p ApplicantPayload) Clone() ApplicantPayload {
	if p == nil {
		return ApplicantPayload{}
	}
	out := make(ApplicantPayload, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = cloneValue(e)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = cloneValue(e)
		}
		return s
	default:
		return v
	}
}

// String returns the field as a string when it is one.
func (p ApplicantPayload) String(field string) string {
	if s, ok := p[field].(string); ok {
		return s
	}
	return ""
}
