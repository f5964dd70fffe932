package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"loan-advisor/domain"
)

// Candidate is a labelled single-step change to an application.
type Candidate struct {
	Label   string
	Payload domain.ApplicantPayload
}

// GenerateCandidates returns a small, deterministic set of concrete tweaks:
// loan amount cuts, a 36-month term, utilization and DTI targets. Labels are
// unique and the list never exceeds MaxCandidates. The input is not modified.
func GenerateCandidates(payload domain.ApplicantPayload) []Candidate {
	var cands []Candidate

	baseAmt, ok := toFloat(payload[domain.FieldLoanAmount])
	if !ok {
		baseAmt = 0
	}
	if baseAmt > 0 {
		for _, frac := range amountFractions {
			tgt := amountTarget(baseAmt, frac)
			q := payload.Clone()
			q[domain.FieldLoanAmount] = tgt
			cands = append(cands, Candidate{
				Label:   fmt.Sprintf("Reduce loan amount by $%s (target $%s)", thousands(baseAmt-tgt), thousands(tgt)),
				Payload: q,
			})
		}
	}

	term := strings.ToLower(stringify(payload[domain.FieldTerm]))
	if strings.HasPrefix(term, "60") {
		q := payload.Clone()
		q[domain.FieldTerm] = "36 months"
		cands = append(cands, Candidate{Label: "Switch to a 36-month term", Payload: q})

		if baseAmt > 0 {
			tgt := amountTarget(baseAmt, amountFractions[0])
			q2 := payload.Clone()
			q2[domain.FieldTerm] = "36 months"
			q2[domain.FieldLoanAmount] = tgt
			cands = append(cands, Candidate{
				Label:   fmt.Sprintf("Switch to 36 months and reduce amount by $%s (target $%s)", thousands(baseAmt-tgt), thousands(tgt)),
				Payload: q2,
			})
		}
	}

	if util, ok := percentValue(payload[domain.FieldRevolUtil]); ok {
		for _, tgt := range utilTargets {
			if util > tgt {
				q := payload.Clone()
				q[domain.FieldRevolUtil] = formatPercent(tgt)
				cands = append(cands, Candidate{
					Label:   fmt.Sprintf("Pay down credit cards to ~%.0f%% utilization", tgt),
					Payload: q,
				})
			}
		}
	}

	if dti, ok := percentValue(payload[domain.FieldDTI]); ok {
		income, hasIncome := toFloat(payload[domain.FieldAnnualIncome])
		for _, tgt := range dtiTargets {
			if dti > tgt {
				q := payload.Clone()
				q[domain.FieldDTI] = formatPercent(tgt)
				label := fmt.Sprintf("Lower DTI to ~%.0f%%", tgt)
				if hasIncome && income > 0 {
					label = fmt.Sprintf("Lower DTI to ~%.0f%% (≈ $%.0f less monthly debt payments)", tgt, MonthlyDebtReduction(dti, tgt, income))
				}
				cands = append(cands, Candidate{Label: label, Payload: q})
			}
		}
	}

	seen := make(map[string]bool, len(cands))
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if seen[c.Label] {
			continue
		}
		seen[c.Label] = true
		out = append(out, c)
	}
	if len(out) > MaxCandidates {
		out = out[:MaxCandidates]
	}
	return out
}

// MonthlyDebtReduction estimates how much less the applicant would pay per
// month in debt service at the target DTI.
func MonthlyDebtReduction(currentDTI, targetDTI, annualIncome float64) float64 {
	monthly := annualIncome / 12.0
	now := currentDTI / 100.0 * monthly
	next := targetDTI / 100.0 * monthly
	return math.Max(0, now-next)
}

// amountTarget is the suggested amount, rounded half to even and floored at
// MinAmountTarget.
func amountTarget(base, frac float64) float64 {
	return math.Max(MinAmountTarget, math.RoundToEven(base*frac))
}

// percentValue parses "55%", "55" or 55. Unparseable values report false.
func percentValue(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	if num, ok := numberOf(v); ok {
		return num, !math.IsNaN(num)
	}
	s := strings.TrimSpace(fmt.Sprint(v))
	s = strings.TrimSuffix(s, "%")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func formatPercent(x float64) string {
	return fmt.Sprintf("%.1f%%", x)
}

// thousands truncates toward zero and groups digits with commas.
func thousands(x float64) string {
	n := int64(x)
	neg := n < 0
	if neg {
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return b.String()
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
