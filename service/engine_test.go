package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"loan-advisor/domain"
)

func policy(reject, review float64) domain.Thresholds {
	return domain.Thresholds{ThrReject: ptr(reject), ThrReview: ptr(review), Source: "policy.json"}
}

func TestEngine_Score(t *testing.T) {
	tests := []struct {
		prob float64
		want domain.Decision
	}{
		{0.65, domain.DecisionReject},
		{0.45, domain.DecisionReview},
		{0.1, domain.DecisionApprove},
	}
	for _, tt := range tests {
		engine := NewEngine(constantScorer(tt.prob), policy(0.6, 0.3), zap.NewNop())

		res, err := engine.Score(context.Background(), scenarioOnePayload())
		require.NoError(t, err)
		assert.Equal(t, tt.want, res.Decision)
		assert.Equal(t, tt.prob, res.ProbDefault)
		assert.Equal(t, "policy.json", res.PolicySource)
		assert.Equal(t, 0.6, *res.Thresholds.ThrReject)
	}
}

func TestEngine_ScoreClassifiesBeforeRounding(t *testing.T) {
	tests := []struct {
		prob     float64
		want     domain.Decision
		reported float64
	}{
		{0.2999996, domain.DecisionApprove, 0.3},
		{0.5999996, domain.DecisionReview, 0.6},
		{0.3, domain.DecisionReview, 0.3},
	}
	for _, tt := range tests {
		engine := NewEngine(constantScorer(tt.prob), policy(0.6, 0.3), nil)

		res, err := engine.Score(context.Background(), scenarioOnePayload())
		require.NoError(t, err)
		assert.Equal(t, tt.want, res.Decision, "prob %v", tt.prob)
		assert.Equal(t, tt.reported, res.ProbDefault)
	}
}

func TestEngine_ScoreLowRiskApplicant(t *testing.T) {
	oracle := &riskOracle{}
	local, err := NewLRUCache(16)
	require.NoError(t, err)
	engine := NewEngine(NewCachedScorer(oracle, testNormalizer(), local, nil, nil), policy(0.6, 0.3), nil)

	res, err := engine.Score(context.Background(), scenarioOnePayload())
	require.NoError(t, err)
	assert.Equal(t, domain.DecisionApprove, res.Decision)
	assert.Less(t, res.ProbDefault, 0.3)
}

func TestEngine_Recommend(t *testing.T) {
	engine := NewEngine(byAmount(20000), policy(0.6, 0.4), zap.NewNop())
	payload := domain.ApplicantPayload{domain.FieldLoanAmount: 10000.0}

	rec, err := engine.Recommend(context.Background(), payload, 2)
	require.NoError(t, err)

	assert.Equal(t, 0.5, rec.CurrentPD)
	assert.Equal(t, 0.4, rec.ThrReview)
	assert.Len(t, rec.BestTips, 2)
	require.Len(t, rec.GreedyPlan, 1)
	assert.True(t, rec.CrossesThreshold)
	assert.Equal(t, []string{"Reduce loan amount by $3,000 (target $7,000)"}, rec.Actions(3))
}

func TestEngine_RecommendUsesDefaultCutInTwoBandMode(t *testing.T) {
	engine := NewEngine(constantScorer(0.7), domain.Thresholds{}, zap.NewNop())

	rec, err := engine.Recommend(context.Background(), domain.ApplicantPayload{domain.FieldLoanAmount: 5000.0}, 3)
	require.NoError(t, err)
	assert.Equal(t, DefaultReviewThreshold, rec.ThrReview)
	assert.Empty(t, rec.GreedyPlan)
	assert.False(t, rec.CrossesThreshold)
	assert.Len(t, rec.Actions(3), 3)
}
