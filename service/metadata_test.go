package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-advisor/domain"
)

const sampleMetadata = `{
  "feature_set": ["loan_amnt", "int_rate", "dti", "revol_util", "grade"],
  "numeric_columns": ["loan_amnt", "int_rate", "dti", "revol_util", "emp_length_num", "term_num"],
  "categorical_columns": ["grade"],
  "review_k": 0.15,
  "policy": {"thresholds": {"thr_reject": 0.55, "thr_review": 0.25}},
  "report": {"Threshold@top_15%": 0.31, "auc": 0.71}
}`

func TestLoadMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "best_model_metadata.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleMetadata), 0o644))

	meta, err := LoadMetadata(path)
	require.NoError(t, err)

	assert.Len(t, meta.FeatureSet, 5)
	assert.Equal(t, 0.15, meta.ReviewFraction())
	require.NotNil(t, meta.Policy)
	assert.Equal(t, 0.55, *meta.Policy.Thresholds.ThrReject)
	assert.Equal(t, 0.31, meta.Report["Threshold@top_15%"])

	schema := domain.NewFeatureSchema(meta)
	assert.Equal(t, []string{"loan_amnt", "int_rate", "dti", "revol_util", "grade", "emp_length_num", "term_num"}, schema.Columns)
}

func TestParseMetadata_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `feature_set: [a]`},
		{"missing columns", `{"feature_set": ["loan_amnt"]}`},
		{"empty feature set", `{"feature_set": [], "numeric_columns": [], "categorical_columns": []}`},
		{"review_k out of range", `{"feature_set": ["a"], "numeric_columns": [], "categorical_columns": [], "review_k": 1.5}`},
		{"report not an object", `{"feature_set": ["a"], "numeric_columns": [], "categorical_columns": [], "report": [0.3]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMetadata([]byte(tt.body))
			assert.Error(t, err)
		})
	}
}

func TestParseMetadata_NullThresholds(t *testing.T) {
	meta, err := ParseMetadata([]byte(`{"feature_set": ["a"], "numeric_columns": ["a"], "categorical_columns": [],
		"policy": {"thresholds": {"thr_reject": null, "thr_review": 0.4}}}`))
	require.NoError(t, err)
	require.NotNil(t, meta.Policy)
	assert.Nil(t, meta.Policy.Thresholds.ThrReject)
	assert.Equal(t, domain.DefaultReviewK, meta.ReviewFraction())
}

func TestParseMetadata_MixedReport(t *testing.T) {
	meta, err := ParseMetadata([]byte(`{"feature_set": ["a"], "numeric_columns": ["a"], "categorical_columns": [],
		"report": {"Threshold@top_20%": 0.3, "model": "xgb", "confusion": [[1, 2], [3, 4]]}}`))
	require.NoError(t, err)
	assert.Equal(t, "xgb", meta.Report["model"])

	th, err := TopKResolver{Meta: meta}.Resolve()
	require.NoError(t, err)
	require.NotNil(t, th)
	assert.Equal(t, 0.3, *th.ThrReview)
}

func TestLoadMetadata_MissingFile(t *testing.T) {
	_, err := LoadMetadata(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
